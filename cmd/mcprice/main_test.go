package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
[log]
level = "error"

[engine]
workers = 2
seed = 42

[[jobs]]
name = "atm-call"
discount_rate = 0.05
paths = 2000
steps = 50

[jobs.process]
kind = "gbm"
s0 = 100
r = 0.05
sigma = 0.2
t = 1

[jobs.instrument]
kind = "vanilla"
option_type = "call"
strike = 100
currency = "USD"
exercise_after = "8766h"
settlement_after = "8766h"

[[jobs]]
name = "bad-currency"
discount_rate = 0.05
paths = 10
steps = 10

[jobs.process]
kind = "gbm"
s0 = 100
r = 0.05
sigma = 0.2
t = 1

[jobs.instrument]
kind = "vanilla"
option_type = "put"
strike = 100
currency = "ABC"
exercise_after = "8766h"
settlement_after = "8766h"
`

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcprice.toml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := run(context.Background(), path, false, &out)
	if !errors.Is(err, errJobsFailed) {
		t.Errorf("expected errJobsFailed, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out.String())
	}
	if !strings.Contains(lines[0], "atm-call USD") || !strings.Contains(lines[0], "bs=10.4506") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "bad-currency error:") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}
