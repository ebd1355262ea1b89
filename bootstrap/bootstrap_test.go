package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wyfcoding/quant/config"
)

const sample = `
[log]
level = "warn"

[idgen]
type = "sonyflake"
machine_id = 3

[[jobs]]
name = "atm-call"
discount_rate = 0.05
paths = 100
steps = 10

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
`

func TestBootstrapper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcprice.toml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}

	b := New("mcprice", "v0.1.0")
	conf, err := b.Initialize(path)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if len(conf.Jobs) != 1 || conf.Jobs[0].Name != "atm-call" {
		t.Errorf("unexpected jobs %+v", conf.Jobs)
	}
	if b.Logger.Level().String() != "WARN" {
		t.Errorf("expected logger level WARN, got %s", b.Logger.Level())
	}

	m := b.SetupMetrics(config.MetricsConfig{})
	if got := testutil.ToFloat64(m.BuildInfo.WithLabelValues("mcprice", "v0.1.0")); got != 1 {
		t.Errorf("expected build_info 1, got %v", got)
	}

	b.SetupTracing(context.Background(), config.TracingConfig{})
	b.Shutdown()
	b.Shutdown()
}

func TestBootstrapperMissingConfig(t *testing.T) {
	b := New("mcprice", "dev")
	if _, err := b.Initialize(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
