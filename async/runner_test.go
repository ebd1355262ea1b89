package async

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSafeGoRecoversPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	SafeGo(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()
}

func TestGoWithContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "job-1")
	got := make(chan any, 1)
	DefaultRunner.GoWithContext(ctx, func(ctx context.Context) {
		got <- ctx.Value(key{})
	})
	if v := <-got; v != "job-1" {
		t.Errorf("context not propagated: %v", v)
	}
}

func TestRecover(t *testing.T) {
	err := Recover(func() error { panic("worker exploded") })
	if !errors.Is(err, ErrPanicRecovered) {
		t.Fatalf("expected ErrPanicRecovered, got %v", err)
	}

	sentinel := errors.New("plain failure")
	if err := Recover(func() error { return sentinel }); err != sentinel {
		t.Errorf("errors should pass through, got %v", err)
	}
	if err := Recover(func() error { return nil }); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
