package instrument

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wyfcoding/quant/money"
	"github.com/wyfcoding/quant/process"
	"github.com/wyfcoding/quant/xerrors"
)

var (
	exercise   = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	settlement = time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
)

func amount(t *testing.T, inst Instrument, path []float64) float64 {
	t.Helper()
	cf, err := inst.CalculatePayoff(path)
	if err != nil {
		t.Fatalf("payoff failed: %v", err)
	}
	if !cf.Settlement.Equal(settlement) || cf.Currency != inst.UnderlyingCurrency() {
		t.Fatalf("payoff not tagged with instrument terms: %v", cf)
	}
	return cf.Amount
}

func TestVanillaPayoff(t *testing.T) {
	tests := []struct {
		name string
		typ  OptionType
		path []float64
		want float64
	}{
		{"call in the money", Call, []float64{90, 120, 110}, 10},
		{"call out of the money", Call, []float64{110, 95}, 0},
		{"put in the money", Put, []float64{100, 93}, 7},
		{"put at the money", Put, []float64{100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := NewVanillaOption(100, exercise, settlement, tt.typ, money.USD)
			if got := amount(t, opt, tt.path); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestPutCallParityOnPayoff(t *testing.T) {
	call := NewVanillaOption(100, exercise, settlement, Call, money.EUR)
	put := NewVanillaOption(100, exercise, settlement, Put, money.EUR)
	for _, st := range []float64{50, 99.5, 100, 100.5, 180} {
		path := []float64{100, st}
		diff := amount(t, call, path) - amount(t, put, path)
		if math.Abs(diff-(st-100)) > 1e-12 {
			t.Errorf("S=%f: call-put=%f, want %f", st, diff, st-100)
		}
	}
}

func TestBarrierCrossing(t *testing.T) {
	// 终点 97，行权价 90 的看涨期权普通收益为 7
	path := []float64{100, 104, 110, 97}
	tests := []struct {
		barrier Barrier
		want    float64
	}{
		{Barrier{UpAndIn, 110}, 7}, // 恰好触及也算穿越
		{Barrier{UpAndIn, 111}, 0},
		{Barrier{UpAndOut, 110}, 0},
		{Barrier{UpAndOut, 111}, 7},
		{Barrier{DownAndIn, 97}, 7},
		{Barrier{DownAndIn, 95}, 0},
		{Barrier{DownAndOut, 97}, 0},
		{Barrier{DownAndOut, 95}, 7},
	}
	for _, tt := range tests {
		opt := NewBarrierOption(90, exercise, settlement, Call, money.USD, tt.barrier)
		if got := amount(t, opt, path); got != tt.want {
			t.Errorf("%s at %.0f: expected %f, got %f", tt.barrier.Type, tt.barrier.Level, tt.want, got)
		}
	}
}

func TestBarrierKnockOut(t *testing.T) {
	opt := NewBarrierOption(100, exercise, settlement, Call, money.USD, Barrier{UpAndOut, 120})
	if got := amount(t, opt, []float64{100, 121, 115}); got != 0 {
		t.Errorf("knocked out option should pay 0, got %f", got)
	}
	if got := amount(t, opt, []float64{100, 119, 115}); got != 15 {
		t.Errorf("surviving option should pay 15, got %f", got)
	}
}

func TestBarrierDecomposition(t *testing.T) {
	gbm := process.NewGBMProcess(100, 0.05, 0.3, 1)
	rnd := process.NewSeededRand(11)
	pairs := [][2]BarrierType{{UpAndIn, UpAndOut}, {DownAndIn, DownAndOut}}

	for range 500 {
		path := gbm.GeneratePricePath(rnd, 50)
		for _, typ := range []OptionType{Call, Put} {
			vanilla := amount(t, NewVanillaOption(100, exercise, settlement, typ, money.USD), path)
			for _, pair := range pairs {
				level := 115.0
				if pair[0] == DownAndIn {
					level = 85
				}
				in := amount(t, NewBarrierOption(100, exercise, settlement, typ, money.USD, Barrier{pair[0], level}), path)
				out := amount(t, NewBarrierOption(100, exercise, settlement, typ, money.USD, Barrier{pair[1], level}), path)
				if math.Abs(in+out-vanilla) > 1e-12 {
					t.Fatalf("%s+%s = %f, vanilla = %f", pair[0], pair[1], in+out, vanilla)
				}
			}
		}
	}
}

func TestBarrierDirectionEffect(t *testing.T) {
	tests := []struct {
		typ BarrierType
		dir Direction
		eff Effect
	}{
		{UpAndIn, Up, KnockIn},
		{UpAndOut, Up, KnockOut},
		{DownAndIn, Down, KnockIn},
		{DownAndOut, Down, KnockOut},
	}
	for _, tt := range tests {
		b := Barrier{Type: tt.typ}
		if b.Direction() != tt.dir || b.Effect() != tt.eff {
			t.Errorf("%s: unexpected direction/effect", tt.typ)
		}
	}
}

func TestEmptyPath(t *testing.T) {
	formula, err := NewExpressionOption("Final", 0, exercise, settlement, money.USD)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	insts := []Instrument{
		NewVanillaOption(100, exercise, settlement, Call, money.USD),
		NewBarrierOption(100, exercise, settlement, Put, money.USD, Barrier{DownAndOut, 80}),
		formula,
	}
	for _, inst := range insts {
		_, err := inst.CalculatePayoff(nil)
		if !errors.Is(err, xerrors.ErrEmptyPath) {
			t.Errorf("%T: expected ErrEmptyPath, got %v", inst, err)
		}
		if !xerrors.IsType(err, xerrors.ErrDomain) {
			t.Errorf("%T: expected domain error", inst)
		}
	}
}

func TestExpressionOption(t *testing.T) {
	path := []float64{100, 110, 90, 120}
	tests := []struct {
		code string
		want float64
	}{
		{"max(Mean - Strike, 0)", 5},
		{"Max - Min", 30},
		{"Final > Strike ? 1 : 0", 1},
		{"Steps", 4},
	}
	for _, tt := range tests {
		opt, err := NewExpressionOption(tt.code, 100, exercise, settlement, money.JPY)
		if err != nil {
			t.Fatalf("%q: compile failed: %v", tt.code, err)
		}
		if got := amount(t, opt, path); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%q: expected %f, got %f", tt.code, tt.want, got)
		}
	}
}

func TestExpressionErrors(t *testing.T) {
	if _, err := NewExpressionOption("Final +", 0, exercise, settlement, money.USD); !errors.Is(err, xerrors.ErrInvalidExpression) {
		t.Errorf("expected ErrInvalidExpression, got %v", err)
	}
	if _, err := NewExpressionOption("Unknown * 2", 0, exercise, settlement, money.USD); err == nil {
		t.Errorf("undefined variable should not compile")
	}

	opt, err := NewExpressionOption("Final - Strike", 100, exercise, settlement, money.USD)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if _, err := opt.CalculatePayoff([]float64{90}); !errors.Is(err, xerrors.ErrNegativePayoff) {
		t.Errorf("expected ErrNegativePayoff, got %v", err)
	}
}

func TestParse(t *testing.T) {
	if typ, err := ParseOptionType(" call "); err != nil || typ != Call {
		t.Errorf("expected Call, got %v %v", typ, err)
	}
	if _, err := ParseOptionType("straddle"); !errors.Is(err, xerrors.ErrInvalidOptionType) {
		t.Errorf("expected ErrInvalidOptionType, got %v", err)
	}
	for _, s := range []string{"down_and_out", "down-and-out", "DownAndOut"} {
		if typ, err := ParseBarrierType(s); err != nil || typ != DownAndOut {
			t.Errorf("%q: expected DownAndOut, got %v %v", s, typ, err)
		}
	}
	if _, err := ParseBarrierType("double_no_touch"); !errors.Is(err, xerrors.ErrInvalidBarrierType) {
		t.Errorf("expected ErrInvalidBarrierType, got %v", err)
	}
}
