package script

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchinto/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterExportMetrics()
	os.Exit(m.Run())
}

type runFunc func(ctx context.Context, b Bindings) (any, error)

func (f runFunc) Run(ctx context.Context, b Bindings) (any, error) { return f(ctx, b) }

func TestInstrumentedProgram_Success(t *testing.T) {
	before := testutil.ToFloat64(metrics.ScriptEvaluationsTotal.WithLabelValues("inst-ok", "ok"))

	p := NewInstrumentedProgram(runFunc(func(_ context.Context, b Bindings) (any, error) {
		return b.ID + "!", nil
	}), "greet", "inst-ok", 0, zap.NewNop())

	v, err := p.Run(context.Background(), Bindings{ID: "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "7!" {
		t.Errorf("value = %v, want 7!", v)
	}

	after := testutil.ToFloat64(metrics.ScriptEvaluationsTotal.WithLabelValues("inst-ok", "ok"))
	if after-before != 1 {
		t.Errorf("ok counter delta = %f, want 1", after-before)
	}
}

func TestInstrumentedProgram_Error(t *testing.T) {
	boom := errors.New("boom")
	p := NewInstrumentedProgram(runFunc(func(context.Context, Bindings) (any, error) {
		return nil, boom
	}), "bad", "inst-err", 0, nil)

	_, err := p.Run(context.Background(), Bindings{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.ScriptEvaluationsTotal.WithLabelValues("inst-err", "error")); got != 1 {
		t.Errorf("error counter = %f, want 1", got)
	}
}

func TestInstrumentedProgram_Timeout(t *testing.T) {
	p := NewInstrumentedProgram(runFunc(func(ctx context.Context, _ Bindings) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), "slow", "inst-slow", 10*time.Millisecond, zap.NewNop())

	_, err := p.Run(context.Background(), Bindings{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestInstrumentedProgram_NoTimeoutKeepsContext(t *testing.T) {
	p := NewInstrumentedProgram(runFunc(func(ctx context.Context, _ Bindings) (any, error) {
		_, has := ctx.Deadline()
		return has, nil
	}), "deadline", "inst-nodl", 0, zap.NewNop())

	v, err := p.Run(context.Background(), Bindings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != false {
		t.Error("expected no deadline without timeout")
	}
}
