package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/claimcheck/internal/model"
)

func TestNew(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		l, err := New(verbose)
		if err != nil {
			t.Fatalf("New(%v) failed: %v", verbose, err)
		}
		if l == nil {
			t.Fatalf("New(%v) returned nil logger", verbose)
		}
		if !verbose && l.Core().Enabled(zapcore.InfoLevel) {
			t.Error("production logger should not emit info lines")
		}
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected nop logger")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Error("expected logger to pass through")
	}
}

func TestDegraded(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := zap.New(core)

	Degraded(l, model.StageOutcome{
		Stage: "sentiment",
		Item:  "Vitamin D and colds",
		Kind:  model.FailureTimeout,
		Error: "context deadline exceeded",
	})

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["stage"] != "sentiment" || fields["kind"] != "timeout" {
		t.Errorf("unexpected fields: %v", fields)
	}
}
