package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRun(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	WithRun(zap.New(core), " run-1 ").Debug("think", StepFields(2, "latest_jobs")...)
	WithRun(zap.New(core), "").Debug("act", StepFields(0, "")...)

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first[FieldRunID] != "run-1" {
		t.Fatalf("unexpected run id: %v", first[FieldRunID])
	}
	if first[FieldIteration] != int64(2) {
		t.Fatalf("unexpected iteration: %v", first[FieldIteration])
	}
	if first[FieldStrategy] != "latest_jobs" {
		t.Fatalf("unexpected strategy: %v", first[FieldStrategy])
	}

	second := entries[1].ContextMap()
	if _, ok := second[FieldRunID]; ok {
		t.Fatalf("expected empty run id to be omitted")
	}
	if _, ok := second[FieldStrategy]; ok {
		t.Fatalf("expected empty strategy to be omitted")
	}

	if WithRun(nil, "x") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}
