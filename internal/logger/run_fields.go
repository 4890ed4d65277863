package logger

import "go.uber.org/zap"

const (
	// FieldRunID correlates every log entry of one recommendation run.
	FieldRunID = "run_id"
	// FieldIteration is the zero-based loop iteration.
	FieldIteration = "iteration"
	// FieldStrategy is the toolkit strategy name.
	FieldStrategy = "strategy"
)

// WithRun attaches the run identifier to the logger.
func WithRun(logger *zap.Logger, runID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRunID, Value: runID})...)
}

// StepFields describes one loop step. An empty strategy is omitted.
func StepFields(iteration int, strategy string) []zap.Field {
	fields := []zap.Field{zap.Int(FieldIteration, iteration)}
	return append(fields, StringFields(StringField{Key: FieldStrategy, Value: strategy})...)
}
