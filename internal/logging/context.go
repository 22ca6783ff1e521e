package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Structured field keys shared by every package. The console handler lifts
// region, file, record_index, app_id and event_type out of the key=value tail.
const (
	FieldComponent = "component"
	// FieldRunID identifies one merge invocation across every log line it emits.
	FieldRunID  = "run_id"
	FieldRegion = "region"
	// FieldFile is the pending input file being processed.
	FieldFile = "file"
	// FieldRecordIndex is the 0-based position of a record inside its input file.
	FieldRecordIndex = "record_index"
	FieldAppID       = "app_id"
	FieldEventType   = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the consequence of a warning for the run.
	FieldImpact = "impact"
)

type scopeKey struct{}

// scope is the run and region a context belongs to.
type scope struct {
	runID  string
	region string
}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// WithRunID stores the run identifier on ctx.
func WithRunID(ctx context.Context, runID string) context.Context {
	s := scopeOf(ctx)
	s.runID = strings.TrimSpace(runID)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithRegion stores the region code on ctx.
func WithRegion(ctx context.Context, region string) context.Context {
	s := scopeOf(ctx)
	s.region = strings.TrimSpace(region)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext tags logger with the run id and region stored on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	s := scopeOf(ctx)
	var args []any
	if s.runID != "" {
		args = append(args, String(FieldRunID, s.runID))
	}
	if s.region != "" {
		args = append(args, String(FieldRegion, s.region))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
