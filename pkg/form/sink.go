package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/tmcc-dev/designform/pkg/design"
)

// Sink receives accepted submissions. Delivery is fire-and-forget: callers
// do not wait on persistence.
type Sink interface {
	Accept(ctx context.Context, sub design.Submission, versionString string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sub design.Submission, versionString string) error

// Accept calls f.
func (f SinkFunc) Accept(ctx context.Context, sub design.Submission, versionString string) error {
	return f(ctx, sub, versionString)
}

// LogSink records accepted submissions in the log and stores nothing.
type LogSink struct {
	Logger *zap.Logger
}

// Accept logs the submission summary.
func (s LogSink) Accept(_ context.Context, sub design.Submission, versionString string) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("design submitted",
		zap.String("title", sub.Title),
		zap.String("categories", sub.Categories),
		zap.Int("designers", len(sub.Designers)),
		zap.Int("credits", len(sub.Credits)),
		zap.Int("variants", len(sub.Rates.Variants)),
		zap.String("versions", versionString),
	)
	return nil
}
