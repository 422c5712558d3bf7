package orchestrator

import (
	"log/slog"

	"github.com/choreohq/choreo/internal/learning"
	"github.com/choreohq/choreo/internal/similarity"
)

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithSampler injects the uniform [0, 1) sampler used for edge draws.
// The sampler must be safe for concurrent use; tests inject deterministic
// sequences here.
func WithSampler(sample func() float64) Option {
	return func(o *Orchestrator) { o.sample = sample }
}

// WithSimilarityIndex injects a prebuilt similarity index instead of
// rebuilding one from the registry.
func WithSimilarityIndex(ix *similarity.Index) Option {
	return func(o *Orchestrator) { o.index = ix }
}

// WithFeedback injects the adaptive-routing feedback engine.
func WithFeedback(f *learning.Feedback) Option {
	return func(o *Orchestrator) { o.feedback = f }
}
