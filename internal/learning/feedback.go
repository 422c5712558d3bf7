// Package learning provides the adaptive routing feedback loop: observed
// execution outcomes reinforce or decay edge probabilities, and a periodic
// sweep fades out learned routes that are no longer exercised. All mutations
// go through the workflow store so concurrent runs converge on one truth.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/choreohq/choreo/internal/store"
)

// Default feedback step sizes.
const (
	// DefaultReinforce is the additive increase applied on confirmed success.
	DefaultReinforce = 0.1
	// DefaultDecay is the multiplicative decrease factor applied on failure.
	DefaultDecay = 0.1
	// DefaultSweepRate is the decay rate of the periodic maintenance sweep.
	DefaultSweepRate = 0.05
)

// Feedback applies routing feedback through the workflow store.
type Feedback struct {
	store     store.FeedbackStore
	events    store.EventLogger
	logger    *slog.Logger
	reinforce float64
	decay     float64
}

// New creates a feedback engine. Events may be nil to skip event logging;
// non-positive amounts fall back to the defaults.
func New(fs store.FeedbackStore, events store.EventLogger, logger *slog.Logger, reinforce, decay float64) *Feedback {
	if logger == nil {
		logger = slog.Default()
	}
	if reinforce <= 0 {
		reinforce = DefaultReinforce
	}
	if decay <= 0 {
		decay = DefaultDecay
	}
	return &Feedback{store: fs, events: events, logger: logger, reinforce: reinforce, decay: decay}
}

// RecordOutcome adjusts the edge between two nodes based on an observed
// execution outcome: additive reinforcement on success, multiplicative decay
// on failure.
func (f *Feedback) RecordOutcome(ctx context.Context, workflowID, from, to string, success bool) error {
	var err error
	if success {
		err = f.store.Reinforce(ctx, workflowID, from, to, f.reinforce)
	} else {
		err = f.store.Decay(ctx, workflowID, from, to, f.decay)
	}
	if err != nil {
		return fmt.Errorf("record outcome %s->%s: %w", from, to, err)
	}

	f.logEvent(ctx, fmt.Sprintf("edge feedback %s->%s", from, to), map[string]any{
		"workflow_id": workflowID,
		"success":     success,
	})
	return nil
}

// Strengthen creates or strengthens a learned edge discovered by the
// similarity fallback.
func (f *Feedback) Strengthen(ctx context.Context, workflowID, from, to string, score float64) error {
	if err := f.store.AddFallbackEdge(ctx, workflowID, from, to, score); err != nil {
		return fmt.Errorf("strengthen %s->%s: %w", from, to, err)
	}

	f.logEvent(ctx, fmt.Sprintf("fallback edge %s->%s", from, to), map[string]any{
		"workflow_id": workflowID,
		"score":       score,
	})
	return nil
}

// Sweep decays every learned edge once by the given rate.
func (f *Feedback) Sweep(ctx context.Context, rate float64) error {
	if err := f.store.DecayAllLearned(ctx, rate); err != nil {
		return fmt.Errorf("sweep learned edges: %w", err)
	}
	f.logEvent(ctx, "decayed learned edges", map[string]any{"rate": rate})
	return nil
}

// RunSweeper decays learned edges on the given interval until the context
// is cancelled. Intended to run in its own goroutine next to a long-lived
// orchestrator.
func (f *Feedback) RunSweeper(ctx context.Context, interval time.Duration, rate float64) {
	if interval <= 0 {
		interval = time.Hour
	}
	if rate <= 0 {
		rate = DefaultSweepRate
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := f.Sweep(ctx, rate); err != nil {
				f.logger.Warn("learned edge sweep failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (f *Feedback) logEvent(ctx context.Context, message string, metadata map[string]any) {
	if f.events == nil {
		return
	}
	if err := f.events.LogEvent(ctx, "feedback", message, metadata); err != nil {
		f.logger.Debug("feedback event write skipped", "error", err)
	}
}
