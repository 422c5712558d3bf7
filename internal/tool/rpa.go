package tool

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/choreohq/choreo/pkg/models"
)

// RPATool simulates a robotic-process-automation action with a configurable
// success rate. It stands in for a real browser or desktop driver behind the
// same Tool interface.
type RPATool struct {
	name        string
	successRate float64
	delay       time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRPATool creates a simulated RPA tool. A negative success rate defaults
// to 0.8, matching the historical simulated automation behavior.
func NewRPATool(name string, successRate float64, delay time.Duration) *RPATool {
	if successRate < 0 {
		successRate = 0.8
	}
	return &RPATool{
		name:        name,
		successRate: successRate,
		delay:       delay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSeed reseeds the internal RNG for reproducible tests.
func (t *RPATool) SetSeed(seed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rng = rand.New(rand.NewSource(seed))
}

// Name returns the tool name.
func (t *RPATool) Name() string { return t.name }

// Descriptor returns the tool's identity and capability tags.
func (t *RPATool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:         t.name,
		Description:  "Simulated RPA automation tool",
		Capabilities: []string{"ui_automation", "form_filling"},
		InputTypes:   []string{"automation_task"},
		OutputTypes:  []string{"automation_result"},
	}
}

// Execute simulates the automation action.
func (t *RPATool) Execute(ctx context.Context, p Params) Result {
	if t.delay > 0 {
		select {
		case <-time.After(t.delay):
		case <-ctx.Done():
			return Result{ErrorMessage: fmt.Sprintf("automation cancelled: %v", ctx.Err())}
		}
	}

	t.mu.Lock()
	draw := t.rng.Float64()
	t.mu.Unlock()

	if draw < t.successRate {
		return Result{
			Success: true,
			Output:  fmt.Sprintf("automation completed for agent %s step %s", p.Agent, p.Step),
		}
	}
	return Result{ErrorMessage: "UI automation failed (simulated)"}
}
