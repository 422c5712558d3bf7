package tool

import (
	"context"
	"fmt"

	"github.com/choreohq/choreo/pkg/models"
)

// EchoTool always succeeds and reflects its input. Used for report-style
// steps and as a deterministic tool in demos.
type EchoTool struct {
	name string
}

// NewEchoTool creates an echo tool.
func NewEchoTool(name string) *EchoTool {
	return &EchoTool{name: name}
}

// Name returns the tool name.
func (t *EchoTool) Name() string { return t.name }

// Descriptor returns the tool's identity and capability tags.
func (t *EchoTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:         t.name,
		Description:  "Deterministic echo tool",
		Capabilities: []string{"reporting"},
		InputTypes:   []string{"generic"},
		OutputTypes:  []string{"generic"},
	}
}

// Execute reflects the invocation parameters.
func (t *EchoTool) Execute(ctx context.Context, p Params) Result {
	return Result{
		Success: true,
		Output:  fmt.Sprintf("%s executed for agent %s step %s", t.name, p.Agent, p.Step),
	}
}
