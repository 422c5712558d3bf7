// Package tool provides the executable tool abstraction and the explicit,
// ordered registry the orchestrator dispatches through. Tools report failure
// as data, never as an error: the fallback chain treats a failed invocation
// as a normal outcome and moves on.
package tool

import (
	"context"
	"errors"

	"github.com/choreohq/choreo/pkg/models"
)

// ErrToolNotFound indicates the named tool is absent from the registry.
var ErrToolNotFound = errors.New("tool not found")

// Params carries the invocation context for a tool execution.
type Params struct {
	// Agent is the name of the node requesting the execution.
	Agent string
	// Step is the step label (node type) being performed.
	Step string
	// Input carries optional extra key/value input for the tool.
	Input map[string]string
}

// Result is the uniform outcome of one tool invocation.
type Result struct {
	// Success reports whether the tool completed its work.
	Success bool
	// Output is the tool's output on success.
	Output string
	// ErrorMessage describes the failure when Success is false.
	ErrorMessage string
}

// Tool is a named executable capability.
type Tool interface {
	// Name returns the unique tool name.
	Name() string
	// Descriptor returns the static identity and capability tags.
	Descriptor() models.ToolDescriptor
	// Execute runs the tool. Failure is reported in the Result, not as a
	// panic or error; the context bounds slow calls.
	Execute(ctx context.Context, p Params) Result
}
