package core

import "github.com/hupe1980/recipeflow/logging"

// ToolContext carries per-invocation metadata into a tool execution: the run
// it belongs to, a function call identifier correlating request and result,
// and a guaranteed non-nil logger.
type ToolContext struct {
	runID          string
	functionCallID string
	logger         logging.Logger
}

// NewToolContext constructs a ToolContext. A nil logger is substituted with
// a NoOpLogger so tools never need to nil-check.
func NewToolContext(runID, functionCallID string, logger logging.Logger) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{runID: runID, functionCallID: functionCallID, logger: logger}
}

// RunID returns the identifier of the workflow run this invocation belongs to.
func (tc *ToolContext) RunID() string { return tc.runID }

// FunctionCallID returns the identifier correlating this tool execution with
// the call that requested it.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// Logger returns the logger attached to this context.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }
