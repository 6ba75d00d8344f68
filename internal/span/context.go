// Package span implements the hierarchical execution trace shared by every
// kansa agent. A request produces exactly one repo-level span with zero or
// more agent-level children; the tree is returned to the caller on every
// response, success or failure.
package span

import (
	"net/http"

	"github.com/google/uuid"
)

// Trace propagation headers consumed by instrumented entry points.
const (
	HeaderParentSpanID = "X-Parent-Span-Id"
	HeaderExecutionID  = "X-Execution-Id"
)

// ExecutionContext carries the identifiers that link this service's spans
// back into the caller's execution graph. Immutable; built once per request.
type ExecutionContext struct {
	ExecutionID  uuid.UUID `json:"execution_id"`
	ParentSpanID uuid.UUID `json:"parent_span_id"`
}

// ContextError is returned when trace propagation headers are missing or
// malformed. It maps to a 400 response: no operation may execute outside a
// trace.
type ContextError struct {
	Code    string
	Message string
}

func (e *ContextError) Error() string {
	return e.Code + ": " + e.Message
}

// ContextFromHeaders extracts the execution context from request headers.
// X-Parent-Span-Id is mandatory and must be a valid UUID. X-Execution-Id is
// optional; a fresh one is generated when absent.
func ContextFromHeaders(h http.Header) (ExecutionContext, error) {
	parent, err := uuid.Parse(h.Get(HeaderParentSpanID))
	if err != nil {
		return ExecutionContext{}, &ContextError{
			Code:    "MISSING_PARENT_SPAN_ID",
			Message: HeaderParentSpanID + " header is required and must be a valid UUID",
		}
	}

	execID, err := uuid.Parse(h.Get(HeaderExecutionID))
	if err != nil {
		execID = uuid.New()
	}

	return ExecutionContext{ExecutionID: execID, ParentSpanID: parent}, nil
}
