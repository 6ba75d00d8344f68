package span

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a span's level in the execution hierarchy.
type Kind string

const (
	KindRepo  Kind = "repo"
	KindAgent Kind = "agent"
)

// Status is the lifecycle state of a span. Completed and Failed are
// terminal and mutually exclusive.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ExecutionSpan is one node of the execution trace. A span is exclusively
// owned by the call path that created it until it is finalized and handed to
// its parent as a child; no synchronization is needed.
type ExecutionSpan struct {
	SpanID       uuid.UUID        `json:"span_id"`
	ParentSpanID uuid.UUID        `json:"parent_span_id"`
	ExecutionID  uuid.UUID        `json:"execution_id"`
	Kind         Kind             `json:"kind"`
	Status       Status           `json:"status"`
	Name         string           `json:"name"`
	StartedAt    time.Time        `json:"started_at"`
	EndedAt      *time.Time       `json:"ended_at,omitempty"`
	DurationMS   *int64           `json:"duration_ms,omitempty"`
	Attributes   map[string]any   `json:"attributes"`
	Artifacts    []any            `json:"artifacts"`
	Children     []*ExecutionSpan `json:"children"`
	Error        string           `json:"error,omitempty"`
}

// NewRepo creates a repo-level span in Running state with a fresh span ID.
func NewRepo(executionID, parentSpanID uuid.UUID, repoName string) *ExecutionSpan {
	return newSpan(executionID, parentSpanID, KindRepo, repoName, map[string]any{
		"repo_name": repoName,
	})
}

// NewAgent creates an agent-level span in Running state with a fresh span ID.
func NewAgent(executionID, parentSpanID uuid.UUID, agentName string) *ExecutionSpan {
	return newSpan(executionID, parentSpanID, KindAgent, agentName, map[string]any{
		"agent_name": agentName,
	})
}

func newSpan(executionID, parentSpanID uuid.UUID, kind Kind, name string, attrs map[string]any) *ExecutionSpan {
	return &ExecutionSpan{
		SpanID:       uuid.New(),
		ParentSpanID: parentSpanID,
		ExecutionID:  executionID,
		Kind:         kind,
		Status:       StatusRunning,
		Name:         name,
		StartedAt:    time.Now().UTC(),
		Attributes:   attrs,
		Artifacts:    []any{},
		Children:     []*ExecutionSpan{},
	}
}

// Complete transitions the span to Completed. Finalization is one-shot: a
// span that already reached a terminal state is left untouched.
func (s *ExecutionSpan) Complete() {
	s.end(StatusCompleted, "")
}

// Fail transitions the span to Failed with an error message. Finalization is
// one-shot: a span that already reached a terminal state is left untouched.
func (s *ExecutionSpan) Fail(errMsg string) {
	s.end(StatusFailed, errMsg)
}

func (s *ExecutionSpan) end(status Status, errMsg string) {
	if s.Status != StatusRunning {
		return
	}
	now := time.Now().UTC()
	dur := now.Sub(s.StartedAt).Milliseconds()
	if dur < 0 {
		dur = 0
	}
	s.Status = status
	s.EndedAt = &now
	s.DurationMS = &dur
	s.Error = errMsg
}

// AttachArtifact appends an arbitrary JSON-serializable artifact to the span.
func (s *ExecutionSpan) AttachArtifact(artifact any) {
	s.Artifacts = append(s.Artifacts, artifact)
}

// AddChild appends a child span. Children keep call order; they are never
// sorted.
func (s *ExecutionSpan) AddChild(child *ExecutionSpan) {
	s.Children = append(s.Children, child)
}
