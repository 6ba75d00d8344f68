package span

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestNewRepoSpan(t *testing.T) {
	execID := uuid.New()
	parentID := uuid.New()
	s := NewRepo(execID, parentID, "config-manager")

	if s.Kind != KindRepo {
		t.Fatalf("expected repo kind, got %s", s.Kind)
	}
	if s.Status != StatusRunning {
		t.Fatalf("expected running status, got %s", s.Status)
	}
	if s.ExecutionID != execID || s.ParentSpanID != parentID {
		t.Fatal("execution/parent IDs not propagated")
	}
	if s.Attributes["repo_name"] != "config-manager" {
		t.Fatalf("expected repo_name attribute, got %v", s.Attributes)
	}
	if s.SpanID == uuid.Nil {
		t.Fatal("span ID must be generated")
	}
}

func TestNewAgentSpan(t *testing.T) {
	s := NewAgent(uuid.New(), uuid.New(), "schema-truth")
	if s.Kind != KindAgent {
		t.Fatalf("expected agent kind, got %s", s.Kind)
	}
	if s.Attributes["agent_name"] != "schema-truth" {
		t.Fatalf("expected agent_name attribute, got %v", s.Attributes)
	}
}

func TestCompleteSpan(t *testing.T) {
	s := NewAgent(uuid.New(), uuid.New(), "test")
	s.Complete()

	if s.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.EndedAt == nil || s.DurationMS == nil {
		t.Fatal("ended_at and duration_ms must be set")
	}
	if s.Error != "" {
		t.Fatalf("unexpected error: %s", s.Error)
	}
}

func TestFailSpan(t *testing.T) {
	s := NewAgent(uuid.New(), uuid.New(), "test")
	s.Fail("something went wrong")

	if s.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", s.Status)
	}
	if s.Error != "something went wrong" {
		t.Fatalf("unexpected error: %q", s.Error)
	}
}

func TestFinalizationIsOneShot(t *testing.T) {
	s := NewAgent(uuid.New(), uuid.New(), "test")
	s.Fail("first")
	s.Complete()
	s.Fail("second")

	if s.Status != StatusFailed {
		t.Fatalf("terminal state must not change, got %s", s.Status)
	}
	if s.Error != "first" {
		t.Fatalf("error must keep first finalization, got %q", s.Error)
	}
}

func TestAttachArtifact(t *testing.T) {
	s := NewAgent(uuid.New(), uuid.New(), "test")
	s.AttachArtifact(map[string]any{"result": "ok"})
	if len(s.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(s.Artifacts))
	}
}

func TestSpanJSONRoundtrip(t *testing.T) {
	root := NewRepo(uuid.New(), uuid.New(), "config-manager")
	child := NewAgent(root.ExecutionID, root.SpanID, "schema-truth")
	child.AttachArtifact(map[string]any{"valid": true})
	child.Complete()
	root.AddChild(child)
	root.Complete()

	raw, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded ExecutionSpan
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.SpanID != root.SpanID {
		t.Fatal("span ID lost in roundtrip")
	}
	if len(decoded.Children) != 1 || decoded.Children[0].Name != "schema-truth" {
		t.Fatalf("children lost in roundtrip: %+v", decoded.Children)
	}
}

func TestContextFromHeadersRequiresParentSpan(t *testing.T) {
	h := http.Header{}
	_, err := ContextFromHeaders(h)
	if err == nil {
		t.Fatal("expected error for missing parent span header")
	}
	var ce *ContextError
	if !errors.As(err, &ce) || ce.Code != "MISSING_PARENT_SPAN_ID" {
		t.Fatalf("unexpected error: %v", err)
	}

	h.Set(HeaderParentSpanID, "not-a-uuid")
	if _, err := ContextFromHeaders(h); err == nil {
		t.Fatal("expected error for malformed parent span header")
	}
}

func TestContextFromHeadersGeneratesExecutionID(t *testing.T) {
	parent := uuid.New()
	h := http.Header{}
	h.Set(HeaderParentSpanID, parent.String())

	ctx, err := ContextFromHeaders(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.ParentSpanID != parent {
		t.Fatal("parent span ID not propagated")
	}
	if ctx.ExecutionID == uuid.Nil {
		t.Fatal("execution ID must be generated when absent")
	}

	execID := uuid.New()
	h.Set(HeaderExecutionID, execID.String())
	ctx, err = ContextFromHeaders(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.ExecutionID != execID {
		t.Fatal("provided execution ID must be honored")
	}
}
