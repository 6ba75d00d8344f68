package span

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestEnvelopeSuccessDerivedFromTree(t *testing.T) {
	tree := NewRepo(uuid.New(), uuid.New(), "config-manager")
	tree.Complete()

	env := NewEnvelope("payload", tree)
	if !env.Success {
		t.Fatal("expected success for completed tree")
	}
	if env.Data == nil || *env.Data != "payload" {
		t.Fatalf("unexpected data: %v", env.Data)
	}
}

func TestEnvelopeSuccessWithFailedTreeIsFalse(t *testing.T) {
	tree := NewRepo(uuid.New(), uuid.New(), "config-manager")
	tree.Fail("agent failed")

	env := NewEnvelope("payload", tree)
	if env.Success {
		t.Fatal("success must be derived from span status, not the payload")
	}
}

func TestEnvelopeZeroAgentTreeIsFailure(t *testing.T) {
	tree := NewTree(testCtx(), "config-manager").Finalize()

	env := NewEnvelope(map[string]any{"valid": true}, tree)
	if env.Success {
		t.Fatal("envelope around a zero-agent tree must report failure")
	}
}

func TestFailureEnvelope(t *testing.T) {
	tree := NewRepo(uuid.New(), uuid.New(), "config-manager")
	tree.Fail("no agents")

	env := NewFailureEnvelope[string]("no agents", tree)
	if env.Success {
		t.Fatal("expected failure envelope")
	}
	if env.Data != nil {
		t.Fatal("failure envelope must carry no data")
	}
	if env.Error != "no agents" {
		t.Fatalf("unexpected error: %q", env.Error)
	}
}

func TestEnvelopeJSONAlwaysCarriesSpanTree(t *testing.T) {
	tree := NewRepo(uuid.New(), uuid.New(), "config-manager")
	tree.Complete()

	raw, err := json.Marshal(NewEnvelope(map[string]any{"valid": true}, tree))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"span_tree"`) {
		t.Fatalf("span_tree missing from envelope JSON: %s", body)
	}
	if !strings.Contains(body, `"success":true`) {
		t.Fatalf("success flag missing from envelope JSON: %s", body)
	}
}
