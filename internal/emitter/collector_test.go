package emitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/agentics-ai/kansa/internal/signal"
)

func TestCollectorEmit(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody signal.Signal
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	c := NewCollector(ts.URL, "secret")
	sig := signal.Signal{EventID: uuid.New(), AgentID: signal.HealthAgentID}

	if err := c.Emit(context.Background(), sig); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if gotPath != "/api/v1/signals" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody.EventID != sig.EventID {
		t.Fatalf("body event id mismatch: %s != %s", gotBody.EventID, sig.EventID)
	}
}

func TestCollectorEmitBatch(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewCollector(ts.URL, "")
	batch := signal.NewBatch("kansa", []signal.Signal{{EventID: uuid.New()}})

	if err := c.EmitBatch(context.Background(), batch); err != nil {
		t.Fatalf("emit batch: %v", err)
	}
	if gotPath != "/api/v1/signals/batch" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestCollectorNoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer ts.Close()

	if err := NewCollector(ts.URL, "").Emit(context.Background(), signal.Signal{}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestCollectorRejectionIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	if err := NewCollector(ts.URL, "").Emit(context.Background(), signal.Signal{}); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}
