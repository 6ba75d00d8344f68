package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agentics-ai/kansa/internal/adapter"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func checkInput(adapters []adapter.Config, opts adapter.CheckOptions) *adapter.CheckInput {
	return &adapter.CheckInput{
		RequestID:   uuid.New(),
		Adapters:    adapters,
		Options:     opts,
		RequestedAt: time.Now().UTC(),
		RequestedBy: "test",
	}
}

func TestCheckNoSpecializedChecker(t *testing.T) {
	e := NewEngine(testLogger(), 0)
	out := e.Check(context.Background(), checkInput(
		[]adapter.Config{{ID: "params", Type: adapter.TypeAWSSSM, Endpoint: "https://ssm.us-east-1.amazonaws.com"}},
		adapter.DefaultCheckOptions(),
	))

	if len(out.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(out.Results))
	}
	res := out.Results[0]
	if res.Status != adapter.StatusDegraded {
		t.Fatalf("unmatched kinds must degrade: %+v", res)
	}
	if !strings.Contains(res.Message, "No specialized checker available") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
}

func TestCheckParallelPreservesRequestOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/slow"):
			time.Sleep(50 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		case strings.HasPrefix(r.URL.Path, "/down"):
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer ts.Close()

	adapters := []adapter.Config{
		{ID: "slow", Type: adapter.TypeHTTP, Endpoint: ts.URL + "/slow"},
		{ID: "down", Type: adapter.TypeHTTP, Endpoint: ts.URL + "/down"},
		{ID: "fast", Type: adapter.TypeHTTP, Endpoint: ts.URL + "/fast"},
	}
	opts := adapter.DefaultCheckOptions()
	opts.TimeoutMS = 2000

	out := NewEngine(testLogger(), 0).Check(context.Background(), checkInput(adapters, opts))

	if len(out.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out.Results))
	}
	for i, want := range []string{"slow", "down", "fast"} {
		if out.Results[i].AdapterID != want {
			t.Fatalf("result %d: expected %q, got %q", i, want, out.Results[i].AdapterID)
		}
	}
	if out.HealthyCount != 2 || out.UnhealthyCount != 1 {
		t.Fatalf("unexpected counts: %+v", out)
	}
}

func TestCheckTimeoutIsolatedPerAdapter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/hang") {
			time.Sleep(300 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	adapters := []adapter.Config{
		{ID: "hang", Type: adapter.TypeHTTP, Endpoint: ts.URL + "/hang"},
		{ID: "fast", Type: adapter.TypeHTTP, Endpoint: ts.URL + "/fast"},
	}
	opts := adapter.DefaultCheckOptions()
	opts.TimeoutMS = 50

	out := NewEngine(testLogger(), 0).Check(context.Background(), checkInput(adapters, opts))

	hang, fast := out.Results[0], out.Results[1]
	if hang.Status != adapter.StatusUnhealthy {
		t.Fatalf("timed-out adapter must be unhealthy: %+v", hang)
	}
	if !strings.Contains(hang.Message, "timed out after 50ms") {
		t.Fatalf("unexpected timeout message: %q", hang.Message)
	}
	if fast.Status != adapter.StatusHealthy {
		t.Fatalf("one slow adapter must not poison the rest: %+v", fast)
	}
}

func TestCheckSequentialBudgetExhaustion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	adapters := []adapter.Config{
		{ID: "a", Type: adapter.TypeHTTP, Endpoint: ts.URL},
		{ID: "b", Type: adapter.TypeHTTP, Endpoint: ts.URL},
	}
	opts := adapter.CheckOptions{TimeoutMS: 500, Parallel: false}

	// A budget smaller than one probe timeout leaves no room to start.
	out := NewEngine(testLogger(), 10*time.Millisecond).Check(context.Background(), checkInput(adapters, opts))
	if len(out.Results) != 0 {
		t.Fatalf("expected no probes within the budget, got %d", len(out.Results))
	}

	out = NewEngine(testLogger(), 0).Check(context.Background(), checkInput(adapters, opts))
	if len(out.Results) != 2 {
		t.Fatalf("expected both probes within the default budget, got %d", len(out.Results))
	}
}

func TestCheckDiagnosticsOptIn(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	adapters := []adapter.Config{{ID: "svc", Type: adapter.TypeHTTP, Endpoint: ts.URL}}
	e := NewEngine(testLogger(), 0)

	out := e.Check(context.Background(), checkInput(adapters, adapter.DefaultCheckOptions()))
	if out.Results[0].Diagnostics != nil {
		t.Fatalf("diagnostics must be opt-in: %+v", out.Results[0].Diagnostics)
	}

	opts := adapter.DefaultCheckOptions()
	opts.IncludeDiagnostics = true
	out = e.Check(context.Background(), checkInput(adapters, opts))
	if out.Results[0].Diagnostics["checker"] != "http" {
		t.Fatalf("expected checker diagnostic: %+v", out.Results[0].Diagnostics)
	}
}

func TestCheckRetryFailedProbesTwice(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	adapters := []adapter.Config{{ID: "flaky", Type: adapter.TypeHTTP, Endpoint: ts.URL}}
	opts := adapter.DefaultCheckOptions()
	opts.RetryFailed = true

	out := NewEngine(testLogger(), 0).Check(context.Background(), checkInput(adapters, opts))

	if got := hits.Load(); got != 2 {
		t.Fatalf("expected one retry, got %d probes", got)
	}
	if out.Results[0].Status != adapter.StatusUnhealthy {
		t.Fatalf("still-failing adapter must stay unhealthy: %+v", out.Results[0])
	}
}
