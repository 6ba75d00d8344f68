package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentics-ai/kansa/internal/adapter"
	"github.com/agentics-ai/kansa/internal/emitter"
	"github.com/agentics-ai/kansa/internal/health"
	"github.com/agentics-ai/kansa/internal/schema"
	"github.com/agentics-ai/kansa/internal/scoring"
	"github.com/agentics-ai/kansa/internal/signal"
	"github.com/agentics-ai/kansa/internal/span"
)

// repoSpanName is the root span every instrumented execution hangs from.
const repoSpanName = "config-manager"

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	schemaEngine *schema.Engine
	healthEngine *health.Engine
	emitter      *emitter.Emitter
	logger       *slog.Logger
	version      string
	maxBodyBytes int64
	checkTimeout time.Duration
}

// HandlersDeps wires the handlers.
type HandlersDeps struct {
	SchemaEngine *schema.Engine
	HealthEngine *health.Engine
	Emitter      *emitter.Emitter
	Logger       *slog.Logger
	Version      string
	MaxBodyBytes int64
	CheckTimeout time.Duration
}

// NewHandlers creates the handler set.
func NewHandlers(deps HandlersDeps) *Handlers {
	return &Handlers{
		schemaEngine: deps.SchemaEngine,
		healthEngine: deps.HealthEngine,
		emitter:      deps.Emitter,
		logger:       deps.Logger,
		version:      deps.Version,
		maxBodyBytes: deps.MaxBodyBytes,
		checkTimeout: deps.CheckTimeout,
	}
}

// validateSchemaRequest is the body for schema validation endpoints.
type validateSchemaRequest struct {
	Schema       schema.SchemaDefinition  `json:"schema"`
	ParentSchema *schema.SchemaDefinition `json:"parent_schema,omitempty"`
	Context      map[string]string        `json:"context,omitempty"`
}

// validateSchemaResponse wraps the engine output with its trust score.
type validateSchemaResponse struct {
	Result     *schema.ValidationOutput `json:"result"`
	Confidence float64                  `json:"confidence"`
	InputsHash string                   `json:"inputs_hash"`
}

// schemaCheckResponse is the lightweight yes/no shape.
type schemaCheckResponse struct {
	IsValid        bool    `json:"is_valid"`
	ViolationCount int     `json:"violation_count"`
	WarningCount   int     `json:"warning_count"`
	Confidence     float64 `json:"confidence"`
}

// checkAdaptersRequest is the body for adapter health endpoints.
type checkAdaptersRequest struct {
	Adapters []adapter.Config      `json:"adapters"`
	Options  *adapter.CheckOptions `json:"options,omitempty"`
	Context  map[string]string     `json:"context,omitempty"`
}

// checkAdaptersResponse wraps the engine output with its trust score.
type checkAdaptersResponse struct {
	Result     *adapter.CheckOutput `json:"result"`
	Confidence float64              `json:"confidence"`
	InputsHash string               `json:"inputs_hash"`
}

// HandleHealth reports service liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     h.version,
		"queue_depth": h.emitter.Len(),
		"dropped":     h.emitter.Dropped(),
	})
}

// runValidation executes one schema validation and emits its signal.
func (h *Handlers) runValidation(r *http.Request, req *validateSchemaRequest, executionRef string) (*schema.ValidationOutput, float64, string) {
	in := &schema.ValidationInput{
		RequestID:    uuid.New(),
		Schema:       req.Schema,
		ParentSchema: req.ParentSchema,
		Context:      req.Context,
		RequestedAt:  time.Now().UTC(),
		RequestedBy:  r.Header.Get("X-Requested-By"),
	}
	out := h.schemaEngine.Validate(in)
	conf := h.schemaEngine.Confidence(out)
	hash := schema.InputsHash(in)

	if !h.emitter.Enqueue(signal.FromValidation(in, out, conf, executionRef)) {
		h.logger.Warn("validation signal dropped", "schema_id", in.Schema.ID)
	}
	return out, conf, hash
}

// runHealthCheck executes one adapter check run and emits its signal.
func (h *Handlers) runHealthCheck(r *http.Request, req *checkAdaptersRequest, executionRef string) (*adapter.CheckOutput, float64, string) {
	// The configured probe timeout applies whenever the request doesn't set
	// its own.
	opts := adapter.DefaultCheckOptions()
	if h.checkTimeout > 0 {
		opts.TimeoutMS = h.checkTimeout.Milliseconds()
	}
	if req.Options != nil {
		opts = *req.Options
		if opts.TimeoutMS <= 0 && h.checkTimeout > 0 {
			opts.TimeoutMS = h.checkTimeout.Milliseconds()
		}
	}
	in := &adapter.CheckInput{
		RequestID:   uuid.New(),
		Adapters:    req.Adapters,
		Options:     opts,
		Context:     req.Context,
		RequestedAt: time.Now().UTC(),
		RequestedBy: r.Header.Get("X-Requested-By"),
	}
	out := h.healthEngine.Check(r.Context(), in)
	conf := out.Confidence(scoring.DefaultPolicy())
	hash := adapter.InputsHash(in)

	if !h.emitter.Enqueue(signal.FromHealthCheck(in, out, conf, executionRef)) {
		h.logger.Warn("health signal dropped", "adapters", len(in.Adapters))
	}
	return out, conf, hash
}

// HandleValidateSchema validates a schema without execution instrumentation.
func (h *Handlers) HandleValidateSchema(w http.ResponseWriter, r *http.Request) {
	var req validateSchemaRequest
	if err := decodeJSON(r, h.maxBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	out, conf, hash := h.runValidation(r, &req, "")
	writeJSON(w, r, http.StatusOK, validateSchemaResponse{
		Result:     out,
		Confidence: conf,
		InputsHash: hash,
	})
}

// HandleSchemaCheck answers the lightweight is-it-valid question.
func (h *Handlers) HandleSchemaCheck(w http.ResponseWriter, r *http.Request) {
	var req validateSchemaRequest
	if err := decodeJSON(r, h.maxBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	out, conf, _ := h.runValidation(r, &req, "")
	writeJSON(w, r, http.StatusOK, schemaCheckResponse{
		IsValid:        out.IsValid,
		ViolationCount: len(out.Violations),
		WarningCount:   len(out.Warnings),
		Confidence:     conf,
	})
}

// HandleCheckAdapters runs adapter health checks without execution
// instrumentation.
func (h *Handlers) HandleCheckAdapters(w http.ResponseWriter, r *http.Request) {
	var req checkAdaptersRequest
	if err := decodeJSON(r, h.maxBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	out, conf, hash := h.runHealthCheck(r, &req, "")
	writeJSON(w, r, http.StatusOK, checkAdaptersResponse{
		Result:     out,
		Confidence: conf,
		InputsHash: hash,
	})
}

// HandleExecutionValidateSchema validates a schema inside an execution span
// tree. The caller must supply a parent span id; the response envelope
// always carries the tree, and its success flag is derived from the tree's
// final status.
func (h *Handlers) HandleExecutionValidateSchema(w http.ResponseWriter, r *http.Request) {
	execCtx, err := span.ContextFromHeaders(r.Header)
	if err != nil {
		writeSpanContextError(w, r, err)
		return
	}
	tree := span.NewTree(execCtx, repoSpanName)

	var req validateSchemaRequest
	if err := decodeJSON(r, h.maxBodyBytes, &req); err != nil {
		env := span.NewFailureEnvelope[validateSchemaResponse](
			fmt.Sprintf("invalid request body: %v", err),
			tree.FinalizeFailed("request body rejected before any agent ran"))
		writeJSON(w, r, http.StatusBadRequest, env)
		return
	}

	agent := tree.StartAgentSpan(signal.SchemaAgentID)
	out, conf, hash := h.runValidation(r, &req, execCtx.ExecutionID.String())
	agent.Attributes["schema_id"] = req.Schema.ID
	agent.Attributes["is_valid"] = out.IsValid
	agent.AttachArtifact(schemaCheckResponse{
		IsValid:        out.IsValid,
		ViolationCount: len(out.Violations),
		WarningCount:   len(out.Warnings),
		Confidence:     conf,
	})
	// The agent decided; an invalid schema is still a completed decision.
	agent.Complete()
	tree.AddCompletedAgentSpan(agent)

	payload := validateSchemaResponse{Result: out, Confidence: conf, InputsHash: hash}
	writeJSON(w, r, http.StatusOK, span.NewEnvelope(payload, tree.Finalize()))
}

// HandleExecutionCheckAdapters runs adapter health checks inside an
// execution span tree.
func (h *Handlers) HandleExecutionCheckAdapters(w http.ResponseWriter, r *http.Request) {
	execCtx, err := span.ContextFromHeaders(r.Header)
	if err != nil {
		writeSpanContextError(w, r, err)
		return
	}
	tree := span.NewTree(execCtx, repoSpanName)

	var req checkAdaptersRequest
	if err := decodeJSON(r, h.maxBodyBytes, &req); err != nil {
		env := span.NewFailureEnvelope[checkAdaptersResponse](
			fmt.Sprintf("invalid request body: %v", err),
			tree.FinalizeFailed("request body rejected before any agent ran"))
		writeJSON(w, r, http.StatusBadRequest, env)
		return
	}

	agent := tree.StartAgentSpan(signal.HealthAgentID)
	out, conf, hash := h.runHealthCheck(r, &req, execCtx.ExecutionID.String())
	agent.Attributes["adapters"] = len(req.Adapters)
	agent.Attributes["health_score"] = out.HealthScore
	agent.AttachArtifact(out.Results)
	if out.IsHealthy {
		agent.Complete()
	} else {
		agent.Fail(fmt.Sprintf("%d of %d adapters unhealthy", out.UnhealthyCount, len(out.Results)))
	}
	tree.AddCompletedAgentSpan(agent)

	payload := checkAdaptersResponse{Result: out, Confidence: conf, InputsHash: hash}
	writeJSON(w, r, http.StatusOK, span.NewEnvelope(payload, tree.Finalize()))
}

// writeSpanContextError maps span context errors onto the flat error shape;
// without a parent span id there is no tree to report.
func writeSpanContextError(w http.ResponseWriter, r *http.Request, err error) {
	if cerr, ok := err.(*span.ContextError); ok {
		writeError(w, r, http.StatusBadRequest, cerr.Code, cerr.Message)
		return
	}
	writeError(w, r, http.StatusBadRequest, "INVALID_EXECUTION_CONTEXT", err.Error())
}
