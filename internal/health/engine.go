// Package health implements the adapter health-check engine: a fixed set of
// protocol checkers fanned out over the requested adapters, bounded per
// adapter and per run.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentics-ai/kansa/internal/adapter"
)

// DefaultLatencyBudget bounds one check run across all adapters.
const DefaultLatencyBudget = 1500 * time.Millisecond

// Checker probes one family of adapter kinds.
type Checker interface {
	// Name identifies the checker in logs and diagnostics.
	Name() string
	// Supports reports whether the checker can probe the adapter kind.
	Supports(t adapter.Type) bool
	// Check probes the adapter. Implementations honor ctx cancellation and
	// never panic; a failed probe is a result, not an error.
	Check(ctx context.Context, cfg adapter.Config) adapter.HealthResult
}

// Engine routes each adapter to the first checker that supports its kind.
// The checker set is fixed at construction; the engine holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	checkers []Checker
	budget   time.Duration
	logger   *slog.Logger
}

// NewEngine creates an engine with the standard checker set (HTTP, TCP,
// Vault). A zero budget selects DefaultLatencyBudget.
func NewEngine(logger *slog.Logger, budget time.Duration) *Engine {
	if budget <= 0 {
		budget = DefaultLatencyBudget
	}
	client := &http.Client{
		// Per-probe deadlines come from the request context.
		Timeout: 0,
	}
	return &Engine{
		checkers: []Checker{
			NewVaultChecker(client),
			NewHTTPChecker(client),
			NewTCPChecker(),
		},
		budget: budget,
		logger: logger,
	}
}

// Check probes every adapter in the request. Parallel runs fan out with one
// goroutine per adapter and keep results in request order. Sequential runs
// stop early once the remaining budget cannot fit another probe; skipped
// adapters are simply absent from the results.
func (e *Engine) Check(ctx context.Context, in *adapter.CheckInput) *adapter.CheckOutput {
	start := time.Now()
	opts := in.Options

	var results []adapter.HealthResult
	if opts.Parallel {
		results = make([]adapter.HealthResult, len(in.Adapters))
		g, gctx := errgroup.WithContext(ctx)
		for i, cfg := range in.Adapters {
			g.Go(func() error {
				results[i] = e.checkOne(gctx, cfg, opts)
				return nil
			})
		}
		g.Wait()
	} else {
		for _, cfg := range in.Adapters {
			if time.Since(start) > e.budget-opts.Timeout() {
				e.logger.Warn("latency budget exhausted, skipping remaining adapters",
					"checked", len(results),
					"requested", len(in.Adapters),
					"budget_ms", e.budget.Milliseconds())
				break
			}
			results = append(results, e.checkOne(ctx, cfg, opts))
		}
	}

	if !opts.IncludeDiagnostics {
		for i := range results {
			results[i].Diagnostics = nil
		}
	}
	return adapter.NewCheckOutput(in.RequestID, results, time.Since(start))
}

func (e *Engine) checkOne(ctx context.Context, cfg adapter.Config, opts adapter.CheckOptions) adapter.HealthResult {
	checker := e.checkerFor(cfg.Type)
	if checker == nil {
		return adapter.Degraded(cfg,
			fmt.Sprintf("No specialized checker available for adapter type %q", cfg.Type), 0)
	}

	res := e.runBounded(ctx, checker, cfg, opts.Timeout())
	if opts.RetryFailed && res.Status == adapter.StatusUnhealthy && ctx.Err() == nil {
		e.logger.Debug("retrying unhealthy adapter", "adapter_id", cfg.ID, "checker", checker.Name())
		res = e.runBounded(ctx, checker, cfg, opts.Timeout())
	}
	return res
}

// runBounded enforces the per-adapter timeout even against a checker that
// ignores its context. The slow probe goroutine is left to finish on its own
// and its result is discarded.
func (e *Engine) runBounded(ctx context.Context, c Checker, cfg adapter.Config, timeout time.Duration) adapter.HealthResult {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan adapter.HealthResult, 1)
	go func() {
		done <- c.Check(cctx, cfg)
	}()

	select {
	case res := <-done:
		if res.Status == adapter.StatusUnhealthy && cctx.Err() == context.DeadlineExceeded {
			// Normalize checker-surfaced deadline errors to one message.
			break
		}
		return res
	case <-cctx.Done():
	}
	return adapter.Unhealthy(cfg,
		fmt.Sprintf("Health check timed out after %dms", timeout.Milliseconds()),
		time.Since(start))
}

// checkerFor returns the first checker supporting the kind; order in the
// checker set is the dispatch priority.
func (e *Engine) checkerFor(t adapter.Type) Checker {
	for _, c := range e.checkers {
		if c.Supports(t) {
			return c
		}
	}
	return nil
}
