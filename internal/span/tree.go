package span

// TreeBuilder assembles the repo + agent span hierarchy for one request.
//
// The repo span is created on construction, so every request has a trace
// from its first instruction. Agent spans are started against the repo span
// and must be explicitly registered after the agent unit finishes; a unit
// that never returns produces no span, and its absence alone fails the tree.
type TreeBuilder struct {
	repo   *ExecutionSpan
	agents []*ExecutionSpan
}

// NewTree creates a builder with a running repo-level span.
func NewTree(ctx ExecutionContext, repoName string) *TreeBuilder {
	return &TreeBuilder{
		repo: NewRepo(ctx.ExecutionID, ctx.ParentSpanID, repoName),
	}
}

// StartAgentSpan creates a running agent-level span parented to the repo
// span. The span is not registered until AddCompletedAgentSpan is called.
func (b *TreeBuilder) StartAgentSpan(agentName string) *ExecutionSpan {
	return NewAgent(b.repo.ExecutionID, b.repo.SpanID, agentName)
}

// AddCompletedAgentSpan registers a finished (completed or failed) agent span.
func (b *TreeBuilder) AddCompletedAgentSpan(s *ExecutionSpan) {
	b.agents = append(b.agents, s)
}

// Finalize closes the repo span, enforcing the tree invariants:
//
//   - zero agent spans: the repo span is Failed, since an execution that
//     emitted no agent spans is invalid;
//   - any failed agent span: the repo span is Failed;
//   - otherwise: Completed.
//
// Agent spans are attached as children in registration order. The builder
// must not be reused after Finalize.
func (b *TreeBuilder) Finalize() *ExecutionSpan {
	switch {
	case len(b.agents) == 0:
		b.repo.Fail("no agent spans emitted; execution is invalid")
	case anyFailed(b.agents):
		b.repo.Fail("one or more agent spans failed")
	default:
		b.repo.Complete()
	}
	b.repo.Children = b.agents
	return b.repo
}

// FinalizeFailed forces the repo span to Failed with an explicit error while
// still preserving all agent spans collected so far. Used by early-abort
// paths.
func (b *TreeBuilder) FinalizeFailed(errMsg string) *ExecutionSpan {
	b.repo.Fail(errMsg)
	b.repo.Children = b.agents
	return b.repo
}

func anyFailed(spans []*ExecutionSpan) bool {
	for _, s := range spans {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}
