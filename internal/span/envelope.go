package span

// Envelope wraps agent output with the execution span tree. The span tree is
// always present, on success and on failure.
type Envelope[T any] struct {
	Success  bool           `json:"success"`
	Data     *T             `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	SpanTree *ExecutionSpan `json:"span_tree"`
}

// NewEnvelope builds a response around a finalized tree. Success is derived
// from the repo span status, never set independently: a payload wrapped
// around a failed tree (e.g. zero agent spans) still reports failure.
func NewEnvelope[T any](data T, tree *ExecutionSpan) Envelope[T] {
	return Envelope[T]{
		Success:  tree.Status == StatusCompleted,
		Data:     &data,
		SpanTree: tree,
	}
}

// NewFailureEnvelope builds an error response carrying the finalized tree.
func NewFailureEnvelope[T any](errMsg string, tree *ExecutionSpan) Envelope[T] {
	return Envelope[T]{
		Success:  false,
		Error:    errMsg,
		SpanTree: tree,
	}
}
