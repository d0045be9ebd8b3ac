package ports

// ContextMetrics receives counters from context assembly
type ContextMetrics interface {
	ObserveChainLength(length int)
	RecordExclusion(reason string)
	RecordAssembled(duplicateSuppressed bool)
}

// NoopContextMetrics discards everything
type NoopContextMetrics struct{}

func (NoopContextMetrics) ObserveChainLength(int) {}
func (NoopContextMetrics) RecordExclusion(string)  {}
func (NoopContextMetrics) RecordAssembled(bool)    {}
