package instrument

import "context"

// NoopInstrumenter discards all spans. Used when instrumentation is disabled.
type NoopInstrumenter struct{}

func (n *NoopInstrumenter) StartSpan(ctx context.Context, source, component, action string) (context.Context, Span) {
	return ctx, &NoopSpan{}
}

// NoopSpan discards all data.
type NoopSpan struct{}

func (n *NoopSpan) End()                             {}
func (n *NoopSpan) SetStatus(status string)          {}
func (n *NoopSpan) SetMetadata(key string, value any) {}
func (n *NoopSpan) SetForm(formID, fieldID string)   {}
func (n *NoopSpan) TraceID() string                  { return "" }
func (n *NoopSpan) SpanID() string                   { return "" }

// NoopReporter drops diagnostics.
type NoopReporter struct{}

func (NoopReporter) Report(Diagnostic) {}
