package observability

import (
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// allowedPrefixes are the attribute key prefixes exported on spans.
var allowedPrefixes = []string{
	"outlier.",
	"detector.",
	"stream.",
	"report.",
	"error",
}

// blockedKeys never leave the process even when a prefix allows them.
// Raw samples are unbounded in size and may be sensitive.
var blockedKeys = map[attribute.Key]bool{
	"stream.samples": true,
	"stream.path":    true,
}

// attributeFilter hands the delegate a view of each ended span that only
// carries allow-listed attributes. Every other SpanProcessor method goes
// straight to the delegate.
type attributeFilter struct {
	sdktrace.SpanProcessor

	logger *slog.Logger
}

// NewAttributeFilter wraps delegate so spans lose attributes outside the
// allow-list. When logger is non-nil each dropped key is logged as a warning.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{SpanProcessor: delegate, logger: logger}
}

// OnEnd implements [sdktrace.SpanProcessor].
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.SpanProcessor.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

func (f *attributeFilter) allows(key attribute.Key) bool {
	ok := !blockedKeys[key] && slices.ContainsFunc(allowedPrefixes, func(prefix string) bool {
		return strings.HasPrefix(string(key), prefix)
	})

	if !ok && f.logger != nil {
		f.logger.Warn("attribute blocked by filter", "key", string(key))
	}

	return ok
}

type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

// Attributes returns only the allowed attributes.
func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return slices.DeleteFunc(slices.Clone(s.ReadOnlySpan.Attributes()), func(kv attribute.KeyValue) bool {
		return !s.filter.allows(kv.Key)
	})
}
