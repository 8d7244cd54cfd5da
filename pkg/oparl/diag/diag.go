package diag

import (
	"log/slog"
	"sync"
)

type Kind int

const (
	//SpecificationViolation reports server data that deviates from the OParl
	//specification but is still usable
	SpecificationViolation Kind = iota
	//ContentConversionFailure reports a value that could not be converted to
	//its declared native type
	ContentConversionFailure
)

func (k Kind) String() string {
	switch k {
	case SpecificationViolation:
		return "specification-violation"
	case ContentConversionFailure:
		return "content-conversion-failure"
	default:
		return "unknown"
	}
}

//Diagnostic describes a single tolerated anomaly encountered while
//navigating the object graph
type Diagnostic struct {
	Kind     Kind
	ObjectID string
	Field    string
	Message  string
}

//Sink receives diagnostics. Implementations must never block or fail.
type Sink interface {
	Report(d Diagnostic)
}

type SinkFunc func(Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

type nopSink struct{}

func (nopSink) Report(Diagnostic) {}

//NewNopSink returns a sink that discards all diagnostics. This is the
//default: a caller that never attaches a handler gets silent fallbacks.
func NewNopSink() Sink {
	return nopSink{}
}

//NewLogSink returns a sink that logs each diagnostic at warn level
func NewLogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(d Diagnostic) {
		logger.Warn(d.Message,
			slog.String("kind", d.Kind.String()),
			slog.String("object_id", d.ObjectID),
			slog.String("field", d.Field),
		)
	})
}

//Collector is a sink that records everything it receives
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

func (c *Collector) Collected() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

//OfKind returns the recorded diagnostics of a single kind
func (c *Collector) OfKind(kind Kind) []Diagnostic {
	out := []Diagnostic{}
	for _, d := range c.Collected() {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
