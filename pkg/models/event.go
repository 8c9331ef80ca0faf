package models

// MetricKind identifies the kind of metric an event emits.
type MetricKind string

const (
	KindCounter   MetricKind = "counter"
	KindGauge     MetricKind = "gauge"
	KindHistogram MetricKind = "histogram"
)

// LogLevel represents the severity of a log call.
type LogLevel string

const (
	LevelTrace LogLevel = "trace"
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// MetricKey uniquely identifies a metric within an event by kind and name.
type MetricKey struct {
	Kind MetricKind
	Name string
}

// LogCall records a single log emission found in an event implementation:
// its level, message text, and the set of parameter names it references.
type LogCall struct {
	Level   LogLevel
	Message string
	Params  map[string]bool
}

// HasParam reports whether the log call references the given parameter name.
func (l LogCall) HasParam(name string) bool {
	return l.Params[name]
}

// Event is the reconstructed model of one named event type, accumulated
// across the whole source tree during a single scan pass.
type Event struct {
	Name       string
	SourcePath string

	// Members maps declared member names to their raw type text.
	Members map[string]string

	// Metrics maps (kind, metric name) to a tag map; tag values are the
	// raw right-hand-side expression text, never evaluated.
	Metrics map[MetricKey]map[string]string

	// Logs is the ordered sequence of log calls found in the
	// implementation blocks for this event.
	Logs []LogCall

	// UsageCount tallies emit/register call sites referencing this name
	// anywhere in the tree.
	UsageCount int

	ImplementsDirectEvent bool
	ImplementsHandleFor   string
	ImplementsHandle      bool

	SkipDroppedEventsCheck  bool
	EmitsNestedDroppedEvent bool

	// Reports holds the violations from the last validation run. It is
	// transient: recomputed every run, never persisted.
	Reports []string
}

// NewEvent creates an empty event record for the given name.
func NewEvent(name string) *Event {
	return &Event{
		Name:    name,
		Members: make(map[string]string),
		Metrics: make(map[MetricKey]map[string]string),
	}
}

// AddMetric merges a metric's tags into the event, creating the metric
// entry on first sight. Tags seen later overwrite earlier values.
func (e *Event) AddMetric(kind MetricKind, name string, tags map[string]string) {
	key := MetricKey{Kind: kind, Name: name}
	existing, ok := e.Metrics[key]
	if !ok {
		existing = make(map[string]string)
		e.Metrics[key] = existing
	}
	for k, v := range tags {
		existing[k] = v
	}
}

// Counters returns the counter subset of Metrics keyed by metric name only.
func (e *Event) Counters() map[string]map[string]string {
	counters := make(map[string]map[string]string)
	for key, tags := range e.Metrics {
		if key.Kind == KindCounter {
			counters[key.Name] = tags
		}
	}
	return counters
}

// CounterTags returns the tag map for the named counter, if declared.
func (e *Event) CounterTags(name string) (map[string]string, bool) {
	tags, ok := e.Metrics[MetricKey{Kind: KindCounter, Name: name}]
	return tags, ok
}

// HasCounter reports whether the event declares a counter with the given name.
func (e *Event) HasCounter(name string) bool {
	_, ok := e.Metrics[MetricKey{Kind: KindCounter, Name: name}]
	return ok
}

// Validatable reports whether the event is independently validated. Pure
// handles and usage-only records are only consulted, never validated.
func (e *Event) Validatable() bool {
	return e.ImplementsDirectEvent || e.ImplementsHandleFor != ""
}

// EventSet is the registry of all event records discovered during a scan,
// keyed by event name. Records are created lazily on first reference.
type EventSet map[string]*Event

// Get returns the record for name, creating an empty one on first reference.
func (s EventSet) Get(name string) *Event {
	e, ok := s[name]
	if !ok {
		e = NewEvent(name)
		s[name] = e
	}
	return e
}

// Names returns all event names in the set, unsorted.
func (s EventSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}
