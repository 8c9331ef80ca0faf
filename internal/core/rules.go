package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// Fixed cross-cutting metric names and the namespaces their constant tags
// must come from.
const (
	ErrorsCounter  = "component_errors_total"
	DroppedCounter = "component_discarded_events_total"

	errorStagePrefix = "error_stage::"
	errorTypePrefix  = "error_type::"
)

// classRule describes the obligations attached to one recognised event
// name suffix: the required trace-level log message and the counters that
// must exist, each with its required tag list. byte_size and count are
// required as log parameters but are carried by the event itself, so they
// are not enforced as counter tags.
type classRule struct {
	suffix   string
	message  string
	counters map[string][]string
}

var classRules = []classRule{
	{
		suffix:   "BytesReceived",
		message:  "Bytes received.",
		counters: map[string][]string{"received_bytes": {"byte_size", "protocol"}},
	},
	{
		suffix:  "EventsReceived",
		message: "Events received.",
		counters: map[string][]string{
			"received_events":      {"count"},
			"received_event_bytes": {"byte_size"},
		},
	},
	{
		suffix:  "EventsSent",
		message: "Events sent.",
		counters: map[string][]string{
			"sent_events":      {"count"},
			"sent_event_bytes": {"byte_size"},
		},
	},
	{
		suffix:   "BytesSent",
		message:  "Bytes sent.",
		counters: map[string][]string{"sent_bytes": {"byte_size", "protocol"}},
	},
}

// sizeLikeTags are carried as event members, never as counter tags.
var sizeLikeTags = map[string]bool{"byte_size": true, "count": true}

// ValidateAll resolves each validatable event's handle and recomputes its
// Reports. Pure handles and usage-only records are consulted, not
// validated.
func ValidateAll(set models.EventSet) {
	for _, e := range set {
		if !e.Validatable() {
			e.Reports = nil
			continue
		}
		var handle *models.Event
		if e.ImplementsHandleFor != "" {
			if h, ok := set[e.ImplementsHandleFor]; ok && h.ImplementsHandle {
				handle = h
			}
		}
		e.Reports = ValidateEvent(e, handle)
	}
}

// ValidateEvent runs the full rule set against one event. For
// registration-role events, handle is the paired handle record; a nil
// handle for a non-empty ImplementsHandleFor is itself a violation. All
// rules whose trigger predicates hold are applied; there is no early exit.
func ValidateEvent(e *models.Event, handle *models.Event) []string {
	var reports []string

	// Delegated events log through their handle.
	logs := e.Logs
	if e.ImplementsHandleFor != "" {
		if handle == nil {
			reports = append(reports, fmt.Sprintf("references non-existent handle %q", e.ImplementsHandleFor))
		} else {
			logs = handle.Logs
		}
	}

	if e.UsageCount == 0 {
		reports = append(reports, "defined but never used")
	}

	reports = append(reports, checkClassSuffixes(e, logs)...)

	// The dropped-events predicate is evaluated before the implicit
	// error-event heuristic and wins when both would apply.
	dropped := isDroppedEventsEvent(e)
	if isErrorEvent(e, logs, dropped) {
		reports = append(reports, checkErrorEvent(e, logs)...)
	}
	if dropped && !e.SkipDroppedEventsCheck {
		reports = append(reports, checkDroppedEvents(e, logs)...)
	}

	reports = append(reports, checkConstantTags(e)...)

	return reports
}

// checkClassSuffixes enforces the four recognised name-suffix contracts.
func checkClassSuffixes(e *models.Event, logs []models.LogCall) []string {
	var reports []string
	for _, rule := range classRules {
		if !strings.HasSuffix(e.Name, rule.suffix) {
			continue
		}

		required := requiredTagUnion(rule.counters)

		if len(logs) == 0 {
			reports = append(reports, fmt.Sprintf("must log %q at level %q", rule.message, models.LevelTrace))
		}
		for _, lg := range logs {
			if lg.Level != models.LevelTrace {
				reports = append(reports, fmt.Sprintf("log %q must be at level %q, not %q", lg.Message, models.LevelTrace, lg.Level))
			}
			if lg.Message != rule.message {
				reports = append(reports, fmt.Sprintf("log message must be %q, not %q", rule.message, lg.Message))
			}
			for _, tag := range required {
				if !lg.HasParam(tag) {
					reports = append(reports, fmt.Sprintf("log %q must have parameter %q", lg.Message, tag))
				}
			}
		}

		for counter, tags := range rule.counters {
			counterTags, ok := e.CounterTags(counter)
			if !ok {
				reports = append(reports, fmt.Sprintf("must emit counter %q", counter))
				continue
			}
			for _, tag := range tags {
				if sizeLikeTags[tag] {
					continue
				}
				if _, ok := counterTags[tag]; !ok {
					reports = append(reports, fmt.Sprintf("counter %q must have tag %q", counter, tag))
				}
			}
		}
	}
	return reports
}

// isDroppedEventsEvent reports whether the dropped-events rule set applies.
func isDroppedEventsEvent(e *models.Event) bool {
	return strings.HasSuffix(e.Name, "EventsDropped") || e.HasCounter(DroppedCounter)
}

// isErrorEvent reports whether the error-event rule set applies: either
// the name carries the Error suffix, or the event has exactly one
// error-level log and is not a dropped-events event.
func isErrorEvent(e *models.Event, logs []models.LogCall, dropped bool) bool {
	if strings.HasSuffix(e.Name, "Error") {
		return true
	}
	if dropped {
		return false
	}
	errorLogs := 0
	for _, lg := range logs {
		if lg.Level == models.LevelError {
			errorLogs++
		}
	}
	return errorLogs == 1
}

func checkErrorEvent(e *models.Event, logs []models.LogCall) []string {
	var reports []string

	if !strings.HasSuffix(e.Name, "Error") {
		reports = append(reports, `name of an error event must end in "Error"`)
	}

	hasErrorLog := false
	for _, lg := range logs {
		if lg.Level == models.LevelError {
			hasErrorLog = true
			break
		}
	}
	if !hasErrorLog {
		reports = append(reports, fmt.Sprintf("must have a log at level %q", models.LevelError))
	}

	counterTags, hasCounter := e.CounterTags(ErrorsCounter)
	if !hasCounter {
		reports = append(reports, fmt.Sprintf("must emit counter %q", ErrorsCounter))
	} else {
		for _, tag := range []string{"error_type", "stage"} {
			if _, ok := counterTags[tag]; !ok {
				reports = append(reports, fmt.Sprintf("counter %q must have tag %q", ErrorsCounter, tag))
			}
		}
		for _, tag := range []string{"byte_size", "count"} {
			if _, ok := counterTags[tag]; ok {
				reports = append(reports, fmt.Sprintf("counter %q must not have tag %q", ErrorsCounter, tag))
			}
		}
	}

	for _, lg := range logs {
		if lg.Level != models.LevelError {
			continue
		}
		for _, param := range []string{"error_type", "stage"} {
			if !lg.HasParam(param) {
				reports = append(reports, fmt.Sprintf("error log %q must have parameter %q", lg.Message, param))
			}
		}
		if hasCounter {
			for _, param := range []string{"error_code", "error_type", "stage"} {
				if !lg.HasParam(param) {
					continue
				}
				if _, ok := counterTags[param]; !ok {
					reports = append(reports, fmt.Sprintf("log parameter %q must also be a tag on counter %q", param, ErrorsCounter))
				}
			}
		}
	}

	return reports
}

func checkDroppedEvents(e *models.Event, logs []models.LogCall) []string {
	// An implementation that emits the nested dropped-event has its own
	// counter obligations relaxed; it must only avoid double counting.
	if e.EmitsNestedDroppedEvent {
		if e.HasCounter(DroppedCounter) {
			return []string{fmt.Sprintf("emits the nested dropped-events event but also declares counter %q (double counting)", DroppedCounter)}
		}
		return nil
	}

	var reports []string

	if !strings.HasSuffix(e.Name, "EventsDropped") {
		reports = append(reports, `name of a dropped-events event must end in "EventsDropped"`)
	}

	// Which of the two levels is chosen may depend on a runtime flag, so
	// only presence is checked.
	hasLog := false
	for _, lg := range logs {
		if lg.Level == models.LevelError || lg.Level == models.LevelDebug {
			hasLog = true
			break
		}
	}
	if !hasLog {
		reports = append(reports, fmt.Sprintf("must have a log at level %q or %q", models.LevelError, models.LevelDebug))
	}

	counterTags, hasCounter := e.CounterTags(DroppedCounter)
	if !hasCounter {
		reports = append(reports, fmt.Sprintf("must emit counter %q", DroppedCounter))
	} else {
		if _, ok := counterTags["intentional"]; !ok {
			reports = append(reports, fmt.Sprintf("counter %q must have tag %q", DroppedCounter, "intentional"))
		}
		for _, tag := range []string{"reason", "count"} {
			if _, ok := counterTags[tag]; ok {
				reports = append(reports, fmt.Sprintf("counter %q must not have tag %q", DroppedCounter, tag))
			}
		}
	}

	for _, lg := range logs {
		if lg.Level != models.LevelError {
			continue
		}
		for _, param := range []string{"count", "intentional", "reason"} {
			if !lg.HasParam(param) {
				reports = append(reports, fmt.Sprintf("error log %q must have parameter %q", lg.Message, param))
			}
		}
		if hasCounter && lg.HasParam("intentional") {
			if _, ok := counterTags["intentional"]; !ok {
				reports = append(reports, fmt.Sprintf("log parameter %q must also be a tag on counter %q", "intentional", DroppedCounter))
			}
		}
	}

	return reports
}

// checkConstantTags enforces that stage and error_type tags on the two
// fixed counters are constants from their namespaces rather than free-form
// or computed values.
func checkConstantTags(e *models.Event) []string {
	var reports []string
	for _, counter := range []string{ErrorsCounter, DroppedCounter} {
		tags, ok := e.CounterTags(counter)
		if !ok {
			continue
		}
		if value, ok := tags["stage"]; ok && !strings.HasPrefix(value, errorStagePrefix) {
			reports = append(reports, fmt.Sprintf("tag %q on counter %q must be a constant from %q, got %q", "stage", counter, errorStagePrefix, value))
		}
		if value, ok := tags["error_type"]; ok && !strings.HasPrefix(value, errorTypePrefix) {
			reports = append(reports, fmt.Sprintf("tag %q on counter %q must be a constant from %q, got %q", "error_type", counter, errorTypePrefix, value))
		}
	}
	return reports
}

// requiredTagUnion collects the union of all required tags across a rule's
// counters, sorted for deterministic report ordering.
func requiredTagUnion(counters map[string][]string) []string {
	seen := make(map[string]bool)
	var union []string
	for _, tags := range counters {
		for _, tag := range tags {
			if !seen[tag] {
				seen[tag] = true
				union = append(union, tag)
			}
		}
	}
	sort.Strings(union)
	return union
}
