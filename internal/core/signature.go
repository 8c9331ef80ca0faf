package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

// Signature builds the canonical structural string for an event: sorted
// member:type pairs, sorted metricName(sortedTagNames) entries, and sorted
// level:message(sortedParams) log tuples, joined with fixed separators.
// An event with no metrics and no logs has no meaningful signature; ok is
// false and the event is excluded from duplicate detection.
func Signature(e *models.Event) (string, bool) {
	if len(e.Metrics) == 0 && len(e.Logs) == 0 {
		return "", false
	}

	members := make([]string, 0, len(e.Members))
	for name, typeText := range e.Members {
		members = append(members, name+":"+typeText)
	}
	sort.Strings(members)

	metrics := make([]string, 0, len(e.Metrics))
	for key, tags := range e.Metrics {
		names := make([]string, 0, len(tags))
		for tag := range tags {
			names = append(names, tag)
		}
		sort.Strings(names)
		metrics = append(metrics, fmt.Sprintf("%s(%s)", key.Name, strings.Join(names, ",")))
	}
	sort.Strings(metrics)

	logs := make([]string, 0, len(e.Logs))
	for _, lg := range e.Logs {
		params := make([]string, 0, len(lg.Params))
		for param := range lg.Params {
			params = append(params, param)
		}
		sort.Strings(params)
		logs = append(logs, fmt.Sprintf("%s:%s(%s)", lg.Level, lg.Message, strings.Join(params, ",")))
	}
	sort.Strings(logs)

	return strings.Join(members, ";") + "|" +
		strings.Join(metrics, ";") + "|" +
		strings.Join(logs, ";"), true
}

// FindDuplicates groups direct-event and handle records by structural
// signature and returns every group with more than one member, each group
// and the groups themselves sorted by name.
func FindDuplicates(set models.EventSet) [][]string {
	bySignature := make(map[string][]string)
	for name, e := range set {
		if !e.ImplementsDirectEvent && !e.ImplementsHandle {
			continue
		}
		sig, ok := Signature(e)
		if !ok {
			continue
		}
		bySignature[sig] = append(bySignature[sig], name)
	}

	var groups [][]string
	for _, names := range bySignature {
		if len(names) < 2 {
			continue
		}
		sort.Strings(names)
		groups = append(groups, names)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
