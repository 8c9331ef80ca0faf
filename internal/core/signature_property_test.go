package core

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

var (
	identGen = rapid.StringMatching(`[a-z][a-z0-9_]{0,11}`)
	eventGen = rapid.Custom(drawEvent)
	levelGen = rapid.SampledFrom([]models.LogLevel{
		models.LevelTrace, models.LevelDebug, models.LevelInfo,
		models.LevelWarn, models.LevelError,
	})
)

func drawEvent(t *rapid.T) *models.Event {
	e := models.NewEvent(rapid.StringMatching(`[A-Z][A-Za-z0-9]{0,15}`).Draw(t, "name"))
	e.ImplementsDirectEvent = true

	for _, member := range rapid.SliceOfNDistinct(identGen, 0, 4, rapid.ID[string]).Draw(t, "members") {
		e.Members[member] = rapid.SampledFrom([]string{"usize", "u64", "String", "bool"}).Draw(t, "type")
	}

	for _, metric := range rapid.SliceOfNDistinct(identGen, 0, 3, rapid.ID[string]).Draw(t, "metrics") {
		tags := make(map[string]string)
		for _, tag := range rapid.SliceOfNDistinct(identGen, 0, 3, rapid.ID[string]).Draw(t, "tags") {
			tags[tag] = rapid.StringMatching(`[a-z_.:]{1,16}`).Draw(t, "value")
		}
		e.AddMetric(models.KindCounter, metric, tags)
	}

	logCount := rapid.IntRange(0, 3).Draw(t, "logCount")
	for i := 0; i < logCount; i++ {
		params := make(map[string]bool)
		for _, p := range rapid.SliceOfNDistinct(identGen, 0, 3, rapid.ID[string]).Draw(t, "params") {
			params[p] = true
		}
		e.Logs = append(e.Logs, models.LogCall{
			Level:   levelGen.Draw(t, "level"),
			Message: rapid.StringMatching(`[A-Z][a-z ]{0,20}\.`).Draw(t, "message"),
			Params:  params,
		})
	}
	return e
}

// cloneShuffled rebuilds the event with its logs in a drawn permutation.
// Maps re-shuffle themselves; log order is the only ordered field.
func cloneShuffled(t *rapid.T, e *models.Event) *models.Event {
	c := models.NewEvent(e.Name)
	c.ImplementsDirectEvent = e.ImplementsDirectEvent
	for k, v := range e.Members {
		c.Members[k] = v
	}
	for key, tags := range e.Metrics {
		copied := make(map[string]string, len(tags))
		for k, v := range tags {
			copied[k] = v
		}
		c.Metrics[key] = copied
	}
	c.Logs = append(c.Logs, e.Logs...)
	perm := rapid.Permutation(c.Logs).Draw(t, "perm")
	c.Logs = perm
	return c
}

func TestSignatureDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := eventGen.Draw(t, "event")
		first, okFirst := Signature(e)
		second, okSecond := Signature(e)
		if okFirst != okSecond || first != second {
			t.Fatalf("signature not deterministic: %q vs %q", first, second)
		}
	})
}

func TestSignatureOrderInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := eventGen.Draw(t, "event")
		shuffled := cloneShuffled(t, e)

		sig, ok := Signature(e)
		shuffledSig, shuffledOK := Signature(shuffled)
		if ok != shuffledOK {
			t.Fatalf("signature presence changed under reordering")
		}
		if sig != shuffledSig {
			t.Fatalf("signature changed under reordering:\n%q\n%q", sig, shuffledSig)
		}
	})
}

func TestSignatureDefinedIffObservable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := eventGen.Draw(t, "event")
		_, ok := Signature(e)
		want := len(e.Metrics) > 0 || len(e.Logs) > 0
		if ok != want {
			t.Fatalf("signature defined = %v, want %v (metrics=%d logs=%d)",
				ok, want, len(e.Metrics), len(e.Logs))
		}
	})
}

func TestFindDuplicatesGroupsAreEquivalenceClasses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := eventGen.Draw(t, "event")
		if _, ok := Signature(base); !ok {
			t.Skip("no observable behavior")
		}

		n := rapid.IntRange(2, 5).Draw(t, "copies")
		set := make(models.EventSet)
		names := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			clone := cloneShuffled(t, base)
			clone.Name = rapid.StringMatching(`[A-Z][A-Za-z0-9]{4,12}`).
				Filter(func(s string) bool { return !names[s] }).Draw(t, "cloneName")
			names[clone.Name] = true
			set[clone.Name] = clone
		}

		groups := FindDuplicates(set)
		if len(groups) != 1 {
			t.Fatalf("expected one duplicate group, got %v", groups)
		}
		if len(groups[0]) != n {
			t.Fatalf("expected all %d clones in one group, got %v", n, groups[0])
		}
	})
}
