// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge folds any number of snapshot datasets into a single
// deduplicated, history-preserving dataset. Merging is a union: every
// (thread, version) pair present in any input is present in the output,
// and re-merging the output with any subset of its inputs reproduces it
// unchanged.
package merge

import (
	"fmt"
	"io"
	"reflect"
	"sort"

	"github.com/pdiddy/review-tracker/internal/snapshot"
	"github.com/pdiddy/review-tracker/pkg/types"
)

// SourceStats summarizes one input's contribution to a merge run.
type SourceStats struct {
	// Name is the source label (snapshot timestamp or "merged").
	Name string `yaml:"name" json:"name"`

	// Submissions is the number of submission records in the source.
	Submissions int `yaml:"submissions" json:"submissions"`

	// VersionsAdded is the number of reply versions this source
	// contributed that no earlier source had recorded.
	VersionsAdded int `yaml:"versions_added" json:"versions_added"`
}

// subAccumulator collects one submission's state across sources: the
// metadata carrier from the most recently processed sighting plus the
// union of all observed reply versions, grouped by thread.
type subAccumulator struct {
	meta        *types.SubmissionRecord
	threadOrder []string
	threads     map[string]*threadAccumulator
}

// threadAccumulator holds one thread's deduplicated versions in
// insertion order, with the version keys seen so far.
type threadAccumulator struct {
	versions []*types.ReplyRecord
	byKey    map[types.VersionKey]*types.ReplyRecord
}

// Merge folds the ordered source list into a merged dataset. Inputs are
// never mutated; the result is built fresh on every call, so merging is
// idempotent and insensitive to how versions were stored in the inputs.
// Warnings (version-key collisions with differing content) go to w.
func Merge(sources []snapshot.Source, w io.Writer) (types.Dataset, []SourceStats) {
	var order []string
	subs := make(map[string]*subAccumulator)
	stats := make([]SourceStats, 0, len(sources))

	for _, src := range sources {
		st := SourceStats{Name: src.Name, Submissions: len(src.Data)}

		for _, rec := range src.Data {
			acc, ok := subs[rec.ID]
			if !ok {
				acc = &subAccumulator{threads: make(map[string]*threadAccumulator)}
				subs[rec.ID] = acc
				order = append(order, rec.ID)
			}
			acc.meta = resolveMetadata(acc.meta, rec)

			for _, reply := range rec.Details.DirectReplies {
				if acc.addVersion(reply, w) {
					st.VersionsAdded++
				}
			}
		}

		stats = append(stats, st)
	}

	ds := make(types.Dataset, 0, len(order))
	for _, id := range order {
		ds = append(ds, subs[id].flatten())
	}
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Number != ds[j].Number {
			return ds[i].Number < ds[j].Number
		}
		return ds[i].ID < ds[j].ID
	})
	return ds, stats
}

// resolveMetadata is the submission metadata policy: the most recently
// processed sighting wins wholesale. Identity never changes, and the
// reply history is accumulated separately, so only the metadata carrier
// is replaced. The incoming record is copied with its replies stripped
// so the accumulator never aliases input reply slices.
func resolveMetadata(existing, incoming *types.SubmissionRecord) *types.SubmissionRecord {
	meta := *incoming
	meta.Details = types.Details{Extra: incoming.Details.Extra}
	return &meta
}

// addVersion inserts a reply version unless a version with the same
// (mdate, content) key is already recorded. It reports whether the
// version was added. A key collision with differing content is a
// platform anomaly: both versions are kept, with a warning, because
// dropping either would lose history.
func (a *subAccumulator) addVersion(reply *types.ReplyRecord, w io.Writer) bool {
	th, ok := a.threads[reply.ID]
	if !ok {
		th = &threadAccumulator{byKey: make(map[types.VersionKey]*types.ReplyRecord)}
		a.threads[reply.ID] = th
		a.threadOrder = append(a.threadOrder, reply.ID)
	}

	key := reply.Key()
	if existing, ok := th.byKey[key]; ok {
		if reflect.DeepEqual(existing.Content, reply.Content) {
			return false
		}
		fmt.Fprintf(w, "warning: thread %s: colliding version key at mdate %d with differing content; keeping both\n",
			reply.ID, reply.MDate)
		// Fall through and record the anomalous version too.
	} else {
		th.byKey[key] = reply
	}

	th.versions = append(th.versions, reply)
	return true
}

// flatten produces the output submission record: the winning metadata
// with its directReplies set to the deduplicated union, sorted by
// (reply number, mdate) with accumulator insertion order as the final
// tie-break. The sort is applied fresh here, so stored order in any
// input never affects the result.
func (a *subAccumulator) flatten() *types.SubmissionRecord {
	var replies []*types.ReplyRecord
	for _, id := range a.threadOrder {
		replies = append(replies, a.threads[id].versions...)
	}
	sort.SliceStable(replies, func(i, j int) bool {
		if replies[i].Number != replies[j].Number {
			return replies[i].Number < replies[j].Number
		}
		if replies[i].ID != replies[j].ID {
			return replies[i].ID < replies[j].ID
		}
		return replies[i].MDate < replies[j].MDate
	})

	out := *a.meta
	out.Details.DirectReplies = replies
	return &out
}
