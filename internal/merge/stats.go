// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"io"

	"github.com/pdiddy/review-tracker/pkg/types"
)

// Stats summarizes a dataset for operator reporting. UniqueReviews
// counts distinct thread identifiers, not (thread, version) pairs; the
// choice affects only reporting, never the merge itself.
type Stats struct {
	// TotalSubmissions is the number of submission records.
	TotalSubmissions int `yaml:"total_submissions" json:"total_submissions"`

	// SubmissionsWithReviews is the number of submissions with at least
	// one reply entry.
	SubmissionsWithReviews int `yaml:"submissions_with_reviews" json:"submissions_with_reviews"`

	// TotalReviewEntries is the number of (thread, version) pairs across
	// all submissions.
	TotalReviewEntries int `yaml:"total_review_entries" json:"total_review_entries"`

	// UniqueReviews is the number of distinct thread identifiers.
	UniqueReviews int `yaml:"unique_reviews" json:"unique_reviews"`

	// MultiVersionThreads is the number of threads with more than one
	// recorded version.
	MultiVersionThreads int `yaml:"multi_version_threads" json:"multi_version_threads"`
}

// Analyze computes dataset statistics. It derives thread groupings
// fresh, so it reports identically regardless of stored reply order.
func Analyze(ds types.Dataset) Stats {
	var stats Stats
	stats.TotalSubmissions = len(ds)

	seen := make(map[string]struct{})
	for _, sub := range ds {
		if len(sub.Details.DirectReplies) == 0 {
			continue
		}
		stats.SubmissionsWithReviews++
		stats.TotalReviewEntries += len(sub.Details.DirectReplies)

		for _, th := range sub.Threads() {
			seen[th.ID] = struct{}{}
			if len(th.Versions) > 1 {
				stats.MultiVersionThreads++
			}
		}
	}
	stats.UniqueReviews = len(seen)
	return stats
}

// Print writes the statistics block under a title.
func (s Stats) Print(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "  total submissions:        %d\n", s.TotalSubmissions)
	fmt.Fprintf(w, "  submissions with reviews: %d\n", s.SubmissionsWithReviews)
	fmt.Fprintf(w, "  total review entries:     %d\n", s.TotalReviewEntries)
	fmt.Fprintf(w, "  unique reviews:           %d\n", s.UniqueReviews)
	fmt.Fprintf(w, "  multi-version threads:    %d\n", s.MultiVersionThreads)
}

// PrintComparison writes before/after values with deltas for the
// operator report.
func PrintComparison(w io.Writer, before, after Stats) {
	fmt.Fprintf(w, "comparison\n")
	compareLine(w, "total submissions", before.TotalSubmissions, after.TotalSubmissions)
	compareLine(w, "review entries", before.TotalReviewEntries, after.TotalReviewEntries)
	compareLine(w, "unique reviews", before.UniqueReviews, after.UniqueReviews)
	compareLine(w, "multi-version threads", before.MultiVersionThreads, after.MultiVersionThreads)
}

func compareLine(w io.Writer, label string, before, after int) {
	fmt.Fprintf(w, "  %-22s %d -> %d (%+d)\n", label+":", before, after, after-before)
}
