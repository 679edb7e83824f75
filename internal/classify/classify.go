// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify derives change categories from review version
// histories: how a thread's rating moved between its first and latest
// recorded version, and the most significant such change per submission.
package classify

import (
	"github.com/pdiddy/review-tracker/pkg/types"
)

// Thread classifies one thread from its chronologically ordered version
// history. Threads without a rating in any version (comments) classify
// as no-reviews and are excluded from submission aggregation.
func Thread(t *types.Thread) types.ChangeCategory {
	if !t.HasRating() {
		return types.ChangeNoReviews
	}

	first, firstOK := t.First().Rating()
	last, lastOK := t.Last().Rating()

	switch {
	case firstOK && lastOK && first < last:
		return types.ChangeRatingIncreased
	case firstOK && lastOK && first > last:
		return types.ChangeRatingDecreased
	case len(t.Versions) > 1:
		return types.ChangeRatingUnchanged
	default:
		return types.ChangeNone
	}
}

// Submission aggregates a submission's category across its rating-bearing
// threads, taking the most significant one present. Precedence, most to
// least significant: rating-increased, rating-decreased,
// rating-unchanged-content-changed, no-changes. A submission with no
// rating-bearing threads is no-reviews, even when comment threads exist.
func Submission(sub *types.SubmissionRecord) types.ChangeCategory {
	best := types.ChangeNoReviews
	for _, th := range sub.Threads() {
		if !th.HasRating() {
			continue
		}
		if c := Thread(th); c.MoreSignificant(best) {
			best = c
		}
	}
	return best
}

// RatingDelta returns the first-to-last average rating change across a
// submission's rating-bearing threads. The second return value is false
// when no thread carries a rating.
func RatingDelta(sub *types.SubmissionRecord) (float64, bool) {
	var firstSum, lastSum float64
	var n int
	for _, th := range sub.Threads() {
		first, firstOK := th.First().Rating()
		last, lastOK := th.Last().Rating()
		if !firstOK || !lastOK {
			// A thread that gained or lost its rating mid-history has no
			// well-defined delta; skip it.
			continue
		}
		firstSum += first
		lastSum += last
		n++
	}
	if n == 0 {
		return 0, false
	}
	return (lastSum - firstSum) / float64(n), true
}
