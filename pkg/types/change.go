// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChangeCategory classifies how a review thread's rating and content
// evolved across its recorded versions. The site generator uses the
// submission-level category for homepage filtering.
type ChangeCategory string

const (
	// ChangeRatingIncreased: the latest rating is higher than the first.
	ChangeRatingIncreased ChangeCategory = "rating-increased"

	// ChangeRatingDecreased: the latest rating is lower than the first.
	ChangeRatingDecreased ChangeCategory = "rating-decreased"

	// ChangeRatingUnchanged: more than one version exists but the rating
	// did not move (content or other fields were edited).
	ChangeRatingUnchanged ChangeCategory = "rating-unchanged-content-changed"

	// ChangeNone: a single recorded version, never edited.
	ChangeNone ChangeCategory = "no-changes"

	// ChangeNoReviews: the submission has no rating-bearing threads.
	ChangeNoReviews ChangeCategory = "no-reviews"
)

// significance orders categories from most to least significant for
// submission-level aggregation: a submission showing any rating increase
// outranks one showing only decreases, and so on down to no-reviews.
var significance = map[ChangeCategory]int{
	ChangeRatingIncreased: 4,
	ChangeRatingDecreased: 3,
	ChangeRatingUnchanged: 2,
	ChangeNone:            1,
	ChangeNoReviews:       0,
}

// MoreSignificant reports whether c outranks other in the aggregation
// precedence order.
func (c ChangeCategory) MoreSignificant(other ChangeCategory) bool {
	return significance[c] > significance[other]
}
