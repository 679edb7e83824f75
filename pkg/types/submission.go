// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SubmissionStatus indicates whether a submission is still under review.
type SubmissionStatus string

const (
	StatusActive    SubmissionStatus = "active"
	StatusWithdrawn SubmissionStatus = "withdrawn"
)

// Dataset is the file-level shape shared by raw snapshots and the merged
// dataset: a sequence of submission records. The merged dataset is a valid
// input to future merges.
type Dataset []*SubmissionRecord

// SubmissionRecord is one submission as it appears in a snapshot file.
// ID is the only required field; everything else is platform metadata.
// Unknown top-level JSON fields are preserved verbatim in Extra so that
// load/merge/save never loses data the platform added.
type SubmissionRecord struct {
	ID      string
	Number  int
	CDate   int64
	MDate   int64
	Content map[string]any
	Details Details
	Extra   map[string]json.RawMessage
}

// Details holds the nested reply container of a submission record.
// DirectReplies is a flat list: multiple entries sharing a reply ID are
// distinct observed versions of the same thread.
type Details struct {
	DirectReplies []*ReplyRecord
	Extra         map[string]json.RawMessage
}

// ReplyRecord is one observed state of a review or comment thread.
// ID is the thread identifier issued by the platform and is stable
// across snapshots; MDate distinguishes versions of the same thread.
type ReplyRecord struct {
	ID          string
	ReplyTo     string
	Number      int
	Version     int
	CDate       int64
	MDate       int64
	Invitations []string
	Signatures  []string
	Content     map[string]any
	Extra       map[string]json.RawMessage
}

// VersionKey identifies one version of a thread for deduplication:
// two replies are the same version iff their modification timestamp and
// content are identical.
type VersionKey struct {
	MDate       int64
	ContentHash string
}

// Key computes the deduplication key for this reply. The content hash is
// a SHA-256 over the canonical JSON encoding of the content map (Go
// marshals map keys in sorted order, so the encoding is deterministic).
func (r *ReplyRecord) Key() VersionKey {
	data, err := json.Marshal(r.Content)
	if err != nil {
		// Content came from json.Unmarshal, so this cannot happen; fall
		// back to a key that never collides with a real hash.
		data = []byte(fmt.Sprintf("unmarshalable:%v", err))
	}
	sum := sha256.Sum256(data)
	return VersionKey{MDate: r.MDate, ContentHash: hex.EncodeToString(sum[:])}
}

// contentValue unwraps a platform content field. Values arrive wrapped
// as {"value": ...}; bare values are returned as-is.
func contentValue(content map[string]any, key string) any {
	v, ok := content[key]
	if !ok {
		return nil
	}
	if wrapped, ok := v.(map[string]any); ok {
		if inner, ok := wrapped["value"]; ok {
			return inner
		}
	}
	return v
}

func contentString(content map[string]any, key string) string {
	s, _ := contentValue(content, key).(string)
	return s
}

// Title returns the submission title, or "" if absent.
func (s *SubmissionRecord) Title() string {
	return contentString(s.Content, "title")
}

// Abstract returns the submission abstract, or "" if absent.
func (s *SubmissionRecord) Abstract() string {
	return contentString(s.Content, "abstract")
}

// PrimaryArea returns the submission's primary area, or "" if absent.
func (s *SubmissionRecord) PrimaryArea() string {
	return contentString(s.Content, "primary_area")
}

// Venue returns the venue text the platform uses to track submission
// state (e.g. "ICLR 2026 Conference Withdrawn Submission").
func (s *SubmissionRecord) Venue() string {
	return contentString(s.Content, "venue")
}

// Status derives the submission status from the venue text.
func (s *SubmissionRecord) Status() SubmissionStatus {
	if strings.Contains(strings.ToLower(s.Venue()), "withdrawn") {
		return StatusWithdrawn
	}
	return StatusActive
}

// Keywords returns the submission keywords, or nil if absent.
func (s *SubmissionRecord) Keywords() []string {
	raw, ok := contentValue(s.Content, "keywords").([]any)
	if !ok {
		return nil
	}
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		if kw, ok := k.(string); ok {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// Rating returns the numeric rating of this reply version. Ratings
// arrive either as numbers or as strings with a leading integer
// ("6: marginally above the acceptance threshold"). The second return
// value is false for replies without a rating (comments).
func (r *ReplyRecord) Rating() (float64, bool) {
	switch v := contentValue(r.Content, "rating").(type) {
	case float64:
		return v, true
	case string:
		head := v
		if i := strings.IndexAny(v, ":. "); i > 0 {
			head = v[:i]
		}
		if n, err := strconv.Atoi(strings.TrimSpace(head)); err == nil {
			return float64(n), true
		}
	}
	return 0, false
}

// IsOfficialReview reports whether this reply was posted under an
// official review invitation rather than as a comment.
func (r *ReplyRecord) IsOfficialReview() bool {
	for _, inv := range r.Invitations {
		if strings.Contains(inv, "Official_Review") {
			return true
		}
	}
	return false
}

// Thread is the derived per-review view of a submission's flat reply
// list: all observed versions of one thread, sorted by modification
// timestamp with input order as the tie-break.
type Thread struct {
	ID       string
	Versions []*ReplyRecord
}

// HasRating reports whether any version of the thread carries a rating.
func (t *Thread) HasRating() bool {
	for _, v := range t.Versions {
		if _, ok := v.Rating(); ok {
			return true
		}
	}
	return false
}

// First returns the chronologically earliest version.
func (t *Thread) First() *ReplyRecord { return t.Versions[0] }

// Last returns the chronologically latest version.
func (t *Thread) Last() *ReplyRecord { return t.Versions[len(t.Versions)-1] }

// Threads groups the submission's replies by thread ID. Thread order
// follows first sighting in the reply list; versions within a thread are
// sorted by mdate, ties broken by position in the reply list so the
// result is deterministic for a given stored order.
func (s *SubmissionRecord) Threads() []*Thread {
	var order []string
	byID := make(map[string]*Thread)
	for _, r := range s.Details.DirectReplies {
		if r.ID == "" {
			continue
		}
		t, ok := byID[r.ID]
		if !ok {
			t = &Thread{ID: r.ID}
			byID[r.ID] = t
			order = append(order, r.ID)
		}
		t.Versions = append(t.Versions, r)
	}

	threads := make([]*Thread, 0, len(order))
	for _, id := range order {
		t := byID[id]
		sort.SliceStable(t.Versions, func(i, j int) bool {
			return t.Versions[i].MDate < t.Versions[j].MDate
		})
		threads = append(threads, t)
	}
	return threads
}
