// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"
)

func TestSubmissionRecordRoundTripPreservesUnknownFields(t *testing.T) {
	doc := `{
		"id": "abc123",
		"number": 42,
		"cdate": 1700000000000,
		"mdate": 1700000100000,
		"forum": "abc123",
		"signatures": ["ICLR.cc/2026/Conference"],
		"content": {"title": {"value": "A Paper"}},
		"details": {
			"replyCount": 3,
			"directReplies": [
				{"id": "r1", "mdate": 1700000200000, "license": "CC BY 4.0",
				 "content": {"rating": {"value": 6}}}
			]
		}
	}`

	var sub SubmissionRecord
	if err := json.Unmarshal([]byte(doc), &sub); err != nil {
		t.Fatal(err)
	}

	if sub.ID != "abc123" || sub.Number != 42 {
		t.Fatalf("known fields not decoded: %+v", sub)
	}
	if _, ok := sub.Extra["forum"]; !ok {
		t.Error("top-level unknown field 'forum' not preserved")
	}
	if _, ok := sub.Details.Extra["replyCount"]; !ok {
		t.Error("details-level unknown field 'replyCount' not preserved")
	}
	if _, ok := sub.Details.DirectReplies[0].Extra["license"]; !ok {
		t.Error("reply-level unknown field 'license' not preserved")
	}

	// Round-trip: unknown fields come back out.
	out, err := json.Marshal(&sub)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back["forum"] != "abc123" {
		t.Errorf("forum = %v after round trip", back["forum"])
	}
	details := back["details"].(map[string]any)
	if details["replyCount"] != float64(3) {
		t.Errorf("replyCount = %v after round trip", details["replyCount"])
	}
}

func TestSubmissionRecordMarshalDeterministic(t *testing.T) {
	sub := SubmissionRecord{
		ID:     "abc",
		Number: 7,
		Content: map[string]any{
			"title":    map[string]any{"value": "T"},
			"keywords": map[string]any{"value": []any{"a", "b"}},
		},
	}

	first, err := json.Marshal(&sub)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(&sub)
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) {
			t.Fatal("encoding is not deterministic")
		}
	}
}

func TestVersionKey(t *testing.T) {
	a := &ReplyRecord{ID: "r1", MDate: 100, Content: map[string]any{"rating": map[string]any{"value": 5.0}}}
	b := &ReplyRecord{ID: "r1", MDate: 100, Content: map[string]any{"rating": map[string]any{"value": 5.0}}}
	c := &ReplyRecord{ID: "r1", MDate: 200, Content: map[string]any{"rating": map[string]any{"value": 5.0}}}
	d := &ReplyRecord{ID: "r1", MDate: 100, Content: map[string]any{"rating": map[string]any{"value": 6.0}}}

	if a.Key() != b.Key() {
		t.Error("identical mdate and content should share a key")
	}
	if a.Key() == c.Key() {
		t.Error("different mdate should yield a different key")
	}
	if a.Key() == d.Key() {
		t.Error("different content should yield a different key")
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{"numeric", 6.0, 6, true},
		{"string with label", "8: accept, good paper", 8, true},
		{"bare numeric string", "4", 4, true},
		{"unparseable string", "strong accept", 0, false},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := map[string]any{}
			if tt.value != nil {
				content["rating"] = map[string]any{"value": tt.value}
			}
			r := &ReplyRecord{Content: content}

			got, ok := r.Rating()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Rating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		venue string
		want  SubmissionStatus
	}{
		{"ICLR 2026 Conference Submission", StatusActive},
		{"ICLR 2026 Conference Withdrawn Submission", StatusWithdrawn},
		{"", StatusActive},
	}

	for _, tt := range tests {
		sub := SubmissionRecord{Content: map[string]any{
			"venue": map[string]any{"value": tt.venue},
		}}
		if got := sub.Status(); got != tt.want {
			t.Errorf("Status(%q) = %q, want %q", tt.venue, got, tt.want)
		}
	}
}

func TestThreadsGroupsAndSorts(t *testing.T) {
	sub := SubmissionRecord{
		ID: "sub1",
		Details: Details{DirectReplies: []*ReplyRecord{
			{ID: "r1", MDate: 300},
			{ID: "r2", MDate: 150},
			{ID: "r1", MDate: 100},
		}},
	}

	threads := sub.Threads()

	if len(threads) != 2 {
		t.Fatalf("got %d threads, want 2", len(threads))
	}
	// Thread order follows first sighting.
	if threads[0].ID != "r1" || threads[1].ID != "r2" {
		t.Errorf("thread order = %s, %s", threads[0].ID, threads[1].ID)
	}
	// Versions within a thread sort by mdate.
	if threads[0].Versions[0].MDate != 100 || threads[0].Versions[1].MDate != 300 {
		t.Errorf("versions not sorted by mdate: %d, %d",
			threads[0].Versions[0].MDate, threads[0].Versions[1].MDate)
	}
	if threads[0].First().MDate != 100 || threads[0].Last().MDate != 300 {
		t.Error("First/Last disagree with sorted order")
	}
}

func TestThreadHasRating(t *testing.T) {
	rated := &Thread{Versions: []*ReplyRecord{
		{Content: map[string]any{"comment": map[string]any{"value": "just a comment"}}},
		{Content: map[string]any{"rating": map[string]any{"value": 5.0}}},
	}}
	comment := &Thread{Versions: []*ReplyRecord{
		{Content: map[string]any{"comment": map[string]any{"value": "still a comment"}}},
	}}

	if !rated.HasRating() {
		t.Error("thread with a rated version should report HasRating")
	}
	if comment.HasRating() {
		t.Error("comment thread should not report HasRating")
	}
}

func TestKeywords(t *testing.T) {
	sub := SubmissionRecord{Content: map[string]any{
		"keywords": map[string]any{"value": []any{"attention", "transformers"}},
	}}
	kw := sub.Keywords()
	if len(kw) != 2 || kw[0] != "attention" {
		t.Errorf("Keywords() = %v", kw)
	}

	empty := SubmissionRecord{}
	if empty.Keywords() != nil {
		t.Error("missing keywords should return nil")
	}
}

func TestIsOfficialReview(t *testing.T) {
	review := ReplyRecord{Invitations: []string{"ICLR.cc/2026/Conference/Submission12/-/Official_Review"}}
	comment := ReplyRecord{Invitations: []string{"ICLR.cc/2026/Conference/Submission12/-/Official_Comment"}}

	if !review.IsOfficialReview() {
		t.Error("official review invitation not detected")
	}
	if comment.IsOfficialReview() {
		t.Error("comment misclassified as official review")
	}
}
