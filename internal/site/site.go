// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package site projects the merged dataset into the static JSON
// documents the browser frontend serves: a lightweight submission list,
// one detail document per submission, and a metadata document carrying
// the dataset version token downstream caches key on.
package site

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/review-tracker/internal/classify"
	"github.com/pdiddy/review-tracker/internal/snapshot"
	"github.com/pdiddy/review-tracker/pkg/types"
)

const detailDir = "detail"

// ListEntry is one submission's row in the homepage list document.
type ListEntry struct {
	ID             string                 `json:"id"`
	Number         int                    `json:"number"`
	Title          string                 `json:"title"`
	Status         types.SubmissionStatus `json:"status"`
	PrimaryArea    string                 `json:"primary_area,omitempty"`
	Keywords       []string               `json:"keywords,omitempty"`
	ReviewCount    int                    `json:"review_count"`
	EntryCount     int                    `json:"entry_count"`
	ChangeCategory types.ChangeCategory   `json:"change_category"`
	RatingDelta    *float64               `json:"rating_delta,omitempty"`
}

// ThreadDoc is one thread in a detail document: its full version
// history, chronologically sorted, plus the derived change category.
type ThreadDoc struct {
	ID             string               `json:"id"`
	OfficialReview bool                 `json:"official_review"`
	ChangeCategory types.ChangeCategory `json:"change_category"`
	Versions       []*types.ReplyRecord `json:"versions"`
}

// DetailDoc is the per-submission document with complete histories.
type DetailDoc struct {
	ID             string                 `json:"id"`
	Number         int                    `json:"number"`
	Title          string                 `json:"title"`
	Status         types.SubmissionStatus `json:"status"`
	PrimaryArea    string                 `json:"primary_area,omitempty"`
	Keywords       []string               `json:"keywords,omitempty"`
	Abstract       string                 `json:"abstract,omitempty"`
	ChangeCategory types.ChangeCategory   `json:"change_category"`
	Threads        []ThreadDoc            `json:"threads"`
}

// MetaDoc carries the dataset version token. DatasetVersion is a hash
// of the merged dataset content, so it changes iff the content changed;
// GeneratedAt is informational only and must not be used as a cache key.
type MetaDoc struct {
	DatasetVersion string    `json:"dataset_version"`
	GeneratedAt    time.Time `json:"generated_at"`
	Submissions    int       `json:"submissions"`
	ReviewEntries  int       `json:"review_entries"`
}

// Summary reports what a generation run produced.
type Summary struct {
	ListEntries int
	DetailDocs  int
}

// DatasetVersion computes the content-addressed version token for a
// dataset.
func DatasetVersion(ds types.Dataset) (string, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("encoding dataset: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Generate writes the list, detail, and metadata documents for ds into
// outputDir. All documents are written atomically. Progress goes to w.
func Generate(ds types.Dataset, outputDir string, w io.Writer) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(filepath.Join(outputDir, detailDir), 0o755); err != nil {
		return summary, fmt.Errorf("creating output directory: %w", err)
	}

	entries := make([]ListEntry, 0, len(ds))
	totalEntries := 0
	for _, sub := range ds {
		entry := buildListEntry(sub)
		entries = append(entries, entry)
		totalEntries += entry.EntryCount

		detail := buildDetailDoc(sub)
		if err := writeJSON(filepath.Join(outputDir, detailDir, sub.ID+".json"), detail); err != nil {
			return summary, fmt.Errorf("writing detail for %s: %w", sub.ID, err)
		}
		summary.DetailDocs++
	}

	if err := writeJSON(filepath.Join(outputDir, "list.json"), entries); err != nil {
		return summary, fmt.Errorf("writing list document: %w", err)
	}
	summary.ListEntries = len(entries)

	version, err := DatasetVersion(ds)
	if err != nil {
		return summary, err
	}
	meta := MetaDoc{
		DatasetVersion: version,
		GeneratedAt:    time.Now().UTC(),
		Submissions:    len(ds),
		ReviewEntries:  totalEntries,
	}
	if err := writeJSON(filepath.Join(outputDir, "meta.json"), meta); err != nil {
		return summary, fmt.Errorf("writing metadata document: %w", err)
	}

	fmt.Fprintf(w, "generated %d list entries, %d detail documents (dataset %s)\n",
		summary.ListEntries, summary.DetailDocs, version[:12])
	return summary, nil
}

func buildListEntry(sub *types.SubmissionRecord) ListEntry {
	entry := ListEntry{
		ID:             sub.ID,
		Number:         sub.Number,
		Title:          sub.Title(),
		Status:         sub.Status(),
		PrimaryArea:    sub.PrimaryArea(),
		Keywords:       sub.Keywords(),
		EntryCount:     len(sub.Details.DirectReplies),
		ChangeCategory: classify.Submission(sub),
	}
	for _, th := range sub.Threads() {
		if th.HasRating() {
			entry.ReviewCount++
		}
	}
	if delta, ok := classify.RatingDelta(sub); ok {
		entry.RatingDelta = &delta
	}
	return entry
}

func buildDetailDoc(sub *types.SubmissionRecord) DetailDoc {
	doc := DetailDoc{
		ID:             sub.ID,
		Number:         sub.Number,
		Title:          sub.Title(),
		Status:         sub.Status(),
		PrimaryArea:    sub.PrimaryArea(),
		Keywords:       sub.Keywords(),
		Abstract:       sub.Abstract(),
		ChangeCategory: classify.Submission(sub),
	}
	for _, th := range sub.Threads() {
		doc.Threads = append(doc.Threads, ThreadDoc{
			ID:             th.ID,
			OfficialReview: th.Last().IsOfficialReview(),
			ChangeCategory: classify.Thread(th),
			Versions:       th.Versions,
		})
	}
	return doc
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return snapshot.WriteFileAtomic(path, data)
}
