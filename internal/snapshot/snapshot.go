// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot reads and writes the on-disk dataset files: immutable
// timestamped crawl snapshots under data/raw/ and the merged dataset the
// merge stage maintains. Snapshots are never rewritten; the merged
// dataset is replaced atomically.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/review-tracker/pkg/types"
)

const (
	// RawDir is the subdirectory of the data directory holding snapshots.
	RawDir = "raw"

	// ReportsDir is the subdirectory holding merge run reports.
	ReportsDir = "reports"

	// MergedFile is the merged dataset filename inside the data directory.
	MergedFile = "submissions_merged.json"

	// FilePrefix is the snapshot filename prefix; the remainder of the
	// name is a YYYYMMDD_HHMMSS timestamp.
	FilePrefix = "submissions_"
)

// MergedPath returns the merged dataset path for a data directory.
func MergedPath(dataDir string) string {
	return filepath.Join(dataDir, MergedFile)
}

// Source is one input to a merge: a labelled dataset. The label is the
// snapshot timestamp, or "merged" for a prior merged dataset.
type Source struct {
	Name string
	Data types.Dataset
}

// ParseStats counts records dropped during lenient parsing.
type ParseStats struct {
	// SkippedSubmissions counts submission records missing their
	// identity field or otherwise undecodable.
	SkippedSubmissions int

	// SkippedReplies counts reply records missing their identity field.
	SkippedReplies int
}

// Total returns the number of records skipped.
func (p ParseStats) Total() int {
	return p.SkippedSubmissions + p.SkippedReplies
}

// ListSnapshotFiles returns the snapshot files under dataDir/raw/ in
// chronological order (the embedded timestamp sorts lexicographically).
// A missing raw directory is not an error; it returns an empty list.
func ListSnapshotFiles(dataDir string) ([]string, error) {
	rawDir := filepath.Join(dataDir, RawDir)
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot directory %s: %w", rawDir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		files = append(files, filepath.Join(rawDir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Stamp extracts the timestamp label from a snapshot file path
// (e.g. "data/raw/submissions_20251117_085900.json" -> "20251117_085900").
func Stamp(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	return strings.TrimPrefix(name, FilePrefix)
}

// Parse decodes a snapshot document leniently. The file must be a JSON
// array; within it, records that cannot be decoded or that lack an
// identity field are skipped and counted rather than failing the file.
// Replies without an identity field are stripped from their submission.
func Parse(data []byte) (types.Dataset, ParseStats, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ParseStats{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	var (
		ds    types.Dataset
		stats ParseStats
	)
	for _, rec := range raw {
		var sub types.SubmissionRecord
		if err := json.Unmarshal(rec, &sub); err != nil || sub.ID == "" {
			stats.SkippedSubmissions++
			continue
		}

		kept := sub.Details.DirectReplies[:0]
		for _, reply := range sub.Details.DirectReplies {
			if reply.ID == "" {
				stats.SkippedReplies++
				continue
			}
			kept = append(kept, reply)
		}
		sub.Details.DirectReplies = kept

		ds = append(ds, &sub)
	}
	return ds, stats, nil
}

// LoadFile reads and parses one snapshot or merged dataset file.
func LoadFile(path string) (types.Dataset, ParseStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("reading %s: %w", path, err)
	}
	ds, stats, err := Parse(data)
	if err != nil {
		return nil, stats, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ds, stats, nil
}

// Save writes a dataset to path atomically: the document is written to a
// temp file in the destination directory and renamed into place, so a
// failed write never clobbers an existing dataset.
func Save(path string, ds types.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to path via a temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadSources assembles the ordered merge inputs for a data directory:
// the prior merged dataset first (when present), then every raw snapshot
// in chronological order. Unreadable or unparseable snapshot files are
// skipped with a warning on w; schema-level skips are accumulated into
// stats.
func LoadSources(dataDir string, w io.Writer) ([]Source, ParseStats, error) {
	var (
		sources []Source
		stats   ParseStats
	)

	mergedPath := MergedPath(dataDir)
	if _, err := os.Stat(mergedPath); err == nil {
		ds, st, err := LoadFile(mergedPath)
		if err != nil {
			return nil, stats, fmt.Errorf("loading prior merged dataset: %w", err)
		}
		stats.SkippedSubmissions += st.SkippedSubmissions
		stats.SkippedReplies += st.SkippedReplies
		sources = append(sources, Source{Name: "merged", Data: ds})
	}

	files, err := ListSnapshotFiles(dataDir)
	if err != nil {
		return nil, stats, err
	}
	for _, path := range files {
		ds, st, err := LoadFile(path)
		if err != nil {
			fmt.Fprintf(w, "warning: skipping snapshot %s: %v\n", filepath.Base(path), err)
			continue
		}
		stats.SkippedSubmissions += st.SkippedSubmissions
		stats.SkippedReplies += st.SkippedReplies
		sources = append(sources, Source{Name: Stamp(path), Data: ds})
	}

	return sources, stats, nil
}
