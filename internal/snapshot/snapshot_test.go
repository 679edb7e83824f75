// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/review-tracker/pkg/types"
)

func writeSnapshot(t *testing.T, dataDir, stamp, content string) string {
	t.Helper()
	rawDir := filepath.Join(dataDir, RawDir)
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(rawDir, FilePrefix+stamp+".json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseLenient(t *testing.T) {
	doc := `[
		{"id": "sub1", "number": 1, "content": {"title": {"value": "Good"}},
		 "details": {"directReplies": [
			{"id": "r1", "mdate": 100, "content": {"rating": {"value": 5}}},
			{"mdate": 200, "content": {"rating": {"value": 6}}}
		 ]}},
		{"number": 2, "content": {"title": {"value": "No ID"}}},
		"not an object"
	]`

	ds, stats, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	if len(ds) != 1 {
		t.Fatalf("got %d submissions, want 1", len(ds))
	}
	if stats.SkippedSubmissions != 2 {
		t.Errorf("SkippedSubmissions = %d, want 2", stats.SkippedSubmissions)
	}
	if stats.SkippedReplies != 1 {
		t.Errorf("SkippedReplies = %d, want 1", stats.SkippedReplies)
	}
	if stats.Total() != 3 {
		t.Errorf("Total() = %d, want 3", stats.Total())
	}
	if got := len(ds[0].Details.DirectReplies); got != 1 {
		t.Errorf("kept %d replies, want 1", got)
	}
}

func TestParseRejectsNonArray(t *testing.T) {
	if _, _, err := Parse([]byte(`{"id": "sub1"}`)); err == nil {
		t.Error("expected an error for a non-array document")
	}
}

func TestListSnapshotFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "20260102_000000", "[]")
	writeSnapshot(t, dir, "20260101_000000", "[]")
	// Non-snapshot files in raw/ are ignored.
	if err := os.WriteFile(filepath.Join(dir, RawDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := ListSnapshotFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if Stamp(files[0]) != "20260101_000000" || Stamp(files[1]) != "20260102_000000" {
		t.Errorf("files not chronological: %v", files)
	}
}

func TestListSnapshotFilesMissingDir(t *testing.T) {
	files, err := ListSnapshotFiles(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if files != nil {
		t.Errorf("expected no files, got %v", files)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := MergedPath(dir)

	ds := types.Dataset{{
		ID:     "sub1",
		Number: 1,
		Content: map[string]any{
			"title": map[string]any{"value": "A Paper"},
		},
	}}

	if err := Save(path, ds); err != nil {
		t.Fatal(err)
	}

	got, stats, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total() != 0 {
		t.Errorf("clean file produced %d skips", stats.Total())
	}
	if len(got) != 1 || got[0].ID != "sub1" || got[0].Title() != "A Paper" {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestSaveDoesNotLeaveTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Save(MergedPath(dir), types.Dataset{}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoadSourcesOrdering(t *testing.T) {
	dir := t.TempDir()

	if err := Save(MergedPath(dir), types.Dataset{{ID: "sub1", Number: 1}}); err != nil {
		t.Fatal(err)
	}
	writeSnapshot(t, dir, "20260102_000000", `[{"id": "sub2", "number": 2}]`)
	writeSnapshot(t, dir, "20260101_000000", `[{"id": "sub1", "number": 1}]`)

	var buf strings.Builder
	sources, _, err := LoadSources(dir, &buf)
	if err != nil {
		t.Fatal(err)
	}

	if len(sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(sources))
	}
	want := []string{"merged", "20260101_000000", "20260102_000000"}
	for i, name := range want {
		if sources[i].Name != name {
			t.Errorf("sources[%d].Name = %q, want %q", i, sources[i].Name, name)
		}
	}
}

func TestLoadSourcesSkipsCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "20260101_000000", `[{"id": "sub1", "number": 1}]`)
	writeSnapshot(t, dir, "20260102_000000", `{not json`)

	var buf strings.Builder
	sources, _, err := LoadSources(dir, &buf)
	if err != nil {
		t.Fatal(err)
	}

	if len(sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(sources))
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Error("corrupt snapshot did not produce a warning")
	}
}

func TestLoadSourcesCorruptMergedIsFatal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(MergedPath(dir), []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if _, _, err := LoadSources(dir, &buf); err == nil {
		t.Error("corrupt merged dataset must fail the load, not be skipped")
	}
}
