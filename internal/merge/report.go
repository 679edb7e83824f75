// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-tracker/internal/snapshot"
)

// RunReport is the durable record of one merge run, written alongside
// the merged dataset so operators can audit how the history grew.
type RunReport struct {
	// RunID uniquely identifies the merge run.
	RunID string `yaml:"run_id"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	// Sources lists each input with its contribution.
	Sources []SourceStats `yaml:"sources"`

	// Before holds the prior merged dataset's statistics; nil for a
	// first merge.
	Before *Stats `yaml:"before,omitempty"`

	// After holds the output dataset's statistics.
	After Stats `yaml:"after"`

	// SkippedRecords counts records dropped for schema errors across
	// all inputs.
	SkippedRecords int `yaml:"skipped_records"`
}

// NewRunReport starts a report for a merge run beginning now.
func NewRunReport() RunReport {
	return RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Write stores the report as data/reports/merge_<stamp>.yaml and returns
// the path written.
func (r RunReport) Write(dataDir string) (string, error) {
	dir := filepath.Join(dataDir, snapshot.ReportsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	data, err := yaml.Marshal(&r)
	if err != nil {
		return "", fmt.Errorf("encoding run report: %w", err)
	}

	path := filepath.Join(dir, "merge_"+r.StartedAt.Format("20060102_150405")+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run report: %w", err)
	}
	return path, nil
}
