// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-tracker/internal/merge"
	"github.com/pdiddy/review-tracker/internal/snapshot"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Fold raw snapshots into the merged, version-preserving dataset",
	Long: `Merge folds every snapshot under data/raw/, plus the prior merged
dataset when one exists, into data/submissions_merged.json. Every
observed version of every review is kept; duplicates are detected by
modification timestamp and content. Re-running merge over the same
inputs is a no-op.

Each run prints before/after statistics and writes a YAML run report
under data/reports/.`,
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)
	out := os.Stdout

	report := merge.NewRunReport()

	sources, parseStats, err := snapshot.LoadSources(dir, out)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no snapshots found under %s/%s: run crawl first", dir, snapshot.RawDir)
	}

	var before *merge.Stats
	if sources[0].Name == "merged" {
		s := merge.Analyze(sources[0].Data)
		before = &s
		s.Print(out, "before merge")
		if len(sources) == 1 {
			fmt.Fprintln(out, "no raw snapshots to fold; dataset unchanged")
		}
	}

	fmt.Fprintf(out, "merging %d source(s)\n", len(sources))
	merged, sourceStats := merge.Merge(sources, out)
	for _, st := range sourceStats {
		fmt.Fprintf(out, "  %s: %d submissions, %d new version(s)\n",
			st.Name, st.Submissions, st.VersionsAdded)
	}

	after := merge.Analyze(merged)

	// The output file is only replaced after the fold completed; a
	// failed write leaves the previous dataset untouched.
	if err := snapshot.Save(snapshot.MergedPath(dir), merged); err != nil {
		return err
	}

	after.Print(out, "after merge")
	if before != nil {
		merge.PrintComparison(out, *before, after)
	}
	if parseStats.Total() > 0 {
		fmt.Fprintf(out, "warning: %d record(s) skipped for schema errors\n", parseStats.Total())
	}

	report.FinishedAt = time.Now().UTC()
	report.Sources = sourceStats
	report.Before = before
	report.After = after
	report.SkippedRecords = parseStats.Total()
	path, err := report.Write(dir)
	if err != nil {
		// The merged dataset is already safe on disk; a report failure
		// is not worth failing the run over.
		fmt.Fprintf(out, "warning: run report not written: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "run report: %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
