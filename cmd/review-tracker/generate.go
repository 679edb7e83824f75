// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-tracker/internal/site"
	"github.com/pdiddy/review-tracker/internal/snapshot"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the merged dataset as static site JSON documents",
	Long: `Generate reads data/submissions_merged.json and writes the documents
the static site serves: list.json with one summary row and change
category per submission, detail/<id>.json with full version histories,
and meta.json with a dataset version token that changes iff the dataset
content changed.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)

	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir == "" {
		outputDir = filepath.Join(dir, "site")
	}

	ds, parseStats, err := snapshot.LoadFile(snapshot.MergedPath(dir))
	if err != nil {
		return fmt.Errorf("loading merged dataset: %w", err)
	}
	if parseStats.Total() > 0 {
		fmt.Fprintf(os.Stdout, "warning: %d record(s) skipped for schema errors\n", parseStats.Total())
	}

	_, err = site.Generate(ds, outputDir, os.Stdout)
	return err
}

func init() {
	generateCmd.Flags().String("output-dir", "", "directory for generated documents (default <data-dir>/site)")

	rootCmd.AddCommand(generateCmd)
}
