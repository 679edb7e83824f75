// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-tracker/internal/index"
	"github.com/pdiddy/review-tracker/internal/snapshot"
	"github.com/pdiddy/review-tracker/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the submission search index (build, search)",
	Long: `Index maintains a local SQLite search index over the merged dataset:
full-text search across titles, abstracts, and keywords, plus filters
on status and change category.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the search index from the merged dataset",
	Long: `Build loads data/submissions_merged.json into a SQLite database with
FTS5 indexing. Rebuilding against an unchanged dataset is skipped.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg := indexConfig(cmd)

	ds, _, err := snapshot.LoadFile(snapshot.MergedPath(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("loading merged dataset: %w", err)
	}

	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Build(cmd.Context(), ds, os.Stdout)
	return err
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index with full-text queries and filters",
	Long: `Search queries the index using FTS5 full-text search, structured
filters (status, category, primary area), or a combination of both.`,
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	cfg := indexConfig(cmd)

	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := searchOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --status, --category, or --area")
	}

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []index.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-50s  %-10s  %-30s  %s\n",
		"Num", "Title", "Status", "Change", "Reviews")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range results {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-50s  %-10s  %-30s  %d\n",
			r.Number, title, r.Status, r.ChangeCategory, r.ReviewCount)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- shared helpers ---

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.IndexConfig{
		DataDir:    dataDir(cmd),
		IndexDir:   indexDir,
		MaxResults: maxResults,
	}
}

func searchOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	status, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")
	area, _ := cmd.Flags().GetString("area")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:       queryText,
		Status:      types.SubmissionStatus(status),
		Category:    types.ChangeCategory(category),
		PrimaryArea: area,
		MaxResults:  limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "", "directory for the SQLite index (default <data-dir>/index)")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	// Search flags.
	indexSearchCmd.Flags().String("query", "", "full-text search query")
	indexSearchCmd.Flags().String("status", "", "filter by status: active or withdrawn")
	indexSearchCmd.Flags().String("category", "", "filter by change category (e.g. rating-increased)")
	indexSearchCmd.Flags().String("area", "", "filter by primary area")
	indexSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Wire subcommands.
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexSearchCmd)

	rootCmd.AddCommand(indexCmd)
}
