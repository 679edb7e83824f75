// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the review-tracker CLI.
// The pipeline stages are subcommands: crawl snapshots the review
// platform, merge folds snapshots into the version-preserving dataset,
// generate renders the static site documents, and index maintains the
// search index.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-tracker/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the review-tracker CLI.
var rootCmd = &cobra.Command{
	Use:   "review-tracker",
	Short: "Track how conference peer reviews change over time",
	Long: `review-tracker repeatedly snapshots a review platform's API, merges the
snapshots into a dataset that preserves every observed version of every
review, and renders that dataset as JSON documents for a static site.

Each stage is a subcommand: crawl, merge, generate, and index. Snapshots
are immutable once written; the merge never discards a recorded version.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./review-tracker.yaml or ~/.config/review-tracker/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base data directory (contains raw/, reports/, site/, index/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("review-tracker")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "review-tracker"))
		}
	}

	viper.SetEnvPrefix("REVIEW_TRACKER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dataDir resolves the base data directory: flag first, then config.
func dataDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" && cmd.Flags().Changed("data-dir") {
		return dir
	}
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	dir, _ := cmd.Flags().GetString("data-dir")
	return dir
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
