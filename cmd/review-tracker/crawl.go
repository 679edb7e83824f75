// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-tracker/internal/crawl"
	"github.com/pdiddy/review-tracker/pkg/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Snapshot the review platform API into data/raw/",
	Long: `Crawl pages through the platform's submission listing with replies
included and writes one immutable, timestamped snapshot file. Snapshots
are never modified after writing; run crawl as often as you want
observation points and let merge fold them together.`,
	RunE: runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg := crawlConfig(cmd)
	if cfg.Invitation == "" {
		return fmt.Errorf("no invitation configured: pass --invitation or set crawl.invitation")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	_, err := crawl.Run(cmd.Context(), client, cfg, os.Stdout)
	return err
}

func crawlConfig(cmd *cobra.Command) types.CrawlConfig {
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = viper.GetString("crawl.base_url")
	}
	if baseURL == "" {
		baseURL = "https://api2.openreview.net"
	}

	invitation, _ := cmd.Flags().GetString("invitation")
	if invitation == "" {
		invitation = viper.GetString("crawl.invitation")
	}

	pageSize, _ := cmd.Flags().GetInt("page-size")
	pageDelay, _ := cmd.Flags().GetDuration("page-delay")
	token, _ := cmd.Flags().GetString("token")

	return types.CrawlConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "review-tracker/" + version,
		},
		BaseURL:    baseURL,
		Invitation: invitation,
		PageSize:   pageSize,
		PageDelay:  pageDelay,
		Token:      loadedSecrets.Get("openreview-token", token),
		DataDir:    dataDir(cmd),
	}
}

func init() {
	crawlCmd.Flags().String("base-url", "", "review platform API root (default https://api2.openreview.net)")
	crawlCmd.Flags().String("invitation", "", "submission invitation to fetch (e.g. ICLR.cc/2026/Conference/-/Submission)")
	crawlCmd.Flags().Int("page-size", 1000, "submissions per API page")
	crawlCmd.Flags().Duration("page-delay", 200*time.Millisecond, "pause between page fetches")
	crawlCmd.Flags().String("token", "", "bearer token for the platform API (overrides .secrets/openreview-token)")

	rootCmd.AddCommand(crawlCmd)
}
