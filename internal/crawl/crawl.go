// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl snapshots the review platform API. It pages through the
// submission listing with replies included and writes one immutable,
// timestamped snapshot file per run. The merge stage never depends on
// this package; a crawl that fails mid-run writes nothing.
package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/pdiddy/review-tracker/internal/httputil"
	"github.com/pdiddy/review-tracker/internal/snapshot"
	"github.com/pdiddy/review-tracker/pkg/types"
)

// Result summarizes a crawl run.
type Result struct {
	// Submissions is the number of submission records fetched.
	Submissions int

	// Pages is the number of API pages requested.
	Pages int

	// Path is the snapshot file written.
	Path string
}

// notesPage is one page of the platform's notes listing.
type notesPage struct {
	Notes []json.RawMessage `json:"notes"`
}

// Run fetches all submissions for the configured invitation and writes
// a snapshot to cfg.DataDir/raw/submissions_<timestamp>.json. Pagination
// continues until an empty page; rate-limit responses are retried with
// backoff by the shared HTTP helper.
func Run(ctx context.Context, client *http.Client, cfg types.CrawlConfig, w io.Writer) (Result, error) {
	var result Result

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	var raw []json.RawMessage
	for offset := 0; ; offset += pageSize {
		if result.Pages > 0 && cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(cfg.PageDelay):
			}
		}

		notes, err := fetchPage(ctx, client, cfg, pageSize, offset)
		if err != nil {
			return result, fmt.Errorf("fetching offset %d: %w", offset, err)
		}
		result.Pages++

		if len(notes) == 0 {
			break
		}
		raw = append(raw, notes...)
		fmt.Fprintf(w, "fetched offset %d (%d submissions so far)\n", offset, len(raw))
	}
	result.Submissions = len(raw)

	// Re-parse through the record types so the snapshot on disk has the
	// same canonical encoding the merge produces.
	combined, err := json.Marshal(raw)
	if err != nil {
		return result, fmt.Errorf("encoding crawl result: %w", err)
	}
	ds, stats, err := snapshot.Parse(combined)
	if err != nil {
		return result, fmt.Errorf("parsing crawl result: %w", err)
	}
	if stats.Total() > 0 {
		fmt.Fprintf(w, "warning: %d records skipped for missing identity fields\n", stats.Total())
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(cfg.DataDir, snapshot.RawDir, snapshot.FilePrefix+stamp+".json")
	if err := snapshot.Save(path, ds); err != nil {
		return result, err
	}
	result.Path = path

	fmt.Fprintf(w, "saved %d submissions to %s\n", len(ds), path)
	return result, nil
}

// fetchPage requests one page of the notes listing.
func fetchPage(ctx context.Context, client *http.Client, cfg types.CrawlConfig, limit, offset int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("invitation", cfg.Invitation)
	q.Set("details", "directReplies")
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+"/notes?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
	}

	var page notesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding notes page: %w", err)
	}
	return page.Notes, nil
}
