// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/review-tracker/pkg/types"
)

// QueryOptions holds parameters for search index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title, abstract,
	// and keywords.
	Query string

	// Status filters by submission status.
	Status types.SubmissionStatus

	// Category filters by derived change category.
	Category types.ChangeCategory

	// PrimaryArea filters by primary area.
	PrimaryArea string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Status == "" && q.Category == "" && q.PrimaryArea == ""
}

// SearchResult is one submission row returned from the index.
type SearchResult struct {
	ID             string                 `json:"id"`
	Number         int                    `json:"number"`
	Title          string                 `json:"title"`
	Status         types.SubmissionStatus `json:"status"`
	PrimaryArea    string                 `json:"primary_area,omitempty"`
	Keywords       []string               `json:"keywords,omitempty"`
	ChangeCategory types.ChangeCategory   `json:"change_category"`
	ReviewCount    int                    `json:"review_count"`
	EntryCount     int                    `json:"entry_count"`
}

// Search queries the index with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries are sorted by submission number.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT sub.id, sub.number, sub.title, sub.status, sub.primary_area,
				sub.keywords, sub.change_category, sub.review_count, sub.entry_count
			FROM submissions_fts
			JOIN submissions sub ON sub.rowid = submissions_fts.rowid
			WHERE submissions_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT sub.id, sub.number, sub.title, sub.status, sub.primary_area,
				sub.keywords, sub.change_category, sub.review_count, sub.entry_count
			FROM submissions sub
			WHERE 1=1`)
	}

	if opts.Status != "" {
		qb.WriteString(` AND sub.status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Category != "" {
		qb.WriteString(` AND sub.change_category = ?`)
		args = append(args, string(opts.Category))
	}
	if opts.PrimaryArea != "" {
		qb.WriteString(` AND sub.primary_area = ?`)
		args = append(args, opts.PrimaryArea)
	}

	if useFTS {
		qb.WriteString(` ORDER BY submissions_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY sub.number`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r            SearchResult
			status       string
			category     string
			keywordsJSON sql.NullString
		)
		if err := rows.Scan(
			&r.ID, &r.Number, &r.Title, &status, &r.PrimaryArea,
			&keywordsJSON, &category, &r.ReviewCount, &r.EntryCount,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Status = types.SubmissionStatus(status)
		r.ChangeCategory = types.ChangeCategory(category)
		if keywordsJSON.Valid {
			json.Unmarshal([]byte(keywordsJSON.String), &r.Keywords)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
