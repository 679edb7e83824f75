package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "review-tracker/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CrawlConfig holds settings for the snapshot crawl stage.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the review platform API root (default
	// "https://api2.openreview.net").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Invitation selects which venue's submissions to fetch
	// (e.g. "ICLR.cc/2026/Conference/-/Submission").
	Invitation string `json:"invitation" yaml:"invitation"`

	// PageSize is the number of submissions requested per API page
	// (default 1000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// PageDelay is the pause between consecutive page fetches
	// (default 200ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// Token is an optional bearer token for the platform API.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// DataDir is the base data directory (contains raw/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// MergeConfig holds settings for the merge stage.
type MergeConfig struct {
	// DataDir is the base data directory. Raw snapshots live in
	// DataDir/raw/, the merged dataset at DataDir/submissions_merged.json,
	// and run reports in DataDir/reports/.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// SiteConfig holds settings for the static site generation stage.
type SiteConfig struct {
	// DataDir is the base data directory holding the merged dataset.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// OutputDir is the directory for generated site documents
	// (default DataDir/site).
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// IndexConfig holds settings for the search index stage.
type IndexConfig struct {
	// DataDir is the base data directory holding the merged dataset.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// IndexDir is the directory for the SQLite index (default DataDir/index).
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Crawl CrawlConfig `json:"crawl" yaml:"crawl"`
	Merge MergeConfig `json:"merge" yaml:"merge"`
	Site  SiteConfig  `json:"site" yaml:"site"`
	Index IndexConfig `json:"index" yaml:"index"`
}
