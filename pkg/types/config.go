package types

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "gene-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectConfig holds settings for the collection stage. Request timeouts
// are per source, enforced inside each client; there is no shared budget.
type CollectConfig struct {
	HTTPConfig `yaml:",inline"`

	// VariantSampleLimit caps the number of overlap variants kept per gene
	// (default 10).
	VariantSampleLimit int `json:"variant_sample_limit" yaml:"variant_sample_limit"`

	// NCBIAPIKey is an optional E-utilities key for higher rate limits.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`
}

// SummaryConfig holds settings for the summarization stage.
type SummaryConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API. When empty the
	// summarizer is not constructed and runs degrade to a fixed
	// unavailable string.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Dir is the directory holding the history database (default "history").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of listed runs (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
