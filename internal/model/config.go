package model

import "runtime"

// Config is the full application configuration.
type Config struct {
	Data        DataConfig        `yaml:"data"`
	Output      OutputConfig      `yaml:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Engine      EngineConfig      `yaml:"engine"`
	Cache       CacheConfig       `yaml:"cache"`
	LLM         LLMConfig         `yaml:"llm"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DataConfig locates the reference datasets.
type DataConfig struct {
	Dir string `yaml:"dir"` // directory holding the reference CSV files
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Dir         string `yaml:"dir"`          // directory for resolved/missed/ambiguous CSVs
	JSONSummary string `yaml:"json_summary"` // optional path for a JSON run summary
	Verbose     bool   `yaml:"verbose"`
}

// ConcurrencyConfig controls the worker pool and batching.
type ConcurrencyConfig struct {
	Workers   int `yaml:"workers"`
	ChunkSize int `yaml:"chunk_size"` // input rows per work unit
}

// EngineConfig holds the disambiguation cascade's tunables.
type EngineConfig struct {
	// IgnoreLengthLimit is the label length at and above which the ignore
	// check is skipped: long strings are assumed to be debate text captured
	// into the speaker field, not names to classify as ignorable.
	IgnoreLengthLimit int `yaml:"ignore_length_limit"`
	// MaxFuzzyCandidates caps the ambiguity set produced by the fuzzy
	// cascade so pathological labels cannot match half the registry.
	MaxFuzzyCandidates int `yaml:"max_fuzzy_candidates"`
	// MinCandidateAge drops implausibly young candidates during ambiguity
	// narrowing.
	MinCandidateAge int `yaml:"min_candidate_age"`
}

// CacheConfig controls the per-worker resolution caches.
type CacheConfig struct {
	SnapshotDir string `yaml:"snapshot_dir"` // warm-start snapshots; empty disables
}

// LLMConfig configures the optional last-resort resolver.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// LoggingConfig controls slog construction.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // optional log file directory
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Data:   DataConfig{Dir: "data"},
		Output: OutputConfig{Dir: "out"},
		Concurrency: ConcurrencyConfig{
			Workers:   runtime.NumCPU(),
			ChunkSize: 10000,
		},
		Engine: EngineConfig{
			IgnoreLengthLimit:  35,
			MaxFuzzyCandidates: 5,
			MinCandidateAge:    20,
		},
		Cache: CacheConfig{},
		LLM: LLMConfig{
			Provider:  "", // disabled by default
			Timeout:   30,
			MaxTokens: 50,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
