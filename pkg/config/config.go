package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Data configuration
	Data DataConfig `mapstructure:"data"`

	// Sweep configuration
	Sweep SweepConfig `mapstructure:"sweep"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Classifier configuration
	Classifier ClassifierConfig `mapstructure:"classifier"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DataConfig holds input and output paths
type DataConfig struct {
	// Domain names the corpus; it keys the output directory and checkpoint.
	Domain string `mapstructure:"domain"`
	// QueryPath, TestPath and DomainPath are the three input CSV files.
	QueryPath  string `mapstructure:"query_path"`
	TestPath   string `mapstructure:"test_path"`
	DomainPath string `mapstructure:"domain_path"`
	// OutputDir receives per-budget datasets and the final reports.
	OutputDir string `mapstructure:"output_dir"`
	// CheckpointDir holds sweep checkpoints; empty uses the OS temp dir.
	CheckpointDir string `mapstructure:"checkpoint_dir"`
	// CachePath holds the embedding cache; empty disables caching.
	CachePath string `mapstructure:"cache_path"`
}

// SweepConfig holds budget sweep configuration
type SweepConfig struct {
	// BudgetMin, BudgetMax and BudgetStep define the swept k values.
	BudgetMin  int `mapstructure:"budget_min"`
	BudgetMax  int `mapstructure:"budget_max"`
	BudgetStep int `mapstructure:"budget_step"`
	// DuplicateThreshold rejects retrieved records scoring above it.
	DuplicateThreshold float64 `mapstructure:"duplicate_threshold"`
	// DuplicatePolicy decides what happens when several queries retrieve
	// the same document: keep, first, or vote.
	DuplicatePolicy string `mapstructure:"duplicate_policy"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // embedeverything, openai, bow
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	// BatchSize caps texts per provider call.
	BatchSize int `mapstructure:"batch_size"`
	// Device requests a compute device. Default "auto"; providers without
	// device selection ignore it.
	Device     string `mapstructure:"device"`
	Dimensions int    `mapstructure:"dimensions"`
}

// ClassifierConfig holds classifier configuration
type ClassifierConfig struct {
	// MinDF is the minimum document frequency for vocabulary terms.
	MinDF int `mapstructure:"min_df"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// Budgets expands the configured range into the ordered, strictly
// increasing budget sequence. The range is validated first so a bad config
// value surfaces as an error instead of an unbounded expansion.
func (c *Config) Budgets() ([]int, error) {
	if c.Sweep.BudgetStep <= 0 {
		return nil, fmt.Errorf("budget_step must be positive, got %d", c.Sweep.BudgetStep)
	}
	if c.Sweep.BudgetMin <= 0 {
		return nil, fmt.Errorf("budget_min must be positive, got %d", c.Sweep.BudgetMin)
	}
	if c.Sweep.BudgetMin > c.Sweep.BudgetMax {
		return nil, fmt.Errorf("budget_min %d exceeds budget_max %d", c.Sweep.BudgetMin, c.Sweep.BudgetMax)
	}

	var budgets []int
	for k := c.Sweep.BudgetMin; k <= c.Sweep.BudgetMax; k += c.Sweep.BudgetStep {
		budgets = append(budgets, k)
	}
	return budgets, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("data.domain", "default")
	viper.SetDefault("data.output_dir", "./weak_labels")

	viper.SetDefault("sweep.budget_min", 5)
	viper.SetDefault("sweep.budget_max", 100)
	viper.SetDefault("sweep.budget_step", 5)
	viper.SetDefault("sweep.duplicate_threshold", 0.95)
	viper.SetDefault("sweep.duplicate_policy", "keep")

	viper.SetDefault("embedding.provider", "embedeverything")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	viper.SetDefault("embedding.batch_size", 64)
	viper.SetDefault("embedding.device", "auto")
	viper.SetDefault("embedding.dimensions", 384)

	viper.SetDefault("classifier.min_df", 2)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
	}
	if cachePath := os.Getenv("STANCESWEEP_CACHE_PATH"); cachePath != "" {
		config.Data.CachePath = cachePath
	}
	if outputDir := os.Getenv("STANCESWEEP_OUTPUT_DIR"); outputDir != "" {
		config.Data.OutputDir = outputDir
	}
}
