package stancesweep

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stancelab/stancesweep"
	"github.com/stancelab/stancesweep/pkg/checkpoint"
	"github.com/stancelab/stancesweep/pkg/config"
	"github.com/stancelab/stancesweep/pkg/corpus"
	"github.com/stancelab/stancesweep/pkg/embedder"
	"github.com/stancelab/stancesweep/pkg/encode"
	"github.com/stancelab/stancesweep/pkg/logger"
)

// registerSweepFlags adds the flags shared by the label, train and run
// commands. Flag values override the config file only when explicitly set.
func registerSweepFlags(cmd *cobra.Command) {
	cmd.Flags().String("domain", "", "Domain name keying the output directory and checkpoint")
	cmd.Flags().String("queries", "", "Path to the exemplar query CSV (text,label)")
	cmd.Flags().String("test", "", "Path to the held-out test CSV (text,label)")
	cmd.Flags().String("corpus", "", "Path to the unlabeled domain CSV (id,text)")
	cmd.Flags().String("output", "", "Output directory for per-budget datasets and reports")
	cmd.Flags().String("cache", "", "Embedding cache directory (empty disables caching)")
	cmd.Flags().String("checkpoints", "", "Checkpoint directory (empty uses the OS temp dir)")

	cmd.Flags().Int("budget-min", 0, "Smallest swept budget k")
	cmd.Flags().Int("budget-max", 0, "Largest swept budget k")
	cmd.Flags().Int("budget-step", 0, "Budget increment")
	cmd.Flags().Float64("duplicate-threshold", 0, "Similarity above which a match is rejected as a near-duplicate")
	cmd.Flags().String("duplicate-policy", "", "Duplicate resolution policy (keep, first, vote)")
	cmd.Flags().Int("min-df", 0, "Minimum document frequency for classifier vocabulary")

	cmd.Flags().String("embedding-provider", "", "Embedding provider (embedeverything, openai, bow)")
	cmd.Flags().String("embedding-model", "", "Embedding model")
	cmd.Flags().String("embedding-api-key", "", "Embedding API key")
	cmd.Flags().String("embedding-base-url", "", "Embedding base URL")
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("domain") {
		cfg.Data.Domain, _ = cmd.Flags().GetString("domain")
	}
	if cmd.Flags().Changed("queries") {
		cfg.Data.QueryPath, _ = cmd.Flags().GetString("queries")
	}
	if cmd.Flags().Changed("test") {
		cfg.Data.TestPath, _ = cmd.Flags().GetString("test")
	}
	if cmd.Flags().Changed("corpus") {
		cfg.Data.DomainPath, _ = cmd.Flags().GetString("corpus")
	}
	if cmd.Flags().Changed("output") {
		cfg.Data.OutputDir, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("cache") {
		cfg.Data.CachePath, _ = cmd.Flags().GetString("cache")
	}
	if cmd.Flags().Changed("checkpoints") {
		cfg.Data.CheckpointDir, _ = cmd.Flags().GetString("checkpoints")
	}

	if cmd.Flags().Changed("budget-min") {
		cfg.Sweep.BudgetMin, _ = cmd.Flags().GetInt("budget-min")
	}
	if cmd.Flags().Changed("budget-max") {
		cfg.Sweep.BudgetMax, _ = cmd.Flags().GetInt("budget-max")
	}
	if cmd.Flags().Changed("budget-step") {
		cfg.Sweep.BudgetStep, _ = cmd.Flags().GetInt("budget-step")
	}
	if cmd.Flags().Changed("duplicate-threshold") {
		cfg.Sweep.DuplicateThreshold, _ = cmd.Flags().GetFloat64("duplicate-threshold")
	}
	if cmd.Flags().Changed("duplicate-policy") {
		cfg.Sweep.DuplicatePolicy, _ = cmd.Flags().GetString("duplicate-policy")
	}
	if cmd.Flags().Changed("min-df") {
		cfg.Classifier.MinDF, _ = cmd.Flags().GetInt("min-df")
	}

	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	log := logger.NewLogger(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	return cfg, log, nil
}

// buildPipeline assembles the full pipeline from configuration. The returned
// cleanup function closes the embedding client and its cache.
func buildPipeline(cfg *config.Config, log *slog.Logger) (*stancesweep.Pipeline, func(), error) {
	budgets, err := cfg.Budgets()
	if err != nil {
		return nil, nil, err
	}

	client, err := embedder.NewClient(embedder.Config{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		BatchSize:  cfg.Embedding.BatchSize,
		Device:     cfg.Embedding.Device,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	encoder, err := encode.NewEncoder(client, encode.Options{
		CachePath: cfg.Data.CachePath,
		BatchSize: cfg.Embedding.BatchSize,
		Logger:    log,
	})
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	cleanup := func() {
		encoder.Close()
		client.Close()
	}

	writer, err := corpus.NewDatasetWriter(cfg.Data.OutputDir, cfg.Data.Domain)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	checkpoints, err := checkpoint.NewManager(cfg.Data.CheckpointDir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	pipeline, err := stancesweep.NewPipeline(encoder, writer, checkpoints, sweepConfig(cfg, budgets), log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return pipeline, cleanup, nil
}

// buildScorePipeline assembles the evaluation-only pipeline. The classifier
// stage reads persisted datasets and the fixed test set, so no embedding
// client or model is ever constructed here.
func buildScorePipeline(cfg *config.Config, log *slog.Logger) (*stancesweep.Pipeline, error) {
	budgets, err := cfg.Budgets()
	if err != nil {
		return nil, err
	}

	writer, err := corpus.NewDatasetWriter(cfg.Data.OutputDir, cfg.Data.Domain)
	if err != nil {
		return nil, err
	}

	checkpoints, err := checkpoint.NewManager(cfg.Data.CheckpointDir)
	if err != nil {
		return nil, err
	}

	return stancesweep.NewPipeline(nil, writer, checkpoints, sweepConfig(cfg, budgets), log)
}

func sweepConfig(cfg *config.Config, budgets []int) *stancesweep.Config {
	return &stancesweep.Config{
		Budgets:            budgets,
		DuplicateThreshold: cfg.Sweep.DuplicateThreshold,
		DuplicatePolicy:    stancesweep.DuplicatePolicy(cfg.Sweep.DuplicatePolicy),
		MinDF:              cfg.Classifier.MinDF,
	}
}
