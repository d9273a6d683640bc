package stancesweep

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/stancelab/stancesweep/pkg/checkpoint"
	"github.com/stancelab/stancesweep/pkg/classifier"
	"github.com/stancelab/stancesweep/pkg/corpus"
	"github.com/stancelab/stancesweep/pkg/encode"
)

// DuplicatePolicy decides what happens when several distinct queries
// retrieve the same domain document within one budget.
type DuplicatePolicy string

const (
	// PolicyKeep keeps every retrieval as its own record, conflicting
	// labels included, each provenance-tagged with its originating query.
	PolicyKeep DuplicatePolicy = "keep"
	// PolicyFirst keeps only the first retrieval of each document.
	PolicyFirst DuplicatePolicy = "first"
	// PolicyVote keeps one record per document carrying the majority label;
	// ties go to the earliest retrieving query.
	PolicyVote DuplicatePolicy = "vote"
)

// DefaultDuplicateThreshold is the similarity above which a retrieved record
// is treated as a near-duplicate of its query and rejected.
const DefaultDuplicateThreshold = 0.95

var (
	// ErrNoBudgets is returned when the sweep has no budgets to run.
	ErrNoBudgets = errors.New("no budgets configured")
	// ErrBudgetOrder is returned when budgets are not strictly increasing.
	ErrBudgetOrder = errors.New("budgets must be strictly increasing")
)

// Config holds pipeline configuration.
type Config struct {
	// Budgets is the ordered, strictly increasing sequence of k values.
	Budgets []int
	// DuplicateThreshold rejects records scoring above it; 0 uses
	// DefaultDuplicateThreshold. Matches at or above this similarity almost
	// always mean the query text leaked into the domain corpus, which would
	// inflate every downstream score.
	DuplicateThreshold float64
	// DuplicatePolicy defaults to PolicyKeep, the observed behavior of
	// keeping duplicate rows with separate labels.
	DuplicatePolicy DuplicatePolicy
	// MinDF is the classifier's minimum document frequency.
	MinDF int
}

// NewDefaultConfig creates a configuration with the standard 5..100 step 5
// budget range.
func NewDefaultConfig() *Config {
	var budgets []int
	for k := 5; k <= 100; k += 5 {
		budgets = append(budgets, k)
	}
	return &Config{
		Budgets:            budgets,
		DuplicateThreshold: DefaultDuplicateThreshold,
		DuplicatePolicy:    PolicyKeep,
		MinDF:              classifier.DefaultMinDF,
	}
}

func (c *Config) validate() error {
	if len(c.Budgets) == 0 {
		return ErrNoBudgets
	}
	for i := 1; i < len(c.Budgets); i++ {
		if c.Budgets[i] <= c.Budgets[i-1] {
			return fmt.Errorf("%w: %d after %d", ErrBudgetOrder, c.Budgets[i], c.Budgets[i-1])
		}
	}
	if c.Budgets[0] <= 0 {
		return fmt.Errorf("%w: budgets must be positive", ErrBudgetOrder)
	}
	switch c.DuplicatePolicy {
	case PolicyKeep, PolicyFirst, PolicyVote:
	default:
		return fmt.Errorf("unknown duplicate policy %q", c.DuplicatePolicy)
	}
	return nil
}

// Pipeline wires the encoder, dataset writer, checkpoint manager and trainer
// into the two-stage sweep.
type Pipeline struct {
	encoder     *encode.Encoder
	writer      *corpus.DatasetWriter
	checkpoints *checkpoint.Manager
	trainer     *classifier.Trainer
	config      *Config
	logger      *slog.Logger
}

// NewPipeline creates a Pipeline. A nil config uses NewDefaultConfig; a nil
// checkpoint manager disables resume; a nil logger uses slog.Default. The
// encoder may be nil for evaluation-only use: ScoreSweep reads persisted
// datasets and never embeds, while RunSweep fails without an encoder.
func NewPipeline(encoder *encode.Encoder, writer *corpus.DatasetWriter, checkpoints *checkpoint.Manager, config *Config, logger *slog.Logger) (*Pipeline, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if config.DuplicateThreshold == 0 {
		config.DuplicateThreshold = DefaultDuplicateThreshold
	}
	if config.DuplicatePolicy == "" {
		config.DuplicatePolicy = PolicyKeep
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		encoder:     encoder,
		writer:      writer,
		checkpoints: checkpoints,
		trainer:     classifier.NewTrainer(config.MinDF, logger),
		config:      config,
		logger:      logger,
	}, nil
}
