package stancesweep

import (
	"context"

	"github.com/stancelab/stancesweep/pkg/types"
)

// This file defines focused interfaces for the two pipeline stages.
// Consumers should depend on the smallest interface that meets their needs.

// Labeler runs the retrieval stage: it derives and persists one
// weakly-labeled dataset per configured budget.
type Labeler interface {
	// RunSweep encodes the corpus and persists one dataset per budget.
	// Budgets that already have a persisted dataset are skipped.
	RunSweep(ctx context.Context, queries []types.Query, docs []types.DomainDocument) error
}

// Scorer runs the evaluation stage against previously persisted datasets.
type Scorer interface {
	// ScoreSweep trains one classifier per persisted budget against the
	// fixed test set and returns the results ranked by the target metric.
	ScoreSweep(ctx context.Context, test []types.TestRecord) ([]types.BudgetResult, error)
}

// Sweeper composes both stages; *Pipeline is the canonical implementation.
type Sweeper interface {
	Labeler
	Scorer
}

var _ Sweeper = (*Pipeline)(nil)
