package stancesweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/stancelab/stancesweep/pkg/checkpoint"
	"github.com/stancelab/stancesweep/pkg/classifier"
	"github.com/stancelab/stancesweep/pkg/corpus"
	"github.com/stancelab/stancesweep/pkg/evaluate"
	"github.com/stancelab/stancesweep/pkg/retrieval"
	"github.com/stancelab/stancesweep/pkg/types"
)

// RunSweep executes the labeling stage: it encodes the domain corpus once,
// then derives and persists one weakly-labeled dataset per configured
// budget. Each budget re-derives its top-k sets from scratch; smaller
// budgets' outputs are never reused. Budgets whose datasets already exist on
// disk are skipped, which makes an interrupted sweep resumable.
//
// The domain documents must already be deduplicated against the query and
// test sets (see corpus.Dedup).
func (p *Pipeline) RunSweep(ctx context.Context, queries []types.Query, docs []types.DomainDocument) error {
	if len(queries) == 0 {
		return fmt.Errorf("query set is empty")
	}
	if len(docs) == 0 {
		return corpus.ErrEmptyCorpus
	}
	if p.encoder == nil {
		return fmt.Errorf("labeling requires an encoder")
	}

	cp, err := p.loadOrCreateCheckpoint(p.writer.Domain())
	if err != nil {
		return err
	}

	p.logger.Info("encoding domain corpus", "documents", len(docs))
	matrix, err := p.encoder.EncodeCorpus(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to encode domain corpus: %w", err)
	}

	queryVecs, err := p.encoder.EncodeQueries(ctx, queries)
	if err != nil {
		return fmt.Errorf("failed to encode queries: %w", err)
	}

	// The matrix is shared read-only across every retrieval call below.
	r := retrieval.New(matrix)

	for _, k := range p.config.Budgets {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.writer.Exists(k) && (cp == nil || cp.IsCompleted(k)) {
			p.logger.Info("budget already persisted, skipping", "k", k)
			continue
		}

		records, clamped := assembleBudget(queries, queryVecs, docs, r, k)
		if clamped {
			p.logger.Warn("budget exceeds corpus size, clamped",
				"k", k, "corpus", r.Size())
			if cp != nil && !containsBudget(cp.ClampedBudgets, k) {
				cp.ClampedBudgets = append(cp.ClampedBudgets, k)
			}
		}

		records = filterNearDuplicates(records, p.config.DuplicateThreshold)
		records = applyDuplicatePolicy(records, p.config.DuplicatePolicy)

		if len(records) == 0 {
			p.logger.Warn("every retrieved record exceeded the near-duplicate threshold",
				"k", k, "threshold", p.config.DuplicateThreshold)
			if cp != nil && !containsBudget(cp.FilteredBudgets, k) {
				cp.FilteredBudgets = append(cp.FilteredBudgets, k)
			}
		}

		// Persist only after the budget's computation fully completed.
		if err := p.writer.Write(k, records); err != nil {
			return fmt.Errorf("failed to persist budget %d: %w", k, err)
		}
		p.logger.Info("persisted weak-label dataset", "k", k, "records", len(records))

		if cp != nil {
			cp.MarkCompleted(k)
			if err := p.checkpoints.Save(cp); err != nil {
				return fmt.Errorf("failed to save checkpoint: %w", err)
			}
		}
	}

	return nil
}

func (p *Pipeline) loadOrCreateCheckpoint(domain string) (*checkpoint.SweepCheckpoint, error) {
	if p.checkpoints == nil {
		return nil, nil
	}

	cp, err := p.checkpoints.Load(domain)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if cp == nil {
		cp = checkpoint.NewSweepCheckpoint(domain, p.config.Budgets)
		return cp, nil
	}

	if !equalBudgets(cp.Budgets, p.config.Budgets) {
		p.logger.Warn("budget range changed since last run, restarting sweep",
			"previous", cp.Budgets, "current", p.config.Budgets)
		cp = checkpoint.NewSweepCheckpoint(domain, p.config.Budgets)
	}
	return cp, nil
}

func equalBudgets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ScoreSweep executes the evaluation stage: for every configured budget it
// reads the persisted dataset, trains a classifier against the fixed test
// set, and collects the classification report. It depends only on the
// persisted artifacts, so it can run as a separate process from RunSweep.
//
// Budgets whose training set came out empty are skipped with a warning; the
// sweep continues with the remaining budgets.
func (p *Pipeline) ScoreSweep(ctx context.Context, test []types.TestRecord) ([]types.BudgetResult, error) {
	if len(test) == 0 {
		return nil, fmt.Errorf("test set is empty")
	}

	var cp *checkpoint.SweepCheckpoint
	if p.checkpoints != nil {
		var err error
		cp, err = p.checkpoints.Load(p.writer.Domain())
		if err != nil {
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
	}

	ev := evaluate.New()
	for _, k := range p.config.Budgets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		train, err := corpus.ReadDataset(p.writer.CSVPath(k))
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset for budget %d: %w", k, err)
		}

		result, err := p.trainer.TrainAndScore(ctx, train, test)
		if errors.Is(err, classifier.ErrNoTrainingData) {
			p.logger.Warn("no training records for budget, skipping classifier", "k", k)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to score budget %d: %w", k, err)
		}

		result.K = k
		if cp != nil {
			result.Clamped = containsBudget(cp.ClampedBudgets, k)
			result.AllFiltered = containsBudget(cp.FilteredBudgets, k)
		}
		ev.Add(result)

		p.logger.Info("scored budget",
			"k", k, "macro_f1", result.MacroF1, "target", result.TargetMetric)
	}

	return ev.Ranked(), nil
}

func containsBudget(budgets []int, k int) bool {
	for _, b := range budgets {
		if b == k {
			return true
		}
	}
	return false
}
