package stancesweep

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stancelab/stancesweep/pkg/config"
	"github.com/stancelab/stancesweep/pkg/corpus"
	"github.com/stancelab/stancesweep/pkg/types"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Derive and persist one weakly-labeled dataset per budget",
	Long: `Label runs the retrieval stage of the sweep.

For every budget k, each exemplar query retrieves its k nearest domain
documents by embedding similarity, every match inherits the query's stance
label, and the resulting dataset is persisted under
<output>/<domain>/k=<k>/. Budgets that already have a persisted dataset are
skipped, so an interrupted sweep resumes where it left off.`,
	RunE: runLabel,
}

func init() {
	rootCmd.AddCommand(labelCmd)
	registerSweepFlags(labelCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queries, docs, err := loadLabelInputs(cfg)
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return pipeline.RunSweep(ctx, queries, docs)
}

// loadLabelInputs loads the query and domain CSVs and removes domain
// documents whose normalized text collides with a query or test record.
func loadLabelInputs(cfg *config.Config) ([]types.Query, []types.DomainDocument, error) {
	if cfg.Data.QueryPath == "" || cfg.Data.DomainPath == "" {
		return nil, nil, fmt.Errorf("query and corpus paths are required")
	}

	queries, err := corpus.LoadQueries(cfg.Data.QueryPath)
	if err != nil {
		return nil, nil, err
	}
	docs, err := corpus.LoadDomain(cfg.Data.DomainPath)
	if err != nil {
		return nil, nil, err
	}

	// The test set only contributes its texts to deduplication here; it is
	// optional for the labeling stage.
	var tests []types.TestRecord
	if cfg.Data.TestPath != "" {
		tests, err = corpus.LoadTestSet(cfg.Data.TestPath)
		if err != nil {
			return nil, nil, err
		}
	}

	docs, err = corpus.Dedup(docs, queries, tests)
	if err != nil {
		return nil, nil, err
	}
	return queries, docs, nil
}
