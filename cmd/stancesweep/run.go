package stancesweep

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stancelab/stancesweep/pkg/corpus"
	"github.com/stancelab/stancesweep/pkg/evaluate"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full sweep: label every budget, then train and rank",
	Long: `Run executes both stages in sequence: the retrieval stage persists one
weakly-labeled dataset per budget, then the evaluation stage trains one
classifier per dataset against the held-out test set and prints the ranked
comparison table.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(runCmd)
	registerSweepFlags(runCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Data.TestPath == "" {
		return fmt.Errorf("test path is required")
	}
	queries, docs, err := loadLabelInputs(cfg)
	if err != nil {
		return err
	}
	test, err := corpus.LoadTestSet(cfg.Data.TestPath)
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := pipeline.RunSweep(ctx, queries, docs); err != nil {
		return err
	}

	results, err := pipeline.ScoreSweep(ctx, test)
	if err != nil {
		return err
	}

	ev := evaluate.New()
	for _, r := range results {
		ev.Add(r)
	}

	if err := ev.WriteTable(os.Stdout); err != nil {
		return err
	}

	reportDir := filepath.Join(cfg.Data.OutputDir, cfg.Data.Domain)
	if err := ev.WriteReports(reportDir); err != nil {
		return err
	}
	log.Info("wrote reports", "dir", reportDir)
	return nil
}
