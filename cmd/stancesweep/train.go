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

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and score one classifier per persisted budget",
	Long: `Train runs the evaluation stage of the sweep.

For every budget with a persisted dataset, a bag-of-n-grams linear stance
classifier is trained on the weak labels and scored against the fixed
held-out test set. The ranked comparison table is printed to stdout and
written as report.yaml and report.csv under <output>/<domain>/.`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	registerSweepFlags(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Data.TestPath == "" {
		return fmt.Errorf("test path is required")
	}
	test, err := corpus.LoadTestSet(cfg.Data.TestPath)
	if err != nil {
		return err
	}

	pipeline, err := buildScorePipeline(cfg, log)
	if err != nil {
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
