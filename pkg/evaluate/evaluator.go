// Package evaluate aggregates per-budget classification reports into the
// final ranked comparison table.
package evaluate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/stancelab/stancesweep/pkg/types"
)

// Evaluator collects one BudgetResult per swept budget and produces the
// table ranked by the two-class target metric. No significance testing is
// applied; the ranking is a raw sort.
type Evaluator struct {
	results []types.BudgetResult
}

// New creates an empty Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Add appends one budget's result.
func (e *Evaluator) Add(result types.BudgetResult) {
	e.results = append(e.results, result)
}

// Ranked returns the collected results sorted descending by target metric.
// Equal metrics keep ascending budget order so the ranking is deterministic.
func (e *Evaluator) Ranked() []types.BudgetResult {
	ranked := make([]types.BudgetResult, len(e.results))
	copy(ranked, e.results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TargetMetric != ranked[j].TargetMetric {
			return ranked[i].TargetMetric > ranked[j].TargetMetric
		}
		return ranked[i].K < ranked[j].K
	})
	return ranked
}

// WriteTable renders the ranked table in a fixed-width text format.
func (e *Evaluator) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%6s  %9s  %9s  %9s  %9s  %9s  %6s\n",
		"k", "f_favor", "f_against", "f_none", "macro_f1", "target", "train"); err != nil {
		return err
	}
	for _, r := range e.Ranked() {
		if _, err := fmt.Fprintf(w, "%6d  %9.4f  %9.4f  %9.4f  %9.4f  %9.4f  %6d\n",
			r.K,
			r.ClassF1(types.StanceFavor),
			r.ClassF1(types.StanceAgainst),
			r.ClassF1(types.StanceNone),
			r.MacroF1,
			r.TargetMetric,
			r.TrainRecords,
		); err != nil {
			return err
		}
	}
	return nil
}

// yamlReport is the shape of report.yaml.
type yamlReport struct {
	Budgets []yamlBudget `yaml:"budgets"`
}

type yamlBudget struct {
	K            int         `yaml:"k"`
	MacroF1      float64     `yaml:"macro_f1"`
	TargetMetric float64     `yaml:"target_metric"`
	TrainRecords int         `yaml:"train_records"`
	Clamped      bool        `yaml:"clamped,omitempty"`
	AllFiltered  bool        `yaml:"all_filtered,omitempty"`
	Classes      []yamlClass `yaml:"classes"`
}

type yamlClass struct {
	Class     string  `yaml:"class"`
	Precision float64 `yaml:"precision"`
	Recall    float64 `yaml:"recall"`
	F1        float64 `yaml:"f1"`
	Support   int     `yaml:"support"`
}

// WriteReports persists the ranked table as report.yaml and report.csv in
// the given directory.
func (e *Evaluator) WriteReports(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	ranked := e.Ranked()

	report := yamlReport{Budgets: make([]yamlBudget, len(ranked))}
	for i, r := range ranked {
		b := yamlBudget{
			K:            r.K,
			MacroF1:      r.MacroF1,
			TargetMetric: r.TargetMetric,
			TrainRecords: r.TrainRecords,
			Clamped:      r.Clamped,
			AllFiltered:  r.AllFiltered,
		}
		for _, c := range r.Classes {
			b.Classes = append(b.Classes, yamlClass{
				Class:     string(c.Class),
				Precision: c.Precision,
				Recall:    c.Recall,
				F1:        c.F1,
				Support:   c.Support,
			})
		}
		report.Budgets[i] = b
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write report.yaml: %w", err)
	}

	return e.writeCSV(filepath.Join(dir, "report.csv"), ranked)
}

func (e *Evaluator) writeCSV(path string, ranked []types.BudgetResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"k", "f1_favor", "f1_against", "f1_none", "macro_f1", "target_metric", "train_records"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, r := range ranked {
		row := []string{
			strconv.Itoa(r.K),
			formatFloat(r.ClassF1(types.StanceFavor)),
			formatFloat(r.ClassF1(types.StanceAgainst)),
			formatFloat(r.ClassF1(types.StanceNone)),
			formatFloat(r.MacroF1),
			formatFloat(r.TargetMetric),
			strconv.Itoa(r.TrainRecords),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
