package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/stancelab/stancesweep/pkg/types"
)

// DatasetWriter persists one weakly-labeled dataset per swept budget under
// <baseDir>/<domain>/k=<k>/. Each dataset is written as CSV (the hand-off
// artifact consumed by the trainer) with a Parquet twin for columnar
// consumers. Writes are atomic: the file appears only after the budget's
// in-memory computation fully completed.
type DatasetWriter struct {
	baseDir string
	domain  string
}

// NewDatasetWriter creates a writer rooted at baseDir for the named domain.
func NewDatasetWriter(baseDir, domain string) (*DatasetWriter, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, domain), 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	return &DatasetWriter{baseDir: baseDir, domain: domain}, nil
}

// Domain returns the domain this writer persists datasets for.
func (w *DatasetWriter) Domain() string {
	return w.domain
}

// BudgetDir returns the directory holding the artifacts for budget k.
func (w *DatasetWriter) BudgetDir(k int) string {
	return filepath.Join(w.baseDir, w.domain, fmt.Sprintf("k=%d", k))
}

// CSVPath returns the CSV artifact path for budget k.
func (w *DatasetWriter) CSVPath(k int) string {
	return filepath.Join(w.BudgetDir(k), "weak_labels.csv")
}

// Exists reports whether budget k already has a persisted dataset. The sweep
// uses this to resume without repeating retrieval.
func (w *DatasetWriter) Exists(k int) bool {
	_, err := os.Stat(w.CSVPath(k))
	return err == nil
}

// parquetRecord mirrors the CSV columns for the Parquet twin.
type parquetRecord struct {
	ID    string  `parquet:"id"`
	Query string  `parquet:"query"`
	Text  string  `parquet:"text"`
	Label string  `parquet:"label"`
	Score float64 `parquet:"score"`
}

// Write persists the dataset for budget k.
func (w *DatasetWriter) Write(k int, records []types.LabeledRecord) error {
	dir := w.BudgetDir(k)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create budget directory: %w", err)
	}

	if err := w.writeCSV(k, records); err != nil {
		return err
	}

	parquetRecords := make([]parquetRecord, len(records))
	for i, r := range records {
		parquetRecords[i] = parquetRecord{
			ID:    r.ID,
			Query: r.QueryText,
			Text:  r.Text,
			Label: string(r.Label),
			Score: r.Score,
		}
	}
	path := filepath.Join(dir, "weak_labels.parquet")
	if err := parquet.WriteFile(path, parquetRecords); err != nil {
		return fmt.Errorf("failed to write parquet dataset: %w", err)
	}
	return nil
}

func (w *DatasetWriter) writeCSV(k int, records []types.LabeledRecord) error {
	path := w.CSVPath(k)

	// Write to a temporary file first, then rename for atomic write
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"id", "query", "text", "label", "score"}); err != nil {
		f.Close()
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	for _, r := range records {
		row := []string{r.ID, r.QueryText, r.Text, string(r.Label), strconv.FormatFloat(r.Score, 'f', -1, 64)}
		if err := cw.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close dataset file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename dataset file: %w", err)
	}
	return nil
}

// ReadDataset loads a previously persisted weak-label dataset, so the
// classifier stage can run as a separate process from retrieval.
func ReadDataset(path string) ([]types.LabeledRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	records := make([]types.LabeledRecord, 0, len(t.rows))
	for i := range t.rows {
		id, err := t.cell(i, "id")
		if err != nil {
			return nil, err
		}
		query, err := t.cell(i, "query")
		if err != nil {
			return nil, err
		}
		text, err := t.cell(i, "text")
		if err != nil {
			return nil, err
		}
		raw, err := t.cell(i, "label")
		if err != nil {
			return nil, err
		}
		label, err := types.ParseStance(raw)
		if err != nil {
			return nil, &SchemaError{Path: path, Column: "label", Row: i + 1, Reason: err.Error()}
		}
		rawScore, err := t.cell(i, "score")
		if err != nil {
			return nil, err
		}
		score, err := strconv.ParseFloat(rawScore, 64)
		if err != nil {
			return nil, &SchemaError{Path: path, Column: "score", Row: i + 1, Reason: "not a number"}
		}
		records = append(records, types.LabeledRecord{
			ID:        id,
			QueryText: query,
			Text:      text,
			Label:     label,
			Score:     score,
		})
	}
	return records, nil
}
