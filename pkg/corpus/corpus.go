// Package corpus loads the hand-labeled query set, the held-out test set,
// and the unlabeled domain corpus, and enforces the input contract between
// them before the sweep starts.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/stancelab/stancesweep/pkg/types"
)

// table is one parsed CSV file with case-insensitive column lookup.
type table struct {
	path    string
	columns map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, &SchemaError{Path: path, Column: "header", Reason: "missing header row"}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, row)
	}

	return &table{path: path, columns: columns, rows: rows}, nil
}

// cell returns the value of a required column for a row, failing with a
// SchemaError when the column is absent or the cell is empty. Silent
// coercion is not allowed: a blank text field is invalid input, not a
// record to skip.
func (t *table) cell(row int, column string) (string, error) {
	idx, ok := t.columns[column]
	if !ok {
		return "", &SchemaError{Path: t.path, Column: column, Reason: "required column missing"}
	}
	if idx >= len(t.rows[row]) {
		return "", &SchemaError{Path: t.path, Column: column, Row: row + 1, Reason: "row too short"}
	}
	v := t.rows[row][idx]
	if strings.TrimSpace(v) == "" {
		return "", &SchemaError{Path: t.path, Column: column, Row: row + 1, Reason: "empty value"}
	}
	return v, nil
}

// LoadQueries reads the exemplar query set (columns: text, label).
func LoadQueries(path string) ([]types.Query, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	queries := make([]types.Query, 0, len(t.rows))
	for i := range t.rows {
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
		queries = append(queries, types.Query{Text: text, Label: label})
	}
	return queries, nil
}

// LoadTestSet reads the held-out evaluation set (columns: text, label).
func LoadTestSet(path string) ([]types.TestRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	records := make([]types.TestRecord, 0, len(t.rows))
	for i := range t.rows {
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
		records = append(records, types.TestRecord{Text: text, Label: label})
	}
	return records, nil
}

// LoadDomain reads the unlabeled domain corpus (columns: id, text; extra
// columns are ignored).
func LoadDomain(path string) ([]types.DomainDocument, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	docs := make([]types.DomainDocument, 0, len(t.rows))
	for i := range t.rows {
		id, err := t.cell(i, "id")
		if err != nil {
			return nil, err
		}
		text, err := t.cell(i, "text")
		if err != nil {
			return nil, err
		}
		docs = append(docs, types.DomainDocument{ID: id, Text: text})
	}
	return docs, nil
}

// NormalizeText is the preprocessing applied before equality comparisons:
// lowercase with runs of whitespace collapsed to a single space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Dedup removes domain documents whose normalized text matches any query or
// test record, so evaluation text can never leak into the weak-label pool.
// Returns ErrEmptyCorpus when nothing survives.
func Dedup(docs []types.DomainDocument, queries []types.Query, tests []types.TestRecord) ([]types.DomainDocument, error) {
	held := make(map[string]struct{}, len(queries)+len(tests))
	for _, q := range queries {
		held[NormalizeText(q.Text)] = struct{}{}
	}
	for _, r := range tests {
		held[NormalizeText(r.Text)] = struct{}{}
	}

	kept := make([]types.DomainDocument, 0, len(docs))
	for _, d := range docs {
		if _, clash := held[NormalizeText(d.Text)]; clash {
			continue
		}
		kept = append(kept, d)
	}

	if len(kept) == 0 {
		return nil, ErrEmptyCorpus
	}
	return kept, nil
}
