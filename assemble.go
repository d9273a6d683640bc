package stancesweep

import (
	"github.com/stancelab/stancesweep/pkg/retrieval"
	"github.com/stancelab/stancesweep/pkg/types"
)

// assembleBudget builds the weakly-labeled dataset for one budget k: every
// query contributes its top-k domain matches, each match becomes a
// LabeledRecord carrying the query's label and the cosine score, and the
// per-query results are concatenated in query order. Returns the records
// before filtering, plus whether k had to be clamped to the corpus size.
func assembleBudget(queries []types.Query, queryVecs [][]float32, docs []types.DomainDocument, r *retrieval.Retriever, k int) ([]types.LabeledRecord, bool) {
	clamped := k > r.Size()

	records := make([]types.LabeledRecord, 0, k*len(queries))
	for i, q := range queries {
		for _, m := range r.TopK(queryVecs[i], k) {
			records = append(records, types.LabeledRecord{
				ID:        docs[m.Index].ID,
				QueryText: q.Text,
				Text:      docs[m.Index].Text,
				Label:     q.Label,
				Score:     m.Score,
			})
		}
	}
	return records, clamped
}

// filterNearDuplicates drops records whose similarity exceeds the threshold.
// A score that high means the query text itself leaked into the domain
// corpus rather than a different document expressing the same stance.
func filterNearDuplicates(records []types.LabeledRecord, threshold float64) []types.LabeledRecord {
	kept := make([]types.LabeledRecord, 0, len(records))
	for _, r := range records {
		if r.Score > threshold {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// applyDuplicatePolicy resolves documents retrieved by multiple queries.
func applyDuplicatePolicy(records []types.LabeledRecord, policy DuplicatePolicy) []types.LabeledRecord {
	switch policy {
	case PolicyFirst:
		return firstOnly(records)
	case PolicyVote:
		return majorityVote(records)
	default:
		return records
	}
}

func firstOnly(records []types.LabeledRecord) []types.LabeledRecord {
	seen := make(map[string]struct{}, len(records))
	kept := make([]types.LabeledRecord, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		kept = append(kept, r)
	}
	return kept
}

// majorityVote collapses each document to one record carrying its majority
// label. Ties resolve to the label of the earliest retrieving query, and the
// surviving record is the earliest one carrying the winning label, so the
// outcome is deterministic.
func majorityVote(records []types.LabeledRecord) []types.LabeledRecord {
	type tally struct {
		votes map[types.Stance]int
		first map[types.Stance]int // earliest record index per label
	}

	tallies := make(map[string]*tally)
	var ids []string // documents in first-appearance order
	for i, r := range records {
		t, ok := tallies[r.ID]
		if !ok {
			t = &tally{
				votes: make(map[types.Stance]int),
				first: make(map[types.Stance]int),
			}
			tallies[r.ID] = t
			ids = append(ids, r.ID)
		}
		t.votes[r.Label]++
		if _, seen := t.first[r.Label]; !seen {
			t.first[r.Label] = i
		}
	}

	kept := make([]types.LabeledRecord, 0, len(ids))
	for _, id := range ids {
		t := tallies[id]

		var winner types.Stance
		bestVotes, bestFirst := -1, -1
		for label, votes := range t.votes {
			first := t.first[label]
			if votes > bestVotes || (votes == bestVotes && first < bestFirst) {
				winner, bestVotes, bestFirst = label, votes, first
			}
		}
		kept = append(kept, records[t.first[winner]])
	}
	return kept
}
