package stancesweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stancelab/stancesweep/pkg/retrieval"
	"github.com/stancelab/stancesweep/pkg/types"
	"github.com/stancelab/stancesweep/pkg/vector"
)

func testCorpus() ([]types.Query, [][]float32, []types.DomainDocument, *retrieval.Retriever) {
	queries := []types.Query{
		{Text: "renewables are the future", Label: types.StanceFavor},
		{Text: "coal keeps the lights on", Label: types.StanceAgainst},
	}
	queryVecs := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}
	docs := []types.DomainDocument{
		{ID: "d0", Text: "solar slashes bills"},
		{ID: "d1", Text: "coal plants are reliable"},
		{ID: "d2", Text: "wind farms scale fast"},
		{ID: "d3", Text: "mines employ thousands"},
	}
	matrix := [][]float32{
		{0.9, 0.1, 0},
		{0.1, 0.9, 0},
		{0.8, 0.2, 0},
		{0.2, 0.8, 0},
	}
	return queries, queryVecs, docs, retrieval.New(matrix)
}

func TestAssembleBudget(t *testing.T) {
	t.Parallel()
	queries, queryVecs, docs, r := testCorpus()

	records, clamped := assembleBudget(queries, queryVecs, docs, r, 2)
	require.False(t, clamped)
	require.Len(t, records, 4, "each query contributes exactly k records")

	// Per-query results are concatenated in query order, best match first.
	assert.Equal(t, "d0", records[0].ID)
	assert.Equal(t, types.StanceFavor, records[0].Label)
	assert.Equal(t, queries[0].Text, records[0].QueryText)
	assert.Equal(t, "d1", records[2].ID)
	assert.Equal(t, types.StanceAgainst, records[2].Label)

	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.Score, -1.0)
		assert.LessOrEqual(t, rec.Score, 1.0)
	}
}

func TestAssembleBudgetScoreRoundTrip(t *testing.T) {
	t.Parallel()
	queries, queryVecs, docs, _ := testCorpus()
	matrix := [][]float32{
		{0.9, 0.1, 0},
		{0.1, 0.9, 0},
		{0.8, 0.2, 0},
		{0.2, 0.8, 0},
	}
	r := retrieval.New(matrix)

	docIndex := make(map[string]int, len(docs))
	for i, d := range docs {
		docIndex[d.ID] = i
	}
	queryIndex := make(map[string]int, len(queries))
	for i, q := range queries {
		queryIndex[q.Text] = i
	}

	records, _ := assembleBudget(queries, queryVecs, docs, r, 3)
	for _, rec := range records {
		want := vector.CosineSimilarity(queryVecs[queryIndex[rec.QueryText]], matrix[docIndex[rec.ID]])
		assert.InDelta(t, want, rec.Score, 1e-12, "score must equal recomputed cosine similarity")
	}
}

func TestAssembleBudgetClampsToCorpus(t *testing.T) {
	t.Parallel()
	queries, queryVecs, docs, r := testCorpus()

	records, clamped := assembleBudget(queries, queryVecs, docs, r, 50)
	assert.True(t, clamped)
	assert.Len(t, records, len(docs)*len(queries))
}

func TestFilterNearDuplicates(t *testing.T) {
	t.Parallel()
	records := []types.LabeledRecord{
		{ID: "a", Score: 0.99},
		{ID: "b", Score: 0.95},
		{ID: "c", Score: 0.40},
	}

	kept := filterNearDuplicates(records, 0.95)
	require.Len(t, kept, 2, "scores at the threshold survive, above it do not")
	assert.Equal(t, "b", kept[0].ID)
	assert.Equal(t, "c", kept[1].ID)
}

func TestFilterNearDuplicatesAllFiltered(t *testing.T) {
	t.Parallel()
	records := []types.LabeledRecord{
		{ID: "a", Score: 0.98},
		{ID: "b", Score: 0.97},
	}
	assert.Empty(t, filterNearDuplicates(records, 0.95))
}

func TestApplyDuplicatePolicy(t *testing.T) {
	t.Parallel()
	// d1 is retrieved by three queries: against twice, favor once.
	records := []types.LabeledRecord{
		{ID: "d1", QueryText: "q1", Label: types.StanceAgainst},
		{ID: "d2", QueryText: "q1", Label: types.StanceAgainst},
		{ID: "d1", QueryText: "q2", Label: types.StanceFavor},
		{ID: "d1", QueryText: "q3", Label: types.StanceAgainst},
	}

	tests := []struct {
		name   string
		policy DuplicatePolicy
		want   []struct {
			id    string
			label types.Stance
		}
	}{
		{
			name:   "keep retains every retrieval",
			policy: PolicyKeep,
			want: []struct {
				id    string
				label types.Stance
			}{
				{"d1", types.StanceAgainst},
				{"d2", types.StanceAgainst},
				{"d1", types.StanceFavor},
				{"d1", types.StanceAgainst},
			},
		},
		{
			name:   "first keeps earliest retrieval per document",
			policy: PolicyFirst,
			want: []struct {
				id    string
				label types.Stance
			}{
				{"d1", types.StanceAgainst},
				{"d2", types.StanceAgainst},
			},
		},
		{
			name:   "vote keeps majority label per document",
			policy: PolicyVote,
			want: []struct {
				id    string
				label types.Stance
			}{
				{"d1", types.StanceAgainst},
				{"d2", types.StanceAgainst},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyDuplicatePolicy(records, tt.policy)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w.id, got[i].ID)
				assert.Equal(t, w.label, got[i].Label)
			}
		})
	}
}

func TestMajorityVoteTieGoesToEarliestQuery(t *testing.T) {
	t.Parallel()
	records := []types.LabeledRecord{
		{ID: "d1", QueryText: "q1", Label: types.StanceFavor},
		{ID: "d1", QueryText: "q2", Label: types.StanceAgainst},
	}

	got := majorityVote(records)
	require.Len(t, got, 1)
	assert.Equal(t, types.StanceFavor, got[0].Label)
	assert.Equal(t, "q1", got[0].QueryText)
}
