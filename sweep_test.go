package stancesweep

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stancelab/stancesweep/pkg/checkpoint"
	"github.com/stancelab/stancesweep/pkg/corpus"
	"github.com/stancelab/stancesweep/pkg/embedder"
	"github.com/stancelab/stancesweep/pkg/encode"
	"github.com/stancelab/stancesweep/pkg/types"
)

func newTestPipelineAt(t *testing.T, outDir, cpDir string, config *Config) (*Pipeline, *corpus.DatasetWriter, *checkpoint.Manager) {
	t.Helper()

	encoder, err := encode.NewEncoder(embedder.NewBOWClient(64), encode.Options{InMemoryCache: true})
	require.NoError(t, err)
	t.Cleanup(func() { encoder.Close() })

	writer, err := corpus.NewDatasetWriter(outDir, "energy")
	require.NoError(t, err)

	checkpoints, err := checkpoint.NewManager(cpDir)
	require.NoError(t, err)

	p, err := NewPipeline(encoder, writer, checkpoints, config, nil)
	require.NoError(t, err)
	return p, writer, checkpoints
}

func newTestPipeline(t *testing.T, config *Config) (*Pipeline, *corpus.DatasetWriter) {
	t.Helper()
	p, writer, _ := newTestPipelineAt(t, t.TempDir(), t.TempDir(), config)
	return p, writer
}

func sweepQueries() []types.Query {
	return []types.Query{
		{Text: "solar energy is clean and cheap", Label: types.StanceFavor},
		{Text: "coal power is dirty and costly", Label: types.StanceAgainst},
	}
}

func sweepDocs() []types.DomainDocument {
	// Vocabulary deliberately overlaps within each stance so bag-of-words
	// retrieval clusters the documents around the matching query.
	return []types.DomainDocument{
		{ID: "d0", Text: "clean solar panels cut energy bills"},
		{ID: "d1", Text: "cheap solar energy beats fossil fuel"},
		{ID: "d2", Text: "solar farms deliver clean cheap power"},
		{ID: "d3", Text: "dirty coal plants poison the air"},
		{ID: "d4", Text: "costly coal power pollutes rivers"},
		{ID: "d5", Text: "coal mining leaves dirty costly scars"},
		{ID: "d6", Text: "grid storage smooths solar energy supply"},
		{ID: "d7", Text: "coal subsidies hide the dirty real cost"},
		{ID: "d8", Text: "rooftop solar is cheap clean energy"},
		{ID: "d9", Text: "retiring coal power cuts dirty emissions"},
	}
}

func sweepTestSet() []types.TestRecord {
	return []types.TestRecord{
		{Text: "clean cheap solar energy wins", Label: types.StanceFavor},
		{Text: "solar power cuts bills and emissions", Label: types.StanceFavor},
		{Text: "dirty costly coal power must go", Label: types.StanceAgainst},
		{Text: "coal plants poison rivers and air", Label: types.StanceAgainst},
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	config := &Config{
		Budgets:            []int{2, 3},
		DuplicateThreshold: DefaultDuplicateThreshold,
		DuplicatePolicy:    PolicyKeep,
		MinDF:              2,
	}
	p, writer := newTestPipeline(t, config)
	ctx := context.Background()

	require.NoError(t, p.RunSweep(ctx, sweepQueries(), sweepDocs()))

	for _, k := range config.Budgets {
		require.True(t, writer.Exists(k), "budget %d must be persisted", k)

		records, err := corpus.ReadDataset(writer.CSVPath(k))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(records), k*2, "at most k records per query")
		assert.NotEmpty(t, records)
		for _, r := range records {
			assert.LessOrEqual(t, r.Score, DefaultDuplicateThreshold)
			assert.GreaterOrEqual(t, r.Score, -1.0)
			assert.Contains(t, []types.Stance{types.StanceFavor, types.StanceAgainst}, r.Label,
				"labels come from the retrieving queries")
		}
	}

	results, err := p.ScoreSweep(ctx, sweepTestSet())
	require.NoError(t, err)
	require.Len(t, results, len(config.Budgets))

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].TargetMetric, results[i].TargetMetric,
			"results must be ranked by target metric")
	}
	for _, r := range results {
		assert.Contains(t, config.Budgets, r.K)
		assert.False(t, r.AllFiltered)
		assert.Positive(t, r.TrainRecords)
	}
}

func TestRunSweepSkipsPersistedBudgets(t *testing.T) {
	config := &Config{Budgets: []int{2}, DuplicateThreshold: DefaultDuplicateThreshold, DuplicatePolicy: PolicyKeep, MinDF: 2}
	p, writer := newTestPipeline(t, config)
	ctx := context.Background()

	require.NoError(t, p.RunSweep(ctx, sweepQueries(), sweepDocs()))
	first, err := corpus.ReadDataset(writer.CSVPath(2))
	require.NoError(t, err)

	// A second run must leave the persisted dataset untouched.
	require.NoError(t, p.RunSweep(ctx, sweepQueries(), sweepDocs()))
	second, err := corpus.ReadDataset(writer.CSVPath(2))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScoreSweepWithoutEncoder(t *testing.T) {
	outDir, cpDir := t.TempDir(), t.TempDir()
	config := &Config{Budgets: []int{2}, DuplicateThreshold: DefaultDuplicateThreshold, DuplicatePolicy: PolicyKeep, MinDF: 2}
	ctx := context.Background()

	labeler, _, _ := newTestPipelineAt(t, outDir, cpDir, config)
	require.NoError(t, labeler.RunSweep(ctx, sweepQueries(), sweepDocs()))

	// The evaluation stage reads only the persisted datasets and the fixed
	// test set; it must work without any embedding client.
	writer, err := corpus.NewDatasetWriter(outDir, "energy")
	require.NoError(t, err)
	checkpoints, err := checkpoint.NewManager(cpDir)
	require.NoError(t, err)
	scorer, err := NewPipeline(nil, writer, checkpoints, config, nil)
	require.NoError(t, err)

	results, err := scorer.ScoreSweep(ctx, sweepTestSet())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].K)

	// Labeling without an encoder is a configuration error.
	assert.Error(t, scorer.RunSweep(ctx, sweepQueries(), sweepDocs()))
}

func TestRunSweepRecomputeKeepsWarningsUnique(t *testing.T) {
	outDir, cpDir := t.TempDir(), t.TempDir()
	// Budget 50 against a 10-document corpus is always clamped.
	config := &Config{Budgets: []int{50}, DuplicateThreshold: DefaultDuplicateThreshold, DuplicatePolicy: PolicyKeep, MinDF: 2}
	ctx := context.Background()

	p, writer, checkpoints := newTestPipelineAt(t, outDir, cpDir, config)
	require.NoError(t, p.RunSweep(ctx, sweepQueries(), sweepDocs()))

	// Removing the dataset forces the next run to recompute the budget, as
	// after a crash between the dataset write and the checkpoint save.
	require.NoError(t, os.Remove(writer.CSVPath(50)))
	require.NoError(t, p.RunSweep(ctx, sweepQueries(), sweepDocs()))

	cp, err := checkpoints.Load("energy")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, []int{50}, cp.ClampedBudgets, "recomputing a budget must not duplicate its warning")
}

func TestRunSweepRejectsEmptyInputs(t *testing.T) {
	p, _ := newTestPipeline(t, &Config{Budgets: []int{2}})
	ctx := context.Background()

	assert.Error(t, p.RunSweep(ctx, nil, sweepDocs()))
	assert.ErrorIs(t, p.RunSweep(ctx, sweepQueries(), nil), corpus.ErrEmptyCorpus)
}

func TestNewPipelineValidatesConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name:    "no budgets",
			config:  &Config{},
			wantErr: ErrNoBudgets,
		},
		{
			name:    "unordered budgets",
			config:  &Config{Budgets: []int{10, 5}},
			wantErr: ErrBudgetOrder,
		},
		{
			name:    "repeated budgets",
			config:  &Config{Budgets: []int{5, 5}},
			wantErr: ErrBudgetOrder,
		},
		{
			name:    "non-positive budget",
			config:  &Config{Budgets: []int{0, 5}},
			wantErr: ErrBudgetOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewPipeline(nil, nil, nil, tt.config, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewPipelineRejectsUnknownPolicy(t *testing.T) {
	t.Parallel()
	_, err := NewPipeline(nil, nil, nil, &Config{Budgets: []int{5}, DuplicatePolicy: "merge"}, nil)
	assert.Error(t, err)
}

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()
	c := NewDefaultConfig()
	require.Len(t, c.Budgets, 20)
	assert.Equal(t, 5, c.Budgets[0])
	assert.Equal(t, 100, c.Budgets[19])
	assert.Equal(t, DefaultDuplicateThreshold, c.DuplicateThreshold)
	assert.Equal(t, PolicyKeep, c.DuplicatePolicy)
}
