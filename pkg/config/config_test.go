package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Sweep.BudgetMin)
	assert.Equal(t, 100, cfg.Sweep.BudgetMax)
	assert.Equal(t, 5, cfg.Sweep.BudgetStep)
	assert.Equal(t, 0.95, cfg.Sweep.DuplicateThreshold)
	assert.Equal(t, "keep", cfg.Sweep.DuplicatePolicy)
	assert.Equal(t, "embedeverything", cfg.Embedding.Provider)
	assert.Equal(t, 2, cfg.Classifier.MinDF)
}

func TestBudgetsExpansion(t *testing.T) {
	cfg := &Config{Sweep: SweepConfig{BudgetMin: 5, BudgetMax: 20, BudgetStep: 5}}
	budgets, err := cfg.Budgets()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 10, 15, 20}, budgets)

	cfg = &Config{Sweep: SweepConfig{BudgetMin: 10, BudgetMax: 10, BudgetStep: 5}}
	budgets, err = cfg.Budgets()
	require.NoError(t, err)
	assert.Equal(t, []int{10}, budgets)
}

func TestBudgetsInvalidRange(t *testing.T) {
	tests := []struct {
		name  string
		sweep SweepConfig
	}{
		{
			name:  "zero step",
			sweep: SweepConfig{BudgetMin: 5, BudgetMax: 100, BudgetStep: 0},
		},
		{
			name:  "negative step",
			sweep: SweepConfig{BudgetMin: 5, BudgetMax: 100, BudgetStep: -5},
		},
		{
			name:  "non-positive min",
			sweep: SweepConfig{BudgetMin: 0, BudgetMax: 100, BudgetStep: 5},
		},
		{
			name:  "min above max",
			sweep: SweepConfig{BudgetMin: 50, BudgetMax: 10, BudgetStep: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Sweep: tt.sweep}
			budgets, err := cfg.Budgets()
			assert.Error(t, err)
			assert.Nil(t, budgets)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("STANCESWEEP_OUTPUT_DIR", "/tmp/sweep-out")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "/tmp/sweep-out", cfg.Data.OutputDir)
}
