package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	cp := NewSweepCheckpoint("energy", []int{5, 10, 15})
	cp.MarkCompleted(5)
	cp.ClampedBudgets = []int{15}

	require.NoError(t, m.Save(cp))

	loaded, err := m.Load("energy")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cp.RunID, loaded.RunID)
	assert.Equal(t, []int{5, 10, 15}, loaded.Budgets)
	assert.True(t, loaded.IsCompleted(5))
	assert.False(t, loaded.IsCompleted(10))
	assert.Equal(t, []int{15}, loaded.ClampedBudgets)
}

func TestLoadMissing(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	loaded, err := m.Load("never-ran")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMarkCompletedIdempotent(t *testing.T) {
	cp := NewSweepCheckpoint("energy", []int{5})
	cp.MarkCompleted(5)
	cp.MarkCompleted(5)
	assert.Equal(t, []int{5}, cp.Completed)
}

func TestDelete(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	cp := NewSweepCheckpoint("energy", []int{5})
	require.NoError(t, m.Save(cp))
	require.NoError(t, m.Delete("energy"))

	loaded, err := m.Load("energy")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting twice is fine.
	assert.NoError(t, m.Delete("energy"))
}

func TestInvalidDomainNames(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	for _, domain := range []string{"", "../escape", "a/b", `a\b`, "nul\x00byte"} {
		_, err := m.Load(domain)
		assert.ErrorIs(t, err, ErrInvalidDomain, "domain %q", domain)
	}
}
