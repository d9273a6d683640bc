// Package checkpoint tracks sweep progress on disk so an interrupted run can
// resume without repeating retrieval for budgets it already persisted.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidDomain is returned when a domain name contains path traversal or
// invalid characters.
var ErrInvalidDomain = errors.New("invalid domain name: contains path traversal or invalid characters")

// SweepCheckpoint records the state of a (possibly partial) budget sweep.
type SweepCheckpoint struct {
	RunID  string `json:"run_id"`
	Domain string `json:"domain"`

	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`

	// Budgets persists the requested sweep so a resume can detect a changed
	// configuration instead of silently mixing two sweeps.
	Budgets []int `json:"budgets"`
	// Completed lists budgets whose datasets were fully written.
	Completed []int `json:"completed,omitempty"`

	// Degeneracies kept for reproducibility auditing.
	ClampedBudgets  []int `json:"clamped_budgets,omitempty"`
	FilteredBudgets []int `json:"filtered_budgets,omitempty"`
}

// NewSweepCheckpoint creates a checkpoint for a fresh run.
func NewSweepCheckpoint(domain string, budgets []int) *SweepCheckpoint {
	now := time.Now()
	return &SweepCheckpoint{
		RunID:         uuid.NewString(),
		Domain:        domain,
		CreatedAt:     now,
		LastUpdatedAt: now,
		Budgets:       budgets,
	}
}

// MarkCompleted records that a budget's dataset was fully persisted.
func (c *SweepCheckpoint) MarkCompleted(k int) {
	if !c.IsCompleted(k) {
		c.Completed = append(c.Completed, k)
	}
}

// IsCompleted reports whether a budget already finished.
func (c *SweepCheckpoint) IsCompleted(k int) bool {
	for _, done := range c.Completed {
		if done == k {
			return true
		}
	}
	return false
}

// Manager persists sweep checkpoints as JSON files, one per domain.
type Manager struct {
	dir string
}

// NewManager creates a checkpoint manager.
// If dir is empty, uses os.TempDir()/stancesweep-checkpoints.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "stancesweep-checkpoints")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &Manager{dir: dir}, nil
}

// Dir returns the checkpoint directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// validateDomain checks that the domain name is safe for use in file paths.
func validateDomain(domain string) error {
	if domain == "" {
		return ErrInvalidDomain
	}
	if strings.Contains(domain, "..") {
		return ErrInvalidDomain
	}
	if strings.ContainsAny(domain, `/\`) {
		return ErrInvalidDomain
	}
	if strings.ContainsRune(domain, '\x00') {
		return ErrInvalidDomain
	}
	return nil
}

func (m *Manager) path(domain string) (string, error) {
	if err := validateDomain(domain); err != nil {
		return "", err
	}
	return filepath.Join(m.dir, fmt.Sprintf("sweep_%s.json", domain)), nil
}

// Save persists the checkpoint to disk atomically.
func (m *Manager) Save(checkpoint *SweepCheckpoint) error {
	checkpoint.LastUpdatedAt = time.Now()

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	path, err := m.path(checkpoint.Domain)
	if err != nil {
		return err
	}

	// Write to a temporary file first, then rename for atomic write
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}
	return nil
}

// Load retrieves a domain's checkpoint, or nil when none exists.
func (m *Manager) Load(domain string) (*SweepCheckpoint, error) {
	path, err := m.path(domain)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var checkpoint SweepCheckpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// Delete removes a domain's checkpoint.
func (m *Manager) Delete(domain string) error {
	path, err := m.path(domain)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}
