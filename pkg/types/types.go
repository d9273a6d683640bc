package types

import (
	"fmt"
	"strings"
)

// Stance is a document's expressed position toward the target topic.
type Stance string

const (
	// StanceFavor marks a document arguing for the target.
	StanceFavor Stance = "favor"
	// StanceAgainst marks a document arguing against the target.
	StanceAgainst Stance = "against"
	// StanceNone marks a document with no discernible position.
	StanceNone Stance = "none"
)

// PolarStances are the two classes that enter the headline metric.
// The neutral class is excluded, mirroring stance-detection competition scoring.
var PolarStances = []Stance{StanceFavor, StanceAgainst}

// ParseStance converts a raw label string to a Stance.
func ParseStance(s string) (Stance, error) {
	switch Stance(strings.ToLower(strings.TrimSpace(s))) {
	case StanceFavor:
		return StanceFavor, nil
	case StanceAgainst:
		return StanceAgainst, nil
	case StanceNone:
		return StanceNone, nil
	default:
		return "", fmt.Errorf("unknown stance label %q", s)
	}
}

// Query is one hand-labeled exemplar statement used for retrieval.
// Queries are immutable once loaded.
type Query struct {
	Text  string
	Label Stance
}

// DomainDocument is one record from the unlabeled domain corpus.
type DomainDocument struct {
	ID   string
	Text string
}

// TestRecord is one held-out evaluation example. The test set is fixed
// across the whole sweep and is never produced by retrieval.
type TestRecord struct {
	Text  string
	Label Stance
}
