package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey identifies one object under the listed bucket prefix.
type ObjectKey string

// String returns the key as a string.
func (k ObjectKey) String() string {
	return string(k)
}

// IsDirectoryMarker reports whether the key is a placeholder for a "folder"
// rather than a real object.
func (k ObjectKey) IsDirectoryMarker() bool {
	return k == "" || strings.HasSuffix(string(k), "/")
}

// KeySet is the deduplicated, sorted sequence of keys available for sampling.
// Sampling addresses it by index.
type KeySet []ObjectKey

// IndexPair holds two distinct positions into a KeySet, in draw order.
type IndexPair struct {
	I int
	J int
}

// Pair is two distinct keys drawn from a KeySet.
type Pair struct {
	Source    ObjectKey
	Candidate ObjectKey
}

// Resolve maps index pairs back onto the keys they address.
func (ks KeySet) Resolve(idx []IndexPair) []Pair {
	pairs := make([]Pair, 0, len(idx))
	for _, p := range idx {
		pairs = append(pairs, Pair{Source: ks[p.I], Candidate: ks[p.J]})
	}
	return pairs
}

// PairRecord is the rendered output for one pair.
type PairRecord struct {
	Source    string `json:"source"`
	Candidate string `json:"candidate"`
}

// Mode selects the uniqueness rule the sampler enforces.
type Mode string

const (
	// ModeCombination forbids repeating an unordered pair; a key may appear
	// in several pairs.
	ModeCombination Mode = "combination"
	// ModeDisjoint forbids reusing a key across pairs.
	ModeDisjoint Mode = "disjoint"
)

// Validate checks that the mode is known.
func (m Mode) Validate() error {
	switch m {
	case ModeCombination, ModeDisjoint:
		return nil
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeCombination, ModeDisjoint, string(m))
	}
}

// Format selects the output encoding.
type Format string

const (
	FormatLines Format = "lines"
	FormatJSON  Format = "json"
)

// Validate checks that the format is known.
func (f Format) Validate() error {
	switch f {
	case FormatLines, FormatJSON:
		return nil
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatLines, FormatJSON, string(f))
	}
}

// RunID represents a UUIDv7 identifier for one invocation.
type RunID string

// NewRunID generates a fresh UUIDv7 run identifier.
func NewRunID() (RunID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run-id: %w", err)
	}
	return RunID(id.String()), nil
}

// Validate checks that the RunID is a valid UUIDv7.
func (r RunID) Validate() error {
	if r == "" {
		return fmt.Errorf("run-id cannot be empty")
	}
	id, err := uuid.Parse(string(r))
	if err != nil {
		return fmt.Errorf("run-id must be a valid UUID: %w", err)
	}
	if id.Version() != uuid.Version(7) {
		return fmt.Errorf("run-id must be a UUIDv7, got v%d", id.Version())
	}
	return nil
}

// String returns the run ID as a string.
func (r RunID) String() string {
	return string(r)
}
