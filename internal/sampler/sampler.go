// Package sampler draws unique random pairs of indices into a key set.
package sampler

import (
	"fmt"
	"math/rand/v2"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// Source yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Sampler draws pairs using an injected random source.
type Sampler struct {
	src Source
}

// New creates a Sampler backed by src.
func New(src Source) *Sampler {
	return &Sampler{src: src}
}

// NewSeeded creates a Sampler whose output is reproducible for a given seed.
func NewSeeded(seed uint64) *Sampler {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewRandom creates a Sampler seeded from the runtime's random state.
func NewRandom() *Sampler {
	return New(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// MaxPairs returns how many pairs can be drawn from n keys under mode.
func MaxPairs(n int, mode model.Mode) int64 {
	if n < 2 {
		return 0
	}
	if mode == model.ModeDisjoint {
		return int64(n / 2)
	}
	nn := int64(n)
	return nn * (nn - 1) / 2
}

// Sample draws k pairs of distinct indices in [0, n).
//
// In combination mode no unordered pair is returned twice. Rejection sampling
// is used while k is at most half of the combination space; above that the
// full space is enumerated and partially shuffled so termination is bounded.
// In disjoint mode no index appears in more than one pair.
func (s *Sampler) Sample(n, k int, mode model.Mode) ([]model.IndexPair, error) {
	if k < 0 {
		return nil, fmt.Errorf("pair count must not be negative, got %d", k)
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if k == 0 {
		return []model.IndexPair{}, nil
	}
	if n < 2 {
		return nil, &InsufficientKeysError{Available: n, Requested: k}
	}

	limit := MaxPairs(n, mode)
	if int64(k) > limit {
		return nil, &CapacityError{Requested: k, Max: limit, Available: n, Mode: mode}
	}

	if mode == model.ModeDisjoint {
		return s.disjoint(n, k), nil
	}
	if 2*int64(k) > limit {
		return s.dense(n, k), nil
	}
	return s.rejection(n, k), nil
}

func (s *Sampler) rejection(n, k int) []model.IndexPair {
	seen := make(map[model.IndexPair]struct{}, k)
	out := make([]model.IndexPair, 0, k)

	for len(out) < k {
		i, j := s.src.IntN(n), s.src.IntN(n)
		if i == j {
			continue
		}
		canonical := model.IndexPair{I: min(i, j), J: max(i, j)}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, model.IndexPair{I: i, J: j})
	}

	return out
}

// dense is only reached when the combination space is at most 2k.
func (s *Sampler) dense(n, k int) []model.IndexPair {
	all := make([]model.IndexPair, 0, MaxPairs(n, model.ModeCombination))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			all = append(all, model.IndexPair{I: i, J: j})
		}
	}

	for p := 0; p < k; p++ {
		q := p + s.src.IntN(len(all)-p)
		all[p], all[q] = all[q], all[p]
		if s.src.IntN(2) == 1 {
			all[p].I, all[p].J = all[p].J, all[p].I
		}
	}

	return all[:k:k]
}

// disjoint runs a partial Fisher–Yates over [0, n) for the first 2k slots,
// tracking only displaced positions.
func (s *Sampler) disjoint(n, k int) []model.IndexPair {
	displaced := make(map[int]int, 2*k)
	at := func(i int) int {
		if v, ok := displaced[i]; ok {
			return v
		}
		return i
	}

	picked := make([]int, 2*k)
	for p := range picked {
		q := p + s.src.IntN(n-p)
		vp, vq := at(p), at(q)
		displaced[q] = vp
		picked[p] = vq
	}

	out := make([]model.IndexPair, 0, k)
	for p := 0; p < len(picked); p += 2 {
		out = append(out, model.IndexPair{I: picked[p], J: picked[p+1]})
	}
	return out
}
