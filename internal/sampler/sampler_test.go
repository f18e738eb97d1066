package sampler

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// scriptedSource replays a fixed sequence of draws.
type scriptedSource struct {
	t    *testing.T
	vals []int
	pos  int
}

func (s *scriptedSource) IntN(n int) int {
	if s.pos >= len(s.vals) {
		s.t.Fatalf("scripted source exhausted after %d draws", s.pos)
	}
	v := s.vals[s.pos]
	s.pos++
	if v < 0 || v >= n {
		s.t.Fatalf("scripted value %d out of range [0, %d)", v, n)
	}
	return v
}

func checkPairs(t *testing.T, n int, mode model.Mode, pairs []model.IndexPair) {
	t.Helper()
	seen := make(map[model.IndexPair]bool)
	used := make(map[int]bool)
	for _, p := range pairs {
		if p.I == p.J {
			t.Fatalf("self pair %+v", p)
		}
		if p.I < 0 || p.I >= n || p.J < 0 || p.J >= n {
			t.Fatalf("pair %+v out of range for n=%d", p, n)
		}
		canonical := model.IndexPair{I: min(p.I, p.J), J: max(p.I, p.J)}
		if seen[canonical] {
			t.Fatalf("duplicate pair %+v", canonical)
		}
		seen[canonical] = true
		if mode == model.ModeDisjoint {
			if used[p.I] || used[p.J] {
				t.Fatalf("key reused across pairs: %+v", p)
			}
			used[p.I], used[p.J] = true, true
		}
	}
}

func TestMaxPairs(t *testing.T) {
	tests := []struct {
		n    int
		mode model.Mode
		want int64
	}{
		{0, model.ModeCombination, 0},
		{1, model.ModeCombination, 0},
		{2, model.ModeCombination, 1},
		{4, model.ModeCombination, 6},
		{100000, model.ModeCombination, 4999950000},
		{1, model.ModeDisjoint, 0},
		{4, model.ModeDisjoint, 2},
		{5, model.ModeDisjoint, 2},
	}

	for _, tt := range tests {
		if got := MaxPairs(tt.n, tt.mode); got != tt.want {
			t.Errorf("MaxPairs(%d, %s) = %d, want %d", tt.n, tt.mode, got, tt.want)
		}
	}
}

func TestSample_ZeroPairs(t *testing.T) {
	s := NewSeeded(1)
	for _, n := range []int{0, 1, 5} {
		pairs, err := s.Sample(n, 0, model.ModeCombination)
		if err != nil {
			t.Fatalf("Sample(%d, 0) error = %v", n, err)
		}
		if len(pairs) != 0 {
			t.Fatalf("Sample(%d, 0) returned %d pairs", n, len(pairs))
		}
	}
}

func TestSample_NegativeCount(t *testing.T) {
	if _, err := NewSeeded(1).Sample(5, -1, model.ModeCombination); err == nil {
		t.Fatal("expected error for negative pair count")
	}
}

func TestSample_UnknownMode(t *testing.T) {
	if _, err := NewSeeded(1).Sample(5, 1, model.Mode("ordered")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestSample_InsufficientKeys(t *testing.T) {
	for _, n := range []int{0, 1} {
		for _, mode := range []model.Mode{model.ModeCombination, model.ModeDisjoint} {
			_, err := NewSeeded(1).Sample(n, 1, mode)
			var insufficient *InsufficientKeysError
			if !errors.As(err, &insufficient) {
				t.Fatalf("n=%d mode=%s: expected InsufficientKeysError, got %v", n, mode, err)
			}
			if insufficient.Available != n || insufficient.Requested != 1 {
				t.Fatalf("unexpected error fields: %+v", insufficient)
			}
		}
	}
}

func TestSample_ExceedsCapacity(t *testing.T) {
	tests := []struct {
		name    string
		n, k    int
		mode    model.Mode
		wantMax int64
	}{
		{"combination", 4, 7, model.ModeCombination, 6},
		{"disjoint", 5, 3, model.ModeDisjoint, 2},
		{"two keys", 2, 2, model.ModeCombination, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeeded(1).Sample(tt.n, tt.k, tt.mode)
			var capErr *CapacityError
			if !errors.As(err, &capErr) {
				t.Fatalf("expected CapacityError, got %v", err)
			}
			if capErr.Max != tt.wantMax {
				t.Fatalf("Max = %d, want %d", capErr.Max, tt.wantMax)
			}
			if !strings.Contains(err.Error(), "at most "+strconv.FormatInt(tt.wantMax, 10)) {
				t.Fatalf("error message %q does not report the maximum", err.Error())
			}
		})
	}
}

func TestSample_RejectsSelfAndDuplicatePairs(t *testing.T) {
	// n=4, k=2 stays on the rejection path (2k <= 6).
	src := &scriptedSource{t: t, vals: []int{0, 0, 1, 2, 2, 1, 0, 3}}

	pairs, err := New(src).Sample(4, 2, model.ModeCombination)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}

	want := []model.IndexPair{{I: 1, J: 2}, {I: 0, J: 3}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pairs[%d] = %+v, want %+v", i, pairs[i], want[i])
		}
	}
	if src.pos != len(src.vals) {
		t.Errorf("consumed %d draws, want %d", src.pos, len(src.vals))
	}
}

func TestSample_Combination(t *testing.T) {
	tests := []struct {
		name string
		n, k int
	}{
		{"sparse", 1000, 200},
		{"rejection boundary", 10, 22},
		{"dense", 10, 40},
		{"exhaustive", 10, 45},
		{"single pair", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(0); seed < 20; seed++ {
				pairs, err := NewSeeded(seed).Sample(tt.n, tt.k, model.ModeCombination)
				if err != nil {
					t.Fatalf("seed %d: Sample() error = %v", seed, err)
				}
				if len(pairs) != tt.k {
					t.Fatalf("seed %d: got %d pairs, want %d", seed, len(pairs), tt.k)
				}
				checkPairs(t, tt.n, model.ModeCombination, pairs)
			}
		})
	}
}

func TestSample_Disjoint(t *testing.T) {
	tests := []struct {
		name string
		n, k int
	}{
		{"few", 1000, 10},
		{"full even", 10, 5},
		{"full odd", 11, 5},
		{"single pair", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(0); seed < 20; seed++ {
				pairs, err := NewSeeded(seed).Sample(tt.n, tt.k, model.ModeDisjoint)
				if err != nil {
					t.Fatalf("seed %d: Sample() error = %v", seed, err)
				}
				if len(pairs) != tt.k {
					t.Fatalf("seed %d: got %d pairs, want %d", seed, len(pairs), tt.k)
				}
				checkPairs(t, tt.n, model.ModeDisjoint, pairs)
			}
		})
	}
}

func TestSample_SeedIsReproducible(t *testing.T) {
	a, err := NewSeeded(42).Sample(50, 10, model.ModeCombination)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSeeded(42).Sample(50, 10, model.ModeCombination)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pair %d differs between runs with the same seed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSample_Uniformity(t *testing.T) {
	// Each of the 6 combinations of 4 keys should be drawn about 1/6 of the time.
	const trials = 6000
	tests := []struct {
		name string
		k    int
		mode model.Mode
	}{
		{"rejection", 1, model.ModeCombination},
		{"disjoint", 1, model.ModeDisjoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeds := rand.New(rand.NewPCG(7, 11))
			counts := make(map[model.IndexPair]int)
			for trial := 0; trial < trials; trial++ {
				pairs, err := NewSeeded(seeds.Uint64()).Sample(4, tt.k, tt.mode)
				if err != nil {
					t.Fatal(err)
				}
				p := pairs[0]
				counts[model.IndexPair{I: min(p.I, p.J), J: max(p.I, p.J)}]++
			}

			if len(counts) != 6 {
				t.Fatalf("observed %d distinct combinations, want 6", len(counts))
			}
			// Expected 1000 each, standard deviation about 29.
			for pair, c := range counts {
				if c < 850 || c > 1150 {
					t.Errorf("combination %+v drawn %d times, expected about 1000", pair, c)
				}
			}
		})
	}
}

func TestSample_DenseCoversWholeSpace(t *testing.T) {
	// With n=4 and k=5 one combination is left out; over many seeds every
	// combination should be left out at least once.
	left := make(map[model.IndexPair]bool)
	seeds := rand.New(rand.NewPCG(3, 5))
	for trial := 0; trial < 600; trial++ {
		pairs, err := NewSeeded(seeds.Uint64()).Sample(4, 5, model.ModeCombination)
		if err != nil {
			t.Fatal(err)
		}
		checkPairs(t, 4, model.ModeCombination, pairs)
		drawn := make(map[model.IndexPair]bool)
		for _, p := range pairs {
			drawn[model.IndexPair{I: min(p.I, p.J), J: max(p.I, p.J)}] = true
		}
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				if !drawn[model.IndexPair{I: i, J: j}] {
					left[model.IndexPair{I: i, J: j}] = true
				}
			}
		}
	}
	if len(left) != 6 {
		t.Fatalf("only %d of 6 combinations were ever left out", len(left))
	}
}

func TestSample_DenseUniformity(t *testing.T) {
	// n=4, k=4 takes the dense path (2k > 6). Two of the six combinations are
	// left out per draw; each should be left out about a third of the time.
	const trials = 6000
	left := make(map[model.IndexPair]int)
	seeds := rand.New(rand.NewPCG(13, 17))

	for trial := 0; trial < trials; trial++ {
		pairs, err := NewSeeded(seeds.Uint64()).Sample(4, 4, model.ModeCombination)
		if err != nil {
			t.Fatal(err)
		}
		drawn := make(map[model.IndexPair]bool)
		for _, p := range pairs {
			drawn[model.IndexPair{I: min(p.I, p.J), J: max(p.I, p.J)}] = true
		}
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				if !drawn[model.IndexPair{I: i, J: j}] {
					left[model.IndexPair{I: i, J: j}]++
				}
			}
		}
	}

	if len(left) != 6 {
		t.Fatalf("only %d of 6 combinations were ever left out", len(left))
	}
	// Expected 2000 each, standard deviation about 37.
	for pair, c := range left {
		if c < 1800 || c > 2200 {
			t.Errorf("combination %+v left out %d times, expected about 2000", pair, c)
		}
	}
}

func TestSample_OrientationIsBalanced(t *testing.T) {
	const trials = 3000
	tests := []struct {
		name string
		n, k int
		mode model.Mode
	}{
		{"rejection", 6, 2, model.ModeCombination},
		{"dense", 4, 4, model.ModeCombination},
		{"disjoint", 6, 3, model.ModeDisjoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeds := rand.New(rand.NewPCG(19, 23))
			var ascending, total int
			for trial := 0; trial < trials; trial++ {
				pairs, err := NewSeeded(seeds.Uint64()).Sample(tt.n, tt.k, tt.mode)
				if err != nil {
					t.Fatal(err)
				}
				for _, p := range pairs {
					if p.I < p.J {
						ascending++
					}
					total++
				}
			}

			// Each pair is oriented either way with probability 1/2; allow
			// about five standard deviations.
			half := total / 2
			slack := 5 * int(math.Sqrt(float64(total))/2)
			if ascending < half-slack || ascending > half+slack {
				t.Errorf("%d of %d pairs have source < candidate, expected about %d", ascending, total, half)
			}
		})
	}
}
