package evaluate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

// RandomConfig parameterizes the Random evaluator.
type RandomConfig struct {
	// PassProbability is the chance each test case passes.
	PassProbability float64
	// OptimalProbability is the chance the observed complexity matches
	// the expected one.
	OptimalProbability float64
	// MinSeconds and MaxSeconds bound the simulated duration.
	MinSeconds float64
	MaxSeconds float64
}

// DefaultRandomConfig returns a 70% per-test pass rate, 60% optimal
// solutions and durations between 10 seconds and 3 minutes.
func DefaultRandomConfig() RandomConfig {
	return RandomConfig{
		PassProbability:    0.7,
		OptimalProbability: 0.6,
		MinSeconds:         10,
		MaxSeconds:         180,
	}
}

// Random simulates test execution from a seeded source. The same seed
// and submission order reproduce the same outcomes.
type Random struct {
	cfg RandomConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random evaluator seeded with seed.
func NewRandom(seed uint64, cfg RandomConfig) (*Random, error) {
	if cfg.PassProbability < 0 || cfg.PassProbability > 1 {
		return nil, fmt.Errorf("pass probability %v outside [0, 1]", cfg.PassProbability)
	}
	if cfg.OptimalProbability < 0 || cfg.OptimalProbability > 1 {
		return nil, fmt.Errorf("optimal probability %v outside [0, 1]", cfg.OptimalProbability)
	}
	if cfg.MinSeconds < 0 || cfg.MaxSeconds < cfg.MinSeconds {
		return nil, fmt.Errorf("invalid duration bounds [%v, %v]", cfg.MinSeconds, cfg.MaxSeconds)
	}
	return &Random{cfg: cfg, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}, nil
}

func (r *Random) Evaluate(ctx context.Context, sub Submission) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tests := max(1, sub.Item.TestCount)
	passed := 0
	for range tests {
		if r.rng.Float64() < r.cfg.PassProbability {
			passed++
		}
	}

	observed := sub.Item.ExpectedComplexity
	if r.rng.Float64() >= r.cfg.OptimalProbability {
		observed = worseThan(observed)
	}

	return Outcome{
		Passed:             passed == tests,
		PassRate:           float64(passed) / float64(tests),
		ObservedComplexity: observed,
		DurationSeconds:    r.cfg.MinSeconds + r.rng.Float64()*(r.cfg.MaxSeconds-r.cfg.MinSeconds),
	}, nil
}

// worseThan returns the next slower complexity class. An unknown or the
// slowest class maps to a class different from itself.
func worseThan(c curriculum.Complexity) curriculum.Complexity {
	all := curriculum.AllComplexities()
	i := slices.Index(all, c)
	switch {
	case i < 0:
		return curriculum.ComplexityQuadratic
	case i == len(all)-1:
		return all[i-1]
	default:
		return all[i+1]
	}
}
