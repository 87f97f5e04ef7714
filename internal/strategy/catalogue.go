// Package strategy picks a named solution strategy for each work item from
// a per-topic catalogue, preferring strategies the item text points at and
// strategies that have worked for the learner before.
package strategy

import (
	"slices"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

// Strategy is a named solution approach with a one-line explanation.
type Strategy struct {
	Name        string
	Explanation string
}

// Catalogue maps topics, and failing that categories, to ordered strategy
// lists. Order matters: the first-listed strategy wins score ties.
type Catalogue struct {
	byTopic    map[string][]Strategy
	byCategory map[curriculum.Category][]Strategy
	fallback   []Strategy
}

// NewCatalogue returns an empty catalogue that answers fallback for
// topics with no other entry.
func NewCatalogue(fallback ...Strategy) *Catalogue {
	return &Catalogue{
		byTopic:    make(map[string][]Strategy),
		byCategory: make(map[curriculum.Category][]Strategy),
		fallback:   fallback,
	}
}

// AddTopic appends strategies for one topic.
func (c *Catalogue) AddTopic(topicID string, s ...Strategy) *Catalogue {
	c.byTopic[topicID] = append(c.byTopic[topicID], s...)
	return c
}

// AddCategory appends strategies used by topics of a category that have
// no topic entry.
func (c *Catalogue) AddCategory(cat curriculum.Category, s ...Strategy) *Catalogue {
	c.byCategory[cat] = append(c.byCategory[cat], s...)
	return c
}

// For returns the candidate strategies for a topic: its own entry, else
// its category's, else the fallback.
func (c *Catalogue) For(t curriculum.Topic) []Strategy {
	if s, ok := c.byTopic[t.ID]; ok && len(s) > 0 {
		return slices.Clone(s)
	}
	if s, ok := c.byCategory[t.Category]; ok && len(s) > 0 {
		return slices.Clone(s)
	}
	return slices.Clone(c.fallback)
}

// Explain returns the explanation registered for a strategy name.
func (c *Catalogue) Explain(name string) (string, bool) {
	lists := [][]Strategy{c.fallback}
	for _, s := range c.byTopic {
		lists = append(lists, s)
	}
	for _, s := range c.byCategory {
		lists = append(lists, s)
	}
	for _, l := range lists {
		for _, s := range l {
			if s.Name == name {
				return s.Explanation, true
			}
		}
	}
	return "", false
}

// Default returns the built-in catalogue.
func Default() *Catalogue {
	c := NewCatalogue(Strategy{"direct_computation", "Computing the answer straight from the definition"})

	c.AddTopic("arithmetic",
		Strategy{"binary_exponentiation", "Using binary exponentiation for O(log n) complexity"},
		Strategy{"modular_reduction", "Applying modular arithmetic properties to prevent overflow"},
		Strategy{"euclidean_algorithm", "Leveraging GCD properties for efficient computation"},
	)
	c.AddTopic("number_theory",
		Strategy{"prime_factorization", "Decomposing into prime factors for mathematical insight"},
		Strategy{"sieve_methods", "Sieving a range once to answer many primality questions"},
		Strategy{"probabilistic_testing", "Trading certainty for speed with randomized witnesses"},
	)
	c.AddTopic("linear_algebra",
		Strategy{"gaussian_elimination", "Systematic reduction to solve linear systems"},
		Strategy{"lu_decomposition", "Factoring once so repeated solves are cheap"},
		Strategy{"iterative_methods", "Converging on the answer without forming dense factors"},
	)
	c.AddTopic("optimization",
		Strategy{"gradient_methods", "Following gradient for optimization convergence"},
		Strategy{"newton_methods", "Using curvature for quadratic convergence near the optimum"},
		Strategy{"interior_point", "Staying inside the feasible region along the central path"},
	)

	c.AddCategory(curriculum.CategoryCoreMath,
		Strategy{"numerical_integration", "Approximating the continuous quantity with weighted samples"},
		Strategy{"newton_methods", "Using curvature for quadratic convergence near the optimum"},
		Strategy{"iterative_methods", "Converging on the answer without forming dense factors"},
	)
	c.AddCategory(curriculum.CategoryAdvancedMath,
		Strategy{"graph_search", "Exploring the structure edge by edge from the source"},
		Strategy{"dynamic_programming", "Reusing overlapping subproblem answers"},
		Strategy{"gradient_methods", "Following gradient for optimization convergence"},
	)
	c.AddCategory(curriculum.CategoryTheoreticalCS,
		Strategy{"backtracking_search", "Pruning the search tree as soon as a branch fails"},
		Strategy{"reduction", "Mapping the instance onto a problem with a known solver"},
		Strategy{"approximation", "Settling for a provably near-optimal answer"},
	)
	c.AddCategory(curriculum.CategoryCuttingEdge,
		Strategy{"state_vector_simulation", "Tracking every amplitude of the register explicitly"},
		Strategy{"amplitude_amplification", "Rotating amplitude toward marked states"},
		Strategy{"phase_estimation", "Reading eigenphases through the quantum Fourier transform"},
	)
	return c
}
