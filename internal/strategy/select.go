package strategy

import (
	"math"
	"slices"
	"strings"

	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/learner"
)

// Scoring weights.
const (
	BaseScore     = 0.5
	InferredBonus = 0.3
	HistoryWeight = 0.2
	DefaultRate   = 0.5
)

// keywordRules maps lowercase text fragments to the strategies they suggest.
var keywordRules = []struct {
	keywords []string
	strategy string
}{
	{[]string{"exponent", "power", "^"}, "binary_exponentiation"},
	{[]string{"mod"}, "modular_reduction"},
	{[]string{"gcd", "euclid", "coprime", "congruence"}, "euclidean_algorithm"},
	{[]string{"factoriz", "totient"}, "prime_factorization"},
	{[]string{"sieve", "primes up to"}, "sieve_methods"},
	{[]string{"primality", "miller-rabin", "witness"}, "probabilistic_testing"},
	{[]string{"system", "elimination", "row reduc"}, "gaussian_elimination"},
	{[]string{"decomposition", "factor the matrix"}, "lu_decomposition"},
	{[]string{"eigen", "sparse", "converge", "qr "}, "iterative_methods"},
	{[]string{"gradient", "descent", "minimiz"}, "gradient_methods"},
	{[]string{"newton", "hessian", "radau", "implicit"}, "newton_methods"},
	{[]string{"interior point", "linear program", "barrier"}, "interior_point"},
	{[]string{"integrat", "simpson", "quadrature"}, "numerical_integration"},
	{[]string{"flow", "shortest path", "graph", "dijkstra"}, "graph_search"},
	{[]string{"dynamic programming", "subproblem", "memoiz"}, "dynamic_programming"},
	{[]string{"satisf", "dpll", "backtrack"}, "backtracking_search"},
	{[]string{"reduce to", "np-hard", "np-complete"}, "reduction"},
	{[]string{"approximat"}, "approximation"},
	{[]string{"state vector", "state-vector", "qubit"}, "state_vector_simulation"},
	{[]string{"grover", "amplitude", "diffusion"}, "amplitude_amplification"},
	{[]string{"fourier", "phase", "shor"}, "phase_estimation"},
}

// Infer returns, sorted and deduplicated, the strategy names an item's
// statement, hints, insight and optimal approach point at. A strategy
// whose name appears verbatim (underscores as spaces) is also inferred.
func Infer(item content.WorkItem, candidates []Strategy) []string {
	text := strings.ToLower(strings.Join(append([]string{item.Statement, item.Insight, item.OptimalApproach}, item.Hints...), "\n"))

	var out []string
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				out = append(out, rule.strategy)
				break
			}
		}
	}
	for _, s := range candidates {
		if strings.Contains(text, strings.ReplaceAll(s.Name, "_", " ")) {
			out = append(out, s.Name)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SuccessRate returns the fraction of successful attempts made with the
// named strategy, or DefaultRate when none used it.
func SuccessRate(name string, history []learner.Attempt) float64 {
	var used, ok int
	for _, a := range history {
		if a.Strategy != name {
			continue
		}
		used++
		if a.Success {
			ok++
		}
	}
	if used == 0 {
		return DefaultRate
	}
	return float64(ok) / float64(used)
}

// Score combines the base score, the inference bonus and the weighted
// history rate, capped at 1.
func Score(inferred bool, rate float64) float64 {
	s := BaseScore + HistoryWeight*rate
	if inferred {
		s += InferredBonus
	}
	return math.Min(1.0, s)
}

// Choice is the selected strategy with the alternatives that lost.
type Choice struct {
	Strategy   Strategy
	Confidence float64
	Backups    []string
	Inferred   []string
}

// Select scores every candidate strategy for the topic and returns the
// highest. Ties go to the first-listed candidate. history is the
// learner's attempt history on the topic. A catalogue with no candidates
// yields a zero Choice.
func (c *Catalogue) Select(t curriculum.Topic, item content.WorkItem, history []learner.Attempt) Choice {
	candidates := c.For(t)
	if len(candidates) == 0 {
		return Choice{}
	}
	inferred := Infer(item, candidates)

	best, bestScore := 0, math.Inf(-1)
	for i, s := range candidates {
		score := Score(slices.Contains(inferred, s.Name), SuccessRate(s.Name, history))
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	backups := make([]string, 0, len(candidates)-1)
	for i, s := range candidates {
		if i != best {
			backups = append(backups, s.Name)
		}
	}
	return Choice{
		Strategy:   candidates[best],
		Confidence: bestScore,
		Backups:    backups,
		Inferred:   inferred,
	}
}
