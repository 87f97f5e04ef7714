package content

import (
	"slices"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

// Template is a catalogue entry that a WorkItem is stamped from.
type Template struct {
	Difficulty         int
	Statement          string
	Signature          string
	TestCount          int
	ExpectedComplexity curriculum.Complexity
	Hints              []string
	Insight            string
	OptimalApproach    string
}

// topicTemplates groups a topic's templates under its item-id prefix.
type topicTemplates struct {
	prefix    string
	templates []Template // ascending difficulty
}

// Catalogue maps topic IDs to item templates.
type Catalogue struct {
	topics map[string]topicTemplates
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{topics: make(map[string]topicTemplates)}
}

// Add registers templates for a topic under an item-id prefix.
func (c *Catalogue) Add(topicID, prefix string, templates ...Template) {
	tt := c.topics[topicID]
	tt.prefix = prefix
	tt.templates = append(tt.templates, templates...)
	slices.SortStableFunc(tt.templates, func(a, b Template) int { return a.Difficulty - b.Difficulty })
	c.topics[topicID] = tt
}

// Topics returns the topic IDs with templates, sorted.
func (c *Catalogue) Topics() []string {
	out := make([]string, 0, len(c.topics))
	for id := range c.topics {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Prefix returns the item-id prefix for a topic.
func (c *Catalogue) Prefix(topicID string) (string, bool) {
	tt, ok := c.topics[topicID]
	return tt.prefix, ok
}

// Template picks the hardest template not above difficulty, falling back
// to the easiest one when all are harder.
func (c *Catalogue) Template(topicID string, difficulty int) (Template, bool) {
	tt, ok := c.topics[topicID]
	if !ok || len(tt.templates) == 0 {
		return Template{}, false
	}
	pick := tt.templates[0]
	for _, t := range tt.templates {
		if t.Difficulty <= difficulty {
			pick = t
		}
	}
	return pick, true
}

// DefaultCatalogue returns the built-in templates covering every topic of
// the default curriculum.
func DefaultCatalogue() *Catalogue {
	c := NewCatalogue()

	c.Add("arithmetic", "arith",
		Template{
			Difficulty:         1,
			Statement:          "Implement efficient modular exponentiation: compute (base^exponent) % modulus.",
			Signature:          "mod_exp(base, exp, mod int) int",
			TestCount:          3,
			ExpectedComplexity: curriculum.ComplexityLogarithmic,
			Hints: []string{
				"Binary exponentiation reduces the work from O(exp) to O(log exp)",
				"Express the exponent in binary form",
				"Take the modulus at each step to avoid overflow",
			},
			Insight:         "Fermat's little theorem can shortcut the exponent when mod is prime",
			OptimalApproach: "Binary exponentiation with modular reduction",
		},
		Template{
			Difficulty:         2,
			Statement:          "Implement the extended Euclidean algorithm: find gcd(a, b) and x, y with ax + by = gcd(a, b).",
			Signature:          "extended_gcd(a, b int) (g, x, y int)",
			TestCount:          3,
			ExpectedComplexity: curriculum.ComplexityLogarithmic,
			Hints: []string{
				"Work backwards from the Euclidean algorithm",
				"gcd(a, b) = gcd(b, a % b)",
				"Track coefficients through the recursion",
			},
			Insight:         "Bezout's identity guarantees x and y exist",
			OptimalApproach: "Recursive extended Euclidean algorithm",
		},
		Template{
			Difficulty:         3,
			Statement:          "Solve a system of congruences x = r[i] (mod m[i]) with pairwise coprime moduli using the Chinese remainder theorem.",
			Signature:          "chinese_remainder(remainders, moduli []int) int",
			TestCount:          3,
			ExpectedComplexity: curriculum.ComplexityLinearithm,
			Hints: []string{
				"x = sum(a[i] * M[i] * y[i]) mod M",
				"y[i] is the modular inverse of M[i] = M / m[i]",
				"Extended gcd finds modular inverses",
			},
			Insight:         "The solution is unique modulo the product of the moduli",
			OptimalApproach: "Direct CRT construction with modular inverses",
		},
	)

	c.Add("number_theory", "numth",
		Template{
			Difficulty:         1,
			Statement:          "Implement the Miller-Rabin primality test with k rounds.",
			Signature:          "is_prime(n uint64, k int) bool",
			TestCount:          3,
			ExpectedComplexity: curriculum.ComplexityLogarithmic,
			Hints: []string{
				"Write n-1 as 2^r * d with d odd",
				"Test random witnesses a in [2, n-2]",
				"Check a^d = 1 or a^(2^i d) = -1 (mod n)",
			},
			Insight:         "Strong witnesses extend Fermat's little theorem",
			OptimalApproach: "Miller-Rabin with carefully chosen witness bases",
		},
		Template{
			Difficulty:         2,
			Statement:          "Compute Euler's totient phi(n) from the prime factorization of n.",
			Signature:          "euler_totient(n int) int",
			TestCount:          3,
			ExpectedComplexity: curriculum.ComplexityLinear,
			Hints: []string{
				"Find prime factors by trial division up to sqrt(n)",
				"phi is multiplicative",
				"phi(p^k) = p^(k-1) * (p-1)",
			},
			Insight:         "phi(mn) = phi(m) phi(n) when gcd(m, n) = 1",
			OptimalApproach: "Prime factorization with running product",
		},
		Template{
			Difficulty:         3,
			Statement:          "Solve the discrete logarithm g^x = h (mod p) with baby-step giant-step.",
			Signature:          "discrete_log(g, h, p int) int",
			TestCount:          3,
			ExpectedComplexity: curriculum.ComplexityLinear,
			Hints: []string{
				"Set m = ceil(sqrt(p))",
				"Baby steps: store g^j for j in [0, m)",
				"Giant steps: h * g^(-mi) for i in [0, m)",
			},
			Insight:         "Trades O(sqrt p) memory for O(sqrt p) time",
			OptimalApproach: "Baby-step giant-step with a hash table",
		},
	)

	c.Add("linear_algebra", "linalg",
		Template{
			Difficulty:         1,
			Statement:          "Multiply two sparse matrices without touching zero entries.",
			Signature:          "sparse_multiply(a, b [][]float64) [][]float64",
			TestCount:          2,
			ExpectedComplexity: curriculum.ComplexityQuadratic,
			Hints: []string{
				"Store only non-zero elements",
				"Use a CSR or COO representation",
				"Skip multiplications by zero",
			},
			Insight:         "Sparsity turns O(n^3) into work proportional to non-zeros",
			OptimalApproach: "CSR format with iteration over non-zeros",
		},
		Template{
			Difficulty:         2,
			Statement:          "Compute all eigenvalues of a real symmetric matrix with the QR algorithm.",
			Signature:          "eigenvalues_qr(a [][]float64, eps float64) []float64",
			TestCount:          2,
			ExpectedComplexity: curriculum.ComplexityCubic,
			Hints: []string{
				"Reduce to Hessenberg form first",
				"Use shifts to accelerate convergence",
				"Deflate once a sub-diagonal entry is small",
			},
			Insight:         "Similarity transforms preserve eigenvalues",
			OptimalApproach: "QR with Wilkinson shift and deflation",
		},
		Template{
			Difficulty:         3,
			Statement:          "Implement the singular value decomposition with Golub-Kahan bidiagonalization.",
			Signature:          "svd(a [][]float64) (u [][]float64, s []float64, vt [][]float64)",
			TestCount:          2,
			ExpectedComplexity: curriculum.ComplexityCubic,
			Hints: []string{
				"Bidiagonalize with Householder reflections",
				"Diagonalize the bidiagonal matrix iteratively",
				"Accumulate the transforms into U and V",
			},
			Insight:         "The SVD exists for every matrix",
			OptimalApproach: "Bidiagonalization followed by implicit QR sweeps",
		},
	)

	c.Add("calculus", "calc",
		Template{
			Difficulty:         1,
			Statement:          "Integrate f over [a, b] to within epsilon using adaptive Simpson's rule.",
			Signature:          "adaptive_simpson(f func(float64) float64, a, b, eps float64) float64",
			TestCount:          1,
			ExpectedComplexity: curriculum.ComplexityLogarithmic,
			Hints: []string{
				"Compare Simpson on the whole interval with the sum of its halves",
				"Subdivide recursively while the error is too large",
				"Richardson extrapolation sharpens the estimate",
			},
			Insight:         "Adaptive methods spend work where the function is hard",
			OptimalApproach: "Recursive Simpson with error estimation",
		},
		Template{
			Difficulty:         2,
			Statement:          "Solve a stiff ODE system y' = f(t, y) with the implicit Radau IIA method.",
			Signature:          "radau_iia(f func(float64, []float64) []float64, t0, t1 float64, y0 []float64, steps int) [][]float64",
			TestCount:          1,
			ExpectedComplexity: curriculum.ComplexityCubic,
			Hints: []string{
				"Each step solves a nonlinear system with Newton iteration",
				"Control the step size from the local error",
				"Reuse the Jacobian across Newton iterations",
			},
			Insight:         "Implicit methods stay stable on stiff problems",
			OptimalApproach: "Radau IIA with adaptive Newton iteration",
		},
	)

	c.Add("optimization", "opt",
		Template{
			Difficulty:         1,
			Statement:          "Solve a linear program min c^T x subject to Ax = b, x >= 0 with an interior point method.",
			Signature:          "interior_point_lp(c []float64, a [][]float64, b []float64, eps float64) []float64",
			TestCount:          2,
			ExpectedComplexity: curriculum.ComplexityCubic,
			Hints: []string{
				"Follow the central path with a log barrier",
				"Each iteration solves the Newton system",
				"Adapt the step size with a centering parameter",
			},
			Insight:         "Interior point methods converge in polynomial time",
			OptimalApproach: "Mehrotra predictor-corrector with sparse linear algebra",
		},
	)

	c.Add("graph_theory", "graph",
		Template{
			Difficulty:         1,
			Statement:          "Compute the maximum flow from source to sink with the push-relabel algorithm.",
			Signature:          "max_flow(graph map[int][][2]int, source, sink int) int",
			TestCount:          2,
			ExpectedComplexity: curriculum.ComplexityCubic,
			Hints: []string{
				"Maintain a preflow and vertex heights",
				"Push excess downhill, relabel when stuck",
				"Gap relabeling prunes unreachable vertices",
			},
			Insight:         "Max flow equals min cut",
			OptimalApproach: "Push-relabel with FIFO selection and gap relabeling",
		},
	)

	c.Add("computational_complexity", "cc",
		Template{
			Difficulty:         1,
			Statement:          "Decide satisfiability of a CNF formula with DPLL.",
			Signature:          "dpll(clauses [][]int, vars int) bool",
			TestCount:          3,
			ExpectedComplexity: curriculum.ComplexityExponential,
			Hints: []string{
				"Propagate unit clauses before branching",
				"Eliminate pure literals",
				"Backtrack on conflicts",
			},
			Insight:         "SAT is NP-complete; pruning changes constants, not the class",
			OptimalApproach: "DPLL with unit propagation and pure literal elimination",
		},
	)

	c.Add("quantum_computing", "qc",
		Template{
			Difficulty:         1,
			Statement:          "Simulate Grover's search over n qubits on a state vector and return the marked index.",
			Signature:          "grover_search(n int, marked func(int) bool) int",
			TestCount:          2,
			ExpectedComplexity: curriculum.ComplexityExponential,
			Hints: []string{
				"The state vector has 2^n amplitudes",
				"The oracle flips the sign of marked amplitudes",
				"Diffusion reflects about the mean; repeat about sqrt(2^n) times",
			},
			Insight:         "Amplitude amplification gives a quadratic speedup",
			OptimalApproach: "State-vector simulation with oracle and diffusion operators",
		},
	)

	return c
}
