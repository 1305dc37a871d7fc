package extraction

import "github.com/phrazzld/scry-concepts/internal/domain"

// AgentContext records everything produced during one extraction run.
type AgentContext struct {
	candidates  []domain.Candidate
	critiques   []domain.Critique
	refinements []string
	loops       int
}

// NewAgentContext returns an empty context.
func NewAgentContext() *AgentContext {
	return &AgentContext{}
}

// AddCandidate records a generator output.
func (c *AgentContext) AddCandidate(candidate domain.Candidate) {
	c.candidates = append(c.candidates, candidate)
}

// AddCritique records a critic output.
func (c *AgentContext) AddCritique(critique domain.Critique) {
	c.critiques = append(c.critiques, critique)
}

// AddRefinement records a refiner output and counts a completed loop.
func (c *AgentContext) AddRefinement(label string) {
	c.refinements = append(c.refinements, label)
	c.loops++
}

// Loops returns the number of refinement passes so far.
func (c *AgentContext) Loops() int {
	return c.loops
}

// Summary condenses the run so far. Previous labels list generated
// candidates first, then refinements, in the order they were produced.
func (c *AgentContext) Summary() domain.InteractionHistory {
	labels := make([]string, 0, len(c.candidates)+len(c.refinements))
	for _, cand := range c.candidates {
		labels = append(labels, cand.Label)
	}
	labels = append(labels, c.refinements...)

	scores := make([]int, 0, len(c.critiques))
	texts := make([]string, 0, len(c.critiques))
	for _, cr := range c.critiques {
		scores = append(scores, cr.Score)
		texts = append(texts, cr.Text)
	}

	return domain.InteractionHistory{
		TotalLoops:         c.loops,
		GeneratorAttempts:  len(c.candidates),
		CriticEvaluations:  len(c.critiques),
		RefinementAttempts: len(c.refinements),
		PreviousLabels:     labels,
		PreviousScores:     scores,
		PreviousCritiques:  texts,
	}
}

// History returns the summary for model calls, or nil before the first
// refinement.
func (c *AgentContext) History() *domain.InteractionHistory {
	if c.loops == 0 {
		return nil
	}
	summary := c.Summary()
	return &summary
}
