package extraction

import (
	"testing"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentContextHistoryNilBeforeRefinement(t *testing.T) {
	c := NewAgentContext()
	c.AddCandidate(domain.Candidate{Label: "a"})
	c.AddCritique(domain.Critique{Verdict: domain.VerdictReject, Score: 2, Text: "vague"})

	assert.Nil(t, c.History())
	assert.Equal(t, 0, c.Loops())
}

func TestAgentContextSummary(t *testing.T) {
	c := NewAgentContext()
	c.AddCandidate(domain.Candidate{Label: "a"})
	c.AddCandidate(domain.Candidate{Label: "b"})
	c.AddCritique(domain.Critique{Score: 1, Text: "weak"})
	c.AddCritique(domain.Critique{Score: 2, Text: "better"})
	c.AddRefinement("b2")
	c.AddCritique(domain.Critique{Score: 3, Text: "close"})

	history := c.History()
	require.NotNil(t, history)
	assert.Equal(t, domain.InteractionHistory{
		TotalLoops:         1,
		GeneratorAttempts:  2,
		CriticEvaluations:  3,
		RefinementAttempts: 1,
		PreviousLabels:     []string{"a", "b", "b2"},
		PreviousScores:     []int{1, 2, 3},
		PreviousCritiques:  []string{"weak", "better", "close"},
	}, *history)
}

func TestAgentContextHistoryIsACopy(t *testing.T) {
	c := NewAgentContext()
	c.AddCandidate(domain.Candidate{Label: "a"})
	c.AddRefinement("a2")

	history := c.History()
	history.PreviousLabels[0] = "mutated"

	assert.Equal(t, []string{"a", "a2"}, c.Summary().PreviousLabels)
}
