package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/generation"
)

// MockConceptService implements generation.ConceptService for testing
type MockConceptService struct {
	// GenerateCandidatesFn allows test cases to mock the GenerateCandidates behavior
	GenerateCandidatesFn func(ctx context.Context, dialogue domain.Dialogue, n int) ([]domain.Candidate, error)

	// EvaluateCandidateFn allows test cases to mock the EvaluateCandidate behavior
	EvaluateCandidateFn func(
		ctx context.Context,
		dialogue domain.Dialogue,
		candidate domain.Candidate,
		history *domain.InteractionHistory,
	) (domain.Critique, error)

	// RefineConceptFn allows test cases to mock the RefineConcept behavior
	RefineConceptFn func(
		ctx context.Context,
		candidate domain.Candidate,
		critique domain.Critique,
		history *domain.InteractionHistory,
	) (string, error)

	// Default response values
	Candidates []domain.Candidate
	Critique   domain.Critique
	Refined    string
	Err        error

	mu sync.Mutex

	// Call tracking for verification
	GenerateCalls []int
	EvaluateCalls []EvaluateCall
	RefineCalls   []RefineCall
}

// EvaluateCall records one EvaluateCandidate invocation.
type EvaluateCall struct {
	Candidate domain.Candidate
	History   *domain.InteractionHistory
}

// RefineCall records one RefineConcept invocation.
type RefineCall struct {
	Candidate domain.Candidate
	Critique  domain.Critique
	History   *domain.InteractionHistory
}

var _ generation.ConceptService = (*MockConceptService)(nil)

// GenerateCandidates implements the generation.ConceptService interface
func (m *MockConceptService) GenerateCandidates(
	ctx context.Context,
	dialogue domain.Dialogue,
	n int,
) ([]domain.Candidate, error) {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, n)
	m.mu.Unlock()

	if m.GenerateCandidatesFn != nil {
		return m.GenerateCandidatesFn(ctx, dialogue, n)
	}
	return m.Candidates, m.Err
}

// EvaluateCandidate implements the generation.ConceptService interface
func (m *MockConceptService) EvaluateCandidate(
	ctx context.Context,
	dialogue domain.Dialogue,
	candidate domain.Candidate,
	history *domain.InteractionHistory,
) (domain.Critique, error) {
	m.mu.Lock()
	m.EvaluateCalls = append(m.EvaluateCalls, EvaluateCall{Candidate: candidate, History: history})
	m.mu.Unlock()

	if m.EvaluateCandidateFn != nil {
		return m.EvaluateCandidateFn(ctx, dialogue, candidate, history)
	}
	return m.Critique, m.Err
}

// RefineConcept implements the generation.ConceptService interface
func (m *MockConceptService) RefineConcept(
	ctx context.Context,
	candidate domain.Candidate,
	critique domain.Critique,
	history *domain.InteractionHistory,
) (string, error) {
	m.mu.Lock()
	m.RefineCalls = append(m.RefineCalls, RefineCall{Candidate: candidate, Critique: critique, History: history})
	m.mu.Unlock()

	if m.RefineConceptFn != nil {
		return m.RefineConceptFn(ctx, candidate, critique, history)
	}
	return m.Refined, m.Err
}

// Counts returns how many times each method was called.
func (m *MockConceptService) Counts() (generate, evaluate, refine int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls), len(m.EvaluateCalls), len(m.RefineCalls)
}

// NewMockConceptServiceWithScore creates a MockConceptService that proposes
// one candidate and always critiques it with the given score.
func NewMockConceptServiceWithScore(label string, score int) *MockConceptService {
	verdict := domain.VerdictReject
	if score >= domain.MaxScore {
		verdict = domain.VerdictApprove
	}
	return &MockConceptService{
		Candidates: []domain.Candidate{{Label: label, Rationale: "the dialogue keeps returning to it"}},
		Critique:   domain.Critique{Verdict: verdict, Score: score, Text: "scored by mock"},
		Refined:    label + " (refined)",
	}
}
