// Package mocks provides centralized mock implementations for testing.
//
// Each mock has function fields that override a method and falls back to
// default values or, for MockResultStore, an in-memory implementation.
// Calls are recorded so tests can assert on how collaborators were used:
//
//	import "github.com/phrazzld/scry-concepts/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    concepts := mocks.NewMockConceptServiceWithScore("recursion", 4)
//	    concepts.RefineConceptFn = func(ctx context.Context, c domain.Candidate,
//	        cr domain.Critique, h *domain.InteractionHistory) (string, error) {
//	        return "tail recursion", nil
//	    }
//
//	    // Use the mock in your test...
//	}
package mocks
