package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/generation"
)

// ErrNoCandidates is returned when generation yields no usable candidate.
var ErrNoCandidates = errors.New("no valid concept candidates generated")

// Config bounds the refinement loop.
type Config struct {
	// BeamWidth is the number of candidates generated up front
	BeamWidth int

	// MaxLoops caps refinement passes
	MaxLoops int

	// AcceptScore ends refinement once a critique reaches it
	AcceptScore int
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{BeamWidth: 1, MaxLoops: 3, AcceptScore: 4}
}

// Result is the outcome of one extraction.
type Result struct {
	Candidate domain.Candidate
	Critique  domain.Critique
	Loops     int
	History   domain.InteractionHistory
}

// Extractor runs the generate, critique and refine loop against a
// ConceptService.
type Extractor struct {
	service generation.ConceptService
	config  Config
	logger  *slog.Logger
}

// NewExtractor creates an Extractor. A non-positive BeamWidth or a negative
// AcceptScore takes its default, AcceptScore is capped at the maximum score
// and a negative MaxLoops is treated as zero.
func NewExtractor(service generation.ConceptService, config Config, logger *slog.Logger) *Extractor {
	defaults := DefaultConfig()
	if config.BeamWidth <= 0 {
		config.BeamWidth = defaults.BeamWidth
	}
	if config.AcceptScore < 0 {
		config.AcceptScore = defaults.AcceptScore
	}
	if config.AcceptScore > domain.MaxScore {
		config.AcceptScore = domain.MaxScore
	}
	if config.MaxLoops < 0 {
		config.MaxLoops = 0
	}

	return &Extractor{
		service: service,
		config:  config,
		logger:  logger.With("component", "concept_extractor"),
	}
}

// Extract names the latent concept of dialogue. It generates BeamWidth
// candidates, critiques each, keeps the best, then refines it until a
// critique reaches AcceptScore or MaxLoops passes have run. Service errors
// end the run immediately.
func (e *Extractor) Extract(ctx context.Context, dialogue domain.Dialogue, report domain.ProgressFunc) (Result, error) {
	agent := NewAgentContext()

	report.Report(domain.StageGeneration, "Generating concept candidates")
	candidates, err := e.service.GenerateCandidates(ctx, dialogue, e.config.BeamWidth)
	if err != nil {
		return Result{}, fmt.Errorf("candidate generation: %w", err)
	}
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}

	report.Report(domain.StageCriticism, "Evaluating candidates")
	var best domain.Candidate
	var bestCritique domain.Critique
	bestScore := -1
	for _, cand := range candidates {
		critique, err := e.service.EvaluateCandidate(ctx, dialogue, cand, agent.History())
		if err != nil {
			return Result{}, fmt.Errorf("candidate evaluation: %w", err)
		}
		agent.AddCandidate(cand)
		agent.AddCritique(critique)

		if critique.Score > bestScore {
			best, bestCritique, bestScore = cand, critique, critique.Score
		}
	}

	e.logger.DebugContext(ctx, "selected best candidate",
		"label", best.Label,
		"score", bestScore,
		"candidates", len(candidates))

	for bestCritique.Score < e.config.AcceptScore && agent.Loops() < e.config.MaxLoops {
		pass := agent.Loops() + 1
		report.Report(domain.RefinementStage(pass),
			fmt.Sprintf("Refinement iteration %d (score: %d)", pass, bestCritique.Score))

		label, err := e.service.RefineConcept(ctx, best, bestCritique, agent.History())
		if err != nil {
			return Result{}, fmt.Errorf("refinement %d: %w", pass, err)
		}
		agent.AddRefinement(label)
		best = domain.Candidate{Label: label, Rationale: best.Rationale}

		critique, err := e.service.EvaluateCandidate(ctx, dialogue, best, agent.History())
		if err != nil {
			return Result{}, fmt.Errorf("refinement %d evaluation: %w", pass, err)
		}
		agent.AddCritique(critique)
		bestCritique = critique

		e.logger.DebugContext(ctx, "refinement pass finished",
			"pass", pass,
			"label", label,
			"score", critique.Score)
	}

	return Result{
		Candidate: best,
		Critique:  bestCritique,
		Loops:     agent.Loops(),
		History:   agent.Summary(),
	}, nil
}
