package domain

// Stage identifies a step in the summarization pipeline.
type Stage string

// Pipeline stages, in the order a successful job reports them.
const (
	StageInitializing        Stage = "initializing"
	StageGeneration          Stage = "generation"
	StageCriticism           Stage = "criticism"
	StageRefinementLoop1     Stage = "refinement_loop_1"
	StageRefinementLoop2     Stage = "refinement_loop_2"
	StageRefinementLoop3     Stage = "refinement_loop_3"
	StageFlashcardGeneration Stage = "flashcard_generation"
	StageSavingResults       Stage = "saving_results"
	StageCompleted           Stage = "completed"
)

// AllStages lists every stage in pipeline order.
var AllStages = []Stage{
	StageInitializing,
	StageGeneration,
	StageCriticism,
	StageRefinementLoop1,
	StageRefinementLoop2,
	StageRefinementLoop3,
	StageFlashcardGeneration,
	StageSavingResults,
	StageCompleted,
}

// TotalStages is reported alongside task progress.
var TotalStages = len(AllStages)

// RefinementStage maps a 1-based refinement pass to its stage. Passes beyond
// the third report StageRefinementLoop3.
func RefinementStage(pass int) Stage {
	switch {
	case pass <= 1:
		return StageRefinementLoop1
	case pass == 2:
		return StageRefinementLoop2
	default:
		return StageRefinementLoop3
	}
}

// IsValid reports whether s is one of the known stages.
func (s Stage) IsValid() bool {
	for _, known := range AllStages {
		if s == known {
			return true
		}
	}
	return false
}

// ProgressFunc receives stage updates from a running job.
type ProgressFunc func(stage Stage, message string)

// Report invokes f if it is set. A nil ProgressFunc discards the update.
func (f ProgressFunc) Report(stage Stage, message string) {
	if f != nil {
		f(stage, message)
	}
}
