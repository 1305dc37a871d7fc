package service_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/extraction"
	"github.com/phrazzld/scry-concepts/internal/generation"
	"github.com/phrazzld/scry-concepts/internal/mocks"
	"github.com/phrazzld/scry-concepts/internal/platform/logger"
	"github.com/phrazzld/scry-concepts/internal/platform/sqlite"
	"github.com/phrazzld/scry-concepts/internal/service"
	"github.com/phrazzld/scry-concepts/internal/store"
	"github.com/phrazzld/scry-concepts/internal/task"
	"github.com/phrazzld/scry-concepts/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageRecorder struct {
	stages []domain.Stage
}

func (r *stageRecorder) report(stage domain.Stage, _ string) {
	r.stages = append(r.stages, stage)
}

func newSummarizer(
	t *testing.T,
	concepts *mocks.MockConceptService,
	cards *mocks.MockFlashcardGenerator,
	results store.ResultStore,
) *service.SummarizationService {
	t.Helper()
	log := testLogger(t)
	extractor := extraction.NewExtractor(concepts, extraction.DefaultConfig(), log)
	svc, err := service.NewSummarizationService(extractor, cards, results, log)
	require.NoError(t, err)
	return svc
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	return log
}

func hiDialogue() domain.Dialogue {
	return domain.Dialogue{{Role: "user", Message: "hi"}}
}

func TestNewSummarizationServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	extractor := extraction.NewExtractor(mocks.NewMockConceptServiceWithScore("x", 4), extraction.DefaultConfig(), testLogger(t))
	cards := mocks.NewMockFlashcardGenerator()
	results := &mocks.MockResultStore{}

	_, err := service.NewSummarizationService(nil, cards, results, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewSummarizationService(extractor, nil, results, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewSummarizationService(extractor, cards, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	svc, err := service.NewSummarizationService(extractor, cards, results, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestSummarizationRunSavesDialogueAndFlashcard(t *testing.T) {
	t.Parallel()

	concepts := mocks.NewMockConceptServiceWithScore("greetings", 4)
	cards := mocks.NewMockFlashcardGenerator()
	results := &mocks.MockResultStore{}
	svc := newSummarizer(t, concepts, cards, results)

	rec := &stageRecorder{}
	label, err := svc.Run(context.Background(), task.Payload{Dialogue: hiDialogue(), UserID: 7}, rec.report)
	require.NoError(t, err)
	assert.Equal(t, "greetings", label)

	assert.Equal(t, []string{"greetings"}, cards.Concepts)

	require.Len(t, results.Dialogues, 1)
	assert.Equal(t, int64(7), results.Dialogues[0].UserID)
	assert.Equal(t, "greetings", results.Dialogues[0].Concept)
	assert.Equal(t, hiDialogue(), results.Dialogues[0].Dialogue)

	require.Len(t, results.Flashcards, 1)
	assert.Equal(t, "What is greetings?", results.Flashcards[0].Question)
	assert.Equal(t, int64(7), results.Flashcards[0].UserID)

	assert.Equal(t, []domain.Stage{
		domain.StageGeneration,
		domain.StageGeneration,
		domain.StageCriticism,
		domain.StageFlashcardGeneration,
		domain.StageSavingResults,
	}, rec.stages)
}

func TestSummarizationRunToleratesNilReporter(t *testing.T) {
	t.Parallel()

	svc := newSummarizer(t, mocks.NewMockConceptServiceWithScore("x", 4), mocks.NewMockFlashcardGenerator(), &mocks.MockResultStore{})
	label, err := svc.Run(context.Background(), task.Payload{Dialogue: hiDialogue()}, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", label)
}

func TestSummarizationGenerationFailureSkipsPersistence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		concepts *mocks.MockConceptService
		cards    *mocks.MockFlashcardGenerator
		wantErr  error
	}{
		{
			name:     "extraction fails",
			concepts: &mocks.MockConceptService{Err: generation.ErrContentBlocked},
			cards:    mocks.NewMockFlashcardGenerator(),
			wantErr:  generation.ErrContentBlocked,
		},
		{
			name:     "flashcard fails",
			concepts: mocks.NewMockConceptServiceWithScore("x", 4),
			cards:    &mocks.MockFlashcardGenerator{Err: generation.ErrInvalidResponse},
			wantErr:  generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			results := &mocks.MockResultStore{}
			svc := newSummarizer(t, tt.concepts, tt.cards, results)

			_, err := svc.Run(context.Background(), task.Payload{Dialogue: hiDialogue()}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var serr *service.SummarizationError
			assert.True(t, errors.As(err, &serr))

			dialogues, flashcards := results.Counts()
			assert.Zero(t, dialogues)
			assert.Zero(t, flashcards)
		})
	}
}

func TestSummarizationPersistenceFailure(t *testing.T) {
	t.Parallel()

	results := &mocks.MockResultStore{
		SaveFlashcardFn: func(context.Context, store.FlashcardRecord) error {
			return store.ErrTransactionFailed
		},
	}
	svc := newSummarizer(t, mocks.NewMockConceptServiceWithScore("x", 4), mocks.NewMockFlashcardGenerator(), results)

	_, err := svc.Run(context.Background(), task.Payload{Dialogue: hiDialogue()}, nil)
	assert.ErrorIs(t, err, service.ErrPersistence)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
}

func TestSummarizationUsesAtomicSaver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := testdb.SQLite(t)

	results := sqlite.NewResultStore(db, nil)
	cards := &mocks.MockFlashcardGenerator{Card: domain.Flashcard{Question: "", Answer: "no question"}}
	svc := newSummarizer(t, mocks.NewMockConceptServiceWithScore("x", 4), cards, results)

	_, err := svc.Run(ctx, task.Payload{Dialogue: hiDialogue()}, nil)
	require.ErrorIs(t, err, store.ErrInvalidEntity)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dialogues").Scan(&n))
	assert.Zero(t, n, "dialogue row should be rolled back with the flashcard")
}

func TestSummarizationThroughTaskManager(t *testing.T) {
	results := &mocks.MockResultStore{}
	svc := newSummarizer(t, mocks.NewMockConceptServiceWithScore("greetings", 4), mocks.NewMockFlashcardGenerator(), results)

	cfg := task.DefaultManagerConfig()
	cfg.PollInterval = 5 * time.Millisecond
	manager := task.NewManager(svc, cfg, testLogger(t))
	manager.Start(context.Background())
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	id, err := manager.Submit(context.Background(), hiDialogue(), 7)
	require.NoError(t, err)

	snap, ok := manager.Wait(context.Background(), id, 5*time.Second)
	require.True(t, ok)
	require.Equal(t, task.StatusCompleted, snap.Status, "error: %s", snap.Error)
	assert.Equal(t, "greetings", snap.Result)

	require.NotEmpty(t, snap.Progress)
	assert.Equal(t, domain.StageInitializing, snap.Progress[0].Stage)
	assert.Equal(t, domain.StageCompleted, snap.Progress[len(snap.Progress)-1].Stage)
	assert.Equal(t, domain.StageCompleted, snap.CurrentStage)

	dialogues, flashcards := results.Counts()
	assert.Equal(t, 1, dialogues)
	assert.Equal(t, 1, flashcards)
}

func TestSummarizationFailureThroughTaskManager(t *testing.T) {
	results := &mocks.MockResultStore{}
	concepts := &mocks.MockConceptService{Err: errors.New("provider exploded")}
	svc := newSummarizer(t, concepts, mocks.NewMockFlashcardGenerator(), results)

	cfg := task.DefaultManagerConfig()
	cfg.PollInterval = 5 * time.Millisecond
	manager := task.NewManager(svc, cfg, testLogger(t))
	manager.Start(context.Background())
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	id, err := manager.Submit(context.Background(), hiDialogue(), 7)
	require.NoError(t, err)

	snap, ok := manager.Wait(context.Background(), id, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, task.StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "provider exploded")

	dialogues, flashcards := results.Counts()
	assert.Zero(t, dialogues)
	assert.Zero(t, flashcards)
}
