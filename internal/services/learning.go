package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vocab-backend/internal/models"
)

type vocabularyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.VocabularyItem, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.VocabularyItem, error)
	InCollection(ctx context.Context, vocabularyID, collectionID uuid.UUID) (bool, error)
}

type collectionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error)
}

type progressStore interface {
	EnsureRows(ctx context.Context, collectionID uuid.UUID, vocabularyIDs []uuid.UUID) error
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.ItemProgress, error)
	Mutate(ctx context.Context, vocabularyID, collectionID uuid.UUID, fn func(p *models.ItemProgress) error) (*models.ItemProgress, error)
	CountByStatus(ctx context.Context, collectionID uuid.UUID) (map[models.LearningStatus]int, error)
}

type wordsLearnedRecorder interface {
	IncrementWordsLearnedToday(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error)
}

// LearningEvents fans out progress changes and caches collection stats.
// Implementations log their own failures; callers never block on them.
//
// Cached stats are keyed by a per-collection generation. Invalidation bumps the
// generation, so a write made with a generation read before the bump is never served.
type LearningEvents interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
	StatsGeneration(ctx context.Context, collectionID uuid.UUID) (int64, bool)
	CachedCollectionStats(ctx context.Context, collectionID uuid.UUID, gen int64) (*models.CollectionStats, bool)
	CacheCollectionStats(ctx context.Context, collectionID uuid.UUID, gen int64, stats *models.CollectionStats)
	InvalidateCollectionStats(ctx context.Context, collectionID uuid.UUID)
}

type LearningService struct {
	vocabulary  vocabularyStore
	collections collectionStore
	progress    progressStore
	recorder    wordsLearnedRecorder
	events      LearningEvents

	mu  sync.Mutex
	rng *rand.Rand

	now func() time.Time
}

func NewLearningService(
	vocabulary vocabularyStore,
	collections collectionStore,
	progress progressStore,
	recorder wordsLearnedRecorder,
	events LearningEvents,
	rng *rand.Rand,
) *LearningService {
	if events == nil {
		events = noopEvents{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &LearningService{
		vocabulary:  vocabulary,
		collections: collections,
		progress:    progress,
		recorder:    recorder,
		events:      events,
		rng:         rng,
		now:         time.Now,
	}
}

func (s *LearningService) shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

// CollectionForUser returns the collection if userID owns it or it is public.
func (s *LearningService) CollectionForUser(ctx context.Context, collectionID, userID uuid.UUID) (*models.Collection, error) {
	coll, err := s.getCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if coll.UserID != userID && !coll.IsPublic {
		return nil, &ForbiddenError{Message: "You do not have access to this collection"}
	}
	return coll, nil
}

// NextQuestion serves the first NOT_STARTED item as multiple choice, otherwise the
// first LEARNING item as typing. It returns nil when nothing is left to learn.
func (s *LearningService) NextQuestion(ctx context.Context, collectionID uuid.UUID) (*models.Question, error) {
	if _, err := s.getCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	items, err := s.vocabulary.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list vocabulary: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	statuses, err := s.ensureProgress(ctx, collectionID, items)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if statuses[item.ID] == models.StatusNotStarted {
			return buildMultipleChoice(item, collectionID, items, s.shuffle), nil
		}
	}
	for _, item := range items {
		if statuses[item.ID] == models.StatusLearning {
			return buildTyping(item, collectionID), nil
		}
	}
	return nil, nil
}

// ensureProgress creates missing rows and returns the status of every item.
func (s *LearningService) ensureProgress(ctx context.Context, collectionID uuid.UUID, items []models.VocabularyItem) (map[uuid.UUID]models.LearningStatus, error) {
	rows, err := s.progress.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	statuses := make(map[uuid.UUID]models.LearningStatus, len(items))
	for _, row := range rows {
		statuses[row.VocabularyID] = row.LearningStatus
	}

	var missing []uuid.UUID
	for _, item := range items {
		if _, ok := statuses[item.ID]; !ok {
			missing = append(missing, item.ID)
			statuses[item.ID] = models.StatusNotStarted
		}
	}
	if len(missing) > 0 {
		if err := s.progress.EnsureRows(ctx, collectionID, missing); err != nil {
			return nil, fmt.Errorf("create progress rows: %w", err)
		}
		s.events.InvalidateCollectionStats(ctx, collectionID)
	}
	return statuses, nil
}

// SubmitAnswer grades answer against the item for the given stage and advances
// the pair's progress. Grading is keyed by the submitted stage only.
func (s *LearningService) SubmitAnswer(ctx context.Context, vocabularyID, collectionID uuid.UUID, answer, stage string) (*models.GradeResult, error) {
	st, ok := models.ParseStage(stage)
	if !ok {
		return nil, invalidField("stage", "must be one of: first second")
	}

	item, coll, err := s.getMember(ctx, vocabularyID, collectionID)
	if err != nil {
		return nil, err
	}

	expected := expectedAnswer(item, st)
	correct := answersMatch(answer, expected)

	var message string
	var becameLearned bool
	p, err := s.progress.Mutate(ctx, vocabularyID, collectionID, func(p *models.ItemProgress) error {
		wasLearned := p.Learned
		message = applyGrade(p, st, correct, s.now())
		becameLearned = !wasLearned && p.Learned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	s.afterProgressChange(ctx, coll, p, becameLearned)

	return &models.GradeResult{
		Correct:        correct,
		CorrectAnswer:  expected,
		LearningStatus: p.LearningStatus,
		Message:        message,
	}, nil
}

// CollectionStats counts existing progress rows per status.
func (s *LearningService) CollectionStats(ctx context.Context, collectionID uuid.UUID) (*models.CollectionStats, error) {
	if _, err := s.getCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	// The generation is read before counting so an invalidation that lands
	// mid-count leaves this result under a key nobody reads.
	gen, cacheable := s.events.StatsGeneration(ctx, collectionID)
	if cacheable {
		if stats, ok := s.events.CachedCollectionStats(ctx, collectionID, gen); ok {
			return stats, nil
		}
	}

	counts, err := s.progress.CountByStatus(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("count progress: %w", err)
	}

	stats := &models.CollectionStats{
		NotStarted: counts[models.StatusNotStarted],
		Learning:   counts[models.StatusLearning],
		Mastered:   counts[models.StatusMastered],
	}
	stats.Total = stats.NotStarted + stats.Learning + stats.Mastered

	if cacheable {
		s.events.CacheCollectionStats(ctx, collectionID, gen, stats)
	}
	return stats, nil
}

// ListWithProgress joins every item in the collection with its progress row.
func (s *LearningService) ListWithProgress(ctx context.Context, collectionID uuid.UUID) ([]models.VocabularyWithProgress, error) {
	if _, err := s.getCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	items, err := s.vocabulary.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list vocabulary: %w", err)
	}
	rows, err := s.progress.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	byVocabulary := make(map[uuid.UUID]models.ItemProgress, len(rows))
	for _, row := range rows {
		byVocabulary[row.VocabularyID] = row
	}

	result := make([]models.VocabularyWithProgress, 0, len(items))
	for _, item := range items {
		entry := models.VocabularyWithProgress{
			VocabularyItem: item,
			LearningStatus: models.StatusNotStarted,
		}
		if row, ok := byVocabulary[item.ID]; ok {
			entry.LearningStatus = row.LearningStatus
			entry.Learned = row.Learned
			entry.ReviewCount = row.ReviewCount
			entry.LastReviewedAt = row.LastReviewedAt
		}
		result = append(result, entry)
	}
	return result, nil
}

// MarkLearned sets the learned flag explicitly. Learned items become MASTERED,
// unlearned ones go back to NOT_STARTED. Counts as a review.
func (s *LearningService) MarkLearned(ctx context.Context, vocabularyID, collectionID uuid.UUID, learned bool) (*models.ItemProgress, error) {
	return s.setLearned(ctx, vocabularyID, collectionID, func(p *models.ItemProgress) {
		p.Learned = learned
		reviewedAt := s.now()
		p.LastReviewedAt = &reviewedAt
		p.ReviewCount++
	})
}

// ToggleLearned flips the learned flag without counting a review.
func (s *LearningService) ToggleLearned(ctx context.Context, vocabularyID, collectionID uuid.UUID) (*models.ItemProgress, error) {
	return s.setLearned(ctx, vocabularyID, collectionID, func(p *models.ItemProgress) {
		p.Learned = !p.Learned
		reviewedAt := s.now()
		p.LastReviewedAt = &reviewedAt
	})
}

func (s *LearningService) setLearned(ctx context.Context, vocabularyID, collectionID uuid.UUID, apply func(p *models.ItemProgress)) (*models.ItemProgress, error) {
	_, coll, err := s.getMember(ctx, vocabularyID, collectionID)
	if err != nil {
		return nil, err
	}

	var becameLearned bool
	p, err := s.progress.Mutate(ctx, vocabularyID, collectionID, func(p *models.ItemProgress) error {
		wasLearned := p.Learned
		apply(p)
		if p.Learned {
			p.LearningStatus = models.StatusMastered
		} else {
			p.LearningStatus = models.StatusNotStarted
		}
		becameLearned = !wasLearned && p.Learned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	s.afterProgressChange(ctx, coll, p, becameLearned)
	return p, nil
}

func (s *LearningService) afterProgressChange(ctx context.Context, coll *models.Collection, p *models.ItemProgress, becameLearned bool) {
	s.events.InvalidateCollectionStats(ctx, coll.ID)

	if becameLearned && s.recorder != nil {
		if _, err := s.recorder.IncrementWordsLearnedToday(ctx, coll.UserID); err != nil {
			log.Printf("learning: failed to record learned word for user %s: %v", coll.UserID, err)
		}
	}

	s.events.PublishUpdate(ctx, coll.UserID, models.WSMessage{
		Type: models.EventItemProgress,
		Payload: models.ItemProgressEvent{
			VocabularyID:   p.VocabularyID,
			CollectionID:   p.CollectionID,
			LearningStatus: p.LearningStatus,
			Learned:        p.Learned,
			ReviewCount:    p.ReviewCount,
		},
	})
}

func (s *LearningService) getCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	coll, err := s.collections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Collection not found"}
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return coll, nil
}

// getMember loads the item and the collection and requires the item to belong
// to the collection. A foreign item is reported as not found.
func (s *LearningService) getMember(ctx context.Context, vocabularyID, collectionID uuid.UUID) (*models.VocabularyItem, *models.Collection, error) {
	item, err := s.getVocabulary(ctx, vocabularyID)
	if err != nil {
		return nil, nil, err
	}
	coll, err := s.getCollection(ctx, collectionID)
	if err != nil {
		return nil, nil, err
	}
	ok, err := s.vocabulary.InCollection(ctx, vocabularyID, collectionID)
	if err != nil {
		return nil, nil, fmt.Errorf("check collection membership: %w", err)
	}
	if !ok {
		return nil, nil, &NotFoundError{Message: "Vocabulary not found in collection"}
	}
	return item, coll, nil
}

func (s *LearningService) getVocabulary(ctx context.Context, id uuid.UUID) (*models.VocabularyItem, error) {
	item, err := s.vocabulary.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Vocabulary not found"}
		}
		return nil, fmt.Errorf("get vocabulary: %w", err)
	}
	return item, nil
}

type noopEvents struct{}

func (noopEvents) PublishUpdate(context.Context, uuid.UUID, models.WSMessage) {}

func (noopEvents) StatsGeneration(context.Context, uuid.UUID) (int64, bool) { return 0, false }

func (noopEvents) CachedCollectionStats(context.Context, uuid.UUID, int64) (*models.CollectionStats, bool) {
	return nil, false
}

func (noopEvents) CacheCollectionStats(context.Context, uuid.UUID, int64, *models.CollectionStats) {}

func (noopEvents) InvalidateCollectionStats(context.Context, uuid.UUID) {}
