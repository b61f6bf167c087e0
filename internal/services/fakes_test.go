package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vocab-backend/internal/models"
)

type fakeVocabulary struct {
	items        map[uuid.UUID]models.VocabularyItem
	byCollection map[uuid.UUID][]uuid.UUID
	learned      int
}

func newFakeVocabulary() *fakeVocabulary {
	return &fakeVocabulary{
		items:        map[uuid.UUID]models.VocabularyItem{},
		byCollection: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeVocabulary) add(collectionID uuid.UUID, word, meaning string) models.VocabularyItem {
	item := models.VocabularyItem{ID: uuid.New(), Word: word, Meaning: meaning}
	f.items[item.ID] = item
	f.byCollection[collectionID] = append(f.byCollection[collectionID], item.ID)
	return item
}

func (f *fakeVocabulary) GetByID(_ context.Context, id uuid.UUID) (*models.VocabularyItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

func (f *fakeVocabulary) ListByCollection(_ context.Context, collectionID uuid.UUID) ([]models.VocabularyItem, error) {
	var items []models.VocabularyItem
	for _, id := range f.byCollection[collectionID] {
		items = append(items, f.items[id])
	}
	return items, nil
}

func (f *fakeVocabulary) InCollection(_ context.Context, vocabularyID, collectionID uuid.UUID) (bool, error) {
	for _, id := range f.byCollection[collectionID] {
		if id == vocabularyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVocabulary) CountByUser(context.Context, uuid.UUID) (int, error) {
	return len(f.items), nil
}

func (f *fakeVocabulary) CountLearnedByUser(context.Context, uuid.UUID) (int, error) {
	return f.learned, nil
}

type fakeCollections struct {
	collections map[uuid.UUID]models.Collection
}

func (f *fakeCollections) GetByID(_ context.Context, id uuid.UUID) (*models.Collection, error) {
	c, ok := f.collections[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

type progressKey struct {
	vocabularyID uuid.UUID
	collectionID uuid.UUID
}

// fakeProgress keeps rows in insertion order like the real table's created_at ordering.
type fakeProgress struct {
	mu    sync.Mutex
	rows  map[progressKey]*models.ItemProgress
	order []progressKey
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{rows: map[progressKey]*models.ItemProgress{}}
}

func (f *fakeProgress) insertLocked(vocabularyID, collectionID uuid.UUID) *models.ItemProgress {
	key := progressKey{vocabularyID, collectionID}
	if p, ok := f.rows[key]; ok {
		return p
	}
	p := &models.ItemProgress{
		ID:             uuid.New(),
		VocabularyID:   vocabularyID,
		CollectionID:   collectionID,
		LearningStatus: models.StatusNotStarted,
	}
	f.rows[key] = p
	f.order = append(f.order, key)
	return p
}

func (f *fakeProgress) EnsureRows(_ context.Context, collectionID uuid.UUID, vocabularyIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range vocabularyIDs {
		f.insertLocked(id, collectionID)
	}
	return nil
}

func (f *fakeProgress) ListByCollection(_ context.Context, collectionID uuid.UUID) ([]models.ItemProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []models.ItemProgress
	for _, key := range f.order {
		if key.collectionID == collectionID {
			rows = append(rows, *f.rows[key])
		}
	}
	return rows, nil
}

func (f *fakeProgress) Mutate(_ context.Context, vocabularyID, collectionID uuid.UUID, fn func(p *models.ItemProgress) error) (*models.ItemProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.insertLocked(vocabularyID, collectionID)
	p := *stored
	if err := fn(&p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	*stored = p
	return &p, nil
}

func (f *fakeProgress) CountByStatus(_ context.Context, collectionID uuid.UUID) (map[models.LearningStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[models.LearningStatus]int{}
	for key, p := range f.rows {
		if key.collectionID == collectionID {
			counts[p.LearningStatus]++
		}
	}
	return counts, nil
}

func (f *fakeProgress) get(vocabularyID, collectionID uuid.UUID) *models.ItemProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[progressKey{vocabularyID, collectionID}]
}

type fakeUserProgress struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.UserProgress
}

func newFakeUserProgress() *fakeUserProgress {
	return &fakeUserProgress{rows: map[uuid.UUID]*models.UserProgress{}}
}

func (f *fakeUserProgress) Mutate(_ context.Context, userID uuid.UUID, fn func(p *models.UserProgress) error) (*models.UserProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[userID]
	if !ok {
		stored = &models.UserProgress{UserID: userID}
		f.rows[userID] = stored
	}
	p := *stored
	if err := fn(&p); err != nil {
		return nil, err
	}
	*stored = p
	return &p, nil
}

type recordedLearned struct {
	users []uuid.UUID
}

func (r *recordedLearned) IncrementWordsLearnedToday(_ context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	r.users = append(r.users, userID)
	return &models.UserProgress{UserID: userID}, nil
}

type statsCacheKey struct {
	collectionID uuid.UUID
	gen          int64
}

type fakeEvents struct {
	mu          sync.Mutex
	published   []models.WSMessage
	gens        map[uuid.UUID]int64
	cache       map[statsCacheKey]models.CollectionStats
	invalidated int
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		gens:  map[uuid.UUID]int64{},
		cache: map[statsCacheKey]models.CollectionStats{},
	}
}

func (f *fakeEvents) PublishUpdate(_ context.Context, _ uuid.UUID, msg models.WSMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, msg)
}

func (f *fakeEvents) StatsGeneration(_ context.Context, collectionID uuid.UUID) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gens[collectionID], true
}

func (f *fakeEvents) CachedCollectionStats(_ context.Context, collectionID uuid.UUID, gen int64) (*models.CollectionStats, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats, ok := f.cache[statsCacheKey{collectionID, gen}]
	if !ok {
		return nil, false
	}
	return &stats, true
}

func (f *fakeEvents) CacheCollectionStats(_ context.Context, collectionID uuid.UUID, gen int64, stats *models.CollectionStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[statsCacheKey{collectionID, gen}] = *stats
}

func (f *fakeEvents) InvalidateCollectionStats(_ context.Context, collectionID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gens[collectionID]++
	f.invalidated++
}
