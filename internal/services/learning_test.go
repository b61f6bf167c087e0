package services

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocab-backend/internal/models"
)

type learningFixture struct {
	svc          *LearningService
	vocabulary   *fakeVocabulary
	collections  *fakeCollections
	progress     *fakeProgress
	events       *fakeEvents
	recorder     *recordedLearned
	owner        uuid.UUID
	collectionID uuid.UUID
	now          time.Time
}

func newLearningFixture(t *testing.T) *learningFixture {
	t.Helper()

	f := &learningFixture{
		vocabulary:   newFakeVocabulary(),
		progress:     newFakeProgress(),
		events:       newFakeEvents(),
		recorder:     &recordedLearned{},
		owner:        uuid.New(),
		collectionID: uuid.New(),
		now:          time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	f.collections = &fakeCollections{collections: map[uuid.UUID]models.Collection{
		f.collectionID: {ID: f.collectionID, UserID: f.owner, Name: "Basics"},
	}}
	f.svc = NewLearningService(f.vocabulary, f.collections, f.progress, f.recorder, f.events, rand.New(rand.NewPCG(1, 2)))
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *learningFixture) setStatus(t *testing.T, vocabularyID uuid.UUID, status models.LearningStatus) {
	t.Helper()
	_, err := f.progress.Mutate(context.Background(), vocabularyID, f.collectionID, func(p *models.ItemProgress) error {
		p.LearningStatus = status
		p.Learned = status == models.StatusMastered
		return nil
	})
	require.NoError(t, err)
}

func TestNextQuestion_UnknownCollection(t *testing.T) {
	f := newLearningFixture(t)

	q, err := f.svc.NextQuestion(context.Background(), uuid.New())

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Nil(t, q)
}

func TestNextQuestion_EmptyCollection(t *testing.T) {
	f := newLearningFixture(t)

	q, err := f.svc.NextQuestion(context.Background(), f.collectionID)

	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestNextQuestion_ServesMultipleChoiceForNewItems(t *testing.T) {
	f := newLearningFixture(t)
	apple := f.vocabulary.add(f.collectionID, "apple", "táo")
	f.vocabulary.add(f.collectionID, "pear", "lê")
	f.vocabulary.add(f.collectionID, "plum", "mận")

	q, err := f.svc.NextQuestion(context.Background(), f.collectionID)
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.Equal(t, models.QuestionMultipleChoice, q.Type)
	assert.Equal(t, models.StageFirst, q.Stage)
	assert.Equal(t, apple.ID, q.VocabularyID)
	assert.Equal(t, "apple", q.Word)
	assert.Equal(t, "táo", q.CorrectAnswer)
	assert.ElementsMatch(t, []string{"táo", "lê", "mận", "Option 4"}, q.Options)

	rows, err := f.progress.ListByCollection(context.Background(), f.collectionID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, models.StatusNotStarted, row.LearningStatus)
	}
}

func TestNextQuestion_FourItemsThenTyping(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	first := f.vocabulary.add(f.collectionID, "one", "một")
	f.vocabulary.add(f.collectionID, "two", "hai")
	f.vocabulary.add(f.collectionID, "three", "ba")
	f.vocabulary.add(f.collectionID, "four", "bốn")

	for i := 0; i < 4; i++ {
		q, err := f.svc.NextQuestion(ctx, f.collectionID)
		require.NoError(t, err)
		require.NotNil(t, q)
		require.Equal(t, models.QuestionMultipleChoice, q.Type, "call %d", i+1)
		assert.Len(t, q.Options, 4)

		res, err := f.svc.SubmitAnswer(ctx, q.VocabularyID, f.collectionID, q.CorrectAnswer, string(q.Stage))
		require.NoError(t, err)
		require.True(t, res.Correct)
		assert.Equal(t, models.StatusLearning, res.LearningStatus)
	}

	stats, err := f.svc.CollectionStats(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{NotStarted: 0, Learning: 4, Mastered: 0, Total: 4}, *stats)

	q, err := f.svc.NextQuestion(ctx, f.collectionID)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, models.QuestionTyping, q.Type)
	assert.Equal(t, models.StageSecond, q.Stage)
	assert.Equal(t, first.ID, q.VocabularyID)
	assert.Equal(t, "một", q.Word)
	assert.Equal(t, "one", q.CorrectAnswer)
	assert.Empty(t, q.Options)
}

func TestNextQuestion_NothingLeftWhenAllMastered(t *testing.T) {
	f := newLearningFixture(t)
	item := f.vocabulary.add(f.collectionID, "sun", "mặt trời")
	f.setStatus(t, item.ID, models.StatusMastered)

	q, err := f.svc.NextQuestion(context.Background(), f.collectionID)

	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestNextQuestion_SingleItemPadsOptions(t *testing.T) {
	f := newLearningFixture(t)
	f.vocabulary.add(f.collectionID, "cat", "mèo")

	q, err := f.svc.NextQuestion(context.Background(), f.collectionID)
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.ElementsMatch(t, []string{"mèo", "Option 2", "Option 3", "Option 4"}, q.Options)
}

func TestNextQuestion_DistractorsAreUnique(t *testing.T) {
	f := newLearningFixture(t)
	f.vocabulary.add(f.collectionID, "dog", "chó")
	f.vocabulary.add(f.collectionID, "hound", " chó ")
	f.vocabulary.add(f.collectionID, "fish", "cá")
	f.vocabulary.add(f.collectionID, "carp", "cá")
	f.vocabulary.add(f.collectionID, "blank", "  ")

	q, err := f.svc.NextQuestion(context.Background(), f.collectionID)
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.ElementsMatch(t, []string{"chó", "cá", "Option 3", "Option 4"}, q.Options)
}

func TestNextQuestion_SameSeedSameOptions(t *testing.T) {
	f := newLearningFixture(t)
	for _, w := range []string{"a", "b", "c", "d", "e", "f"} {
		f.vocabulary.add(f.collectionID, w, "meaning "+w)
	}

	build := func() []string {
		svc := NewLearningService(f.vocabulary, f.collections, f.progress, f.recorder, f.events, rand.New(rand.NewPCG(7, 7)))
		q, err := svc.NextQuestion(context.Background(), f.collectionID)
		require.NoError(t, err)
		require.NotNil(t, q)
		return q.Options
	}

	assert.Equal(t, build(), build())
}

func TestSubmitAnswer_IgnoresCaseAndWhitespace(t *testing.T) {
	f := newLearningFixture(t)
	item := f.vocabulary.add(f.collectionID, "Hello", "xin chào")
	f.setStatus(t, item.ID, models.StatusLearning)

	res, err := f.svc.SubmitAnswer(context.Background(), item.ID, f.collectionID, " hello ", "second")

	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "Hello", res.CorrectAnswer)
	assert.Equal(t, models.StatusMastered, res.LearningStatus)
	assert.Equal(t, "Excellent! You've mastered this word!", res.Message)
}

func TestSubmitAnswer_StateMachine(t *testing.T) {
	tests := []struct {
		name    string
		from    models.LearningStatus
		stage   string
		correct bool
		want    models.LearningStatus
		message string
	}{
		{"new correct recognition", models.StatusNotStarted, "first", true, models.StatusLearning, "Correct! Now let's practice typing this word."},
		{"new wrong recognition", models.StatusNotStarted, "first", false, models.StatusNotStarted, "Incorrect. Try again!"},
		{"learning correct recall", models.StatusLearning, "second", true, models.StatusMastered, "Excellent! You've mastered this word!"},
		{"learning wrong recall", models.StatusLearning, "second", false, models.StatusLearning, "Not quite right. Keep practicing!"},
		{"stage ahead of status", models.StatusNotStarted, "second", true, models.StatusMastered, "Excellent! You've mastered this word!"},
		{"learning wrong recognition", models.StatusLearning, "first", false, models.StatusNotStarted, "Incorrect. Try again!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLearningFixture(t)
			item := f.vocabulary.add(f.collectionID, "river", "sông")
			f.setStatus(t, item.ID, tt.from)

			answer := "wrong"
			if tt.correct {
				answer = "sông"
				if tt.stage == "second" {
					answer = "river"
				}
			}

			res, err := f.svc.SubmitAnswer(context.Background(), item.ID, f.collectionID, answer, tt.stage)
			require.NoError(t, err)

			assert.Equal(t, tt.correct, res.Correct)
			assert.Equal(t, tt.want, res.LearningStatus)
			assert.Equal(t, tt.message, res.Message)

			row := f.progress.get(item.ID, f.collectionID)
			assert.Equal(t, tt.want, row.LearningStatus)
			assert.Equal(t, tt.want == models.StatusMastered, row.Learned)
			assert.Equal(t, 1, row.ReviewCount)
			require.NotNil(t, row.LastReviewedAt)
			assert.True(t, row.LastReviewedAt.Equal(f.now))
		})
	}
}

func TestSubmitAnswer_CreatesMissingRowAndCountsReviews(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	item := f.vocabulary.add(f.collectionID, "moon", "mặt trăng")

	for i := 1; i <= 3; i++ {
		_, err := f.svc.SubmitAnswer(ctx, item.ID, f.collectionID, "nope", "first")
		require.NoError(t, err)
		assert.Equal(t, i, f.progress.get(item.ID, f.collectionID).ReviewCount)
	}
	assert.Equal(t, models.StatusNotStarted, f.progress.get(item.ID, f.collectionID).LearningStatus)
}

func TestSubmitAnswer_RecordsLearnedWordOnce(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	item := f.vocabulary.add(f.collectionID, "tree", "cây")

	for i := 0; i < 2; i++ {
		res, err := f.svc.SubmitAnswer(ctx, item.ID, f.collectionID, "tree", "second")
		require.NoError(t, err)
		require.True(t, res.Correct)
	}

	assert.Equal(t, []uuid.UUID{f.owner}, f.recorder.users)
	require.NotEmpty(t, f.events.published)
	assert.Equal(t, models.EventItemProgress, f.events.published[0].Type)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	item := f.vocabulary.add(f.collectionID, "rain", "mưa")

	_, err := f.svc.SubmitAnswer(ctx, item.ID, f.collectionID, "mưa", "third")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "stage")

	_, err = f.svc.SubmitAnswer(ctx, uuid.New(), f.collectionID, "mưa", "first")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Vocabulary not found", notFound.Message)

	_, err = f.svc.SubmitAnswer(ctx, item.ID, uuid.New(), "mưa", "first")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Collection not found", notFound.Message)

	assert.Nil(t, f.progress.get(item.ID, f.collectionID))
}

func TestSubmitAnswer_RejectsItemFromAnotherCollection(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	foreign := f.vocabulary.add(uuid.New(), "secret", "bí mật")

	res, err := f.svc.SubmitAnswer(ctx, foreign.ID, f.collectionID, "x", "second")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Nil(t, res)
	assert.Nil(t, f.progress.get(foreign.ID, f.collectionID))

	stats, err := f.svc.CollectionStats(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{}, *stats)
}

func TestMarkAndToggle_RejectItemFromAnotherCollection(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	foreign := f.vocabulary.add(uuid.New(), "secret", "bí mật")

	_, err := f.svc.MarkLearned(ctx, foreign.ID, f.collectionID, true)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = f.svc.ToggleLearned(ctx, foreign.ID, f.collectionID)
	require.ErrorAs(t, err, &notFound)

	assert.Nil(t, f.progress.get(foreign.ID, f.collectionID))
	assert.Empty(t, f.recorder.users)
}

func TestCollectionStats(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	stats, err := f.svc.CollectionStats(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{}, *stats)

	first := f.vocabulary.add(f.collectionID, "red", "đỏ")
	f.vocabulary.add(f.collectionID, "blue", "xanh")
	f.vocabulary.add(f.collectionID, "green", "lục")

	_, err = f.svc.NextQuestion(ctx, f.collectionID)
	require.NoError(t, err)

	stats, err = f.svc.CollectionStats(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{NotStarted: 3, Total: 3}, *stats)

	_, err = f.svc.SubmitAnswer(ctx, first.ID, f.collectionID, "đỏ", "first")
	require.NoError(t, err)

	stats, err = f.svc.CollectionStats(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{NotStarted: 2, Learning: 1, Total: 3}, *stats)

	_, err = f.svc.CollectionStats(ctx, uuid.New())
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCollectionStats_UsesCache(t *testing.T) {
	f := newLearningFixture(t)
	cached := models.CollectionStats{Learning: 2, Total: 2}
	f.events.cache[statsCacheKey{f.collectionID, 0}] = cached

	stats, err := f.svc.CollectionStats(context.Background(), f.collectionID)

	require.NoError(t, err)
	assert.Equal(t, cached, *stats)
}

// countThenRun runs hook once, right after the next count completes.
type countThenRun struct {
	*fakeProgress
	hook func()
}

func (c *countThenRun) CountByStatus(ctx context.Context, collectionID uuid.UUID) (map[models.LearningStatus]int, error) {
	counts, err := c.fakeProgress.CountByStatus(ctx, collectionID)
	if c.hook != nil {
		hook := c.hook
		c.hook = nil
		hook()
	}
	return counts, err
}

func TestCollectionStats_MutationDuringCountIsNotCached(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	item := f.vocabulary.add(f.collectionID, "sun", "mặt trời")
	_, err := f.svc.NextQuestion(ctx, f.collectionID)
	require.NoError(t, err)

	progress := &countThenRun{fakeProgress: f.progress}
	svc := NewLearningService(f.vocabulary, f.collections, progress, f.recorder, f.events, rand.New(rand.NewPCG(1, 2)))
	progress.hook = func() {
		_, err := svc.SubmitAnswer(ctx, item.ID, f.collectionID, "mặt trời", "first")
		require.NoError(t, err)
	}

	stale, err := svc.CollectionStats(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{NotStarted: 1, Total: 1}, *stale)

	stats, err := svc.CollectionStats(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{Learning: 1, Total: 1}, *stats)
	assert.Equal(t, models.StatusLearning, f.progress.get(item.ID, f.collectionID).LearningStatus)
}

func TestListWithProgress(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	learned := f.vocabulary.add(f.collectionID, "book", "sách")
	f.vocabulary.add(f.collectionID, "pen", "bút")

	items, err := f.svc.ListWithProgress(ctx, f.collectionID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, models.StatusNotStarted, item.LearningStatus)
		assert.False(t, item.Learned)
	}
	rows, err := f.progress.ListByCollection(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.svc.MarkLearned(ctx, learned.ID, f.collectionID, true)
	require.NoError(t, err)

	items, err = f.svc.ListWithProgress(ctx, f.collectionID)
	require.NoError(t, err)
	assert.Equal(t, "book", items[0].Word)
	assert.True(t, items[0].Learned)
	assert.Equal(t, models.StatusMastered, items[0].LearningStatus)
	assert.Equal(t, 1, items[0].ReviewCount)
	assert.False(t, items[1].Learned)
}

func TestMarkLearned(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	item := f.vocabulary.add(f.collectionID, "door", "cửa")

	p, err := f.svc.MarkLearned(ctx, item.ID, f.collectionID, true)
	require.NoError(t, err)
	assert.True(t, p.Learned)
	assert.Equal(t, models.StatusMastered, p.LearningStatus)
	assert.Equal(t, 1, p.ReviewCount)

	p, err = f.svc.MarkLearned(ctx, item.ID, f.collectionID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ReviewCount)
	assert.Len(t, f.recorder.users, 1)

	p, err = f.svc.MarkLearned(ctx, item.ID, f.collectionID, false)
	require.NoError(t, err)
	assert.False(t, p.Learned)
	assert.Equal(t, models.StatusNotStarted, p.LearningStatus)
	assert.Equal(t, 3, p.ReviewCount)
}

func TestToggleLearned(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()
	item := f.vocabulary.add(f.collectionID, "window", "cửa sổ")

	p, err := f.svc.ToggleLearned(ctx, item.ID, f.collectionID)
	require.NoError(t, err)
	assert.True(t, p.Learned)
	assert.Equal(t, models.StatusMastered, p.LearningStatus)
	assert.Equal(t, 0, p.ReviewCount)
	require.NotNil(t, p.LastReviewedAt)

	p, err = f.svc.ToggleLearned(ctx, item.ID, f.collectionID)
	require.NoError(t, err)
	assert.False(t, p.Learned)
	assert.Equal(t, models.StatusNotStarted, p.LearningStatus)

	p, err = f.svc.ToggleLearned(ctx, item.ID, f.collectionID)
	require.NoError(t, err)
	assert.True(t, p.Learned)
	assert.Len(t, f.recorder.users, 2)
}

func TestCollectionForUser(t *testing.T) {
	f := newLearningFixture(t)
	ctx := context.Background()

	coll, err := f.svc.CollectionForUser(ctx, f.collectionID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, f.collectionID, coll.ID)

	_, err = f.svc.CollectionForUser(ctx, f.collectionID, uuid.New())
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	public := f.collections.collections[f.collectionID]
	public.IsPublic = true
	f.collections.collections[f.collectionID] = public

	_, err = f.svc.CollectionForUser(ctx, f.collectionID, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.CollectionForUser(ctx, uuid.New(), f.owner)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}
