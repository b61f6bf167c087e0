package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vocab-backend/internal/models"
)

const multipleChoiceOptions = 4

type shuffleFunc func(n int, swap func(i, j int))

// buildMultipleChoice asks for the meaning of item. Distractors are the first
// unique meanings of the shuffled siblings; short collections are padded with
// "Option N" placeholders.
func buildMultipleChoice(item models.VocabularyItem, collectionID uuid.UUID, siblings []models.VocabularyItem, shuffle shuffleFunc) *models.Question {
	pool := make([]string, 0, len(siblings))
	for _, s := range siblings {
		if s.ID != item.ID {
			pool = append(pool, s.Meaning)
		}
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	options := []string{item.Meaning}
	seen := map[string]bool{optionKey(item.Meaning): true}
	for _, meaning := range pool {
		if len(options) == multipleChoiceOptions {
			break
		}
		key := optionKey(meaning)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, meaning)
	}

	for len(options) < multipleChoiceOptions {
		options = append(options, fmt.Sprintf("Option %d", len(options)+1))
	}
	shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return &models.Question{
		VocabularyID:  item.ID,
		CollectionID:  collectionID,
		Word:          item.Word,
		Phonetic:      item.Phonetic,
		Type:          models.QuestionMultipleChoice,
		Stage:         models.StageFirst,
		Options:       options,
		CorrectAnswer: item.Meaning,
	}
}

// buildTyping shows the meaning and expects the headword.
func buildTyping(item models.VocabularyItem, collectionID uuid.UUID) *models.Question {
	return &models.Question{
		VocabularyID:  item.ID,
		CollectionID:  collectionID,
		Word:          item.Meaning,
		Phonetic:      item.Phonetic,
		Type:          models.QuestionTyping,
		Stage:         models.StageSecond,
		CorrectAnswer: item.Word,
	}
}

func optionKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
