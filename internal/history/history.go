// Package history reconstructs prompt turns from persisted conversation
// records.
package history

import (
	"fmt"
	"strings"

	"askrelay/internal/models"
)

const (
	questionLabel   = "Question: "
	answerDelimiter = "\nAnswer: "
)

// FormatExchange encodes one question/answer pair into the canonical
// message blob stored in a conversation record.
func FormatExchange(question, answer string) string {
	return fmt.Sprintf("%s%s%s%s", questionLabel, question, answerDelimiter, answer)
}

// ParseExchange splits a stored message back into its question and answer.
// A message that does not split into exactly two segments on the answer
// delimiter is malformed; ok is false and the record should be skipped.
func ParseExchange(raw string) (question, answer string, ok bool) {
	parts := strings.Split(raw, answerDelimiter)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimPrefix(parts[0], questionLabel), parts[1], true
}

// BuildTurns assembles the prompt sequence for the completion service: the
// persona system turn, then a user/assistant pair per parseable record in
// order, then the current question as the final user turn. Malformed
// records are dropped without surfacing an error.
func BuildTurns(systemPrompt string, records []models.ConversationRecord, question string) []models.Turn {
	turns := make([]models.Turn, 0, 2*len(records)+2)
	turns = append(turns, models.Turn{Role: models.RoleSystem, Content: systemPrompt})
	for _, record := range records {
		q, a, ok := ParseExchange(record.Message)
		if !ok {
			continue
		}
		turns = append(turns,
			models.Turn{Role: models.RoleUser, Content: q},
			models.Turn{Role: models.RoleAssistant, Content: a},
		)
	}
	return append(turns, models.Turn{Role: models.RoleUser, Content: question})
}
