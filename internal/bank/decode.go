package bank

import (
	"encoding/json"
	"fmt"

	"iqai-quiz-service/internal/domain"
	"iqai-quiz-service/internal/quiz"
)

// bankFile is the on-disk bank format: a "questions" array of raw items with
// sequential integer IDs.
type bankFile struct {
	Questions []quiz.RawQuestion `json:"questions"`
}

// Decode parses a serialized question bank. Malformed entries are dropped
// rather than failing the whole bank; a bank that decodes to zero usable
// questions is an error.
func Decode(data []byte) ([]domain.Question, error) {
	var file bankFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	questions := make([]domain.Question, 0, len(file.Questions))
	for _, raw := range file.Questions {
		q, ok := quiz.Normalize(quiz.FromRaw(raw), quiz.NormalizeOptions{})
		if !ok {
			continue
		}
		if q.Category == "" {
			q.Category = domain.DefaultCategory
		}
		q.Kind = domain.KindSafe
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, domain.ErrBankEmpty
	}
	return questions, nil
}
