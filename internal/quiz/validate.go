package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"iqai-quiz-service/internal/domain"
)

// PlaceholderOption is the visibly-invalid option used to pad malformed
// questions when degraded mode is enabled. It is deliberately conspicuous so
// a padded question reads as broken rather than silently corrupted.
const PlaceholderOption = "Option non valide"

// NormalizeOptions tunes the degraded-mode behavior of Normalize.
type NormalizeOptions struct {
	// PadInvalidOptions pads a short option list with placeholder options
	// instead of rejecting the question. Off by default; only the
	// bank-fallback path enables it once the retry budget is spent.
	PadInvalidOptions bool
}

// RawQuestion is the loosely-shaped form questions arrive in from the
// generator or a stored bank. Both the "q" and "text" keys are accepted for
// the prompt.
type RawQuestion struct {
	ID          json.Number `json:"id"`
	Q           string      `json:"q"`
	Text        string      `json:"text"`
	Options     []string    `json:"options"`
	Answer      string      `json:"answer"`
	Explanation string      `json:"explanation"`
	Category    string      `json:"category"`
}

// FromRaw converts a raw payload item into a domain question without
// validating it. "q" wins over "text" when both are present, matching the
// generator wire format.
func FromRaw(raw RawQuestion) domain.Question {
	text := raw.Q
	if text == "" {
		text = raw.Text
	}
	return domain.Question{
		ID:          raw.ID.String(),
		Text:        text,
		Options:     raw.Options,
		Answer:      raw.Answer,
		Explanation: raw.Explanation,
		Category:    raw.Category,
	}
}

// Normalize coerces a question into canonical shape and reports whether it
// satisfies the quiz contract. It trims all strings, truncates an over-long
// option list to four entries, and rewrites the answer to the exact text of
// the option it matches. Normalize is pure and idempotent: feeding its own
// output back yields the same question.
func Normalize(q domain.Question, opts NormalizeOptions) (domain.Question, bool) {
	out := domain.Question{
		ID:          strings.TrimSpace(q.ID),
		Text:        strings.TrimSpace(q.Text),
		Explanation: strings.TrimSpace(q.Explanation),
		Category:    strings.TrimSpace(q.Category),
		Kind:        q.Kind,
	}
	if out.Text == "" {
		return domain.Question{}, false
	}

	options := make([]string, 0, domain.OptionCount)
	for _, opt := range q.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		options = append(options, opt)
		if len(options) == domain.OptionCount {
			break
		}
	}

	if len(options) < domain.OptionCount {
		if !opts.PadInvalidOptions {
			return domain.Question{}, false
		}
		options = padOptions(options)
	}

	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		key := strings.ToLower(opt)
		if _, dup := seen[key]; dup {
			return domain.Question{}, false
		}
		seen[key] = struct{}{}
	}
	out.Options = options

	answer := strings.TrimSpace(q.Answer)
	if answer == "" {
		return domain.Question{}, false
	}
	matched := false
	for _, opt := range options {
		if strings.EqualFold(opt, answer) {
			out.Answer = opt
			matched = true
			break
		}
	}
	if !matched {
		return domain.Question{}, false
	}
	return out, true
}

// padOptions fills a short option list with distinct placeholder entries.
func padOptions(options []string) []string {
	for i := 1; len(options) < domain.OptionCount; i++ {
		placeholder := PlaceholderOption
		if i > 1 {
			placeholder = fmt.Sprintf("%s (%d)", PlaceholderOption, i)
		}
		options = append(options, placeholder)
	}
	return options
}

// IsValid reports whether a question already satisfies the quiz contract:
// non-empty text, exactly four case-insensitively distinct options, and an
// answer byte-for-byte equal to one of them.
func IsValid(q domain.Question) bool {
	norm, ok := Normalize(q, NormalizeOptions{})
	if !ok {
		return false
	}
	if norm.Text != q.Text || norm.Answer != q.Answer {
		return false
	}
	if len(norm.Options) != len(q.Options) {
		return false
	}
	for i := range norm.Options {
		if norm.Options[i] != q.Options[i] {
			return false
		}
	}
	return true
}

// ValidBatch reports whether a candidate batch has exactly the expected
// length and every item passes IsValid. A single bad item fails the whole
// batch; individual salvage is not attempted.
func ValidBatch(items []domain.Question, expected int) bool {
	if len(items) != expected {
		return false
	}
	for _, item := range items {
		if !IsValid(item) {
			return false
		}
	}
	return true
}

// Unwrap extracts the question array from a generator payload. The payload
// may be a bare JSON array or an object wrapping one; wrapped shapes are
// probed in a fixed priority order: "questions", then "hallucinations", then
// the first field holding an array.
func Unwrap(payload []byte) ([]RawQuestion, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	if payload[0] == '[' {
		var items []RawQuestion
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, fmt.Errorf("decode question array: %w", err)
		}
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, fmt.Errorf("decode question payload: %w", err)
	}

	for _, key := range []string{"questions", "hallucinations"} {
		if raw, ok := wrapper[key]; ok {
			var items []RawQuestion
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("decode %q field: %w", key, err)
			}
			return items, nil
		}
	}

	for _, raw := range wrapper {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var items []RawQuestion
		if err := json.Unmarshal(trimmed, &items); err != nil {
			continue
		}
		return items, nil
	}
	return nil, fmt.Errorf("no question array in payload")
}

// SalvageArray cuts the substring between the first '[' and the last ']' of
// a payload, recovering arrays wrapped in prose or markdown fences.
func SalvageArray(payload []byte) ([]byte, bool) {
	start := bytes.IndexByte(payload, '[')
	end := bytes.LastIndexByte(payload, ']')
	if start < 0 || end <= start {
		return nil, false
	}
	return payload[start : end+1], true
}
