package bank

import (
	"strings"
	"unicode"

	"iqai-quiz-service/internal/domain"
)

// ExclusionSet holds the identifiers and text fingerprints of questions a
// caller has already seen. Matching is by ID when one is available, else by a
// normalized punctuation-insensitive text fingerprint.
type ExclusionSet struct {
	ids          map[string]struct{}
	fingerprints []string
}

// NewExclusionSet builds an exclusion set from raw IDs and question texts.
func NewExclusionSet(ids, texts []string) ExclusionSet {
	set := ExclusionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set.ids[id] = struct{}{}
		}
	}
	for _, text := range texts {
		if fp := Fingerprint(text); fp != "" {
			set.fingerprints = append(set.fingerprints, fp)
		}
	}
	return set
}

// Empty reports whether the set excludes nothing.
func (s ExclusionSet) Empty() bool {
	return len(s.ids) == 0 && len(s.fingerprints) == 0
}

// Matches reports whether the question was already seen.
func (s ExclusionSet) Matches(q domain.Question) bool {
	if q.ID != "" {
		if _, ok := s.ids[q.ID]; ok {
			return true
		}
	}
	fp := Fingerprint(q.Text)
	if fp == "" {
		return false
	}
	for _, seen := range s.fingerprints {
		if strings.Contains(seen, fp) || strings.Contains(fp, seen) {
			return true
		}
	}
	return false
}

// Fingerprint normalizes question text for repeat detection: lowercased,
// trimmed, punctuation stripped, whitespace collapsed.
func Fingerprint(text string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// FilterSeen removes already-seen questions from the pool. If filtering
// would leave fewer than minRequired items, the unfiltered pool is returned:
// freshness is best-effort, completeness is mandatory.
func FilterSeen(pool []domain.Question, seen ExclusionSet, minRequired int) []domain.Question {
	if seen.Empty() {
		return pool
	}
	fresh := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if !seen.Matches(q) {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) < minRequired {
		return pool
	}
	return fresh
}
