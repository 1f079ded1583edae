package scan

import (
	"regexp"
	"strings"
)

// Repetition is a group of near-identical lines found in a document.
type Repetition struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
	Exact bool   `json:"exact"`
}

const (
	// minLineLength filters out headings and fragments.
	minLineLength = 15
	// similarityThreshold is the Jaccard score above which two lines count
	// as the same idea.
	similarityThreshold = 0.75
)

var trailingPunct = regexp.MustCompile(`[?!.,;:]+$`)

// DetectRepetitions groups lines of the document that repeat the same idea,
// using Jaccard similarity over word sets.
func DetectRepetitions(text string) []Repetition {
	var lines []string
	for _, line := range regexp.MustCompile(`[\n\r]+`).Split(text, -1) {
		line = strings.TrimSpace(line)
		if len(line) >= minLineLength {
			lines = append(lines, line)
		}
	}

	var groups []Repetition
	used := make(map[int]struct{})
	for i := 0; i < len(lines); i++ {
		if _, taken := used[i]; taken {
			continue
		}
		group := []int{i}
		for j := i + 1; j < len(lines); j++ {
			if _, taken := used[j]; taken {
				continue
			}
			if similarity(lines[i], lines[j]) >= similarityThreshold {
				group = append(group, j)
				used[j] = struct{}{}
			}
		}
		if len(group) > 1 {
			used[i] = struct{}{}
			exact := true
			for _, idx := range group {
				if normalizeLine(lines[idx]) != normalizeLine(lines[i]) {
					exact = false
					break
				}
			}
			groups = append(groups, Repetition{Text: lines[i], Count: len(group), Exact: exact})
		}
	}
	return groups
}

func normalizeLine(s string) string {
	s = strings.ToLower(s)
	s = trailingPunct.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// similarity is the Jaccard index of the two lines' word sets.
func similarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 0
	}
	inter := 0
	union := len(wb)
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalizeLine(s)) {
		set[w] = struct{}{}
	}
	return set
}
