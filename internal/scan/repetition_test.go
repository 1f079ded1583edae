package scan

import "testing"

func TestDetectRepetitionsExactLines(t *testing.T) {
	text := "La croissance du marché est forte.\n" +
		"Un paragraphe complètement différent ici.\n" +
		"La croissance du marché est forte.\n"

	groups := DetectRepetitions(text)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Count != 2 {
		t.Fatalf("count = %d, want 2", groups[0].Count)
	}
	if !groups[0].Exact {
		t.Fatalf("identical lines should be flagged exact")
	}
}

func TestDetectRepetitionsNearIdentical(t *testing.T) {
	text := "Le marché connaît une croissance rapide et soutenue cette année.\n" +
		"Le marché connaît une croissance rapide et soutenue cette saison.\n"

	groups := DetectRepetitions(text)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Exact {
		t.Fatalf("near-identical lines should not be flagged exact")
	}
}

func TestDetectRepetitionsIgnoresShortLines(t *testing.T) {
	text := "Oui.\nOui.\nOui.\n"
	if groups := DetectRepetitions(text); len(groups) != 0 {
		t.Fatalf("short lines should be ignored, got %+v", groups)
	}
}

func TestDetectRepetitionsDistinctContent(t *testing.T) {
	text := "Première idée développée dans ce paragraphe.\n" +
		"Une analyse totalement différente du sujet suivant.\n"
	if groups := DetectRepetitions(text); len(groups) != 0 {
		t.Fatalf("distinct lines grouped: %+v", groups)
	}
}

func TestSimilarityTrailingPunctuation(t *testing.T) {
	if got := similarity("La croissance est forte.", "la croissance est forte !"); got < similarityThreshold {
		t.Fatalf("punctuation-only difference scored %f", got)
	}
}
