package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"iqai-quiz-service/internal/domain"
)

func openTestLoader(t *testing.T) *BankLoader {
	t.Helper()
	loader, err := Open(filepath.Join(t.TempDir(), "bank.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { loader.Close() })
	if err := loader.CreateTables(); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return loader
}

func TestBankLoaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	loader := openTestLoader(t)

	questions := []domain.Question{
		{ID: "1", Text: "Quelle est la capitale de la France ?", Options: []string{"Paris", "Lyon", "Marseille", "Lille"}, Answer: "Paris", Category: "geographie"},
		{ID: "2", Text: "Combien font 2 + 2 ?", Options: []string{"3", "4", "5", "6"}, Answer: "4", Explanation: "Addition simple."},
	}
	for _, q := range questions {
		if err := loader.Insert(ctx, q); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	loaded, err := loader.LoadBank(ctx)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d questions, want 2", len(loaded))
	}
	byID := make(map[string]domain.Question, len(loaded))
	for _, q := range loaded {
		if q.Kind != domain.KindSafe {
			t.Fatalf("question %s not tagged safe", q.ID)
		}
		byID[q.ID] = q
	}
	if byID["1"].Category != "geographie" {
		t.Fatalf("category lost: %+v", byID["1"])
	}
	if byID["2"].Category != domain.DefaultCategory {
		t.Fatalf("missing category not defaulted: %+v", byID["2"])
	}
	if byID["2"].Explanation != "Addition simple." {
		t.Fatalf("explanation lost: %+v", byID["2"])
	}
}

func TestBankLoaderDropsInvalidRows(t *testing.T) {
	ctx := context.Background()
	loader := openTestLoader(t)

	if err := loader.Insert(ctx, domain.Question{ID: "ok", Text: "Question valide ?", Options: []string{"a", "b", "c", "d"}, Answer: "a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Answer not among the options.
	if err := loader.Insert(ctx, domain.Question{ID: "bad", Text: "Question cassée ?", Options: []string{"a", "b", "c", "d"}, Answer: "z"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	loaded, err := loader.LoadBank(ctx)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "ok" {
		t.Fatalf("invalid row not dropped: %+v", loaded)
	}
}

func TestBankLoaderEmpty(t *testing.T) {
	loader := openTestLoader(t)
	if _, err := loader.LoadBank(context.Background()); !errors.Is(err, domain.ErrBankEmpty) {
		t.Fatalf("expected ErrBankEmpty, got %v", err)
	}
}
