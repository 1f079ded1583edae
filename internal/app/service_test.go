package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"iqai-quiz-service/internal/domain"
	"iqai-quiz-service/internal/quiz"
)

type stubBank struct {
	pool []domain.Question
	err  error
}

func (s *stubBank) GetBank(ctx context.Context) ([]domain.Question, error) {
	return s.pool, s.err
}

type stubSynthesizer struct {
	traps []domain.Question
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, n int, hints []string) []domain.Question {
	if n > len(s.traps) {
		n = len(s.traps)
	}
	return s.traps[:n]
}

func testPool(n int) []domain.Question {
	pool := make([]domain.Question, n)
	for i := range pool {
		pool[i] = domain.Question{
			ID:       fmt.Sprintf("bank-%d", i),
			Text:     fmt.Sprintf("Question %d", i),
			Options:  []string{"a", "b", "c", "d"},
			Answer:   "a",
			Category: fmt.Sprintf("cat-%d", i%6),
		}
	}
	return pool
}

func testTraps(n int) []domain.Question {
	traps := make([]domain.Question, n)
	for i := range traps {
		traps[i] = domain.Question{
			Text:    fmt.Sprintf("Piege %d", i),
			Options: []string{"a", "b", "c", "d"},
			Answer:  "a",
			Kind:    domain.KindTrap,
		}
	}
	return traps
}

func fixedSeed() func() int64 {
	return func() int64 { return 1 }
}

func TestBuildQuizInjectsTrapsAtFixedSlots(t *testing.T) {
	svc := NewQuizService(&stubBank{pool: testPool(20)}, &stubSynthesizer{traps: testTraps(2)}, Options{
		TrapCount: 2,
		Placement: quiz.PlacementFixed,
		Seed:      fixedSeed(),
	})

	items, err := svc.BuildQuiz(context.Background(), domain.QuizRequest{})
	if err != nil {
		t.Fatalf("BuildQuiz: %v", err)
	}
	if len(items) != domain.QuizSize {
		t.Fatalf("quiz length = %d, want %d", len(items), domain.QuizSize)
	}
	for pos, q := range items {
		wantTrap := pos == 3 || pos == 7
		if wantTrap && q.Kind != domain.KindTrap {
			t.Fatalf("slot %d should be a trap, got %s", pos, q.Kind)
		}
		if !wantTrap && q.Kind != domain.KindSafe {
			t.Fatalf("slot %d should be safe, got %s", pos, q.Kind)
		}
	}
}

func TestBuildQuizDegradesToAllSafe(t *testing.T) {
	svc := NewQuizService(&stubBank{pool: testPool(20)}, &stubSynthesizer{}, Options{
		TrapCount: 2,
		Seed:      fixedSeed(),
	})

	items, err := svc.BuildQuiz(context.Background(), domain.QuizRequest{})
	if err != nil {
		t.Fatalf("BuildQuiz: %v", err)
	}
	if len(items) != domain.QuizSize {
		t.Fatalf("quiz length = %d, want %d", len(items), domain.QuizSize)
	}
	for pos, q := range items {
		if q.Kind != domain.KindSafe {
			t.Fatalf("slot %d should be safe in degraded quiz", pos)
		}
	}
}

func TestBuildQuizHonorsExclusions(t *testing.T) {
	pool := testPool(20)
	svc := NewQuizService(&stubBank{pool: pool}, &stubSynthesizer{traps: testTraps(2)}, Options{
		Seed: fixedSeed(),
	})

	req := domain.QuizRequest{ExcludeIDs: []string{"bank-0", "bank-1", "bank-2"}}
	items, err := svc.BuildQuiz(context.Background(), req)
	if err != nil {
		t.Fatalf("BuildQuiz: %v", err)
	}
	for _, q := range items {
		for _, excluded := range req.ExcludeIDs {
			if q.ID == excluded {
				t.Fatalf("excluded question %s appeared in quiz", excluded)
			}
		}
	}
}

func TestBuildQuizBankFailure(t *testing.T) {
	wantErr := errors.New("store down")
	svc := NewQuizService(&stubBank{err: wantErr}, &stubSynthesizer{}, Options{Seed: fixedSeed()})

	if _, err := svc.BuildQuiz(context.Background(), domain.QuizRequest{}); !errors.Is(err, wantErr) {
		t.Fatalf("expected bank error to surface, got %v", err)
	}
}

func TestBuildQuizEmptyBank(t *testing.T) {
	svc := NewQuizService(&stubBank{}, &stubSynthesizer{traps: testTraps(2)}, Options{Seed: fixedSeed()})

	if _, err := svc.BuildQuiz(context.Background(), domain.QuizRequest{}); !errors.Is(err, domain.ErrBankEmpty) {
		t.Fatalf("expected ErrBankEmpty, got %v", err)
	}
}

func TestBuildQuizBankTooSmall(t *testing.T) {
	svc := NewQuizService(&stubBank{pool: testPool(5)}, &stubSynthesizer{traps: testTraps(2)}, Options{
		TrapCount: 2,
		Seed:      fixedSeed(),
	})

	if _, err := svc.BuildQuiz(context.Background(), domain.QuizRequest{}); !errors.Is(err, domain.ErrBankTooSmall) {
		t.Fatalf("expected ErrBankTooSmall, got %v", err)
	}
}

func TestBuildQuizCapsTrapCount(t *testing.T) {
	svc := NewQuizService(&stubBank{pool: testPool(20)}, &stubSynthesizer{traps: testTraps(domain.QuizSize + 5)}, Options{
		Seed: fixedSeed(),
	})

	items, err := svc.BuildQuiz(context.Background(), domain.QuizRequest{TrapCount: domain.QuizSize + 5})
	if err != nil {
		t.Fatalf("BuildQuiz: %v", err)
	}
	if len(items) != domain.QuizSize {
		t.Fatalf("quiz length = %d, want %d", len(items), domain.QuizSize)
	}
}

func TestBuildQuizDeterministicWithPinnedSeed(t *testing.T) {
	build := func() []domain.Question {
		svc := NewQuizService(&stubBank{pool: testPool(20)}, &stubSynthesizer{traps: testTraps(2)}, Options{
			Seed: fixedSeed(),
		})
		items, err := svc.BuildQuiz(context.Background(), domain.QuizRequest{})
		if err != nil {
			t.Fatalf("BuildQuiz: %v", err)
		}
		return items
	}

	first, second := build(), build()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("slot %d differs across identical seeds: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}
