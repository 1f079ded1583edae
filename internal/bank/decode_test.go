package bank

import (
	"errors"
	"testing"

	"iqai-quiz-service/internal/domain"
)

func TestDecodeBank(t *testing.T) {
	data := []byte(`{"questions":[
		{"id":1,"text":"Premiere question","options":["a","b","c","d"],"answer":"a","category":"histoire"},
		{"id":2,"q":"Deuxieme question","options":["a","b","c","d"],"answer":"b"},
		{"id":3,"text":"Cassee","options":["a","b"],"answer":"a"}
	]}`)

	questions, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected the malformed entry dropped, got %d questions", len(questions))
	}
	if questions[0].Category != "histoire" {
		t.Fatalf("category lost: %q", questions[0].Category)
	}
	if questions[1].Category != domain.DefaultCategory {
		t.Fatalf("missing category not defaulted: %q", questions[1].Category)
	}
	for _, q := range questions {
		if q.Kind != domain.KindSafe {
			t.Fatalf("question %s not tagged safe", q.ID)
		}
	}
}

func TestDecodeEmptyBank(t *testing.T) {
	_, err := Decode([]byte(`{"questions":[]}`))
	if !errors.Is(err, domain.ErrBankEmpty) {
		t.Fatalf("expected ErrBankEmpty, got %v", err)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
