package trap

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"iqai-quiz-service/internal/domain"
	"iqai-quiz-service/internal/quiz"
)

// Generator is the external capability that produces candidate adversarial
// questions. The payload carries no schema guarantee; everything must pass
// validation before it reaches a quiz.
type Generator interface {
	Generate(ctx context.Context, n int, themeHints []string) ([]byte, error)
}

const (
	// DefaultMaxAttempts bounds generator calls per synthesis.
	DefaultMaxAttempts = 3
	// DefaultAttemptTimeout bounds one generator call. Attempts are
	// sequential, so maxAttempts*timeout must stay under the platform's
	// invocation deadline.
	DefaultAttemptTimeout = 12 * time.Second
)

// Synthesizer turns generator output into exactly n valid trap questions,
// retrying on failure and falling back to a pre-authored pool when the
// generator is unavailable.
type Synthesizer struct {
	gen            Generator
	fallback       []domain.Question
	maxAttempts    int
	attemptTimeout time.Duration
	padFinal       bool
	seed           func() int64
}

// SynthesizerOption customizes a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithRetryPolicy overrides the attempt ceiling and per-attempt timeout.
func WithRetryPolicy(maxAttempts int, perAttempt time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if perAttempt > 0 {
			s.attemptTimeout = perAttempt
		}
	}
}

// WithFallbackPool replaces the built-in pool of pre-authored traps. An
// explicit empty pool disables the fallback, making full generator outage
// visible as a trap-free quiz.
func WithFallbackPool(pool []domain.Question) SynthesizerOption {
	return func(s *Synthesizer) { s.fallback = pool }
}

// WithSeed pins the random source used to draw fallback traps.
func WithSeed(seed func() int64) SynthesizerOption {
	return func(s *Synthesizer) { s.seed = seed }
}

// WithDegradedPadding lets the final attempt pad short option lists with a
// visibly-invalid placeholder instead of rejecting the batch. Off by
// default; strict rejection is the contract, this is the accepted degraded
// mode for when the retry budget is gone.
func WithDegradedPadding(enabled bool) SynthesizerOption {
	return func(s *Synthesizer) { s.padFinal = enabled }
}

func NewSynthesizer(gen Generator, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		gen:            gen,
		fallback:       FallbackPool(),
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		seed:           func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns up to n valid trap questions. Generator failures,
// timeouts, and malformed batches all consume retry attempts; once the
// budget is spent the static fallback pool fills in, and with no pool the
// result is simply empty. Errors never escape: the assembler downgrades a
// missing trap to a safe question instead.
func (s *Synthesizer) Synthesize(ctx context.Context, n int, themeHints []string) []domain.Question {
	if n <= 0 {
		return nil
	}
	if s.gen == nil {
		return s.drawFallback(n)
	}

	attempt := 0
	batch, err := withRetry(ctx, s.maxAttempts, s.attemptTimeout, func(ctx context.Context) ([]domain.Question, error) {
		attempt++
		opts := quiz.NormalizeOptions{PadInvalidOptions: s.padFinal && attempt == s.maxAttempts}
		return s.attempt(ctx, n, themeHints, opts)
	})
	if err == nil {
		return batch
	}
	log.Printf("trap generator exhausted after %d attempts: %v", s.maxAttempts, err)
	return s.drawFallback(n)
}

// attempt runs one generate-parse-validate round. The whole batch is
// rejected if any single item fails validation.
func (s *Synthesizer) attempt(ctx context.Context, n int, themeHints []string, opts quiz.NormalizeOptions) ([]domain.Question, error) {
	payload, err := s.gen.Generate(ctx, n, themeHints)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	items, err := quiz.Unwrap(payload)
	if err != nil {
		salvaged, ok := quiz.SalvageArray(payload)
		if !ok {
			return nil, err
		}
		items, err = quiz.Unwrap(salvaged)
		if err != nil {
			return nil, err
		}
	}

	if len(items) > n {
		items = items[:n]
	}
	batch := make([]domain.Question, 0, n)
	for _, raw := range items {
		q, ok := quiz.Normalize(quiz.FromRaw(raw), opts)
		if !ok {
			return nil, fmt.Errorf("invalid question in batch")
		}
		q.ID = ""
		q.Kind = domain.KindTrap
		batch = append(batch, q)
	}
	if !quiz.ValidBatch(batch, n) {
		return nil, fmt.Errorf("batch failed validation: got %d valid of %d", len(batch), n)
	}
	return batch, nil
}

// drawFallback picks n distinct pre-authored traps at random.
func (s *Synthesizer) drawFallback(n int) []domain.Question {
	if len(s.fallback) == 0 {
		return nil
	}
	rnd := rand.New(rand.NewSource(s.seed()))
	perm := rnd.Perm(len(s.fallback))
	if n > len(perm) {
		n = len(perm)
	}
	out := make([]domain.Question, 0, n)
	for _, idx := range perm[:n] {
		q := s.fallback[idx]
		q.Kind = domain.KindTrap
		out = append(out, q)
	}
	return out
}
