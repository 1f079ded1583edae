package app

import (
	"context"
	"log"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"iqai-quiz-service/internal/bank"
	"iqai-quiz-service/internal/domain"
	"iqai-quiz-service/internal/quiz"
)

// BankRepository loads the vetted question bank (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context) ([]domain.Question, error)
}

// TrapSynthesizer produces up to n schema-valid adversarial questions. It
// never fails: exhaustion shows up as a short or empty slice so assembly can
// degrade instead of aborting.
type TrapSynthesizer interface {
	Synthesize(ctx context.Context, n int, themeHints []string) []domain.Question
}

// Options tune quiz assembly.
type Options struct {
	TrapCount      int
	MaxPerCategory int
	Placement      quiz.Placement
	FixedSlots     []int
	ThemeHints     []string
	// Seed feeds the per-request random source; tests pin it.
	Seed func() int64
}

// QuizService builds complete quizzes from the bank and the trap pipeline.
type QuizService struct {
	bank      BankRepository
	traps     TrapSynthesizer
	assembler *quiz.Assembler
	opts      Options
}

func NewQuizService(bankRepo BankRepository, traps TrapSynthesizer, opts Options) *QuizService {
	if opts.TrapCount <= 0 {
		opts.TrapCount = domain.DefaultTrapCount
	}
	if opts.MaxPerCategory <= 0 {
		opts.MaxPerCategory = 2
	}
	if opts.Placement == "" {
		opts.Placement = quiz.PlacementFixed
	}
	if opts.Seed == nil {
		opts.Seed = func() int64 { return time.Now().UnixNano() }
	}
	return &QuizService{
		bank:      bankRepo,
		traps:     traps,
		assembler: quiz.NewAssembler(opts.Placement, opts.FixedSlots),
		opts:      opts,
	}
}

// BuildQuiz assembles an ordered quiz of exactly domain.QuizSize questions:
// safe items sampled from the bank (respecting the caller's exclusions and
// the category cap) with traps injected per the placement policy. The safe
// sample and the trap synthesis run concurrently; only a bank failure is
// fatal, a trap shortfall degrades to more safe items.
func (s *QuizService) BuildQuiz(ctx context.Context, req domain.QuizRequest) ([]domain.Question, error) {
	trapCount := req.TrapCount
	if trapCount <= 0 {
		trapCount = s.opts.TrapCount
	}
	if trapCount > domain.QuizSize {
		trapCount = domain.QuizSize
	}

	rnd := rand.New(rand.NewSource(s.opts.Seed()))
	seen := bank.NewExclusionSet(req.ExcludeIDs, req.ExcludeTexts)

	var safe, traps []domain.Question
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool, err := s.bank.GetBank(gctx)
		if err != nil {
			return err
		}
		safe = bank.NewSampler(rnd).Sample(pool, domain.QuizSize, seen, s.opts.MaxPerCategory)
		if len(safe) == 0 {
			return domain.ErrBankEmpty
		}
		// Exclusion and the category cap have already been relaxed by the
		// sampler; a sample still short of the safe slots means the bank
		// itself cannot fill a quiz.
		if len(safe) < domain.QuizSize-trapCount {
			return domain.ErrBankTooSmall
		}
		return nil
	})
	g.Go(func() error {
		traps = s.traps.Synthesize(gctx, trapCount, s.opts.ThemeHints)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(traps) < trapCount {
		log.Printf("trap synthesis returned %d/%d items, filling with safe questions", len(traps), trapCount)
	}
	return s.assembler.Assemble(safe, traps, rnd), nil
}
