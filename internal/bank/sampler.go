package bank

import (
	"math/rand"

	"iqai-quiz-service/internal/domain"
)

// Sampler draws category-balanced random samples from a question pool. The
// random source is injected so tests can pin the permutation.
type Sampler struct {
	rnd *rand.Rand
}

func NewSampler(rnd *rand.Rand) *Sampler {
	return &Sampler{rnd: rnd}
}

// Sample selects up to poolSize questions from the bank, excluding seen
// questions when enough fresh ones remain, shuffling uniformly, and capping
// each category at maxPerCategory. If the cap leaves the sample short, a
// second pass relaxes it; identical texts are never repeated. The result is
// tagged safe.
func (s *Sampler) Sample(pool []domain.Question, poolSize int, seen ExclusionSet, maxPerCategory int) []domain.Question {
	if poolSize <= 0 || len(pool) == 0 {
		return nil
	}

	candidates := FilterSeen(pool, seen, poolSize)
	shuffled := shuffle(s.rnd, candidates)

	picked := make([]domain.Question, 0, poolSize)
	perCategory := make(map[string]int)
	usedTexts := make(map[string]struct{})

	for _, q := range shuffled {
		if len(picked) == poolSize {
			break
		}
		fp := Fingerprint(q.Text)
		if _, dup := usedTexts[fp]; dup {
			continue
		}
		cat := category(q)
		if maxPerCategory > 0 && perCategory[cat] >= maxPerCategory {
			continue
		}
		perCategory[cat]++
		usedTexts[fp] = struct{}{}
		picked = append(picked, tagSafe(q))
	}

	// Cap relaxation: the bank cannot satisfy the category balance, so
	// completeness wins over balance.
	if len(picked) < poolSize {
		for _, q := range shuffled {
			if len(picked) == poolSize {
				break
			}
			fp := Fingerprint(q.Text)
			if _, dup := usedTexts[fp]; dup {
				continue
			}
			usedTexts[fp] = struct{}{}
			picked = append(picked, tagSafe(q))
		}
	}
	return picked
}

// shuffle returns a uniformly shuffled copy, leaving the input untouched.
func shuffle(rnd *rand.Rand, pool []domain.Question) []domain.Question {
	out := make([]domain.Question, len(pool))
	copy(out, pool)
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func category(q domain.Question) string {
	if q.Category == "" {
		return domain.DefaultCategory
	}
	return q.Category
}

func tagSafe(q domain.Question) domain.Question {
	q.Kind = domain.KindSafe
	return q
}
