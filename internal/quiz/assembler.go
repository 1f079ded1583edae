package quiz

import (
	"math/rand"
	"sort"

	"iqai-quiz-service/internal/domain"
)

// Placement selects which quiz slots receive trap questions.
type Placement string

const (
	// PlacementFixed puts traps at predetermined slots (4 and 8, 1-indexed,
	// by default).
	PlacementFixed Placement = "fixed"
	// PlacementRandom draws distinct trap slots uniformly per request.
	PlacementRandom Placement = "random"
)

// DefaultFixedSlots are the 0-indexed trap positions of the fixed policy:
// question 4 and question 8 of a 1-indexed 10-item quiz.
var DefaultFixedSlots = []int{3, 7}

// Assembler merges safe and trap questions into a final ordered quiz.
type Assembler struct {
	policy     Placement
	fixedSlots []int
}

// NewAssembler builds an assembler for the given policy. An empty slot list
// falls back to DefaultFixedSlots.
func NewAssembler(policy Placement, fixedSlots []int) *Assembler {
	if len(fixedSlots) == 0 {
		fixedSlots = DefaultFixedSlots
	}
	return &Assembler{policy: policy, fixedSlots: fixedSlots}
}

// Assemble produces a quiz of exactly domain.QuizSize questions. Trap items
// land on the slots chosen by the placement policy; every other slot is
// filled from safeItems in their original relative order. When traps are
// missing the quiz is all-safe, and when safeItems run short they are
// recycled as a last resort so the result never comes up short.
func (a *Assembler) Assemble(safeItems, trapItems []domain.Question, rnd *rand.Rand) []domain.Question {
	if len(safeItems) == 0 && len(trapItems) == 0 {
		return nil
	}

	traps := trapItems
	if len(traps) > domain.QuizSize {
		traps = traps[:domain.QuizSize]
	}
	slots := a.trapSlots(len(traps), rnd)

	quiz := make([]domain.Question, domain.QuizSize)
	trapAt := make(map[int]domain.Question, len(slots))
	for i, slot := range slots {
		trapAt[slot] = traps[i]
	}

	safeIdx := 0
	for pos := 0; pos < domain.QuizSize; pos++ {
		if trap, ok := trapAt[pos]; ok {
			trap.Kind = domain.KindTrap
			quiz[pos] = trap
			continue
		}
		if len(safeItems) == 0 {
			// No safe pool at all; recycle traps rather than return short.
			trap := traps[pos%len(traps)]
			trap.Kind = domain.KindTrap
			quiz[pos] = trap
			continue
		}
		item := safeItems[safeIdx%len(safeItems)]
		item.Kind = domain.KindSafe
		quiz[pos] = item
		safeIdx++
	}
	return quiz
}

// trapSlots returns the 0-indexed slots the traps occupy, ascending.
func (a *Assembler) trapSlots(trapCount int, rnd *rand.Rand) []int {
	if trapCount == 0 {
		return nil
	}
	if a.policy == PlacementRandom {
		perm := rnd.Perm(domain.QuizSize)[:trapCount]
		sort.Ints(perm)
		return perm
	}
	slots := a.fixedSlots
	if trapCount < len(slots) {
		slots = slots[:trapCount]
	} else if trapCount > len(slots) {
		// More traps than configured slots: extend with the first free
		// positions so every trap still lands somewhere deterministic.
		used := make(map[int]struct{}, len(slots))
		extended := append([]int(nil), slots...)
		for _, s := range slots {
			used[s] = struct{}{}
		}
		for pos := 0; pos < domain.QuizSize && len(extended) < trapCount; pos++ {
			if _, taken := used[pos]; !taken {
				extended = append(extended, pos)
			}
		}
		sort.Ints(extended)
		return extended
	}
	out := append([]int(nil), slots...)
	sort.Ints(out)
	return out
}
