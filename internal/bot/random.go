package bot

import (
	"math/rand"

	"hearts/internal/domain"
)

// StrategyRandom is the identifier of RandomBot.
const StrategyRandom = "random"

// RandomBot passes and plays uniformly at random among its options.
type RandomBot struct {
	rng *rand.Rand
}

// NewRandomBot builds a RandomBot drawing from rng.
func NewRandomBot(rng *rand.Rand) Strategy {
	return &RandomBot{rng: rng}
}

func (b *RandomBot) Name() string { return StrategyRandom }

func (b *RandomBot) CardsToPass(v View) []domain.Card {
	n := domain.PassCount
	if len(v.Passable) < n {
		n = len(v.Passable)
	}
	out := make([]domain.Card, 0, n)
	for _, i := range b.rng.Perm(len(v.Passable))[:n] {
		out = append(out, v.Passable[i])
	}
	return out
}

func (b *RandomBot) CardToPlay(v View) (domain.Card, bool) {
	if v.FirstTrick && v.Leading() {
		if c, ok := twoOfClubs(v.Hand); ok {
			return c, true
		}
	}
	cands := v.Candidates()
	if len(cands) == 0 {
		return domain.Card{}, false
	}
	return cands[b.rng.Intn(len(cands))], true
}
