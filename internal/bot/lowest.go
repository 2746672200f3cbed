package bot

import (
	"math/rand"

	"hearts/internal/domain"
)

// StrategyLowest is the identifier of LowestBot.
const StrategyLowest = "lowest"

// LowestBot sheds its highest cards when passing, ducks with its lowest card
// when it can follow and dumps its highest card when it cannot.
type LowestBot struct{}

// NewLowestBot returns a LowestBot; it never draws randomness.
func NewLowestBot(*rand.Rand) Strategy { return &LowestBot{} }

func (b *LowestBot) Name() string { return StrategyLowest }

func (b *LowestBot) CardsToPass(v View) []domain.Card {
	cards := append([]domain.Card(nil), v.Passable...)
	domain.SortByRank(cards)
	if len(cards) > domain.PassCount {
		cards = cards[len(cards)-domain.PassCount:]
	}
	return cards
}

func (b *LowestBot) CardToPlay(v View) (domain.Card, bool) {
	cands := v.Candidates()
	if len(cands) == 0 {
		return domain.Card{}, false
	}

	if !v.Leading() {
		if follow := domain.FilterSuit(cands, v.LeadSuit); len(follow) > 0 {
			return domain.Lowest(follow)
		}
		return domain.Highest(cands)
	}

	if c, ok := twoOfClubs(cands); ok {
		return c, true
	}
	eligible := cands
	if !v.HeartsBroken {
		if rest := domain.WithoutSuit(cands, domain.Hearts); len(rest) > 0 {
			eligible = rest
		}
	}
	return domain.Lowest(eligible)
}
