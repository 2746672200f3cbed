package bot

import (
	"math/rand"

	"hearts/internal/domain"
)

// Strategy is the decision capability every bot variant implements.
type Strategy interface {
	// Name returns the registry identifier of the strategy.
	Name() string
	// CardsToPass picks exactly domain.PassCount cards from v.Passable.
	CardsToPass(v View) []domain.Card
	// CardToPlay picks one card from v.Candidates().
	CardToPlay(v View) (domain.Card, bool)
}

// Constructor builds a strategy around a shared random source.
type Constructor func(rng *rand.Rand) Strategy

// View is what a bot sees of the table when asked to decide.
type View struct {
	Seat         domain.Seat
	Hand         []domain.Card // unplayed cards
	Passable     []domain.Card // unplayed cards not yet marked to pass
	Legal        []domain.Card // cards the validator accepts right now
	Trick        []domain.Card // cards in the active trick, in play order
	LeadSuit     domain.Suit
	HeartsBroken bool
	FirstTrick   bool
}

// NewView captures seat's perspective of t.
func NewView(t *domain.Table, seat domain.Seat) View {
	v := View{
		Seat:         seat,
		Hand:         t.Hand(seat),
		Legal:        t.LegalPlays(seat),
		HeartsBroken: t.HeartsBroken(),
	}
	for _, c := range v.Hand {
		if !c.ToPass {
			v.Passable = append(v.Passable, c)
		}
	}
	if active, ok := t.ActiveTrick(); ok {
		v.Trick = t.TrickCards(active.ID)
		v.LeadSuit, _ = t.TrickSuit(active.ID)
		v.FirstTrick = active.Ordinal == 1
	} else {
		_, hasTricks := t.LastTrick()
		v.FirstTrick = !hasTricks
	}
	return v
}

// Leading reports whether the bot plays the first card of the trick.
func (v View) Leading() bool { return len(v.Trick) == 0 }

// Candidates returns the legal plays, or the whole hand when the validator
// offered none.
func (v View) Candidates() []domain.Card {
	if len(v.Legal) > 0 {
		return v.Legal
	}
	return v.Hand
}

func twoOfClubs(cards []domain.Card) (domain.Card, bool) {
	for _, c := range cards {
		if c.IsTwoOfClubs() {
			return c, true
		}
	}
	return domain.Card{}, false
}
