package bot

import (
	"hearts/internal/domain"
)

// Agent binds a bot participant to its strategy.
type Agent struct {
	ID       string
	Name     string
	Strategy Strategy
}

// NewAgent wraps a bot participant.
func NewAgent(p domain.Participant, s Strategy) *Agent {
	return &Agent{ID: p.ID, Name: p.Name, Strategy: s}
}

// Pass asks the strategy for the cards to pass from the agent's seat.
// It returns nil when the agent is not seated.
func (a *Agent) Pass(t *domain.Table) []domain.Card {
	seat := t.Game.SeatOf(a.ID)
	if !seat.Valid() {
		return nil
	}
	return a.Strategy.CardsToPass(NewView(t, seat))
}

// Play asks the strategy for a card. ok is false when the agent is not
// seated or holds nothing to play.
func (a *Agent) Play(t *domain.Table) (domain.Card, bool) {
	seat := t.Game.SeatOf(a.ID)
	if !seat.Valid() {
		return domain.Card{}, false
	}
	return a.Strategy.CardToPlay(NewView(t, seat))
}
