package app

import (
	"context"

	"hearts/internal/domain"
)

// Position is a seat relative to the viewer.
type Position string

const (
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionTop    Position = "top"
	PositionRight  Position = "right"
)

var positions = [domain.SeatCount]Position{PositionBottom, PositionLeft, PositionTop, PositionRight}

// Action is what the viewer is expected to do next.
type Action string

const (
	ActionNone      Action = ""
	ActionDealCards Action = "deal-cards"
	ActionPassCards Action = "pass-cards"
	ActionPlayCard  Action = "play-card"
)

// CardView is the client rendering of one card.
type CardView struct {
	ID     string      `json:"id"`
	Suit   domain.Suit `json:"suit"`
	Value  int         `json:"value"`
	Label  string      `json:"label"`
	ToPass bool        `json:"to_pass,omitempty"`
}

func newCardView(c domain.Card) CardView {
	return CardView{ID: c.ID, Suit: c.Suit, Value: c.Value, Label: c.String(), ToPass: c.ToPass}
}

// PlayerView describes one seat from the viewer's side of the table.
type PlayerView struct {
	ParticipantID    string     `json:"participant_id"`
	Name             string     `json:"name"`
	Bot              bool       `json:"bot"`
	RelativePosition Position   `json:"relative_position"`
	AbsolutePosition int        `json:"absolute_position"`
	IsTurn           bool       `json:"is_turn"`
	Declared         bool       `json:"declared"`
	Score            int        `json:"score"`
	Hand             []CardView `json:"hand,omitempty"`
	HandSize         int        `json:"hand_size"`
}

// View is a participant-relative snapshot of a game.
type View struct {
	GameID        string                  `json:"game_id"`
	ParticipantID string                  `json:"participant_id"`
	IsObserver    bool                    `json:"is_observer"`
	Phase         domain.Phase            `json:"phase"`
	Action        Action                  `json:"action"`
	DealOrdinal   int                     `json:"deal_ordinal"`
	HasPassed     bool                    `json:"has_passed"`
	PassDirection domain.PassDirection    `json:"pass_direction"`
	TrickSuit     domain.Suit             `json:"trick_suit,omitempty"`
	CurrentTurn   Position                `json:"current_turn_relative_position,omitempty"`
	Players       map[Position]PlayerView `json:"players"`
	Trick         map[Position]*CardView  `json:"trick"`
	WinnerID      string                  `json:"winner_id,omitempty"`
}

// ClientView renders the game for participantID. Observers see the table
// from seat 1 and no hand. A non-observer must be seated.
func (s *Service) ClientView(ctx context.Context, gameID, participantID string, isObserver bool) (*View, error) {
	t, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	g := t.Game

	viewer := g.SeatOf(participantID)
	if !isObserver && !viewer.Valid() {
		return nil, ErrNotSeated
	}
	anchor := viewer
	if isObserver {
		anchor = 1
	}
	relative := func(seat domain.Seat) Position {
		return positions[(seat.Index()+domain.SeatCount-anchor.Index())%domain.SeatCount]
	}

	totals, err := s.gameScores(ctx, g)
	if err != nil {
		return nil, err
	}

	phase := t.Phase()
	turn := t.NextTurn()
	v := &View{
		GameID:        g.ID,
		ParticipantID: participantID,
		IsObserver:    isObserver,
		Phase:         phase,
		PassDirection: t.PassDirection(),
		Players:       make(map[Position]PlayerView, domain.SeatCount),
		Trick:         make(map[Position]*CardView, domain.SeatCount),
		WinnerID:      g.WinnerID,
	}
	if t.Deal != nil {
		v.DealOrdinal = t.Deal.Ordinal
		v.HasPassed = t.Deal.HasPassed
	}
	if turn.Valid() {
		v.CurrentTurn = relative(turn)
	}

	for i := 0; i < domain.SeatCount; i++ {
		seat := domain.SeatAt(i)
		id := g.Occupant(seat)
		p, _ := s.repo.GetParticipant(ctx, id)
		pos := relative(seat)
		hand := t.Hand(seat)
		pv := PlayerView{
			ParticipantID:    id,
			Name:             p.Name,
			Bot:              p.Bot,
			RelativePosition: pos,
			AbsolutePosition: int(seat),
			IsTurn:           seat == turn,
			Declared:         phase == domain.PhasePassing && t.Declared(seat),
			Score:            totals.Of(seat),
			HandSize:         len(hand),
		}
		if pv.Name == "" {
			pv.Name = id
		}
		if !isObserver && seat == viewer {
			domain.SortHand(hand)
			for _, c := range hand {
				pv.Hand = append(pv.Hand, newCardView(c))
			}
		}
		v.Players[pos] = pv
		v.Trick[pos] = nil
	}

	if last, ok := t.LastTrick(); ok && phase != domain.PhaseGameOver {
		v.TrickSuit, _ = t.TrickSuit(last.ID)
		for _, c := range t.TrickCards(last.ID) {
			cv := newCardView(c)
			v.Trick[relative(t.SeatOfCard(c))] = &cv
		}
	}

	if !isObserver {
		v.Action = nextAction(t, viewer)
	}
	return v, nil
}

func nextAction(t *domain.Table, viewer domain.Seat) Action {
	switch t.Phase() {
	case domain.PhaseNoDeal, domain.PhaseDealComplete:
		return ActionDealCards
	case domain.PhasePassing:
		if t.PassDirection() != domain.PassHold && !t.Declared(viewer) {
			return ActionPassCards
		}
	case domain.PhasePlaying:
		if t.NextTurn() == viewer {
			return ActionPlayCard
		}
	}
	return ActionNone
}
