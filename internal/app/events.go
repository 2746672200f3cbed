package app

import (
	"hearts/internal/domain"
)

// EventKind identifies emitted events for dispatch.
type EventKind string

const (
	EventDealStarted  EventKind = "deal_started"
	EventPassDeclared EventKind = "pass_declared"
	EventCardsPassed  EventKind = "cards_passed"
	EventCardPlayed   EventKind = "card_played"
	EventTrickTaken   EventKind = "trick_taken"
	EventDealEnded    EventKind = "deal_ended"
	EventGameEnded    EventKind = "game_ended"
	EventSeatChanged  EventKind = "seat_changed"
)

// Event is an engine event with optional targeted recipients. Events are
// only produced after the state change they describe was persisted.
type Event struct {
	Kind       EventKind
	GameID     string
	Text       string // short human readable line
	Payload    any
	Recipients []string // participant ids; empty means broadcast
}

type DealStartedPayload struct {
	DealID    string               `json:"deal_id"`
	Ordinal   int                  `json:"ordinal"`
	Direction domain.PassDirection `json:"direction"`
}

type PassDeclaredPayload struct {
	ParticipantID string      `json:"participant_id"`
	Seat          domain.Seat `json:"seat"`
}

type CardsPassedPayload struct {
	DealID    string               `json:"deal_id"`
	Direction domain.PassDirection `json:"direction"`
}

type CardPlayedPayload struct {
	ParticipantID string      `json:"participant_id"`
	Seat          domain.Seat `json:"seat"`
	CardID        string      `json:"card_id"`
	Card          string      `json:"card"`
	TrickOrdinal  int         `json:"trick_ordinal"`
}

type TrickTakenPayload struct {
	WinnerID     string      `json:"winner_id"`
	Seat         domain.Seat `json:"seat"`
	TrickOrdinal int         `json:"trick_ordinal"`
	Points       int         `json:"points"`
}

type DealEndedPayload struct {
	DealID     string        `json:"deal_id"`
	DealScores domain.Scores `json:"deal_scores"`
	GameScores domain.Scores `json:"game_scores"`
}

type GameEndedPayload struct {
	WinnerID   string        `json:"winner_id"`
	GameScores domain.Scores `json:"game_scores"`
}

type SeatChangedPayload struct {
	Seat domain.Seat `json:"seat"`
	From string      `json:"from"`
	To   string      `json:"to"`
}

// others returns the seated participants except skip.
func others(g *domain.Game, skip string) []string {
	out := make([]string, 0, domain.SeatCount)
	for _, id := range g.Seats {
		if id != "" && id != skip {
			out = append(out, id)
		}
	}
	return out
}
