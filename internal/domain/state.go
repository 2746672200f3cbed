package domain

import "time"

// Phase represents the lifecycle stage of a Hearts game.
type Phase string

const (
	// PhaseNoDeal is the state of a fresh game before the first deal.
	PhaseNoDeal Phase = "no_deal"
	// PhasePassing waits for every seat to mark three cards to pass.
	PhasePassing Phase = "passing"
	// PhasePlaying is the trick-taking stage of a deal.
	PhasePlaying Phase = "playing"
	// PhaseDealComplete is reached once all 13 tricks have a winner.
	PhaseDealComplete Phase = "deal_complete"
	// PhaseGameOver is terminal; the game has a winner.
	PhaseGameOver Phase = "game_over"
)

// Seat is a fixed table position numbered 1..4 clockwise.
type Seat int

// SeatNone is returned when no seat applies, e.g. an undetermined turn.
const SeatNone Seat = 0

// SeatAt converts a 0-based index into a Seat.
func SeatAt(i int) Seat { return Seat(i%SeatCount + 1) }

// Valid reports whether s is one of the four table seats.
func (s Seat) Valid() bool { return s >= 1 && s <= SeatCount }

// Index returns the 0-based slot of the seat.
func (s Seat) Index() int { return int(s) - 1 }

// Offset returns the seat n positions clockwise from s.
func (s Seat) Offset(n int) Seat {
	return SeatAt(((s.Index()+n)%SeatCount + SeatCount) % SeatCount)
}

// Participant is a human or automated player that can occupy a seat.
type Participant struct {
	ID       string
	Name     string
	Bot      bool
	Strategy string // bot strategy identifier, empty for humans
}

// Game binds four seats to participants and records the winner once decided.
type Game struct {
	ID          string
	Seats       [SeatCount]string // index 0..3 => participant id
	WinnerID    string
	TargetScore int
	CreatedAt   time.Time
}

// SeatOf returns the seat occupied by participantID, or SeatNone.
func (g *Game) SeatOf(participantID string) Seat {
	if participantID == "" {
		return SeatNone
	}
	for i, id := range g.Seats {
		if id == participantID {
			return SeatAt(i)
		}
	}
	return SeatNone
}

// Occupant returns the participant id in the given seat.
func (g *Game) Occupant(s Seat) string {
	if !s.Valid() {
		return ""
	}
	return g.Seats[s.Index()]
}

// Over reports whether a winner has been declared.
func (g *Game) Over() bool { return g.WinnerID != "" }

// Target returns the score that ends the game.
func (g *Game) Target() int {
	if g.TargetScore <= 0 {
		return DefaultTargetScore
	}
	return g.TargetScore
}

// Deal is one distribution of the 52 cards. Ordinal is 1-based.
type Deal struct {
	ID        string
	GameID    string
	Ordinal   int
	HasPassed bool
}

// Trick is one round of four plays within a deal. Ordinal is 1-based.
type Trick struct {
	ID          string
	DealID      string
	Ordinal     int
	FirstCardID string
	WinnerID    string
}

// Resolved reports whether the trick has a winner.
func (t Trick) Resolved() bool { return t.WinnerID != "" }
