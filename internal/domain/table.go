package domain

import "sort"

// Table is a read-only snapshot of one game's current deal: the game, its
// latest deal, that deal's tricks ordered by ordinal, and all of its cards.
// Every rule in this package is evaluated against a Table so it can be
// rebuilt from persisted state on each call.
type Table struct {
	Game   *Game
	Deal   *Deal
	Tricks []Trick
	Cards  []Card
}

// NewTable builds a snapshot, ordering tricks by ordinal.
func NewTable(g *Game, d *Deal, tricks []Trick, cards []Card) *Table {
	ts := append([]Trick(nil), tricks...)
	sort.Slice(ts, func(i, j int) bool { return ts[i].Ordinal < ts[j].Ordinal })
	return &Table{Game: g, Deal: d, Tricks: ts, Cards: cards}
}

// Phase derives the lifecycle stage from the snapshot.
func (t *Table) Phase() Phase {
	switch {
	case t.Game != nil && t.Game.Over():
		return PhaseGameOver
	case t.Deal == nil:
		return PhaseNoDeal
	case !t.Deal.HasPassed:
		return PhasePassing
	case t.ResolvedTricks() >= TricksPerDeal:
		return PhaseDealComplete
	}
	return PhasePlaying
}

// Hand returns the unplayed cards owned by the seat's occupant.
func (t *Table) Hand(s Seat) []Card {
	return t.HandOf(t.Game.Occupant(s))
}

// HandOf returns the unplayed cards owned by participantID.
func (t *Table) HandOf(participantID string) []Card {
	if participantID == "" {
		return nil
	}
	var out []Card
	for _, c := range t.Cards {
		if c.PlayerID == participantID && c.InHand() {
			out = append(out, c)
		}
	}
	return out
}

// SeatOfCard returns the seat of the card's current owner.
func (t *Table) SeatOfCard(c Card) Seat {
	return t.Game.SeatOf(c.PlayerID)
}

// LastTrick returns the highest-ordinal trick of the deal, if any.
func (t *Table) LastTrick() (Trick, bool) {
	if len(t.Tricks) == 0 {
		return Trick{}, false
	}
	return t.Tricks[len(t.Tricks)-1], true
}

// ActiveTrick returns the trick still collecting plays.
func (t *Table) ActiveTrick() (Trick, bool) {
	last, ok := t.LastTrick()
	if !ok || last.Resolved() {
		return Trick{}, false
	}
	return last, true
}

// ResolvedTricks counts tricks with a winner.
func (t *Table) ResolvedTricks() int {
	n := 0
	for _, tr := range t.Tricks {
		if tr.Resolved() {
			n++
		}
	}
	return n
}

// TrickCards returns the cards played into a trick in play order.
func (t *Table) TrickCards(trickID string) []Card {
	if trickID == "" {
		return nil
	}
	var out []Card
	for _, c := range t.Cards {
		if c.TrickID == trickID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayOrder < out[j].PlayOrder })
	return out
}

// TrickSuit returns the leading suit of the trick, if a card was played.
func (t *Table) TrickSuit(trickID string) (Suit, bool) {
	cards := t.TrickCards(trickID)
	if len(cards) == 0 {
		return "", false
	}
	for _, tr := range t.Tricks {
		if tr.ID == trickID && tr.FirstCardID != "" {
			if c, ok := FindCard(cards, tr.FirstCardID); ok {
				return c.Suit, true
			}
		}
	}
	return cards[0].Suit, true
}

// HeartsBroken reports whether any heart has been played in this deal.
func (t *Table) HeartsBroken() bool {
	for _, c := range t.Cards {
		if c.Suit == Hearts && !c.InHand() {
			return true
		}
	}
	return false
}

// onFirstTrick reports whether the next play belongs to trick 1 of the deal.
func (t *Table) onFirstTrick() bool {
	last, ok := t.LastTrick()
	if !ok {
		return true
	}
	return last.Ordinal == 1 && !last.Resolved()
}

// twoOfClubsHolder returns the seat holding the unplayed two of Clubs.
func (t *Table) twoOfClubsHolder() Seat {
	for _, c := range t.Cards {
		if c.IsTwoOfClubs() && c.InHand() {
			return t.SeatOfCard(c)
		}
	}
	return SeatNone
}

// NextTurn resolves whose turn it is. SeatNone means the turn is
// undetermined: no deal, passing unresolved, a full trick awaiting its
// winner, or an inconsistent snapshot.
func (t *Table) NextTurn() Seat {
	if t.Game == nil || t.Deal == nil || !t.Deal.HasPassed || t.Game.Over() {
		return SeatNone
	}
	if t.ResolvedTricks() >= TricksPerDeal {
		return SeatNone
	}

	active, ok := t.ActiveTrick()
	var played []Card
	if ok {
		played = t.TrickCards(active.ID)
	}

	if len(played) == 0 {
		last, hasLast := t.LastTrick()
		switch {
		case !hasLast, ok && active.Ordinal == 1:
			return t.twoOfClubsHolder()
		case ok:
			return t.Game.SeatOf(t.previousWinner(active.Ordinal))
		default:
			// the next trick is not created yet; its leader is the last winner
			return t.Game.SeatOf(last.WinnerID)
		}
	}
	if len(played) >= SeatCount {
		return SeatNone
	}

	var seen [SeatCount + 1]bool
	highest := SeatNone
	for _, c := range played {
		s := t.SeatOfCard(c)
		if !s.Valid() {
			return SeatNone
		}
		seen[s] = true
		if s > highest {
			highest = s
		}
	}
	for i := 1; i <= SeatCount; i++ {
		s := highest.Offset(i)
		if !seen[s] {
			return s
		}
	}
	return SeatNone
}

func (t *Table) previousWinner(ordinal int) string {
	for _, tr := range t.Tricks {
		if tr.Ordinal == ordinal-1 {
			return tr.WinnerID
		}
	}
	return ""
}

// TrickWinner returns the winning card of a complete trick: the highest
// effective rank among the cards that follow the leading suit.
func (t *Table) TrickWinner(trickID string) (Card, bool) {
	cards := t.TrickCards(trickID)
	if len(cards) < SeatCount {
		return Card{}, false
	}
	lead, _ := t.TrickSuit(trickID)
	best, _ := Highest(FilterSuit(cards, lead))
	return best, true
}

// PassDirection returns the passing direction of the current deal.
func (t *Table) PassDirection() PassDirection {
	if t.Deal == nil {
		return PassHold
	}
	return PassDirectionFor(t.Deal.Ordinal)
}

// Declared reports whether the seat has marked exactly PassCount cards.
func (t *Table) Declared(s Seat) bool {
	return len(t.PassSelection(s)) == PassCount
}

// PassSelection returns the cards the seat marked to pass.
func (t *Table) PassSelection(s Seat) []Card {
	var out []Card
	for _, c := range t.Hand(s) {
		if c.ToPass {
			out = append(out, c)
		}
	}
	return out
}

// PassReady reports whether all four seats have declared.
func (t *Table) PassReady() bool {
	for i := 0; i < SeatCount; i++ {
		if !t.Declared(SeatAt(i)) {
			return false
		}
	}
	return true
}

// DealScores tallies penalty points per seat for the deal's resolved tricks.
func (t *Table) DealScores() Scores {
	return ScoreTricks(t.Game, t.Tricks, t.Cards)
}
