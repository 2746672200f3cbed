package domain

import "errors"

// Rule violations returned by ValidatePlay.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrMustFollowSuit     = errors.New("must follow the leading suit")
	ErrHeartsOnFirstTrick = errors.New("hearts cannot be played on the first trick")
	ErrQueenOnFirstTrick  = errors.New("queen of spades cannot be played on the first trick")
	ErrMustLeadTwoOfClubs = errors.New("first trick must be led with the two of clubs")
	ErrHeartsNotBroken    = errors.New("hearts have not been broken")
)

// ValidatePlay checks whether seat may play card now. It only reads the
// snapshot. A nil error means the play is legal.
func (t *Table) ValidatePlay(card Card, seat Seat) error {
	turn := t.NextTurn()
	if turn == SeatNone || seat != turn {
		return ErrNotYourTurn
	}

	hand := t.Hand(seat)
	held, ok := FindCard(hand, card.ID)
	if !ok {
		return ErrCardNotInHand
	}
	card = held

	var played []Card
	var lead Suit
	if active, ok := t.ActiveTrick(); ok {
		played = t.TrickCards(active.ID)
		lead, _ = t.TrickSuit(active.ID)
	}
	leading := len(played) == 0

	if !leading && card.Suit != lead && HoldsSuit(hand, lead) {
		return ErrMustFollowSuit
	}

	if t.onFirstTrick() {
		// a seat void in the lead suit holding only penalty cards must shed one
		forced := !leading && !HoldsSuit(hand, lead) && allPenalty(hand)
		if card.Suit == Hearts && !forced {
			return ErrHeartsOnFirstTrick
		}
		if card.IsQueenOfSpades() && !forced {
			return ErrQueenOnFirstTrick
		}
		if leading && !card.IsTwoOfClubs() {
			return ErrMustLeadTwoOfClubs
		}
		return nil
	}

	if leading && card.Suit == Hearts && !t.HeartsBroken() && !AllSuit(hand, Hearts) {
		return ErrHeartsNotBroken
	}
	return nil
}

// IsLegal reports whether ValidatePlay accepts the play.
func (t *Table) IsLegal(card Card, seat Seat) bool {
	return t.ValidatePlay(card, seat) == nil
}

// LegalPlays returns the cards of seat's hand that are legal right now.
func (t *Table) LegalPlays(seat Seat) []Card {
	var out []Card
	for _, c := range t.Hand(seat) {
		if t.ValidatePlay(c, seat) == nil {
			out = append(out, c)
		}
	}
	return out
}

// PassDirection is the fixed seat offset applied to passed cards.
type PassDirection string

const (
	PassLeft   PassDirection = "left"
	PassRight  PassDirection = "right"
	PassAcross PassDirection = "across"
	PassHold   PassDirection = "hold"
)

// PassDirectionFor cycles left, right, across, hold by 1-based deal ordinal.
func PassDirectionFor(ordinal int) PassDirection {
	if ordinal < 1 {
		return PassHold
	}
	switch (ordinal - 1) % 4 {
	case 0:
		return PassLeft
	case 1:
		return PassRight
	case 2:
		return PassAcross
	}
	return PassHold
}

// Offset is the clockwise seat distance to the receiving seat.
func (d PassDirection) Offset() int {
	switch d {
	case PassLeft:
		return 1
	case PassRight:
		return SeatCount - 1
	case PassAcross:
		return 2
	}
	return 0
}

// Target returns the seat receiving cards passed from s.
func (d PassDirection) Target(s Seat) Seat {
	return s.Offset(d.Offset())
}
