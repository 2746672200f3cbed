package domain

import (
	"fmt"
	"strconv"
)

// Suit identifies one of the four suits. Values match the stored column.
type Suit string

const (
	Hearts   Suit = "h"
	Spades   Suit = "s"
	Diamonds Suit = "d"
	Clubs    Suit = "c"
)

// Suits lists every suit in deck-generation order.
var Suits = [...]Suit{Hearts, Spades, Diamonds, Clubs}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Spades, Diamonds, Clubs:
		return true
	}
	return false
}

// displayOrder groups suits for hand rendering: clubs, diamonds, spades, hearts.
func (s Suit) displayOrder() int {
	switch s {
	case Clubs:
		return 0
	case Diamonds:
		return 1
	case Spades:
		return 2
	case Hearts:
		return 3
	}
	return 4
}

const (
	aceValue   = 1
	queenValue = 12
	// aceRank is the effective rank of an Ace, above every other value.
	aceRank = 99
)

// Card is a single card of one deal. A card starts unassigned, is owned by
// one participant while in hand or marked for passing, and references one
// trick once played.
type Card struct {
	ID     string
	DealID string
	Suit   Suit
	Value  int // 1..13, 1 is the Ace

	PlayerID  string // owning participant, "" before dealing
	TrickID   string // "" while in hand
	ToPass    bool
	PlayOrder int // 1-based position within its trick
}

// Rank is the effective rank used for comparisons; the Ace ranks highest.
func (c Card) Rank() int {
	if c.Value == aceValue {
		return aceRank
	}
	return c.Value
}

// Score is the penalty value of the card.
func (c Card) Score() int {
	switch {
	case c.IsQueenOfSpades():
		return 13
	case c.Suit == Hearts:
		return 1
	}
	return 0
}

// SortKey orders cards for hand display only; it has no bearing on legality.
func (c Card) SortKey() int {
	return c.Suit.displayOrder()*100 + c.Rank()
}

// IsTwoOfClubs reports whether the card opens the first trick of a deal.
func (c Card) IsTwoOfClubs() bool {
	return c.Suit == Clubs && c.Value == 2
}

// IsQueenOfSpades reports whether the card is the 13 point card.
func (c Card) IsQueenOfSpades() bool {
	return c.Suit == Spades && c.Value == queenValue
}

// IsPenalty reports whether the card carries points.
func (c Card) IsPenalty() bool {
	return c.Score() > 0
}

// InHand reports whether the card has not been played yet.
func (c Card) InHand() bool {
	return c.TrickID == ""
}

// Face returns the short label of the card, e.g. "QS", "10H" or "AC".
func (c Card) Face() string {
	var v string
	switch c.Value {
	case 1:
		v = "A"
	case 11:
		v = "J"
	case 12:
		v = "Q"
	case 13:
		v = "K"
	default:
		v = strconv.Itoa(c.Value)
	}
	return v + string(c.Suit[0]-'a'+'A')
}

func (c Card) String() string {
	if !c.Suit.Valid() {
		return fmt.Sprintf("%d?", c.Value)
	}
	return c.Face()
}
