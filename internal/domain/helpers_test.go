package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSeats = [SeatCount]string{"p1", "p2", "p3", "p4"}

// mk builds a card whose id is its face, owned by owner.
func mk(owner string, s Suit, v int) Card {
	c := Card{Suit: s, Value: v, PlayerID: owner, DealID: "d1"}
	c.ID = c.Face()
	return c
}

// played marks c as the n-th play of trick.
func played(c Card, trick string, n int) Card {
	c.TrickID = trick
	c.PlayOrder = n
	return c
}

func newTestTable(passed bool, tricks []Trick, cards ...Card) *Table {
	g := &Game{ID: "g1", Seats: testSeats}
	d := &Deal{ID: "d1", GameID: "g1", Ordinal: 1, HasPassed: passed}
	return NewTable(g, d, tricks, cards)
}

func TestCardRankAndScore(t *testing.T) {
	ace := mk("p1", Spades, 1)
	king := mk("p1", Spades, 13)
	assert.Equal(t, 99, ace.Rank())
	assert.Equal(t, 13, king.Rank())
	assert.Greater(t, ace.Rank(), king.Rank())

	assert.Equal(t, 13, mk("p1", Spades, 12).Score())
	assert.Equal(t, 1, mk("p1", Hearts, 2).Score())
	assert.Equal(t, 1, mk("p1", Hearts, 1).Score())
	assert.Equal(t, 0, mk("p1", Clubs, 12).Score())
	assert.Equal(t, 0, mk("p1", Diamonds, 1).Score())
}

func TestCardFace(t *testing.T) {
	assert.Equal(t, "QS", mk("", Spades, 12).String())
	assert.Equal(t, "10H", mk("", Hearts, 10).String())
	assert.Equal(t, "AC", mk("", Clubs, 1).String())
	assert.Equal(t, "2D", mk("", Diamonds, 2).String())
}

func TestLowestHighest(t *testing.T) {
	hand := []Card{mk("p1", Hearts, 1), mk("p1", Clubs, 2), mk("p1", Spades, 13), mk("p1", Diamonds, 2)}

	low, ok := Lowest(hand)
	assert.True(t, ok)
	assert.Equal(t, "2C", low.ID, "ties broken by display order")

	high, ok := Highest(hand)
	assert.True(t, ok)
	assert.Equal(t, "AH", high.ID)

	_, ok = Lowest(nil)
	assert.False(t, ok)
}

func TestSuitHelpers(t *testing.T) {
	hand := []Card{mk("p1", Hearts, 3), mk("p1", Hearts, 9), mk("p1", Clubs, 4)}
	assert.True(t, HoldsSuit(hand, Clubs))
	assert.False(t, HoldsSuit(hand, Spades))
	assert.Len(t, FilterSuit(hand, Hearts), 2)
	assert.Len(t, WithoutSuit(hand, Hearts), 1)
	assert.False(t, AllSuit(hand, Hearts))
	assert.True(t, AllSuit(hand[:2], Hearts))
	assert.False(t, AllSuit(nil, Hearts))
	assert.Equal(t, 2, Points(hand))
}
