package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckIsComplete(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[string]bool)
	for _, c := range deck {
		assert.True(t, c.Suit.Valid())
		assert.GreaterOrEqual(t, c.Value, 1)
		assert.LessOrEqual(t, c.Value, 13)
		seen[c.Face()] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestShuffleAndDealRoundRobin(t *testing.T) {
	deck := ShuffleDeck(NewDeck(), rand.New(rand.NewSource(7)))
	require.Len(t, deck, DeckSize)
	DealRoundRobin(deck, testSeats)

	counts := make(map[string]int)
	for _, c := range deck {
		counts[c.PlayerID]++
	}
	for _, id := range testSeats {
		assert.Equal(t, HandSize, counts[id], id)
	}
	assert.Equal(t, "p1", deck[0].PlayerID)
	assert.Equal(t, "p4", deck[DeckSize-1].PlayerID)
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	deck := NewDeck()
	_ = ShuffleDeck(deck, rand.New(rand.NewSource(1)))
	assert.Equal(t, NewDeck(), deck)
}

func TestSortHand(t *testing.T) {
	hand := []Card{
		mk("p1", Hearts, 2),
		mk("p1", Clubs, 1),
		mk("p1", Spades, 12),
		mk("p1", Clubs, 3),
		mk("p1", Diamonds, 13),
	}
	SortHand(hand)

	var got []string
	for _, c := range hand {
		got = append(got, c.ID)
	}
	assert.Equal(t, []string{"3C", "AC", "KD", "QS", "2H"}, got)
}

func TestSortByRank(t *testing.T) {
	hand := []Card{mk("p1", Hearts, 1), mk("p1", Clubs, 10), mk("p1", Spades, 2)}
	SortByRank(hand)
	assert.Equal(t, "2S", hand[0].ID)
	assert.Equal(t, "AH", hand[2].ID)
}
