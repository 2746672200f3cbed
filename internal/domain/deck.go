package domain

import (
	"math/rand"
	"sort"
)

// NewDeck returns the 52 (suit, value) combinations in generation order.
// Cards carry no ids or owners yet.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for v := 1; v <= 13; v++ {
			deck = append(deck, Card{Suit: s, Value: v})
		}
	}
	return deck
}

// ShuffleDeck returns a uniformly shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealRoundRobin assigns owners one card at a time starting from seat 1.
func DealRoundRobin(deck []Card, seats [SeatCount]string) {
	for i := range deck {
		deck[i].PlayerID = seats[i%SeatCount]
	}
}

// SortHand orders a hand for display: clubs, diamonds, spades, hearts, Ace high.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].SortKey() < cards[j].SortKey()
	})
}

// SortByRank orders cards by ascending effective rank, breaking ties by SortKey.
func SortByRank(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Rank() != cards[j].Rank() {
			return cards[i].Rank() < cards[j].Rank()
		}
		return cards[i].SortKey() < cards[j].SortKey()
	})
}
