package domain

// HoldsSuit reports whether any card in hand has the given suit.
func HoldsSuit(hand []Card, s Suit) bool {
	for _, c := range hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// FilterSuit returns the cards of the given suit, preserving order.
func FilterSuit(hand []Card, s Suit) []Card {
	var out []Card
	for _, c := range hand {
		if c.Suit == s {
			out = append(out, c)
		}
	}
	return out
}

// WithoutSuit returns the cards that are not of the given suit.
func WithoutSuit(hand []Card, s Suit) []Card {
	var out []Card
	for _, c := range hand {
		if c.Suit != s {
			out = append(out, c)
		}
	}
	return out
}

// AllSuit reports whether hand is non-empty and consists only of suit s.
func AllSuit(hand []Card, s Suit) bool {
	if len(hand) == 0 {
		return false
	}
	for _, c := range hand {
		if c.Suit != s {
			return false
		}
	}
	return true
}

func allPenalty(hand []Card) bool {
	if len(hand) == 0 {
		return false
	}
	for _, c := range hand {
		if !c.IsPenalty() {
			return false
		}
	}
	return true
}

// Lowest returns the card with the lowest effective rank.
func Lowest(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank() < best.Rank() || (c.Rank() == best.Rank() && c.SortKey() < best.SortKey()) {
			best = c
		}
	}
	return best, true
}

// Highest returns the card with the highest effective rank.
func Highest(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank() > best.Rank() || (c.Rank() == best.Rank() && c.SortKey() > best.SortKey()) {
			best = c
		}
	}
	return best, true
}

// FindCard looks up a card by id.
func FindCard(cards []Card, id string) (Card, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Points sums the penalty score of cards.
func Points(cards []Card) int {
	n := 0
	for _, c := range cards {
		n += c.Score()
	}
	return n
}
