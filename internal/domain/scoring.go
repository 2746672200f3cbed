package domain

// Scores holds penalty points per seat, index 0 => seat 1.
type Scores [SeatCount]int

// Of returns the points of one seat.
func (s Scores) Of(seat Seat) int {
	if !seat.Valid() {
		return 0
	}
	return s[seat.Index()]
}

// Add returns the seat-wise sum of s and o.
func (s Scores) Add(o Scores) Scores {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Max returns the highest score across seats.
func (s Scores) Max() int {
	m := s[0]
	for _, v := range s[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// LowestSeat returns the seat with the fewest points; ties go to the lowest
// seat number.
func (s Scores) LowestSeat() Seat {
	best := 0
	for i, v := range s {
		if v < s[best] {
			best = i
		}
	}
	return SeatAt(best)
}

// ScoreTricks sums, per seat, the card scores of every resolved trick the
// seat's occupant won. Cards are matched to tricks by TrickID.
func ScoreTricks(g *Game, tricks []Trick, cards []Card) Scores {
	var out Scores
	winners := make(map[string]Seat, len(tricks))
	for _, tr := range tricks {
		if !tr.Resolved() {
			continue
		}
		if s := g.SeatOf(tr.WinnerID); s.Valid() {
			winners[tr.ID] = s
		}
	}
	for _, c := range cards {
		if c.InHand() {
			continue
		}
		if s, ok := winners[c.TrickID]; ok {
			out[s.Index()] += c.Score()
		}
	}
	return out
}

// GameOver reports whether the cumulative scores end a game with the given
// target, returning the winning seat when they do.
func GameOver(total Scores, target int) (Seat, bool) {
	if total.Max() < target {
		return SeatNone, false
	}
	return total.LowestSeat(), true
}
