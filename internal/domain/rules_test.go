package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTurn(t *testing.T) {
	trick1 := Trick{ID: "t1", DealID: "d1", Ordinal: 1}
	done1 := Trick{ID: "t1", DealID: "d1", Ordinal: 1, FirstCardID: "2C", WinnerID: "p3"}
	trick2 := Trick{ID: "t2", DealID: "d1", Ordinal: 2}

	tests := []struct {
		name   string
		passed bool
		tricks []Trick
		cards  []Card
		want   Seat
	}{
		{
			name:   "passing unresolved is undetermined",
			passed: false,
			cards:  []Card{mk("p2", Clubs, 2)},
			want:   SeatNone,
		},
		{
			name:   "no trick yet, holder of two of clubs leads",
			passed: true,
			cards:  []Card{mk("p2", Clubs, 2), mk("p1", Clubs, 3)},
			want:   2,
		},
		{
			name:   "empty first trick, holder of two of clubs leads",
			passed: true,
			tricks: []Trick{trick1},
			cards:  []Card{mk("p4", Clubs, 2)},
			want:   4,
		},
		{
			name:   "after one play the next seat follows",
			passed: true,
			tricks: []Trick{trick1},
			cards:  []Card{played(mk("p3", Clubs, 2), "t1", 1), mk("p4", Clubs, 5)},
			want:   4,
		},
		{
			name:   "wraps from seat four to seat one",
			passed: true,
			tricks: []Trick{trick1},
			cards: []Card{
				played(mk("p3", Clubs, 2), "t1", 1),
				played(mk("p4", Clubs, 5), "t1", 2),
			},
			want: 1,
		},
		{
			name:   "scan starts after the highest seat that played",
			passed: true,
			tricks: []Trick{trick1},
			cards: []Card{
				played(mk("p4", Clubs, 2), "t1", 1),
				played(mk("p1", Clubs, 5), "t1", 2),
			},
			want: 2,
		},
		{
			name:   "previous winner leads the next trick",
			passed: true,
			tricks: []Trick{done1, trick2},
			cards:  []Card{mk("p3", Diamonds, 4)},
			want:   3,
		},
		{
			name:   "previous winner leads before the trick exists",
			passed: true,
			tricks: []Trick{done1},
			cards:  []Card{mk("p3", Diamonds, 4)},
			want:   3,
		},
		{
			name:   "full trick awaiting winner is undetermined",
			passed: true,
			tricks: []Trick{trick1},
			cards: []Card{
				played(mk("p1", Clubs, 2), "t1", 1),
				played(mk("p2", Clubs, 5), "t1", 2),
				played(mk("p3", Clubs, 6), "t1", 3),
				played(mk("p4", Clubs, 7), "t1", 4),
			},
			want: SeatNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTestTable(tt.passed, tt.tricks, tt.cards...)
			assert.Equal(t, tt.want, tbl.NextTurn())
		})
	}
}

func TestNextTurnNoDeal(t *testing.T) {
	tbl := NewTable(&Game{ID: "g1", Seats: testSeats}, nil, nil, nil)
	assert.Equal(t, SeatNone, tbl.NextTurn())
	assert.Equal(t, PhaseNoDeal, tbl.Phase())
}

func TestValidatePlay(t *testing.T) {
	first := Trick{ID: "t1", DealID: "d1", Ordinal: 1}
	done1 := Trick{ID: "t1", DealID: "d1", Ordinal: 1, FirstCardID: "2C", WinnerID: "p1"}
	second := Trick{ID: "t2", DealID: "d1", Ordinal: 2}
	firstTrickPlays := []Card{
		played(mk("p1", Clubs, 2), "t1", 1),
		played(mk("p2", Clubs, 9), "t1", 2),
		played(mk("p3", Clubs, 10), "t1", 3),
		played(mk("p4", Clubs, 11), "t1", 4),
	}
	withHearts := func(extra ...Card) []Card {
		return append(append([]Card{}, firstTrickPlays...), extra...)
	}

	tests := []struct {
		name   string
		tricks []Trick
		cards  []Card
		play   string
		seat   Seat
		want   error
	}{
		{
			name:   "must lead two of clubs",
			tricks: []Trick{first},
			cards:  []Card{mk("p1", Clubs, 2), mk("p1", Clubs, 5)},
			play:   "5C",
			seat:   1,
			want:   ErrMustLeadTwoOfClubs,
		},
		{
			name:   "leading two of clubs is legal",
			tricks: []Trick{first},
			cards:  []Card{mk("p1", Clubs, 2), mk("p1", Clubs, 5)},
			play:   "2C",
			seat:   1,
		},
		{
			name:   "wrong seat",
			tricks: []Trick{first},
			cards:  []Card{mk("p1", Clubs, 2), mk("p2", Clubs, 5)},
			play:   "5C",
			seat:   2,
			want:   ErrNotYourTurn,
		},
		{
			name:   "card held by someone else",
			tricks: []Trick{first},
			cards:  []Card{mk("p1", Clubs, 2), mk("p2", Clubs, 5)},
			play:   "5C",
			seat:   1,
			want:   ErrCardNotInHand,
		},
		{
			name:   "must follow suit",
			tricks: []Trick{first},
			cards: []Card{
				played(mk("p1", Clubs, 2), "t1", 1),
				mk("p2", Clubs, 5), mk("p2", Diamonds, 9),
			},
			play: "9D",
			seat: 2,
			want: ErrMustFollowSuit,
		},
		{
			name:   "void may discard off suit",
			tricks: []Trick{first},
			cards: []Card{
				played(mk("p1", Clubs, 2), "t1", 1),
				mk("p2", Diamonds, 9), mk("p2", Hearts, 4),
			},
			play: "9D",
			seat: 2,
		},
		{
			name:   "no hearts on first trick",
			tricks: []Trick{first},
			cards: []Card{
				played(mk("p1", Clubs, 2), "t1", 1),
				mk("p2", Diamonds, 9), mk("p2", Hearts, 4),
			},
			play: "4H",
			seat: 2,
			want: ErrHeartsOnFirstTrick,
		},
		{
			name:   "no queen of spades on first trick",
			tricks: []Trick{first},
			cards: []Card{
				played(mk("p1", Clubs, 2), "t1", 1),
				mk("p2", Diamonds, 9), mk("p2", Spades, 12),
			},
			play: "QS",
			seat: 2,
			want: ErrQueenOnFirstTrick,
		},
		{
			name:   "penalty-only hand may shed on first trick",
			tricks: []Trick{first},
			cards: []Card{
				played(mk("p1", Clubs, 2), "t1", 1),
				mk("p2", Spades, 12), mk("p2", Hearts, 4),
			},
			play: "QS",
			seat: 2,
		},
		{
			name:   "leading hearts before broken",
			tricks: []Trick{done1, second},
			cards:  withHearts(mk("p1", Hearts, 3), mk("p1", Diamonds, 6)),
			play:   "3H",
			seat:   1,
			want:   ErrHeartsNotBroken,
		},
		{
			name:   "leading hearts with an all-hearts hand",
			tricks: []Trick{done1, second},
			cards:  withHearts(mk("p1", Hearts, 3), mk("p1", Hearts, 6)),
			play:   "3H",
			seat:   1,
		},
		{
			name:   "leading hearts once broken",
			tricks: []Trick{done1, {ID: "t2", DealID: "d1", Ordinal: 2, WinnerID: "p1"}, {ID: "t3", DealID: "d1", Ordinal: 3}},
			cards: withHearts(
				played(mk("p1", Spades, 5), "t2", 1),
				played(mk("p2", Hearts, 9), "t2", 2),
				played(mk("p3", Spades, 2), "t2", 3),
				played(mk("p4", Spades, 3), "t2", 4),
				mk("p1", Hearts, 3), mk("p1", Diamonds, 6),
			),
			play: "3H",
			seat: 1,
		},
		{
			name:   "any lead outside hearts is legal",
			tricks: []Trick{done1, second},
			cards:  withHearts(mk("p1", Hearts, 3), mk("p1", Diamonds, 6)),
			play:   "6D",
			seat:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTestTable(true, tt.tricks, tt.cards...)
			c, ok := FindCard(tbl.Cards, tt.play)
			require.True(t, ok)
			err := tbl.ValidatePlay(c, tt.seat)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, tbl.IsLegal(c, tt.seat))
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLegalPlays(t *testing.T) {
	tbl := newTestTable(true, []Trick{{ID: "t1", DealID: "d1", Ordinal: 1}},
		played(mk("p1", Clubs, 2), "t1", 1),
		mk("p2", Clubs, 5), mk("p2", Clubs, 1), mk("p2", Hearts, 8),
	)
	legal := tbl.LegalPlays(2)
	require.Len(t, legal, 2)
	for _, c := range legal {
		assert.Equal(t, Clubs, c.Suit)
	}
	assert.Empty(t, tbl.LegalPlays(3))
}

func TestTrickWinner(t *testing.T) {
	tricks := []Trick{{ID: "t1", DealID: "d1", Ordinal: 1, FirstCardID: "10D"}}

	t.Run("ace outranks king", func(t *testing.T) {
		tbl := newTestTable(true, tricks,
			played(mk("p1", Diamonds, 10), "t1", 1),
			played(mk("p2", Diamonds, 13), "t1", 2),
			played(mk("p3", Diamonds, 1), "t1", 3),
			played(mk("p4", Diamonds, 2), "t1", 4),
		)
		w, ok := tbl.TrickWinner("t1")
		require.True(t, ok)
		assert.Equal(t, "p3", w.PlayerID)
	})

	t.Run("off suit cards never win", func(t *testing.T) {
		tbl := newTestTable(true, tricks,
			played(mk("p1", Diamonds, 10), "t1", 1),
			played(mk("p2", Spades, 1), "t1", 2),
			played(mk("p3", Hearts, 13), "t1", 3),
			played(mk("p4", Diamonds, 4), "t1", 4),
		)
		w, ok := tbl.TrickWinner("t1")
		require.True(t, ok)
		assert.Equal(t, "10D", w.ID)
	})

	t.Run("incomplete trick has no winner", func(t *testing.T) {
		tbl := newTestTable(true, tricks, played(mk("p1", Diamonds, 10), "t1", 1))
		_, ok := tbl.TrickWinner("t1")
		assert.False(t, ok)
	})
}

func TestPassDirectionCycle(t *testing.T) {
	want := []PassDirection{PassLeft, PassRight, PassAcross, PassHold}
	for ordinal := 1; ordinal <= 12; ordinal++ {
		assert.Equal(t, want[(ordinal-1)%4], PassDirectionFor(ordinal), "deal %d", ordinal)
	}

	assert.Equal(t, Seat(2), PassLeft.Target(1))
	assert.Equal(t, Seat(1), PassLeft.Target(4))
	assert.Equal(t, Seat(4), PassRight.Target(1))
	assert.Equal(t, Seat(3), PassAcross.Target(1))
	assert.Equal(t, Seat(2), PassAcross.Target(4))
	assert.Equal(t, Seat(3), PassHold.Target(3))
}

func TestPassSelection(t *testing.T) {
	var cards []Card
	for i, id := range testSeats {
		for v := 2; v <= 4; v++ {
			c := mk(id, Suits[i], v)
			c.ToPass = true
			cards = append(cards, c)
		}
	}
	tbl := newTestTable(false, nil, cards...)
	assert.True(t, tbl.PassReady())
	assert.Equal(t, PhasePassing, tbl.Phase())

	tbl.Cards[0].ToPass = false
	assert.False(t, tbl.Declared(1))
	assert.True(t, tbl.Declared(2))
	assert.False(t, tbl.PassReady())
}
