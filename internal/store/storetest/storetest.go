// Package storetest holds the repository contract shared by every store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hearts/internal/domain"
	"hearts/internal/ports"
)

// Run exercises a fresh repository returned by newRepo for each subtest.
func Run(t *testing.T, newRepo func(t *testing.T) ports.Repository) {
	t.Run("participants", func(t *testing.T) { testParticipants(t, newRepo(t)) })
	t.Run("games", func(t *testing.T) { testGames(t, newRepo(t)) })
	t.Run("deals and cards", func(t *testing.T) { testDealsAndCards(t, newRepo(t)) })
	t.Run("tricks", func(t *testing.T) { testTricks(t, newRepo(t)) })
	t.Run("reassign", func(t *testing.T) { testReassign(t, newRepo(t)) })
	t.Run("complete pass", func(t *testing.T) { testCompletePass(t, newRepo(t)) })
}

func seedGame(t *testing.T, repo ports.Repository, id string) domain.Game {
	t.Helper()
	g := domain.Game{
		ID:          id,
		Seats:       [domain.SeatCount]string{"human", "bot-a", "bot-b", "bot-c"},
		TargetScore: 100,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateGame(context.Background(), g))
	return g
}

func seedDeal(t *testing.T, repo ports.Repository, g domain.Game, dealID string, ordinal int) []domain.Card {
	t.Helper()
	cards := domain.NewDeck()
	for i := range cards {
		cards[i].ID = dealID + "-" + cards[i].Face()
		cards[i].DealID = dealID
	}
	domain.DealRoundRobin(cards, g.Seats)
	d := domain.Deal{ID: dealID, GameID: g.ID, Ordinal: ordinal}
	require.NoError(t, repo.CreateDeal(context.Background(), d, cards))
	return cards
}

func testParticipants(t *testing.T, repo ports.Repository) {
	ctx := context.Background()
	require.NoError(t, repo.SaveParticipant(ctx, domain.Participant{ID: "b2", Name: "Nina", Bot: true, Strategy: "lowest"}))
	require.NoError(t, repo.SaveParticipant(ctx, domain.Participant{ID: "b1", Name: "Otto", Bot: true, Strategy: "random"}))
	require.NoError(t, repo.SaveParticipant(ctx, domain.Participant{ID: "h1", Name: "Ann"}))

	require.NoError(t, repo.SaveParticipant(ctx, domain.Participant{ID: "h1", Name: "Anna"}))
	p, err := repo.GetParticipant(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "Anna", p.Name)
	assert.False(t, p.Bot)

	bots, err := repo.ListBots(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 2)
	assert.Equal(t, "b1", bots[0].ID)
	assert.Equal(t, "lowest", bots[1].Strategy)

	_, err = repo.GetParticipant(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func testGames(t *testing.T, repo ports.Repository) {
	ctx := context.Background()
	g := seedGame(t, repo, "g1")

	got, err := repo.GetGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, g.Seats, got.Seats)
	assert.True(t, g.CreatedAt.Equal(got.CreatedAt))

	got.Seats[1] = "human-2"
	got.WinnerID = "human"
	require.NoError(t, repo.UpdateGame(ctx, got))

	again, err := repo.GetGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "human-2", again.Seats[1])
	assert.Equal(t, "human", again.WinnerID)

	_, err = repo.GetGame(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateGame(ctx, domain.Game{ID: "nope"}), ports.ErrNotFound)
}

func testDealsAndCards(t *testing.T, repo ports.Repository) {
	ctx := context.Background()
	g := seedGame(t, repo, "g1")

	_, err := repo.LatestDeal(ctx, "g1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	seedDeal(t, repo, g, "d1", 1)
	seedDeal(t, repo, g, "d2", 2)

	latest, err := repo.LatestDeal(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "d2", latest.ID)

	deals, err := repo.ListDeals(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, 1, deals[0].Ordinal)

	require.NoError(t, repo.CompletePass(ctx, latest.ID, nil))
	latest, err = repo.LatestDeal(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, latest.HasPassed)
	assert.ErrorIs(t, repo.CompletePass(ctx, "nope", nil), ports.ErrNotFound)

	all, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d2"})
	require.NoError(t, err)
	require.Len(t, all, domain.DeckSize)

	hand, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d2", PlayerID: "human", Location: ports.InHand})
	require.NoError(t, err)
	require.Len(t, hand, domain.HandSize)

	yes := true
	hand[0].ToPass = true
	hand[1].TrickID = "t1"
	hand[1].PlayOrder = 1
	require.NoError(t, repo.UpdateCards(ctx, hand[:2]))

	marked, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d2", ToPass: &yes})
	require.NoError(t, err)
	require.Len(t, marked, 1)
	assert.Equal(t, hand[0].ID, marked[0].ID)

	playedCards, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d2", Location: ports.Played})
	require.NoError(t, err)
	require.Len(t, playedCards, 1)
	assert.Equal(t, 1, playedCards[0].PlayOrder)

	inTrick, err := repo.ListCards(ctx, ports.CardFilter{TrickID: "t1"})
	require.NoError(t, err)
	assert.Len(t, inTrick, 1)

	assert.ErrorIs(t, repo.UpdateCards(ctx, []domain.Card{{ID: "ghost"}}), ports.ErrNotFound)
}

func testTricks(t *testing.T, repo ports.Repository) {
	ctx := context.Background()
	g := seedGame(t, repo, "g1")
	seedDeal(t, repo, g, "d1", 1)

	require.NoError(t, repo.CreateTrick(ctx, domain.Trick{ID: "t2", DealID: "d1", Ordinal: 2}))
	require.NoError(t, repo.CreateTrick(ctx, domain.Trick{ID: "t1", DealID: "d1", Ordinal: 1}))

	tricks, err := repo.ListTricks(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, tricks, 2)
	assert.Equal(t, "t1", tricks[0].ID)

	tricks[0].FirstCardID = "d1-2C"
	tricks[0].WinnerID = "bot-a"
	require.NoError(t, repo.UpdateTrick(ctx, tricks[0]))

	tricks, err = repo.ListTricks(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "bot-a", tricks[0].WinnerID)
	assert.Equal(t, "d1-2C", tricks[0].FirstCardID)
}

func testReassign(t *testing.T, repo ports.Repository) {
	ctx := context.Background()
	g := seedGame(t, repo, "g1")
	seedDeal(t, repo, g, "d1", 1)
	require.NoError(t, repo.CreateTrick(ctx, domain.Trick{ID: "t1", DealID: "d1", Ordinal: 1, WinnerID: "bot-a"}))

	require.NoError(t, repo.ReassignParticipant(ctx, "g1", "bot-a", "human-2"))

	moved, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d1", PlayerID: "human-2"})
	require.NoError(t, err)
	assert.Len(t, moved, domain.HandSize)

	left, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d1", PlayerID: "bot-a"})
	require.NoError(t, err)
	assert.Empty(t, left)

	tricks, err := repo.ListTricks(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "human-2", tricks[0].WinnerID)
}

func testCompletePass(t *testing.T, repo ports.Repository) {
	ctx := context.Background()
	g := seedGame(t, repo, "g1")
	seedDeal(t, repo, g, "d1", 1)

	hand, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d1", PlayerID: "human"})
	require.NoError(t, err)
	moved := hand[:domain.PassCount]
	for i := range moved {
		moved[i].PlayerID = "bot-a"
	}

	ghost := append([]domain.Card{}, moved...)
	ghost = append(ghost, domain.Card{ID: "ghost"})
	assert.ErrorIs(t, repo.CompletePass(ctx, "d1", ghost), ports.ErrNotFound)

	d, err := repo.LatestDeal(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, d.HasPassed)
	kept, err := repo.ListCards(ctx, ports.CardFilter{DealID: "d1", PlayerID: "human"})
	require.NoError(t, err)
	assert.Len(t, kept, domain.HandSize)

	require.NoError(t, repo.CompletePass(ctx, "d1", moved))
	d, err = repo.LatestDeal(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, d.HasPassed)
	kept, err = repo.ListCards(ctx, ports.CardFilter{DealID: "d1", PlayerID: "human"})
	require.NoError(t, err)
	assert.Len(t, kept, domain.HandSize-domain.PassCount)
}
