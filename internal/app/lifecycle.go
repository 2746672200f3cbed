package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hearts/internal/domain"
	"hearts/internal/ports"
)

// startDeal creates the next deal with a freshly shuffled deck dealt
// round-robin from seat 1.
func (s *Service) startDeal(ctx context.Context, g *domain.Game, ordinal int) ([]Event, error) {
	d := domain.Deal{ID: s.newID(), GameID: g.ID, Ordinal: ordinal}

	deck := domain.ShuffleDeck(domain.NewDeck(), s.rng)
	for i := range deck {
		deck[i].ID = s.newID()
		deck[i].DealID = d.ID
	}
	domain.DealRoundRobin(deck, g.Seats)

	if err := s.repo.CreateDeal(ctx, d, deck); err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}
	s.metrics.DealsStarted.Inc()

	dir := domain.PassDirectionFor(ordinal)
	s.logger.Debug("deal started",
		zap.String("game_id", g.ID),
		zap.Int("ordinal", ordinal),
		zap.String("direction", string(dir)))
	return []Event{{
		Kind:    EventDealStarted,
		GameID:  g.ID,
		Text:    fmt.Sprintf("Deal %d. Pass %s.", ordinal, dir),
		Payload: DealStartedPayload{DealID: d.ID, Ordinal: ordinal, Direction: dir},
	}}, nil
}

// startTrick opens the next trick. It does nothing while the latest trick
// is still unresolved.
func (s *Service) startTrick(ctx context.Context, t *domain.Table) (domain.Trick, bool, error) {
	if active, ok := t.ActiveTrick(); ok {
		return active, false, nil
	}
	ordinal := 1
	if last, ok := t.LastTrick(); ok {
		ordinal = last.Ordinal + 1
	}
	tr := domain.Trick{ID: s.newID(), DealID: t.Deal.ID, Ordinal: ordinal}
	if err := s.repo.CreateTrick(ctx, tr); err != nil {
		return domain.Trick{}, false, fmt.Errorf("create trick: %w", err)
	}
	return tr, true, nil
}

// applyPlay validates and persists one play. ok is false when the
// validator rejected it; the rejection is logged and nothing changes.
func (s *Service) applyPlay(ctx context.Context, t *domain.Table, seat domain.Seat, card domain.Card, actor string) ([]Event, bool, error) {
	participantID := t.Game.Occupant(seat)
	if err := t.ValidatePlay(card, seat); err != nil {
		s.reject(t.Game.ID, participantID, "illegal_move",
			zap.String("card", card.String()),
			zap.String("actor", actor),
			zap.Error(err))
		return nil, false, nil
	}
	card, _ = domain.FindCard(t.Cards, card.ID)

	trick, created, err := s.startTrick(ctx, t)
	if err != nil {
		return nil, false, err
	}
	var inTrick int
	if !created {
		inTrick = len(t.TrickCards(trick.ID))
	}

	card.TrickID = trick.ID
	card.PlayOrder = inTrick + 1
	card.ToPass = false
	if err := s.repo.UpdateCards(ctx, []domain.Card{card}); err != nil {
		return nil, false, fmt.Errorf("play card: %w", err)
	}
	if inTrick == 0 {
		trick.FirstCardID = card.ID
		if err := s.repo.UpdateTrick(ctx, trick); err != nil {
			return nil, false, fmt.Errorf("set first card: %w", err)
		}
	}
	s.metrics.Plays.WithLabelValues(actor).Inc()

	return []Event{{
		Kind:   EventCardPlayed,
		GameID: t.Game.ID,
		Text:   fmt.Sprintf("%s plays %s", s.displayName(ctx, participantID), card),
		Payload: CardPlayedPayload{
			ParticipantID: participantID,
			Seat:          seat,
			CardID:        card.ID,
			Card:          card.String(),
			TrickOrdinal:  trick.Ordinal,
		},
	}}, true, nil
}

// resolveTrick records the winner of a full trick.
func (s *Service) resolveTrick(ctx context.Context, t *domain.Table, trick domain.Trick) ([]Event, error) {
	winner, ok := t.TrickWinner(trick.ID)
	if !ok {
		return nil, fmt.Errorf("trick %s is not complete", trick.ID)
	}
	trick.WinnerID = winner.PlayerID
	if trick.FirstCardID == "" {
		trick.FirstCardID = t.TrickCards(trick.ID)[0].ID
	}
	if err := s.repo.UpdateTrick(ctx, trick); err != nil {
		return nil, fmt.Errorf("resolve trick: %w", err)
	}
	s.metrics.TricksResolved.Inc()

	points := domain.Points(t.TrickCards(trick.ID))
	payload := TrickTakenPayload{
		WinnerID:     winner.PlayerID,
		Seat:         t.SeatOfCard(winner),
		TrickOrdinal: trick.Ordinal,
		Points:       points,
	}
	return []Event{
		{
			Kind:       EventTrickTaken,
			GameID:     t.Game.ID,
			Text:       fmt.Sprintf("%s takes the trick", s.displayName(ctx, winner.PlayerID)),
			Payload:    payload,
			Recipients: others(t.Game, winner.PlayerID),
		},
		{
			Kind:       EventTrickTaken,
			GameID:     t.Game.ID,
			Text:       fmt.Sprintf("You take the trick. +%d points", points),
			Payload:    payload,
			Recipients: []string{winner.PlayerID},
		},
	}, nil
}

// closeDeal scores a finished deal. When any seat reached the target the
// game ends with the lowest scorer as winner, otherwise the next deal starts.
func (s *Service) closeDeal(ctx context.Context, t *domain.Table) ([]Event, error) {
	g := t.Game
	dealScores := t.DealScores()
	total, err := s.gameScores(ctx, g)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:   EventDealEnded,
		GameID: g.ID,
		Text:   fmt.Sprintf("Deal %d complete", t.Deal.Ordinal),
		Payload: DealEndedPayload{
			DealID:     t.Deal.ID,
			DealScores: dealScores,
			GameScores: total,
		},
	}}

	seat, over := domain.GameOver(total, g.Target())
	if !over {
		next, err := s.startDeal(ctx, g, t.Deal.Ordinal+1)
		if err != nil {
			return nil, err
		}
		return append(events, next...), nil
	}

	g.WinnerID = g.Occupant(seat)
	if err := s.repo.UpdateGame(ctx, *g); err != nil {
		return nil, fmt.Errorf("declare winner: %w", err)
	}
	s.metrics.GamesFinished.Inc()
	s.logger.Info("game over",
		zap.String("game_id", g.ID),
		zap.String("winner_id", g.WinnerID),
		zap.Ints("scores", total[:]))

	payload := GameEndedPayload{WinnerID: g.WinnerID, GameScores: total}
	return append(events,
		Event{
			Kind:       EventGameEnded,
			GameID:     g.ID,
			Text:       fmt.Sprintf("Game Over. %s wins.", s.displayName(ctx, g.WinnerID)),
			Payload:    payload,
			Recipients: others(g, g.WinnerID),
		},
		Event{
			Kind:       EventGameEnded,
			GameID:     g.ID,
			Text:       "You win!",
			Payload:    payload,
			Recipients: []string{g.WinnerID},
		},
	), nil
}

// gameScores sums the resolved tricks of every deal of the game per seat.
func (s *Service) gameScores(ctx context.Context, g *domain.Game) (domain.Scores, error) {
	var total domain.Scores
	deals, err := s.repo.ListDeals(ctx, g.ID)
	if err != nil {
		return total, fmt.Errorf("list deals: %w", err)
	}
	for _, d := range deals {
		tricks, err := s.repo.ListTricks(ctx, d.ID)
		if err != nil {
			return total, fmt.Errorf("list tricks: %w", err)
		}
		cards, err := s.repo.ListCards(ctx, ports.CardFilter{DealID: d.ID, Location: ports.Played})
		if err != nil {
			return total, fmt.Errorf("list cards: %w", err)
		}
		total = total.Add(domain.ScoreTricks(g, tricks, cards))
	}
	return total, nil
}
