package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hearts/internal/domain"
)

const (
	actorHuman = "human"
	actorBot   = "bot"
)

// Outcome describes where Advance stopped.
type Outcome struct {
	Phase domain.Phase
	// WaitingOn is the human participant whose input is required, if any.
	WaitingOn string
	// Seat is WaitingOn's seat, or SeatNone.
	Seat domain.Seat
}

// AttemptPlay plays cardID for participantID if the move is legal. An
// illegal move or a play out of phase is logged and reported as
// applied=false with a nil error.
func (s *Service) AttemptPlay(ctx context.Context, gameID, participantID, cardID string) (bool, []Event, error) {
	unlock, err := s.acquire(gameID)
	if err != nil {
		return false, nil, err
	}
	defer unlock()

	t, err := s.load(ctx, gameID)
	if err != nil {
		return false, nil, err
	}
	if t.Phase() != domain.PhasePlaying {
		s.reject(gameID, participantID, "not_playing", zap.String("phase", string(t.Phase())))
		return false, nil, nil
	}
	seat := t.Game.SeatOf(participantID)
	if !seat.Valid() {
		s.reject(gameID, participantID, "not_seated")
		return false, nil, nil
	}
	card, ok := domain.FindCard(t.Cards, cardID)
	if !ok {
		s.reject(gameID, participantID, "unknown_card", zap.String("card_id", cardID))
		return false, nil, nil
	}

	events, applied, err := s.applyPlay(ctx, t, seat, card, actorHuman)
	if err != nil || !applied {
		return false, nil, err
	}
	s.emit(ctx, events)
	return true, events, nil
}

// Advance drives the game until it must wait on a human or the game ends.
// It re-reads persisted state at every step, so calling it again without new
// input changes nothing and emits nothing.
func (s *Service) Advance(ctx context.Context, gameID string) (Outcome, []Event, error) {
	unlock, err := s.acquire(gameID)
	if err != nil {
		return Outcome{}, nil, err
	}
	defer unlock()

	start := time.Now()
	defer func() { s.metrics.AdvanceDuration.Observe(time.Since(start).Seconds()) }()

	var all []Event
	for step := 0; step < maxAdvanceSteps; step++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, all, err
		}
		t, err := s.load(ctx, gameID)
		if err != nil {
			return Outcome{}, all, err
		}

		out, events, done, err := s.step(ctx, t)
		if err != nil {
			return Outcome{}, all, err
		}
		s.emit(ctx, events)
		all = append(all, events...)
		if done {
			return out, all, nil
		}
	}
	return Outcome{}, all, fmt.Errorf("%w after %d steps: %s", errAdvanceDidNotSettle, maxAdvanceSteps, gameID)
}

// step performs one discrete mutation. done reports that Advance must halt.
func (s *Service) step(ctx context.Context, t *domain.Table) (Outcome, []Event, bool, error) {
	phase := t.Phase()
	switch phase {
	case domain.PhaseGameOver:
		return Outcome{Phase: phase}, nil, true, nil

	case domain.PhaseNoDeal:
		events, err := s.startDeal(ctx, t.Game, 1)
		return Outcome{}, events, false, err

	case domain.PhaseDealComplete:
		events, err := s.closeDeal(ctx, t)
		return Outcome{}, events, false, err

	case domain.PhasePassing:
		waiting, events, err := s.advancePassing(ctx, t)
		if err != nil || waiting == "" {
			return Outcome{}, events, false, err
		}
		return Outcome{Phase: phase, WaitingOn: waiting, Seat: t.Game.SeatOf(waiting)}, events, true, nil
	}

	active, ok := t.ActiveTrick()
	if !ok {
		_, _, err := s.startTrick(ctx, t)
		return Outcome{}, nil, false, err
	}
	if len(t.TrickCards(active.ID)) == domain.SeatCount {
		events, err := s.resolveTrick(ctx, t, active)
		return Outcome{}, events, false, err
	}

	seat := t.NextTurn()
	if seat == domain.SeatNone {
		s.logger.Warn("turn undetermined", zap.String("game_id", t.Game.ID))
		return Outcome{Phase: phase}, nil, true, nil
	}
	p, err := s.participant(ctx, t.Game.Occupant(seat))
	if err != nil {
		return Outcome{}, nil, false, err
	}
	if !p.Bot {
		return Outcome{Phase: phase, WaitingOn: p.ID, Seat: seat}, nil, true, nil
	}

	card, ok := s.agent(p).Play(t)
	if !ok {
		s.reject(t.Game.ID, p.ID, "bot_no_card")
		return Outcome{Phase: phase, Seat: seat}, nil, true, nil
	}
	events, applied, err := s.applyPlay(ctx, t, seat, card, actorBot)
	if err != nil {
		return Outcome{}, nil, false, err
	}
	if !applied {
		return Outcome{Phase: phase, Seat: seat}, nil, true, nil
	}
	return Outcome{}, events, false, nil
}
