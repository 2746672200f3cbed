package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hearts/internal/domain"
)

// DeclarePassSelection records the three cards a human chose to pass. It
// only marks the cards; Advance performs the exchange once all four seats
// have declared. Violations are logged and reported as applied=false.
func (s *Service) DeclarePassSelection(ctx context.Context, gameID, participantID string, cardIDs []string) (bool, []Event, error) {
	unlock, err := s.acquire(gameID)
	if err != nil {
		return false, nil, err
	}
	defer unlock()

	t, err := s.load(ctx, gameID)
	if err != nil {
		return false, nil, err
	}
	if t.Phase() != domain.PhasePassing {
		s.reject(gameID, participantID, "not_passing", zap.String("phase", string(t.Phase())))
		return false, nil, nil
	}
	seat := t.Game.SeatOf(participantID)
	if !seat.Valid() {
		s.reject(gameID, participantID, "not_seated")
		return false, nil, nil
	}

	if t.PassDirection() == domain.PassHold {
		events, err := s.skipPass(ctx, t)
		if err != nil {
			return false, nil, err
		}
		s.emit(ctx, events)
		return true, events, nil
	}

	if t.Declared(seat) {
		s.reject(gameID, participantID, "already_declared")
		return false, nil, nil
	}
	if len(cardIDs) != domain.PassCount {
		s.reject(gameID, participantID, "wrong_card_count", zap.Int("count", len(cardIDs)))
		return false, nil, nil
	}

	hand := t.Hand(seat)
	picked := make([]domain.Card, 0, domain.PassCount)
	seen := make(map[string]bool, domain.PassCount)
	for _, id := range cardIDs {
		c, ok := domain.FindCard(hand, id)
		if !ok || c.ToPass || seen[id] {
			s.reject(gameID, participantID, "card_not_passable", zap.String("card_id", id))
			return false, nil, nil
		}
		seen[id] = true
		picked = append(picked, c)
	}

	events, err := s.markPass(ctx, t, seat, picked)
	if err != nil {
		return false, nil, err
	}
	s.emit(ctx, events)
	return true, events, nil
}

func (s *Service) markPass(ctx context.Context, t *domain.Table, seat domain.Seat, cards []domain.Card) ([]Event, error) {
	for i := range cards {
		cards[i].ToPass = true
	}
	if err := s.repo.UpdateCards(ctx, cards); err != nil {
		return nil, fmt.Errorf("mark pass: %w", err)
	}
	participantID := t.Game.Occupant(seat)
	return []Event{{
		Kind:    EventPassDeclared,
		GameID:  t.Game.ID,
		Text:    fmt.Sprintf("%s is ready to pass", s.displayName(ctx, participantID)),
		Payload: PassDeclaredPayload{ParticipantID: participantID, Seat: seat},
	}}, nil
}

// skipPass resolves a hold deal: nothing moves and the deal is marked passed.
func (s *Service) skipPass(ctx context.Context, t *domain.Table) ([]Event, error) {
	if err := s.repo.CompletePass(ctx, t.Deal.ID, nil); err != nil {
		return nil, fmt.Errorf("skip pass: %w", err)
	}
	return []Event{{
		Kind:    EventCardsPassed,
		GameID:  t.Game.ID,
		Text:    "No passing this deal",
		Payload: CardsPassedPayload{DealID: t.Deal.ID, Direction: domain.PassHold},
	}}, nil
}

// advancePassing drives bots through phase 1 and runs phase 2 once every
// seat has declared. waitingOn names the first human still to declare.
func (s *Service) advancePassing(ctx context.Context, t *domain.Table) (waitingOn string, events []Event, err error) {
	if t.PassDirection() == domain.PassHold {
		events, err = s.skipPass(ctx, t)
		return "", events, err
	}

	for i := 0; i < domain.SeatCount; i++ {
		seat := domain.SeatAt(i)
		if t.Declared(seat) {
			continue
		}
		p, err := s.participant(ctx, t.Game.Occupant(seat))
		if err != nil {
			return "", events, err
		}
		if !p.Bot {
			if waitingOn == "" {
				waitingOn = p.ID
			}
			continue
		}
		cards := s.agent(p).Pass(t)
		if len(cards) != domain.PassCount {
			s.reject(t.Game.ID, p.ID, "bot_pass_count", zap.Int("count", len(cards)))
			return "", events, fmt.Errorf("bot %s selected %d cards to pass", p.ID, len(cards))
		}
		evs, err := s.markPass(ctx, t, seat, cards)
		if err != nil {
			return "", events, err
		}
		events = append(events, evs...)
	}
	if waitingOn != "" {
		return waitingOn, events, nil
	}

	t, err = s.load(ctx, t.Game.ID)
	if err != nil {
		return "", events, err
	}
	evs, err := s.executePass(ctx, t)
	return "", append(events, evs...), err
}

// executePass moves every marked card to the receiving seat, clears the
// marks and flags the deal as passed in a single repository write.
func (s *Service) executePass(ctx context.Context, t *domain.Table) ([]Event, error) {
	if !t.PassReady() {
		return nil, nil
	}
	dir := t.PassDirection()

	var moved []domain.Card
	for i := 0; i < domain.SeatCount; i++ {
		from := domain.SeatAt(i)
		to := t.Game.Occupant(dir.Target(from))
		for _, c := range t.PassSelection(from) {
			c.PlayerID = to
			c.ToPass = false
			moved = append(moved, c)
		}
	}
	if err := s.repo.CompletePass(ctx, t.Deal.ID, moved); err != nil {
		return nil, fmt.Errorf("pass cards: %w", err)
	}
	s.logger.Debug("cards passed",
		zap.String("game_id", t.Game.ID),
		zap.String("direction", string(dir)))
	return []Event{{
		Kind:    EventCardsPassed,
		GameID:  t.Game.ID,
		Text:    fmt.Sprintf("Cards passed %s", dir),
		Payload: CardsPassedPayload{DealID: t.Deal.ID, Direction: dir},
	}}, nil
}
