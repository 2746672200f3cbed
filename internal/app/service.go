package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hearts/internal/bot"
	"hearts/internal/domain"
	"hearts/internal/ports"
)

var (
	// ErrGameBusy is returned when another caller holds the game. Retryable.
	ErrGameBusy            = errors.New("game is busy")
	ErrGameNotFound        = errors.New("game not found")
	ErrUnknownParticipant  = errors.New("participant not found")
	ErrNotEnoughBots       = errors.New("not enough bots to fill the table")
	ErrNotSeated           = errors.New("participant is not seated in this game")
	errAdvanceDidNotSettle = errors.New("advance did not settle")
)

// Service contains the Hearts use-cases. All state lives in the repository;
// every call rebuilds what it needs from persisted records.
type Service struct {
	repo            ports.Repository
	rng             *rand.Rand
	logger          *zap.Logger
	metrics         *Metrics
	publisher       ports.EventPublisher
	locks           *gameLocks
	targetScore     int
	defaultStrategy string
	now             func() time.Time
	newID           func() string
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the random source used for shuffles and bots.
func WithRand(rng *rand.Rand) Option { return func(s *Service) { s.rng = rng } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

// WithMetrics sets the metrics bundle.
func WithMetrics(m *Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithPublisher forwards every emitted event to p after it was persisted.
func WithPublisher(p ports.EventPublisher) Option { return func(s *Service) { s.publisher = p } }

// WithTargetScore sets the score that ends new games.
func WithTargetScore(n int) Option { return func(s *Service) { s.targetScore = n } }

// WithDefaultStrategy sets the strategy for bots that have none recorded.
func WithDefaultStrategy(id string) Option { return func(s *Service) { s.defaultStrategy = id } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

// NewService constructs a Service over repo.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		locks:           newGameLocks(),
		targetScore:     domain.DefaultTargetScore,
		defaultStrategy: bot.StrategyRandom,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRand(0)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = DefaultMetrics()
	}
	s.logger = s.logger.Named("engine")
	return s
}

// acquire takes the game's lock without waiting.
func (s *Service) acquire(gameID string) (func(), error) {
	unlock, ok := s.locks.tryLock(gameID)
	if !ok {
		s.metrics.LockContention.Inc()
		return nil, fmt.Errorf("%w: %s", ErrGameBusy, gameID)
	}
	return unlock, nil
}

// load rebuilds the table snapshot for the game's latest deal.
func (s *Service) load(ctx context.Context, gameID string) (*domain.Table, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}

	d, err := s.repo.LatestDeal(ctx, gameID)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.NewTable(&g, nil, nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load deal: %w", err)
	}

	tricks, err := s.repo.ListTricks(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("load tricks: %w", err)
	}
	cards, err := s.repo.ListCards(ctx, ports.CardFilter{DealID: d.ID})
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	return domain.NewTable(&g, &d, tricks, cards), nil
}

// reject logs a discarded action. Illegal moves and protocol violations
// never surface as errors.
func (s *Service) reject(gameID, participantID, reason string, fields ...zap.Field) {
	s.metrics.Rejected.WithLabelValues(reason).Inc()
	s.logger.Info("action discarded", append([]zap.Field{
		zap.String("game_id", gameID),
		zap.String("participant_id", participantID),
		zap.String("reason", reason),
	}, fields...)...)
}

// emit forwards persisted events to the publisher, if any.
func (s *Service) emit(ctx context.Context, events []Event) {
	if s.publisher == nil {
		return
	}
	for _, ev := range events {
		err := s.publisher.Publish(ctx, ports.Notification{
			GameID:     ev.GameID,
			Kind:       string(ev.Kind),
			Text:       ev.Text,
			Recipients: ev.Recipients,
			Payload:    ev.Payload,
		})
		if err != nil {
			s.logger.Warn("publish event failed",
				zap.String("game_id", ev.GameID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
	}
}

func (s *Service) participant(ctx context.Context, id string) (domain.Participant, error) {
	p, err := s.repo.GetParticipant(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.Participant{}, fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
	}
	return p, err
}

// displayName returns the participant's name, falling back to the id.
func (s *Service) displayName(ctx context.Context, id string) string {
	if p, err := s.repo.GetParticipant(ctx, id); err == nil && p.Name != "" {
		return p.Name
	}
	return id
}

// agent builds the bot driving p.
func (s *Service) agent(p domain.Participant) *bot.Agent {
	id := p.Strategy
	if id == "" {
		id = s.defaultStrategy
	}
	return bot.NewAgent(p, bot.New(id, s.rng, s.logger.Named("bot")))
}

// NewGame seats participantID in seat 1 and three bots in seats 2-4. The
// game starts without a deal; Advance deals the first one.
func (s *Service) NewGame(ctx context.Context, participantID string) (*domain.Game, error) {
	if _, err := s.participant(ctx, participantID); err != nil {
		return nil, err
	}

	all, err := s.repo.ListBots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}
	bots := make([]domain.Participant, 0, len(all))
	for _, b := range all {
		if b.ID != participantID {
			bots = append(bots, b)
		}
	}
	if len(bots) < BotSeats {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughBots, len(bots), BotSeats)
	}

	g := domain.Game{
		ID:          s.newID(),
		TargetScore: s.targetScore,
		CreatedAt:   s.now().UTC(),
	}
	g.Seats[0] = participantID
	for i, idx := range s.rng.Perm(len(bots))[:BotSeats] {
		g.Seats[i+1] = bots[idx].ID
	}
	if err := s.repo.CreateGame(ctx, g); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	s.metrics.GamesStarted.Inc()
	s.logger.Info("game created",
		zap.String("game_id", g.ID),
		zap.Strings("seats", g.Seats[:]))
	return &g, nil
}

// JoinSeat puts a human in the lowest-numbered seat held by a bot, handing
// over that seat's cards and trick wins. It is a no-op when the participant
// is already seated or no bot seat remains.
func (s *Service) JoinSeat(ctx context.Context, gameID, participantID string) (bool, []Event, error) {
	unlock, err := s.acquire(gameID)
	if err != nil {
		return false, nil, err
	}
	defer unlock()

	if _, err := s.participant(ctx, participantID); err != nil {
		return false, nil, err
	}
	g, err := s.getGame(ctx, gameID)
	if err != nil {
		return false, nil, err
	}
	if g.SeatOf(participantID).Valid() {
		return false, nil, nil
	}

	for i, occupant := range g.Seats {
		p, err := s.repo.GetParticipant(ctx, occupant)
		if err != nil || !p.Bot {
			continue
		}
		events, err := s.swapSeat(ctx, g, domain.SeatAt(i), participantID)
		if err != nil {
			return false, nil, err
		}
		return true, events, nil
	}
	s.reject(gameID, participantID, "no_bot_seat")
	return false, nil, nil
}

// LeaveSeat hands the participant's seat to a bot not already in the game.
func (s *Service) LeaveSeat(ctx context.Context, gameID, participantID string) (bool, []Event, error) {
	unlock, err := s.acquire(gameID)
	if err != nil {
		return false, nil, err
	}
	defer unlock()

	g, err := s.getGame(ctx, gameID)
	if err != nil {
		return false, nil, err
	}
	seat := g.SeatOf(participantID)
	if !seat.Valid() {
		return false, nil, nil
	}

	bots, err := s.repo.ListBots(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("list bots: %w", err)
	}
	for i := len(bots) - 1; i >= 0; i-- {
		if g.SeatOf(bots[i].ID).Valid() {
			continue
		}
		events, err := s.swapSeat(ctx, g, seat, bots[i].ID)
		if err != nil {
			return false, nil, err
		}
		return true, events, nil
	}
	s.reject(gameID, participantID, "no_spare_bot")
	return false, nil, nil
}

func (s *Service) getGame(ctx context.Context, gameID string) (*domain.Game, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Service) swapSeat(ctx context.Context, g *domain.Game, seat domain.Seat, to string) ([]Event, error) {
	from := g.Occupant(seat)
	if err := s.repo.ReassignParticipant(ctx, g.ID, from, to); err != nil {
		return nil, fmt.Errorf("reassign seat: %w", err)
	}
	g.Seats[seat.Index()] = to
	if err := s.repo.UpdateGame(ctx, *g); err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}

	s.logger.Info("seat changed",
		zap.String("game_id", g.ID),
		zap.Int("seat", int(seat)),
		zap.String("from", from),
		zap.String("to", to))
	events := []Event{{
		Kind:    EventSeatChanged,
		GameID:  g.ID,
		Text:    fmt.Sprintf("%s takes the seat of %s", s.displayName(ctx, to), s.displayName(ctx, from)),
		Payload: SeatChangedPayload{Seat: seat, From: from, To: to},
	}}
	s.emit(ctx, events)
	return events, nil
}
