// Package memory is an in-process ports.Repository used by simulations and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"hearts/internal/domain"
	"hearts/internal/ports"
)

// Store keeps every record in maps guarded by one lock. Values are copied
// on the way in and out so callers never share state with the store.
type Store struct {
	mu           sync.RWMutex
	participants map[string]domain.Participant
	games        map[string]domain.Game
	deals        map[string]domain.Deal
	tricks       map[string]domain.Trick
	cards        map[string]domain.Card
	dealCards    map[string][]string // deal id -> card ids in creation order
}

// New returns an empty store.
func New() *Store {
	return &Store{
		participants: make(map[string]domain.Participant),
		games:        make(map[string]domain.Game),
		deals:        make(map[string]domain.Deal),
		tricks:       make(map[string]domain.Trick),
		cards:        make(map[string]domain.Card),
		dealCards:    make(map[string][]string),
	}
}

var _ ports.Repository = (*Store)(nil)

func (s *Store) SaveParticipant(_ context.Context, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
	return nil
}

func (s *Store) GetParticipant(_ context.Context, id string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return domain.Participant{}, ports.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListBots(_ context.Context) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Participant
	for _, p := range s.participants {
		if p.Bot {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateGame(_ context.Context, g domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
	return nil
}

func (s *Store) GetGame(_ context.Context, id string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return domain.Game{}, ports.ErrNotFound
	}
	return g, nil
}

func (s *Store) UpdateGame(_ context.Context, g domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		return ports.ErrNotFound
	}
	s.games[g.ID] = g
	return nil
}

func (s *Store) CreateDeal(_ context.Context, d domain.Deal, cards []domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[d.GameID]; !ok {
		return ports.ErrNotFound
	}
	s.deals[d.ID] = d
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		c.DealID = d.ID
		s.cards[c.ID] = c
		ids = append(ids, c.ID)
	}
	s.dealCards[d.ID] = ids
	return nil
}

func (s *Store) LatestDeal(ctx context.Context, gameID string) (domain.Deal, error) {
	deals, _ := s.ListDeals(ctx, gameID)
	if len(deals) == 0 {
		return domain.Deal{}, ports.ErrNotFound
	}
	return deals[len(deals)-1], nil
}

func (s *Store) ListDeals(_ context.Context, gameID string) ([]domain.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Deal
	for _, d := range s.deals {
		if d.GameID == gameID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (s *Store) CompletePass(_ context.Context, dealID string, cards []domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[dealID]
	if !ok {
		return ports.ErrNotFound
	}
	for _, c := range cards {
		if _, ok := s.cards[c.ID]; !ok {
			return ports.ErrNotFound
		}
	}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	d.HasPassed = true
	s.deals[dealID] = d
	return nil
}

func (s *Store) CreateTrick(_ context.Context, t domain.Trick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deals[t.DealID]; !ok {
		return ports.ErrNotFound
	}
	s.tricks[t.ID] = t
	return nil
}

func (s *Store) ListTricks(_ context.Context, dealID string) ([]domain.Trick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Trick
	for _, t := range s.tricks {
		if t.DealID == dealID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (s *Store) UpdateTrick(_ context.Context, t domain.Trick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tricks[t.ID]; !ok {
		return ports.ErrNotFound
	}
	s.tricks[t.ID] = t
	return nil
}

func (s *Store) ListCards(_ context.Context, f ports.CardFilter) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Card
	if f.DealID != "" {
		for _, id := range s.dealCards[f.DealID] {
			if c := s.cards[id]; f.Matches(c) {
				out = append(out, c)
			}
		}
		return out, nil
	}
	for _, c := range s.cards {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateCards(_ context.Context, cards []domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		if _, ok := s.cards[c.ID]; !ok {
			return ports.ErrNotFound
		}
	}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	return nil
}

func (s *Store) ReassignParticipant(_ context.Context, gameID, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for dealID, d := range s.deals {
		if d.GameID != gameID {
			continue
		}
		for _, id := range s.dealCards[dealID] {
			if c := s.cards[id]; c.PlayerID == from {
				c.PlayerID = to
				s.cards[id] = c
			}
		}
		for id, t := range s.tricks {
			if t.DealID == dealID && t.WinnerID == from {
				t.WinnerID = to
				s.tricks[id] = t
			}
		}
	}
	return nil
}
