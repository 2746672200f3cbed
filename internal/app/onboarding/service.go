package onboarding

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"hearts/internal/domain"
	"hearts/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	Participant domain.Participant
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
}

// Service registers newly authenticated users as Hearts participants.
type Service struct {
	accounts ports.AccountPort
	repo     ports.Repository
	rng      *rand.Rand
}

// NewService constructs an onboarding service.
// accounts/repo must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, repo ports.Repository, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		repo:     repo,
		rng:      rng,
	}
}

// OnboardNewUser gives the account a friendly display name and stores it
// as a human participant. A user that is already registered keeps its name.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.repo == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	existing, err := s.repo.GetParticipant(ctx, userID)
	switch {
	case err == nil:
		return Result{Participant: existing}, nil
	case !errors.Is(err, ports.ErrNotFound):
		return Result{}, fmt.Errorf("lookup participant: %w", err)
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		// Profile updates are best-effort; the participant record is what games need.
		result.ProfileUpdateErr = err
	}

	p := domain.Participant{ID: userID, Name: displayName}
	if err := s.repo.SaveParticipant(ctx, p); err != nil {
		return result, fmt.Errorf("failed to register participant: %w", err)
	}
	result.Participant = p
	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Panda", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
