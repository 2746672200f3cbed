package ports

import (
	"context"
	"errors"

	"hearts/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CardLocation narrows a card query to held or played cards.
type CardLocation int

const (
	// AnyLocation matches every card of the deal.
	AnyLocation CardLocation = iota
	// InHand matches cards not yet played into a trick.
	InHand
	// Played matches cards that reference a trick.
	Played
)

// CardFilter selects cards of one deal. Zero-valued fields do not filter.
type CardFilter struct {
	DealID   string
	PlayerID string
	TrickID  string
	Location CardLocation
	ToPass   *bool
}

// Matches reports whether c satisfies the filter.
func (f CardFilter) Matches(c domain.Card) bool {
	switch {
	case f.DealID != "" && c.DealID != f.DealID:
		return false
	case f.PlayerID != "" && c.PlayerID != f.PlayerID:
		return false
	case f.TrickID != "" && c.TrickID != f.TrickID:
		return false
	case f.Location == InHand && !c.InHand():
		return false
	case f.Location == Played && c.InHand():
		return false
	case f.ToPass != nil && c.ToPass != *f.ToPass:
		return false
	}
	return true
}

// Repository persists Hearts records. Implementations must make each call
// atomic; CreateDeal stores the deal and its 52 cards together.
type Repository interface {
	// SaveParticipant inserts or updates a participant.
	SaveParticipant(ctx context.Context, p domain.Participant) error
	GetParticipant(ctx context.Context, id string) (domain.Participant, error)
	// ListBots returns every bot participant ordered by id.
	ListBots(ctx context.Context) ([]domain.Participant, error)

	CreateGame(ctx context.Context, g domain.Game) error
	GetGame(ctx context.Context, id string) (domain.Game, error)
	// UpdateGame persists seats and winner.
	UpdateGame(ctx context.Context, g domain.Game) error

	CreateDeal(ctx context.Context, d domain.Deal, cards []domain.Card) error
	// LatestDeal returns the highest-ordinal deal of a game or ErrNotFound.
	LatestDeal(ctx context.Context, gameID string) (domain.Deal, error)
	// ListDeals returns the deals of a game ordered by ordinal.
	ListDeals(ctx context.Context, gameID string) ([]domain.Deal, error)
	// CompletePass persists the passed cards and sets the deal's has_passed
	// flag in one step. Either both land or neither does.
	CompletePass(ctx context.Context, dealID string, cards []domain.Card) error

	CreateTrick(ctx context.Context, t domain.Trick) error
	// ListTricks returns the tricks of a deal ordered by ordinal.
	ListTricks(ctx context.Context, dealID string) ([]domain.Trick, error)
	UpdateTrick(ctx context.Context, t domain.Trick) error

	ListCards(ctx context.Context, f CardFilter) ([]domain.Card, error)
	// UpdateCards persists owner, trick, pass mark and play order of each card.
	UpdateCards(ctx context.Context, cards []domain.Card) error
	// ReassignParticipant moves seat ownership of every card and trick win in
	// the game from one participant to another.
	ReassignParticipant(ctx context.Context, gameID, from, to string) error
}
