package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"hearts/internal/domain"
)

// Identity is one entry of the bot roster file.
type Identity struct {
	ID          string `json:"id"`
	DeviceID    string `json:"device_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Strategy    string `json:"strategy"`
	AvatarIndex int    `json:"avatar_index"`
}

// Participant converts the identity into a bot participant record.
func (i Identity) Participant() domain.Participant {
	name := i.DisplayName
	if name == "" {
		name = i.Username
	}
	return domain.Participant{ID: i.ID, Name: name, Bot: true, Strategy: i.Strategy}
}

// Roster is the set of bot identities available to fill seats.
type Roster struct {
	identities []Identity
	byID       map[string]int
}

// DefaultRoster is used when no roster file is configured.
func DefaultRoster() *Roster {
	r, _ := NewRoster([]Identity{
		{ID: "bot-otto", DeviceID: "hearts-bot-otto", Username: "otto", DisplayName: "Otto", Strategy: StrategyLowest},
		{ID: "bot-nina", DeviceID: "hearts-bot-nina", Username: "nina", DisplayName: "Nina", Strategy: StrategyRandom},
		{ID: "bot-hugo", DeviceID: "hearts-bot-hugo", Username: "hugo", DisplayName: "Hugo", Strategy: StrategyLowest},
		{ID: "bot-ivy", DeviceID: "hearts-bot-ivy", Username: "ivy", DisplayName: "Ivy", Strategy: StrategyRandom},
	})
	return r
}

// LoadRoster reads a JSON array of identities from path.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var ids []Identity
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	return NewRoster(ids)
}

// NewRoster indexes identities. Identities without an id get one derived
// from the username; duplicate ids are rejected.
func NewRoster(ids []Identity) (*Roster, error) {
	r := &Roster{byID: make(map[string]int, len(ids))}
	for _, id := range ids {
		if id.ID == "" {
			if id.Username == "" {
				return nil, fmt.Errorf("bot identity without id or username")
			}
			id.ID = "bot-" + id.Username
		}
		if _, dup := r.byID[id.ID]; dup {
			return nil, fmt.Errorf("duplicate bot identity %q", id.ID)
		}
		r.byID[id.ID] = len(r.identities)
		r.identities = append(r.identities, id)
	}
	return r, nil
}

// Identities returns a copy of the roster in file order.
func (r *Roster) Identities() []Identity {
	return append([]Identity(nil), r.identities...)
}

// IsBot reports whether id belongs to the roster.
func (r *Roster) IsBot(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Rebind replaces the participant id of an identity, e.g. once the host
// platform assigned it an account id.
func (r *Roster) Rebind(oldID, newID string) {
	i, ok := r.byID[oldID]
	if !ok || oldID == newID {
		return
	}
	delete(r.byID, oldID)
	r.identities[i].ID = newID
	r.byID[newID] = i
}

// Participants returns the roster as bot participants ordered by id.
func (r *Roster) Participants() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.identities))
	for _, id := range r.identities {
		out = append(out, id.Participant())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
