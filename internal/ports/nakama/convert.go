package nakama

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"hearts/internal/app"
	"hearts/internal/domain"
)

// matchLabel is the searchable label of a hearts match, e.g.
// {"game_id":"...","open":2,"phase":"playing"}.
type matchLabel struct {
	GameID string
	Open   int
	Phase  domain.Phase
}

func (l matchLabel) encode() (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_GameID: l.GameID,
		MatchLabelKey_Open:   l.Open,
		MatchLabelKey_Phase:  string(l.Phase),
	})
	if err != nil {
		return "", fmt.Errorf("build label: %w", err)
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal label: %w", err)
	}
	return string(b), nil
}

func decodeLabel(raw string) (matchLabel, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal([]byte(raw), s); err != nil {
		return matchLabel{}, fmt.Errorf("unmarshal label: %w", err)
	}
	f := s.GetFields()
	return matchLabel{
		GameID: f[MatchLabelKey_GameID].GetStringValue(),
		Open:   int(f[MatchLabelKey_Open].GetNumberValue()),
		Phase:  domain.Phase(f[MatchLabelKey_Phase].GetStringValue()),
	}, nil
}

// PassCardsRequest is the OpPassCards client message.
type PassCardsRequest struct {
	CardIDs []string `json:"card_ids"`
}

// PlayCardRequest is the OpPlayCard client message.
type PlayCardRequest struct {
	CardID string `json:"card_id"`
}

// GameRequest is the payload of the join, leave and state RPCs.
type GameRequest struct {
	GameID     string `json:"game_id"`
	IsObserver bool   `json:"is_observer,omitempty"`
}

// GameResponse is returned by RPCs that create or locate a game.
type GameResponse struct {
	GameID  string `json:"game_id"`
	MatchID string `json:"match_id,omitempty"`
	IsNew   bool   `json:"is_new,omitempty"`
	Applied bool   `json:"applied,omitempty"`
}

// EventMessage is the body of every server event op code.
type EventMessage struct {
	Kind    app.EventKind `json:"kind"`
	Text    string        `json:"text"`
	Payload any           `json:"payload,omitempty"`
}

// ErrorMessage is the OpGameError body.
type ErrorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var eventOpCodes = map[app.EventKind]int64{
	app.EventDealStarted:  OpDealStarted,
	app.EventPassDeclared: OpPassDeclared,
	app.EventCardsPassed:  OpCardsPassed,
	app.EventCardPlayed:   OpCardPlayed,
	app.EventTrickTaken:   OpTrickTaken,
	app.EventDealEnded:    OpDealEnded,
	app.EventGameEnded:    OpGameEnded,
	app.EventSeatChanged:  OpSeatChanged,
}

// encodeEvent maps an engine event to its op code and wire body.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	b, err := json.Marshal(EventMessage{Kind: ev.Kind, Text: ev.Text, Payload: ev.Payload})
	if err != nil {
		return 0, nil, fmt.Errorf("marshal event %s: %w", ev.Kind, err)
	}
	return opCode, b, nil
}
