package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"hearts/internal/app"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnavailable        = 14
	codeUnauthenticated    = 16
)

const signalRefresh = "refresh"

// matchRegistry is the part of runtime.NakamaModule the RPCs use to locate
// and create matches.
type matchRegistry interface {
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
	MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error)
	MatchSignal(ctx context.Context, id string, data string) (string, error)
}

func callerID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user session", codeUnauthenticated)
	}
	return userID, nil
}

// toRuntimeError maps engine errors to client facing status codes.
func toRuntimeError(err error) error {
	switch {
	case errors.Is(err, app.ErrGameBusy):
		return runtime.NewError("game is busy, retry", codeUnavailable)
	case errors.Is(err, app.ErrGameNotFound), errors.Is(err, app.ErrUnknownParticipant):
		return runtime.NewError(err.Error(), codeNotFound)
	case errors.Is(err, app.ErrNotSeated), errors.Is(err, app.ErrNotEnoughBots):
		return runtime.NewError(err.Error(), codeFailedPrecondition)
	default:
		return runtime.NewError("internal error", codeInternal)
	}
}

func decodeGameRequest(payload string) (GameRequest, error) {
	var req GameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, runtime.NewError("invalid payload", codeInvalidArgument)
	}
	if req.GameID == "" {
		return req, runtime.NewError("game_id is required", codeInvalidArgument)
	}
	return req, nil
}

func marshalResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("internal error", codeInternal)
	}
	return string(b), nil
}

// rpcCreateGame seats the caller with three bots and opens a match for the game.
//
// Payload: unused.
// Returns: GameResponse JSON.
func (m *Module) rpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	resp, err := m.createGame(ctx, nk, userID)
	if err != nil {
		logger.Error("RpcCreateGame [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	logger.Info("RpcCreateGame [User:%s]: Created game %s in match %s", userID, resp.GameID, resp.MatchID)
	return marshalResponse(resp)
}

func (m *Module) createGame(ctx context.Context, nk matchRegistry, userID string) (GameResponse, error) {
	g, err := m.svc.NewGame(ctx, userID)
	if err != nil {
		return GameResponse{}, err
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameHearts, map[string]interface{}{MatchLabelKey_GameID: g.ID})
	if err != nil {
		return GameResponse{}, fmt.Errorf("create match: %w", err)
	}
	return GameResponse{GameID: g.ID, MatchID: matchID, IsNew: true}, nil
}

// rpcQuickMatch returns a running match that still has a bot seat to take,
// or creates a new game when none exists.
func (m *Module) rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	resp, err := m.quickMatch(ctx, nk, userID)
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	return marshalResponse(resp)
}

func (m *Module) quickMatch(ctx context.Context, nk matchRegistry, userID string) (GameResponse, error) {
	query := fmt.Sprintf("+label.%s:>=1 -label.%s:game_over", MatchLabelKey_Open, MatchLabelKey_Phase)
	limit := 10
	authoritative := true
	minSize := 0
	maxSize := 4

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		return GameResponse{}, fmt.Errorf("list matches: %w", err)
	}
	for _, match := range matches {
		label, err := decodeLabel(match.GetLabel().GetValue())
		if err != nil || label.GameID == "" {
			continue
		}
		return GameResponse{GameID: label.GameID, MatchID: match.GetMatchId()}, nil
	}
	return m.createGame(ctx, nk, userID)
}

// rpcJoin puts the caller in a bot seat of the game.
//
// Payload: GameRequest JSON.
func (m *Module) rpcJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return m.seatRPC(ctx, logger, nk, payload, "RpcJoin", m.svc.JoinSeat)
}

// rpcLeave hands the caller's seat to a bot.
//
// Payload: GameRequest JSON.
func (m *Module) rpcLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return m.seatRPC(ctx, logger, nk, payload, "RpcLeave", m.svc.LeaveSeat)
}

func (m *Module) seatRPC(ctx context.Context, logger runtime.Logger, nk matchRegistry, payload, name string,
	op func(ctx context.Context, gameID, participantID string) (bool, []app.Event, error)) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req, err := decodeGameRequest(payload)
	if err != nil {
		return "", err
	}

	applied, _, err := op(ctx, req.GameID, userID)
	if err != nil {
		logger.Warn("%s [User:%s]: game %s: %v", name, userID, req.GameID, err)
		return "", toRuntimeError(err)
	}
	if applied {
		m.signalMatches(ctx, nk, logger, req.GameID)
	}
	return marshalResponse(GameResponse{GameID: req.GameID, Applied: applied})
}

// rpcState returns the caller's view of a game.
//
// Payload: GameRequest JSON.
// Returns: app.View JSON.
func (m *Module) rpcState(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req, err := decodeGameRequest(payload)
	if err != nil {
		return "", err
	}
	view, err := m.svc.ClientView(ctx, req.GameID, userID, req.IsObserver)
	if err != nil {
		return "", toRuntimeError(err)
	}
	return marshalResponse(view)
}

// signalMatches asks the matches hosting gameID to push fresh state, since
// the change did not arrive through the match loop.
func (m *Module) signalMatches(ctx context.Context, nk matchRegistry, logger runtime.Logger, gameID string) {
	query := fmt.Sprintf("+label.%s:%q", MatchLabelKey_GameID, gameID)
	minSize := 0
	maxSize := 4
	matches, err := nk.MatchList(ctx, 10, true, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Warn("signalMatches: Failed to list matches for game %s: %v", gameID, err)
		return
	}
	for _, match := range matches {
		if _, err := nk.MatchSignal(ctx, match.GetMatchId(), signalRefresh); err != nil {
			logger.Warn("signalMatches: Failed to signal match %s: %v", match.GetMatchId(), err)
		}
	}
}
