package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"

	"hearts/internal/app"
	"hearts/internal/domain"
)

// MatchState holds the runtime state of one match. The game itself lives in
// the repository; the match only tracks who is connected.
type MatchState struct {
	GameID    string                      `json:"game_id"`
	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Observers map[string]bool             `json:"observers"`
	Tick      int64                       `json:"tick"`
	Label     matchLabel                  `json:"-"`
	Dirty     bool                        `json:"dirty"`      // views must be pushed on this tick
	IdleTicks int64                       `json:"idle_ticks"` // ticks without any presence
}

type matchHandler struct {
	m *Module
}

func newMatchHandler(m *Module) *matchHandler {
	return &matchHandler{m: m}
}

// MatchInit is called when the match is created. params must carry the game id.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	gameID, _ := params[MatchLabelKey_GameID].(string)
	if gameID == "" {
		logger.Error("MatchInit: missing %s param", MatchLabelKey_GameID)
		return nil, 0, ""
	}

	state := &MatchState{
		GameID:    gameID,
		Presences: make(map[string]runtime.Presence),
		Observers: make(map[string]bool),
		Dirty:     true,
	}
	label, err := mh.currentLabel(ctx, state)
	if err != nil {
		logger.Error("MatchInit: game %s: %v", gameID, err)
		return nil, 0, ""
	}
	state.Label = label

	encoded, err := label.encode()
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, matchTickRate, encoded
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	if metadata["observer"] == "true" {
		matchState.Observers[userID] = true
		return matchState, true, ""
	}

	g, err := mh.m.repo.GetGame(ctx, matchState.GameID)
	if err != nil {
		logger.Error("MatchJoinAttempt: game %s: %v", matchState.GameID, err)
		return matchState, false, "game not found"
	}
	if g.SeatOf(userID).Valid() {
		return matchState, true, ""
	}
	if matchState.Label.Open <= 0 || g.Over() {
		return matchState, false, "Match full"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		matchState.Dirty = true
		if matchState.Observers[userID] {
			continue
		}

		applied, events, err := mh.m.svc.JoinSeat(ctx, matchState.GameID, userID)
		if err != nil {
			logger.Warn("MatchJoin: User %s could not take a seat: %v", userID, err)
			continue
		}
		if applied {
			logger.Info("MatchJoin: User %s took a bot seat in game %s", userID, matchState.GameID)
		}
		mh.dispatchEvents(matchState, dispatcher, logger, events)
	}

	mh.updateLabel(ctx, matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match. Their seats
// go to bots so the game can continue.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		if matchState.Observers[userID] {
			delete(matchState.Observers, userID)
			continue
		}

		applied, events, err := mh.m.svc.LeaveSeat(ctx, matchState.GameID, userID)
		if err != nil {
			logger.Warn("MatchLeave: Seat of %s was not handed over: %v", userID, err)
			continue
		}
		if applied {
			logger.Debug("MatchLeave: User %s left, a bot took the seat.", userID)
			matchState.Dirty = true
		}
		mh.dispatchEvents(matchState, dispatcher, logger, events)
	}

	mh.updateLabel(ctx, matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpPassCards:
			mh.handlePassCards(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpRequestState:
			if p, ok := matchState.Presences[msg.GetUserId()]; ok {
				mh.sendView(ctx, matchState, dispatcher, logger, p)
			}
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	_, events, err := mh.m.svc.Advance(ctx, matchState.GameID)
	switch {
	case errors.Is(err, app.ErrGameBusy):
		logger.Debug("MatchLoop: game %s busy, retrying next tick", matchState.GameID)
	case err != nil:
		logger.Error("MatchLoop: advance game %s: %v", matchState.GameID, err)
	}
	if len(events) > 0 {
		mh.dispatchEvents(matchState, dispatcher, logger, events)
		matchState.Dirty = true
	}

	if matchState.Dirty {
		matchState.Dirty = false
		mh.broadcastViews(ctx, matchState, dispatcher, logger)
		mh.updateLabel(ctx, matchState, dispatcher, logger)
	}

	if len(matchState.Presences) > 0 {
		matchState.IdleTicks = 0
		return matchState
	}
	matchState.IdleTicks++
	if matchState.IdleTicks >= matchIdleTicks || matchState.Label.Phase == domain.PhaseGameOver {
		logger.Info("MatchLoop: Terminating idle match for game %s.", matchState.GameID)
		return nil
	}
	return matchState
}

func (mh *matchHandler) handlePassCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request PassCardsRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePassCards: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid pass request")
		return
	}

	applied, events, err := mh.m.svc.DeclarePassSelection(ctx, state.GameID, senderID, request.CardIDs)
	if err != nil {
		logger.Warn("handlePassCards: User %s failed to pass: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}
	if !applied {
		mh.sendError(state, dispatcher, logger, senderID, 400, "pass rejected")
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
	state.Dirty = true
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request PlayCardRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePlayCard: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid play request")
		return
	}

	applied, events, err := mh.m.svc.AttemptPlay(ctx, state.GameID, senderID, request.CardID)
	if err != nil {
		logger.Warn("handlePlayCard: User %s failed to play %s: %v", senderID, request.CardID, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}
	if !applied {
		mh.sendError(state, dispatcher, logger, senderID, 400, "illegal move")
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
	state.Dirty = true
}

func errorCode(err error) int {
	if errors.Is(err, app.ErrGameBusy) {
		return 503
	}
	return 500
}

// dispatchEvents converts app events to Nakama messages.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, bytes, err := encodeEvent(ev)
		if err != nil {
			logger.Warn("dispatchEvents: %v", err)
			continue
		}

		// Determine recipients (default to broadcast)
		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}

			// If we had intended recipients but none are connected (e.g. they are bots),
			// we MUST NOT broadcast to everyone else.
			if len(recipients) == 0 {
				continue
			}
		}

		if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
			logger.Error("dispatchEvents: Failed to send %s: %v", ev.Kind, err)
		}
	}
}

// broadcastViews sends every connected presence its own view of the game.
func (mh *matchHandler) broadcastViews(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for _, p := range state.Presences {
		mh.sendView(ctx, state, dispatcher, logger, p)
	}
}

func (mh *matchHandler) sendView(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, p runtime.Presence) {
	userID := p.GetUserId()
	view, err := mh.m.svc.ClientView(ctx, state.GameID, userID, state.Observers[userID])
	if errors.Is(err, app.ErrNotSeated) {
		view, err = mh.m.svc.ClientView(ctx, state.GameID, userID, true)
	}
	if err != nil {
		logger.Error("sendView: game %s for %s: %v", state.GameID, userID, err)
		return
	}
	bytes, err := json.Marshal(view)
	if err != nil {
		logger.Error("sendView: Failed to marshal view: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameState, bytes, []runtime.Presence{p}, nil, true); err != nil {
		logger.Error("sendView: Failed to send view to %s: %v", userID, err)
	}
}

// sendError sends an ErrorMessage to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(ErrorMessage{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal ErrorMessage: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

// currentLabel derives the label from the persisted game.
func (mh *matchHandler) currentLabel(ctx context.Context, state *MatchState) (matchLabel, error) {
	view, err := mh.m.svc.ClientView(ctx, state.GameID, "", true)
	if err != nil {
		return matchLabel{}, err
	}
	label := matchLabel{GameID: state.GameID, Phase: view.Phase}
	if view.Phase != domain.PhaseGameOver {
		for _, p := range view.Players {
			if p.Bot {
				label.Open++
			}
		}
	}
	return label, nil
}

func (mh *matchHandler) updateLabel(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.currentLabel(ctx, state)
	if err != nil {
		logger.Error("UpdateLabel: %v", err)
		return
	}
	if label == state.Label {
		return
	}
	encoded, err := label.encode()
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(encoded); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.Label = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d seconds grace", graceSeconds)
	return state
}

// MatchSignal handles out-of-band refresh requests sent by the seat RPCs.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	if data == signalRefresh {
		matchState.Dirty = true
		return matchState, "ok"
	}
	return matchState, ""
}
