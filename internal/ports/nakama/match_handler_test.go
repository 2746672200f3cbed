package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"hearts/internal/app"
	"hearts/internal/bot"
	"hearts/internal/domain"
	"hearts/internal/store/memory"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent         []sentMessage
	labelUpdates []string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.sent = append(md.sent, sentMessage{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates = append(md.labelUpdates, label)
	return nil
}

func (md *mockDispatcher) byOpCode(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.sent {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

// testPresence overrides the presence fields the handler reads.
type testPresence struct {
	runtime.Presence
	userID string
}

func (p testPresence) GetUserId() string { return p.userID }

type testMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (d testMatchData) GetUserId() string { return d.userID }
func (d testMatchData) GetOpCode() int64  { return d.opCode }
func (d testMatchData) GetData() []byte   { return d.data }

// fakeNakama stubs the NakamaModule calls the adapter makes.
type fakeNakama struct {
	runtime.NakamaModule
	created     []map[string]interface{}
	matches     []*api.Match
	signals     []string
	accounts    map[string]string // device id -> user id
	profiles    map[string]string // user id -> display name
	listQueries []string
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{accounts: map[string]string{}, profiles: map[string]string{}}
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.created = append(f.created, params)
	return "match-" + params[MatchLabelKey_GameID].(string), nil
}

func (f *fakeNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.listQueries = append(f.listQueries, query)
	return f.matches, nil
}

func (f *fakeNakama) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	f.signals = append(f.signals, id+":"+data)
	return "ok", nil
}

func (f *fakeNakama) AuthenticateDevice(ctx context.Context, id, username string, create bool) (string, string, bool, error) {
	userID, ok := f.accounts[id]
	if !ok {
		userID = "user-" + username
		f.accounts[id] = userID
	}
	return userID, username, !ok, nil
}

func (f *fakeNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	f.profiles[userID] = displayName
	return nil
}

type fixture struct {
	module *Module
	store  *memory.Store
	nk     *fakeNakama
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	roster := bot.DefaultRoster()
	for _, p := range roster.Participants() {
		if err := store.SaveParticipant(ctx, p); err != nil {
			t.Fatalf("save bot: %v", err)
		}
	}
	for _, p := range []domain.Participant{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}} {
		if err := store.SaveParticipant(ctx, p); err != nil {
			t.Fatalf("save participant: %v", err)
		}
	}
	return &fixture{
		module: NewModule(store, roster, nil, app.NewRand(11)),
		store:  store,
		nk:     newFakeNakama(),
	}
}

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

// startMatch creates a game for alice and initialises a match for it.
func (f *fixture) startMatch(t *testing.T) (*matchHandler, *MatchState) {
	t.Helper()
	resp, err := f.module.createGame(context.Background(), f.nk, "alice")
	if err != nil {
		t.Fatalf("createGame: %v", err)
	}
	mh := newMatchHandler(f.module)
	state, tickRate, label := mh.MatchInit(context.Background(), noopLogger{}, nil, nil, map[string]interface{}{
		MatchLabelKey_GameID: resp.GameID,
	})
	if state == nil {
		t.Fatal("MatchInit returned nil state")
	}
	if tickRate != matchTickRate {
		t.Fatalf("tickRate = %d, want %d", tickRate, matchTickRate)
	}
	decoded, err := decodeLabel(label)
	if err != nil {
		t.Fatalf("decodeLabel: %v", err)
	}
	if decoded.GameID != resp.GameID || decoded.Open != 3 || decoded.Phase != domain.PhaseNoDeal {
		t.Fatalf("unexpected initial label %+v", decoded)
	}
	return mh, state.(*MatchState)
}

func lastView(t *testing.T, md *mockDispatcher) app.View {
	t.Helper()
	views := md.byOpCode(OpGameState)
	if len(views) == 0 {
		t.Fatal("no game state sent")
	}
	var v app.View
	if err := json.Unmarshal(views[len(views)-1].data, &v); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	return v
}

func TestMatchLabel_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		label matchLabel
	}{
		{name: "NoDeal", label: matchLabel{GameID: "g-1", Open: 3, Phase: domain.PhaseNoDeal}},
		{name: "Playing", label: matchLabel{GameID: "g-2", Open: 0, Phase: domain.PhasePlaying}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			encoded, err := test.label.encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			var raw map[string]interface{}
			if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
				t.Fatalf("label is not JSON: %v", err)
			}
			if raw[MatchLabelKey_GameID] != test.label.GameID || raw[MatchLabelKey_Open] != float64(test.label.Open) {
				t.Fatalf("unexpected label JSON %s", encoded)
			}
			got, err := decodeLabel(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != test.label {
				t.Fatalf("got %+v, want %+v", got, test.label)
			}
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	opCode, data, err := encodeEvent(app.Event{
		Kind:    app.EventTrickTaken,
		Text:    "Otto takes the trick",
		Payload: app.TrickTakenPayload{WinnerID: "bot-otto", Seat: 2, TrickOrdinal: 1, Points: 1},
	})
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	if opCode != OpTrickTaken {
		t.Fatalf("opCode = %d, want %d", opCode, OpTrickTaken)
	}
	var msg struct {
		Kind    string                `json:"kind"`
		Text    string                `json:"text"`
		Payload app.TrickTakenPayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Kind != "trick_taken" || msg.Payload.WinnerID != "bot-otto" || msg.Payload.Points != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}

	if _, _, err := encodeEvent(app.Event{Kind: "bogus"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMatchInit_RequiresGameID(t *testing.T) {
	f := newFixture(t)
	state, _, _ := newMatchHandler(f.module).MatchInit(context.Background(), noopLogger{}, nil, nil, map[string]interface{}{})
	if state != nil {
		t.Fatal("expected nil state without game id")
	}
}

func TestMatchFlow_DealPassAndPlay(t *testing.T) {
	f := newFixture(t)
	mh, state := f.startMatch(t)
	md := &mockDispatcher{}
	ctx := context.Background()
	alice := testPresence{userID: "alice"}

	_, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, md, 1, state, alice, nil)
	if !ok {
		t.Fatalf("seated player rejected: %s", reason)
	}
	mh.MatchJoin(ctx, noopLogger{}, nil, nil, md, 1, state, []runtime.Presence{alice})

	if next := mh.MatchLoop(ctx, noopLogger{}, nil, nil, md, 2, state, nil); next == nil {
		t.Fatal("match terminated unexpectedly")
	}
	if len(md.byOpCode(OpDealStarted)) != 1 {
		t.Fatalf("expected one deal_started, got %d", len(md.byOpCode(OpDealStarted)))
	}
	if len(md.byOpCode(OpPassDeclared)) != 3 {
		t.Fatalf("expected three bot pass declarations, got %d", len(md.byOpCode(OpPassDeclared)))
	}
	view := lastView(t, md)
	if view.Phase != domain.PhasePassing || view.Action != app.ActionPassCards {
		t.Fatalf("unexpected view phase=%s action=%s", view.Phase, view.Action)
	}
	hand := view.Players[app.PositionBottom].Hand
	if len(hand) != domain.HandSize {
		t.Fatalf("expected %d cards, got %d", domain.HandSize, len(hand))
	}
	if state.Label.Phase != domain.PhasePassing {
		t.Fatalf("label phase = %s, want passing", state.Label.Phase)
	}

	payload, _ := json.Marshal(PassCardsRequest{CardIDs: []string{hand[0].ID, hand[1].ID, hand[2].ID}})
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, md, 3, state, []runtime.MatchData{
		testMatchData{userID: "alice", opCode: OpPassCards, data: payload},
	})

	if len(md.byOpCode(OpCardsPassed)) != 1 {
		t.Fatalf("expected cards_passed, got %d", len(md.byOpCode(OpCardsPassed)))
	}
	view = lastView(t, md)
	if view.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", view.Phase)
	}
	if view.Action != app.ActionPlayCard {
		t.Fatalf("expected alice to be waited on, got action %q", view.Action)
	}
}

func TestMatchLoop_RejectedPlaySendsError(t *testing.T) {
	f := newFixture(t)
	mh, state := f.startMatch(t)
	md := &mockDispatcher{}
	ctx := context.Background()
	alice := testPresence{userID: "alice"}
	mh.MatchJoin(ctx, noopLogger{}, nil, nil, md, 1, state, []runtime.Presence{alice})

	payload, _ := json.Marshal(PlayCardRequest{CardID: "no-such-card"})
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, md, 2, state, []runtime.MatchData{
		testMatchData{userID: "alice", opCode: OpPlayCard, data: payload},
	})

	errs := md.byOpCode(OpGameError)
	if len(errs) != 1 {
		t.Fatalf("expected one error message, got %d", len(errs))
	}
	if len(errs[0].presences) != 1 || errs[0].presences[0].GetUserId() != "alice" {
		t.Fatal("error must only go to the sender")
	}

	mh.MatchLoop(ctx, noopLogger{}, nil, nil, md, 3, state, []runtime.MatchData{
		testMatchData{userID: "alice", opCode: OpPassCards, data: []byte("not json")},
	})
	if len(md.byOpCode(OpGameError)) != 2 {
		t.Fatal("expected error for malformed pass request")
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	f := newFixture(t)
	mh, state := f.startMatch(t)
	md := &mockDispatcher{}
	ctx := context.Background()
	bob := testPresence{userID: "bob"}

	if _, ok, _ := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, md, 1, state, bob, nil); !ok {
		t.Fatal("bob should be able to take a bot seat")
	}

	state.Label.Open = 0
	if _, ok, _ := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, md, 1, state, bob, nil); ok {
		t.Fatal("bob should be rejected without a bot seat")
	}
	if _, ok, _ := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, md, 1, state, bob, map[string]string{"observer": "true"}); !ok {
		t.Fatal("observers are always admitted")
	}
	if !state.Observers["bob"] {
		t.Fatal("bob should be recorded as observer")
	}
}

func TestMatchJoinAndLeave_SwapSeats(t *testing.T) {
	f := newFixture(t)
	mh, state := f.startMatch(t)
	md := &mockDispatcher{}
	ctx := context.Background()
	bob := testPresence{userID: "bob"}

	mh.MatchJoin(ctx, noopLogger{}, nil, nil, md, 1, state, []runtime.Presence{bob})
	g, err := f.store.GetGame(ctx, state.GameID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if g.SeatOf("bob") != 2 {
		t.Fatalf("bob should take seat 2, got %d", g.SeatOf("bob"))
	}
	if len(md.byOpCode(OpSeatChanged)) != 1 {
		t.Fatal("expected seat_changed event")
	}
	if state.Label.Open != 2 {
		t.Fatalf("open = %d, want 2", state.Label.Open)
	}

	mh.MatchLeave(ctx, noopLogger{}, nil, nil, md, 2, state, []runtime.Presence{bob})
	g, _ = f.store.GetGame(ctx, state.GameID)
	if g.SeatOf("bob").Valid() {
		t.Fatal("bob should have lost the seat")
	}
	if !f.module.roster.IsBot(g.Occupant(2)) {
		t.Fatalf("seat 2 should be a bot, got %s", g.Occupant(2))
	}
	if len(state.Presences) != 0 {
		t.Fatal("presence should be removed")
	}
}

func TestMatchLoop_TerminatesWhenIdle(t *testing.T) {
	f := newFixture(t)
	mh, state := f.startMatch(t)
	md := &mockDispatcher{}
	state.IdleTicks = matchIdleTicks - 1

	if next := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 1, state, nil); next != nil {
		t.Fatal("expected termination after idle ticks")
	}
}

func TestMatchSignal_Refresh(t *testing.T) {
	mh := newMatchHandler(nil)
	state := &MatchState{}

	_, reply := mh.MatchSignal(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, state, signalRefresh)
	if reply != "ok" || !state.Dirty {
		t.Fatalf("refresh not applied: reply=%q dirty=%v", reply, state.Dirty)
	}
	_, reply = mh.MatchSignal(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, &MatchState{}, "other")
	if reply != "" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestQuickMatch_ReusesOpenMatch(t *testing.T) {
	f := newFixture(t)
	label, _ := matchLabel{GameID: "g-open", Open: 2, Phase: domain.PhasePlaying}.encode()
	f.nk.matches = []*api.Match{{MatchId: "m-open", Label: wrapperspb.String(label)}}

	resp, err := f.module.quickMatch(context.Background(), f.nk, "alice")
	if err != nil {
		t.Fatalf("quickMatch: %v", err)
	}
	if resp.GameID != "g-open" || resp.MatchID != "m-open" || resp.IsNew {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(f.nk.created) != 0 {
		t.Fatal("no match should be created")
	}
}

func TestQuickMatch_CreatesWhenNoneOpen(t *testing.T) {
	f := newFixture(t)

	resp, err := f.module.quickMatch(context.Background(), f.nk, "alice")
	if err != nil {
		t.Fatalf("quickMatch: %v", err)
	}
	if !resp.IsNew || resp.MatchID != "match-"+resp.GameID {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(f.nk.created) != 1 {
		t.Fatalf("expected one match created, got %d", len(f.nk.created))
	}
}
