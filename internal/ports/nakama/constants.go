package nakama

const (
	// RpcCreateGame starts a new game for the caller and returns its match.
	RpcCreateGame = "hearts_create_game"
	// RpcQuickMatch finds a running game with a bot seat or creates one.
	RpcQuickMatch = "hearts_quick_match"
	RpcJoin       = "hearts_join"
	RpcLeave      = "hearts_leave"
	RpcState      = "hearts_state"

	// MatchNameHearts is the authoritative match handler name registered with Nakama.
	MatchNameHearts = "hearts_match"
)

// Match label keys.
const (
	MatchLabelKey_GameID = "game_id"
	MatchLabelKey_Open   = "open" // bot seats a human could take
	MatchLabelKey_Phase  = "phase"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpPassCards    int64 = 1
	OpPlayCard     int64 = 2
	OpRequestState int64 = 3

	// Server -> Client events
	OpDealStarted  int64 = 101
	OpPassDeclared int64 = 102
	OpCardsPassed  int64 = 103
	OpCardPlayed   int64 = 104
	OpTrickTaken   int64 = 105
	OpDealEnded    int64 = 106
	OpGameEnded    int64 = 107
	OpSeatChanged  int64 = 108
	OpGameState    int64 = 110 // sent privately, one view per presence
	OpGameError    int64 = 111
)

// Runtime env keys read from Nakama's runtime.env configuration.
const (
	envConfigPath      = "hearts_config_path"
	envTargetScore     = "hearts_target_score"
	envDefaultStrategy = "hearts_default_strategy"
	envBotIdentities   = "hearts_bot_identities"

	matchTickRate = 2
	// Ticks a match keeps running with no connected presences.
	matchIdleTicks = 60 * matchTickRate
)
