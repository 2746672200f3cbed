package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"

	"hearts/internal/app"
	"hearts/internal/bot"
	"hearts/internal/config"
	"hearts/internal/logging"
	"hearts/internal/opsserver"
	"hearts/internal/ports"
	"hearts/internal/ports/natsbus"
	"hearts/internal/store/sqlstore"
)

// Module holds the engine shared by every RPC, hook and match of the plugin.
type Module struct {
	svc    *app.Service
	repo   ports.Repository
	roster *bot.Roster
	logger *zap.Logger
	rng    *rand.Rand
}

// NewModule wires a module over repo. rng is shared with the engine.
func NewModule(repo ports.Repository, roster *bot.Roster, logger *zap.Logger, rng *rand.Rand, opts ...app.Option) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = app.NewRand(0)
	}
	opts = append([]app.Option{app.WithLogger(logger), app.WithRand(rng)}, opts...)
	return &Module{
		svc:    app.NewService(repo, opts...),
		repo:   repo,
		roster: roster,
		logger: logger.Named("nakama"),
		rng:    rng,
	}
}

// Register installs RPCs, the match handler and the auth hook.
func (m *Module) Register(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateGame: m.rpcCreateGame,
		RpcQuickMatch: m.rpcQuickMatch,
		RpcJoin:       m.rpcJoin,
		RpcLeave:      m.rpcLeave,
		RpcState:      m.rpcState,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("register rpc %s: %w", id, err)
		}
	}

	if err := initializer.RegisterMatch(MatchNameHearts, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(m), nil
	}); err != nil {
		return err
	}

	return initializer.RegisterAfterAuthenticateDevice(m.AfterAuthenticateDevice)
}

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := loadConfig(env)
	if err != nil {
		logger.Error("InitModule: invalid configuration: %v", err)
		return err
	}

	zl, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	store := sqlstore.New(db)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("InitModule: schema migration failed: %v", err)
		return err
	}

	roster := bot.DefaultRoster()
	if cfg.Bots.IdentitiesPath != "" {
		if roster, err = bot.LoadRoster(cfg.Bots.IdentitiesPath); err != nil {
			logger.Error("InitModule: could not load bot identities: %v", err)
			return err
		}
	}
	if err := ProvisionBots(ctx, nk, logger, roster, store); err != nil {
		return err
	}

	opts := []app.Option{
		app.WithTargetScore(cfg.Game.TargetScore),
		app.WithDefaultStrategy(cfg.Bots.DefaultStrategy),
	}
	if cfg.NATS.URL != "" {
		nc, err := natsbus.Connect(cfg.NATS.URL, zl)
		if err != nil {
			logger.Warn("InitModule: event publishing disabled: %v", err)
		} else {
			opts = append(opts, app.WithPublisher(natsbus.New(nc, cfg.NATS.SubjectPrefix, zl)))
		}
	}

	m := NewModule(store, roster, zl, nil, opts...)
	if err := m.Register(initializer); err != nil {
		return err
	}

	if cfg.Ops.Addr != "" {
		srv := opsserver.New(cfg.Ops.Addr, nil, zl, map[string]opsserver.Checker{"database": db.PingContext})
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("InitModule: ops server stopped: %v", err)
			}
		}()
	}

	logger.Info("Hearts Go module loaded.")
	return nil
}

// loadConfig reads the optional config file named in the runtime env and
// applies the runtime env overrides on top.
func loadConfig(env map[string]string) (*config.Config, error) {
	cfg, err := config.Load(env[envConfigPath])
	if err != nil {
		return nil, err
	}
	if val, ok := env[envTargetScore]; ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envTargetScore, err)
		}
		cfg.Game.TargetScore = i
	}
	if val, ok := env[envDefaultStrategy]; ok {
		cfg.Bots.DefaultStrategy = val
	}
	if val, ok := env[envBotIdentities]; ok {
		cfg.Bots.IdentitiesPath = val
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
