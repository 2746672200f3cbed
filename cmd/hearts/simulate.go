package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hearts/internal/app"
	"hearts/internal/bot"
	"hearts/internal/config"
	"hearts/internal/domain"
	"hearts/internal/opsserver"
	"hearts/internal/ports"
	"hearts/internal/ports/natsbus"
	"hearts/internal/store/memory"
	"hearts/internal/store/sqlstore"
)

var simulateFlags struct {
	games   int
	seed    int64
	target  int
	natsURL string
	opsAddr string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play bot-only games to completion",
	Long: `Play games where every seat is a bot, driving each one through the same
Advance loop the Nakama match uses, and print the final scores.

Examples:
  hearts simulate --games 10 --seed 42
  hearts simulate --storage sqlite3 --dsn ./hearts.db --nats-url nats://127.0.0.1:4222`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simulateFlags.games, "games", 1, "number of games to play")
	f.Int64Var(&simulateFlags.seed, "seed", 0, "shuffle seed (0 uses the clock)")
	f.IntVar(&simulateFlags.target, "target", 0, "target score (overrides config)")
	f.StringVar(&simulateFlags.natsURL, "nats-url", "", "publish events to this NATS server")
	f.StringVar(&simulateFlags.opsAddr, "ops-addr", "", "serve /health and /metrics on this address")
}

// GameResult is the outcome of one simulated game.
type GameResult struct {
	GameID   string
	WinnerID string
	Deals    int
	Scores   domain.Scores
	Names    [domain.SeatCount]string
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if simulateFlags.target > 0 {
		cfg.Game.TargetScore = simulateFlags.target
	}
	if simulateFlags.natsURL != "" {
		cfg.NATS.URL = simulateFlags.natsURL
	}
	if simulateFlags.opsAddr != "" {
		cfg.Ops.Addr = simulateFlags.opsAddr
	}

	repo, closeRepo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	roster := bot.DefaultRoster()
	if cfg.Bots.IdentitiesPath != "" {
		if roster, err = bot.LoadRoster(cfg.Bots.IdentitiesPath); err != nil {
			return err
		}
	}

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithRand(app.NewRand(simulateFlags.seed)),
		app.WithTargetScore(cfg.Game.TargetScore),
		app.WithDefaultStrategy(cfg.Bots.DefaultStrategy),
	}
	if cfg.NATS.URL != "" {
		nc, err := natsbus.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		opts = append(opts, app.WithPublisher(natsbus.New(nc, cfg.NATS.SubjectPrefix, logger)))
	}

	if cfg.Ops.Addr != "" {
		srv := opsserver.New(cfg.Ops.Addr, nil, logger, nil)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("ops server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	svc := app.NewService(repo, opts...)
	results, err := simulate(ctx, svc, repo, roster, simulateFlags.games)
	printResults(cmd.OutOrStdout(), results)
	return err
}

// openRepository returns the configured repository and its close func.
func openRepository(ctx context.Context, sc config.StorageConfig) (ports.Repository, func(), error) {
	if sc.Driver == config.DriverMemory {
		return memory.New(), func() {}, nil
	}
	db, err := sqlstore.Open(sc.Driver, sc.DSN)
	if err != nil {
		return nil, nil, err
	}
	store := sqlstore.New(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

// simulate registers the roster and plays n bot-only games in sequence.
func simulate(ctx context.Context, svc *app.Service, repo ports.Repository, roster *bot.Roster, n int) ([]GameResult, error) {
	bots := roster.Participants()
	if len(bots) < domain.SeatCount {
		return nil, fmt.Errorf("need %d bots, roster has %d", domain.SeatCount, len(bots))
	}
	for _, p := range bots {
		if err := repo.SaveParticipant(ctx, p); err != nil {
			return nil, fmt.Errorf("register bot %s: %w", p.ID, err)
		}
	}

	results := make([]GameResult, 0, n)
	for i := 0; i < n; i++ {
		g, err := svc.NewGame(ctx, bots[i%len(bots)].ID)
		if err != nil {
			return results, err
		}
		out, _, err := svc.Advance(ctx, g.ID)
		if err != nil {
			return results, fmt.Errorf("game %s: %w", g.ID, err)
		}
		if out.Phase != domain.PhaseGameOver {
			return results, fmt.Errorf("game %s stopped in phase %s", g.ID, out.Phase)
		}

		view, err := svc.ClientView(ctx, g.ID, "", true)
		if err != nil {
			return results, err
		}
		deals, err := repo.ListDeals(ctx, g.ID)
		if err != nil {
			return results, err
		}
		r := GameResult{GameID: g.ID, WinnerID: view.WinnerID, Deals: len(deals)}
		for _, p := range view.Players {
			idx := domain.Seat(p.AbsolutePosition).Index()
			r.Scores[idx] = p.Score
			r.Names[idx] = p.Name
		}
		results = append(results, r)
	}
	return results, nil
}

func printResults(w io.Writer, results []GameResult) {
	for _, r := range results {
		fmt.Fprintf(w, "game %s: %d deals, winner %s\n", r.GameID, r.Deals, r.WinnerID)
		for i, name := range r.Names {
			fmt.Fprintf(w, "  seat %d %-10s %3d\n", i+1, name, r.Scores[i])
		}
	}
}
