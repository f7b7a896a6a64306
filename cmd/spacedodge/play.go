package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/game"
	"github.com/vovakirdan/space-dodge/internal/platform/tui"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

var (
	flagSeed    int64
	flagBackend string
	flagUser    int
	flagHood    string
	flagOffline bool
	flagPlayDB  string
	flagNoMenu  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Space Dodge",
	Long: `Start the game in this terminal.

Controls:
  Left/Right, A/D  - Move the ship
  Mouse drag       - Move the ship to the pointer
  P/Space          - Pause / resume
  R/Enter          - Retry (after game over)
  Esc/B            - Back to menu (when paused or game over)
  Ctrl+S           - Save a screenshot
  Q/Ctrl+C         - Quit

Losing terminal focus pauses the game.

Scores are submitted to the backend given by --backend (or the config file).
With --offline they are kept in the local database instead, together with
your coins and extra hearts.

Examples:
  spacedodge play
  spacedodge play --seed 42 --no-menu
  spacedodge play --backend http://localhost:8080 --user 7 --hood Queens
  spacedodge play --offline`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	playCmd.Flags().StringVar(&flagBackend, "backend", "", "Score backend URL (overrides config)")
	playCmd.Flags().IntVar(&flagUser, "user", 0, "User id submitted with scores (overrides config)")
	playCmd.Flags().StringVar(&flagHood, "hood", "", "Hood submitted with scores (overrides config)")
	playCmd.Flags().BoolVar(&flagOffline, "offline", false, "Keep scores in the local database")
	playCmd.Flags().StringVar(&flagPlayDB, "db", "", "Local database path for --offline (overrides config)")
	playCmd.Flags().BoolVar(&flagNoMenu, "no-menu", false, "Start a run immediately, without the menu")
}

// applyBackendFlags overrides config values with the flags given on the command line.
func applyBackendFlags(cmd *cobra.Command, cfg *config.DodgeConfig) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend.URL = flagBackend
	}
	if flags.Changed("user") {
		cfg.Backend.UserID = flagUser
	}
	if flags.Changed("hood") {
		cfg.Backend.Hood = flagHood
	}
	if flags.Changed("offline") {
		cfg.Backend.Offline = flagOffline
	}
	if flags.Changed("db") {
		cfg.Server.DBPath = flagPlayDB
	}
}

func runPlay(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()
	applyBackendFlags(cmd, &cfg)

	logger, closeLog := newFileLogger("spacedodge")
	defer closeLog()

	rc := core.DefaultConfig()
	rc.Seed = flagSeed
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}

	opts := tui.SessionOptions{
		Rules:  game.RulesFromConfig(cfg),
		Timing: game.TimingFromConfig(cfg),
		Game: tui.GameOptions{
			SubmitTimeout: cfg.Backend.Timeout(),
			Logger:        logger,
		},
	}

	if cfg.Backend.Offline {
		store, err := openStore(cfg)
		if err != nil {
			fail("%v", err)
		}
		defer store.Close()

		if !cmd.Flags().Changed("user") {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			user, err := store.EnsureUser(ctx, localUserName())
			cancel()
			if err != nil {
				fail("%v", err)
			}
			opts.Rules.UserID = int(user.ID)
		}

		opts.Game.Submitter = store
		opts.Scores = tui.StoreScores(store)
		opts.Wallet = tui.StoreWallet(store, int64(opts.Rules.UserID))
		logger.Info("playing offline", "db", cfg.Server.DBPath, "user", opts.Rules.UserID)
	} else {
		client := newClient(cfg)
		opts.Game.Submitter = client
		opts.Scores = tui.BackendScores(client)
		if client.Token() != "" {
			opts.Wallet = tui.BackendWallet(client)
		}
		logger.Info("playing online", "backend", cfg.Backend.URL, "user", opts.Rules.UserID)
	}

	if flagNoMenu {
		g := game.New(opts.Rules, opts.Timing)
		if _, err := tui.RunGame(g, rc, opts.Game); err != nil {
			fail("%v", err)
		}
		return
	}

	if err := tui.RunSession(rc, opts); err != nil {
		fail("%v", err)
	}
}

// openStore opens the local database with the configured economy.
func openStore(cfg config.DodgeConfig) (*storage.Store, error) {
	store, err := storage.Open(cfg.Server.DBPath)
	if err != nil {
		return nil, err
	}
	store.SetEconomy(storage.Economy{
		CoinDivisor: cfg.Server.CoinDivisor,
		HeartPrice:  cfg.Server.HeartPrice,
	})
	return store, nil
}

// newClient returns a backend client carrying the saved login token, if any.
func newClient(cfg config.DodgeConfig) *backend.Client {
	opts := []backend.Option{backend.WithTimeout(cfg.Backend.Timeout())}
	if token, err := readToken(); err == nil && token != "" {
		opts = append(opts, backend.WithToken(token))
	}
	return backend.New(cfg.Backend.URL, opts...)
}

// localUserName names the offline account after the OS user.
func localUserName() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if name := os.Getenv(key); name != "" {
			if len(name) > 15 {
				name = name[:15]
			}
			return name
		}
	}
	return "player"
}
