package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/space-dodge/internal/api"
	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/game"
	"github.com/vovakirdan/space-dodge/internal/platform/tui"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagServeDB     string
	flagIdleTimeout int
	flagWithAPI     bool
	flagServeAPI    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Space Dodge over SSH",
	Long: `Start an SSH server that lets users connect and play.

Each SSH user name is an account in the server's database: scores, coins
and extra hearts are kept per user, and all users share one leaderboard.

With --api the HTTP score backend runs in the same process on the same
database, and scores from SSH players appear on its live feed.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.spacedodge/host_key

Examples:
  spacedodge serve                          # Listen on :23234
  spacedodge serve --ssh :2222              # Listen on port 2222
  spacedodge serve --api --addr :8080       # Also run the HTTP backend

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagServeDB, "db", "", "Path to database (overrides config)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (overrides config)")
	serveCmd.Flags().BoolVar(&flagWithAPI, "api", false, "Also serve the HTTP backend")
	serveCmd.Flags().StringVar(&flagServeAPI, "addr", "", "HTTP backend address for --api (overrides config)")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()
	flags := cmd.Flags()
	if flags.Changed("ssh") {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flags.Changed("host-key") {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flags.Changed("db") {
		cfg.Server.DBPath = flagServeDB
	}
	if flags.Changed("idle-timeout") {
		cfg.Server.IdleTimeoutMin = flagIdleTimeout
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = flagServeAPI
	}

	logger := newLogger("spacedodge")

	store, err := openStore(cfg)
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()

	var apiServer *api.Server
	if flagWithAPI {
		apiServer = api.New(store, logger.WithPrefix("api"))
	}

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = cfg.Server.SSHAddr
	sshCfg.HostKeyPath = cfg.Server.HostKeyPath
	sshCfg.Rules = game.RulesFromConfig(cfg)
	sshCfg.Timing = game.TimingFromConfig(cfg)
	sshCfg.Logger = logger.WithPrefix("ssh")
	if d := cfg.Server.IdleTimeout(); d > 0 {
		sshCfg.IdleTimeout = d
	}
	if apiServer != nil {
		hub := apiServer.Hub()
		sshCfg.OnScore = func(e storage.ScoreEntry) {
			hub.Broadcast(backend.LiveScore{
				ID:      e.ID,
				User:    e.UserID,
				Name:    e.UserName,
				Score:   e.Score,
				Hood:    e.Hood,
				SavedAt: e.CreatedAt,
			})
		}
	}

	sshServer, err := tui.NewSSHServer(sshCfg, store)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Starting Space Dodge SSH server on %s\n", sshCfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signalContext()
	defer stop()
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sshServer.ListenAndServe(ctx)
	})
	if apiServer != nil {
		fmt.Printf("Starting score backend on %s\n", cfg.Server.Addr)
		g.Go(func() error {
			return apiServer.ListenAndServe(ctx, cfg.Server.Addr)
		})
	}

	if err := g.Wait(); err != nil {
		fail("%v", err)
	}
	logger.Info("stopped", "uptime", time.Since(start).Round(time.Second))
}
