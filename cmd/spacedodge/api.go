package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-dodge/internal/api"
)

var (
	flagAPIAddr string
	flagAPIDB   string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the score backend",
	Long: `Start the HTTP score backend.

Endpoints:
  POST /api/scoreSave     - Save a finished run
  GET  /api/scores        - Leaderboard, best first
  GET  /api/scores/live   - WebSocket feed of saved scores
  POST /api/register      - Create an account
  POST /api/login         - Get a bearer token
  POST /api/logout        - Revoke the token
  GET  /api/getUserCoin   - Coin balance of the token's user
  GET  /api/upgrades      - Extra hearts of the token's user
  POST /api/upgrades      - Buy extra hearts with coins

Examples:
  spacedodge api
  spacedodge api --addr :9000 --db ./spacedodge.db`,
	Args: cobra.NoArgs,
	Run:  runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagAPIAddr, "addr", "", "Listen address (overrides config)")
	apiCmd.Flags().StringVar(&flagAPIDB, "db", "", "Path to database (overrides config)")
}

func runAPI(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = flagAPIAddr
	}
	if cmd.Flags().Changed("db") {
		cfg.Server.DBPath = flagAPIDB
	}

	logger := newLogger("spacedodge-api")

	store, err := openStore(cfg)
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()

	ctx, stop := signalContext()
	defer stop()

	if err := api.New(store, logger).ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		fail("%v", err)
	}
}
