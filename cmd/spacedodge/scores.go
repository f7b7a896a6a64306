package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/leaderboard"
	"github.com/vovakirdan/space-dodge/internal/platform/tui"
)

var (
	flagScoresBackend string
	flagScoresDB      string
	flagScoresLimit   int
	flagScoresTUI     bool
	flagScoresFollow  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the leaderboard grouped into tiers:

  King of Space  - rank 1
  Diamond        - ranks 2-3
  Gold           - ranks 4-6
  Silver         - ranks 7-9
  Bronze         - everyone else

Scores are read from the backend, or from a local database with --db.

Examples:
  spacedodge scores
  spacedodge scores --db ~/.spacedodge/spacedodge.db
  spacedodge scores --tui
  spacedodge scores --follow`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresBackend, "backend", "", "Score backend URL (overrides config)")
	scoresCmd.Flags().StringVar(&flagScoresDB, "db", "", "Read a local database instead of the backend")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 20, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Open the interactive leaderboard")
	scoresCmd.Flags().BoolVar(&flagScoresFollow, "follow", false, "Print scores as they are saved")
}

func runScores(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()
	if cmd.Flags().Changed("backend") {
		cfg.Backend.URL = flagScoresBackend
	}

	if flagScoresFollow {
		if flagScoresDB != "" {
			fail("--follow needs the backend, not --db")
		}
		followScores(newClient(cfg))
		return
	}

	var source tui.ScoreSource
	if flagScoresDB != "" {
		cfg.Server.DBPath = flagScoresDB
		store, err := openStore(cfg)
		if err != nil {
			fail("%v", err)
		}
		defer store.Close()
		source = tui.StoreScores(store)
	} else {
		source = tui.BackendScores(newClient(cfg))
	}

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(source, width, height); err != nil {
			fail("%v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := source(ctx, flagScoresLimit)
	if err != nil {
		fail("cannot load scores: %v", err)
	}

	fmt.Println("Space Dodge - Leaderboard")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'spacedodge play' to set the first high score!")
		return
	}

	for _, group := range leaderboard.Bucket(entries) {
		fmt.Printf("%s\n", group.Tier.Name)
		for _, e := range group.Entries {
			fmt.Printf("  #%-4d  %-15s  %10s  %s\n", e.Rank+1, e.Name, humanize.Comma(int64(e.Score)), e.Hood)
		}
		fmt.Println()
	}
}

// followScores prints every score saved on the backend until interrupted.
func followScores(client *backend.Client) {
	ctx, stop := signalContext()
	defer stop()

	fmt.Println("Waiting for scores... (Ctrl+C to stop)")
	err := client.Follow(ctx, func(s backend.LiveScore) {
		fmt.Printf("%s  %-15s  %10s  %s\n",
			s.SavedAt.Local().Format("15:04:05"), s.Name, humanize.Comma(int64(s.Score)), s.Hood)
	})
	if err != nil && ctx.Err() == nil {
		fail("%v", err)
	}
}
