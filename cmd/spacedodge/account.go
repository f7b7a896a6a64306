package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/config"
)

const tokenFile = "~/.spacedodge/token"

var flagAccountBackend string

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your backend account",
	Long: `Register, log in and out, and check your coins.

Logging in stores a token in ~/.spacedodge/token. While it is present,
'spacedodge play' shows your coins and lets you buy extra hearts.

Examples:
  spacedodge account register alice s3cret!
  spacedodge account login alice s3cret!
  spacedodge account coins
  spacedodge account logout`,
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <password>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(2),
	Run:   runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Log in and save the token",
	Args:  cobra.ExactArgs(2),
	Run:   runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke and forget the saved token",
	Args:  cobra.NoArgs,
	Run:   runLogout,
}

var coinsCmd = &cobra.Command{
	Use:   "coins",
	Short: "Show your coins and extra hearts",
	Args:  cobra.NoArgs,
	Run:   runCoins,
}

func init() {
	accountCmd.PersistentFlags().StringVar(&flagAccountBackend, "backend", "", "Score backend URL (overrides config)")
	accountCmd.AddCommand(registerCmd, loginCmd, logoutCmd, coinsCmd)
}

// accountClient returns a client for the configured backend.
func accountClient(cmd *cobra.Command) *backend.Client {
	cfg := loadConfig()
	if cmd.Flags().Changed("backend") {
		cfg.Backend.URL = flagAccountBackend
	}
	return newClient(cfg)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func runRegister(cmd *cobra.Command, args []string) {
	client := accountClient(cmd)
	ctx, cancel := requestContext()
	defer cancel()

	if _, err := client.Register(ctx, args[0], args[1]); err != nil {
		fail("%s", describe(err))
	}
	user, err := client.Login(ctx, args[0], args[1])
	if err != nil {
		fail("%s", describe(err))
	}
	if err := writeToken(client.Token()); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Registered and logged in as %s (id %d)\n", user.Name, user.ID)
}

func runLogin(cmd *cobra.Command, args []string) {
	client := accountClient(cmd)
	ctx, cancel := requestContext()
	defer cancel()

	user, err := client.Login(ctx, args[0], args[1])
	if err != nil {
		fail("%s", describe(err))
	}
	if err := writeToken(client.Token()); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Logged in as %s (id %d)\n", user.Name, user.ID)
}

func runLogout(cmd *cobra.Command, _ []string) {
	client := accountClient(cmd)
	if client.Token() == "" {
		fmt.Println("Not logged in.")
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	err := client.Logout(ctx)
	if err != nil && !errors.Is(err, backend.ErrUnauthorized) {
		fail("%s", describe(err))
	}
	if err := removeToken(); err != nil {
		fail("%v", err)
	}
	fmt.Println("Logged out.")
}

func runCoins(cmd *cobra.Command, _ []string) {
	client := accountClient(cmd)
	if client.Token() == "" {
		fail("not logged in, run 'spacedodge account login' first")
	}

	ctx, cancel := requestContext()
	defer cancel()

	coins, err := client.Coins(ctx)
	if err != nil {
		fail("%s", describe(err))
	}
	up, err := client.Upgrades(ctx)
	if err != nil {
		fail("%s", describe(err))
	}
	fmt.Printf("Coins:        %d\n", coins)
	fmt.Printf("Extra hearts: %d (%d coins each)\n", up.Hearts, up.HeartPrice)
}

// describe turns backend validation errors into one readable line.
func describe(err error) string {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Errors) == 0 {
		return err.Error()
	}
	var parts []string
	for field, msgs := range apiErr.Errors {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return apiErr.Message + " (" + strings.Join(parts, "; ") + ")"
}

func readToken() (string, error) {
	path, err := config.ExpandHome(tokenFile)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeToken(token string) error {
	path, err := config.ExpandHome(tokenFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func removeToken() error {
	path, err := config.ExpandHome(tokenFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
