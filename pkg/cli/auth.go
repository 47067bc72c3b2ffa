package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "clicklog_token"
	keyringService = "rankpulse"
	keyringUser    = "clicklog_token"
)

var (
	tokenFlag = &cli.StringFlag{
		Name:  "token",
		Usage: "Bearer token for the click-log endpoint (prompted when omitted)",
	}

	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Store the click-log endpoint token in the OS keychain",
		Action:          cmdAuth,
		Flags: []cli.Flag{
			tokenFlag,
		},
	}
)

func cmdAuth(c *cli.Context) error {
	token := c.String(tokenFlag.Name)
	if token == "" {
		fmt.Print("Token: ")
		if _, err := fmt.Scanln(&token); err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token required")
	}

	if err := saveToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Println("Token saved")
	return nil
}

func saveToken(token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveTokenFile(token)
	}

	// Clean up legacy file if it exists
	legacyPath := path.Join(getHomeDir(), tokenFileName)
	os.Remove(legacyPath)

	return nil
}

func getToken() (string, error) {
	// Try keychain first
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	// Fall back to file
	token, err = getTokenFile()
	if err != nil {
		return "", err
	}

	// Migrate to keychain
	if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		legacyPath := path.Join(getHomeDir(), tokenFileName)
		os.Remove(legacyPath)
	}

	return token, nil
}

func saveTokenFile(token string) error {
	tokenPath := path.Join(getHomeDir(), tokenFileName)
	return os.WriteFile(tokenPath, []byte(token), 0600)
}

func getTokenFile() (string, error) {
	tokenPath := path.Join(getHomeDir(), tokenFileName)
	b, err := os.ReadFile(tokenPath)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", tokenPath, err)
	}
	return strings.TrimSpace(string(b)), nil
}
