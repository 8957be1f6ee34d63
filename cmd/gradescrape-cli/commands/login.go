package commands

import (
	"log/slog"

	"gradescrape-backend/lib/scrapers/gradescope/login"
	"gradescrape-backend/lib/serviceutil"
	"gradescrape-backend/lib/tokenstore"

	"github.com/spf13/cobra"
)

var loginCookies *string

func init() {
	loginCookies = loginCmd.Flags().String("cookies", "cookies.json", "A cookie dump from an interactive browser login.")
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [--cookies <path/to/cookies.json>]",
	Short: "Imports session cookies from an interactive login into the token store.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		tokens, err := login.LoadTokens(*loginCookies)
		if err != nil {
			serviceutil.Fatal("failed to read cookies", err)
		}

		store, err := tokenstore.Open(cfg.TokensDb)
		if err != nil {
			serviceutil.Fatal("failed to open token store", err)
		}
		defer store.Close()

		err = store.Put(cmd.Context(), cfg.Account, tokens)
		if err != nil {
			serviceutil.Fatal("failed to store tokens", err)
		}

		slog.Info("imported session tokens", "account", cfg.Account, "cookies", len(tokens))
	},
}
