package commands

import (
	"context"
	"fmt"
	"os"

	"gradescrape-backend/lib/configutil"
	"gradescrape-backend/lib/restyutil"
	"gradescrape-backend/lib/scrapers/gradescope/core"
	"gradescrape-backend/lib/serviceutil"
	"gradescrape-backend/lib/tokenstore"

	"github.com/spf13/cobra"
)

type Config struct {
	Account  string `json:"account"`
	TokensDb string `json:"tokens_db"`
	BaseUrl  string `json:"base_url"`
	Debug    bool   `json:"debug"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Account == "" {
		cfg.Account = "default"
	}
	if cfg.TokensDb == "" {
		cfg.TokensDb = "tokens.db"
	}
	return cfg
}

func createClient(ctx context.Context, cfg Config) *core.Client {
	store, err := tokenstore.Open(cfg.TokensDb)
	if err != nil {
		serviceutil.Fatal("failed to open token store", err)
	}
	defer store.Close()

	tokens, err := store.Get(ctx, cfg.Account)
	if err != nil {
		serviceutil.Fatal("no stored tokens for account, run `gradescrape-cli login` first", err)
	}

	var debugOutput restyutil.InstrumentOutput
	if cfg.Debug {
		debugOutput = restyutil.NewFilesystemOutput(".dev/resty/cli")
	}

	client, err := core.NewClient(ctx, core.ClientOptions{
		BaseUrl:     cfg.BaseUrl,
		Tokens:      tokens,
		DebugOutput: debugOutput,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize gradescope client", err)
	}
	return client
}

var rootCmd = &cobra.Command{
	Use:   "gradescrape-cli",
	Short: "gradescrape-cli automates gradescope course and assignment management.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
