package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worldhelipads/helipad-cli/internal/config"
	"github.com/worldhelipads/helipad-cli/internal/fetcher"
	"github.com/worldhelipads/helipad-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "helipad-cli",
	Short: "Worldwide helipad dataset pipeline",
	Long:  "Downloads helipad locations from OpenAIP and OpenStreetMap, merges them into a unified dataset, and exports LittleNavMap userpoint CSVs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newFetcher builds the shared HTTP fetcher from config.
func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:   cfg.Fetch.MaxRetries,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// newStore opens the configured run catalog backend and runs migrations.
func newStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		st, err = store.NewSQLite(cfg.Store.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
