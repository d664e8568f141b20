package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamatrack/mamatrack-api/internal/app"
	"github.com/mamatrack/mamatrack-api/internal/config"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/seed"
	"github.com/mamatrack/mamatrack-api/internal/tools/common"
	"github.com/mamatrack/mamatrack-api/internal/tools/loadgen"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mamatrack-api",
		Short:         "Pregnancy tracking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newSeedCommand(), newLoadgenCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}

func newSeedCommand() *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data (emotions, week content) into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := repository.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}
			seeder := seed.NewSeeder(
				repository.NewEmotionRepository(db),
				repository.NewWeekRepository(db),
			)
			return seeder.Run(dataDir)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data", "./seed/data", "directory holding the JSON seed files")
	return cmd
}

func newLoadgenCommand() *cobra.Command {
	var cfg loadgen.Config
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Generate synthetic traffic against a running instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := common.LoadEnvFile(".env"); err != nil {
				return err
			}
			if cfg.BaseURL == "" {
				cfg.BaseURL = os.Getenv("LOADGEN_BASE_URL")
			}
			report, err := loadgen.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "", "target base URL, e.g. http://localhost:8080")
	cmd.Flags().StringVar(&cfg.Profile, "profile", loadgen.ProfileMixed, "traffic profile: mixed, auth or content")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", 10*time.Second, "how long to run")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 4, "number of concurrent workers")
	cmd.Flags().DurationVar(&cfg.Interval, "interval", 50*time.Millisecond, "delay between requests per worker")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "random seed")
	return cmd
}
