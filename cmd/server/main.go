package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/obra-coop/obranet/internal/api"
	"github.com/obra-coop/obranet/internal/blob"
	"github.com/obra-coop/obranet/internal/clock"
	"github.com/obra-coop/obranet/internal/storage"
	"github.com/obra-coop/obranet/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "obranet-server",
	Short: "obranet server - project coordination backend",
	Long: `The obranet server hosts the project coordination API: projects and
role bindings, task and approval lifecycles, incident reports, daily
checklists, progress entries and notifications.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("obranet-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var cfg *Config

	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	cfg.Verbose = verbose

	jwtSecret := os.Getenv("OBRANET_JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("OBRANET_JWT_SECRET environment variable is required")
	}

	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := store.EnsureAdminUser(); err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}
	log.Printf("database initialized at %s", cfg.Database.Path)

	blobs, err := blob.NewLocalStore(cfg.Blobs.Dir)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	clk, err := clock.NewZoned(cfg.Reporting.Timezone)
	if err != nil {
		return fmt.Errorf("init clock: %w", err)
	}

	srv, err := api.New(&api.Config{
		Address:            cfg.Server.Address,
		JWTSecret:          []byte(jwtSecret),
		AccessTokenTTL:     cfg.Auth.AccessTokenTTL,
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
		Verbose:            cfg.Verbose,
	}, store, clk, blobs)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("starting obranet-server %s", config.Version)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}
