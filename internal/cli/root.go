// Package cli implements the command-line interface for figfiles.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kilupskalvis/figfiles/internal/collection"
	"github.com/kilupskalvis/figfiles/internal/config"
	"github.com/kilupskalvis/figfiles/internal/core"
	"github.com/kilupskalvis/figfiles/internal/logging"
	"github.com/kilupskalvis/figfiles/internal/metrics"
	"github.com/kilupskalvis/figfiles/internal/remote"
	"github.com/kilupskalvis/figfiles/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config  *config.Config
	Store   store.KV
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Engine  *core.Engine
	Starred *collection.Collection
	Visited *collection.Collection
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// initContext loads config, opens the store and builds the engine and
// collections.
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()

	if cfg.StoreBackend != store.BackendRedis {
		if err := os.MkdirAll(cfg.Path(), 0700); err != nil {
			exitError("failed to create %s: %v", cfg.Path(), err)
		}
	}
	st, err := store.Open(cfg.StoreOptions())
	if err != nil {
		exitError("failed to open store: %v", err)
	}

	client := newClient(cfg, logger, m)
	engine := core.NewEngine(client, st, core.Options{
		TeamIDs:        remote.ParseTeamIDs(cfg.TeamIDs),
		Logger:         logger,
		Metrics:        m,
		MaxConcurrency: cfg.MaxConcurrency,
	})

	return &cmdContext{
		Config:  cfg,
		Store:   st,
		Logger:  logger,
		Metrics: m,
		Engine:  engine,
		Starred: collection.New(collection.Starred, st, logger, m),
		Visited: collection.New(collection.Visited, st, logger, m),
	}
}

// newClient prefers a delegated OAuth token and falls back to the
// personal access token.
func newClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *remote.Client {
	var creds remote.CredentialSource = remote.PersonalToken(cfg.PersonalAccessToken)
	if cfg.OAuthToken != "" {
		creds = remote.NewOAuthSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken}))
	}

	return remote.NewClient(creds,
		remote.WithBaseURL(cfg.APIBaseURL),
		remote.WithPersonalToken(cfg.PersonalAccessToken),
		remote.WithMaxRetries(cfg.MaxRetries),
		remote.WithLogger(logger),
		remote.WithMetrics(m),
	)
}

var rootCmd = &cobra.Command{
	Use:   "figfiles",
	Short: "Browse design files across teams",
	Long: `figfiles lists the projects and files of one or more design teams,
keeping a local cache so that repeated listings only refetch projects
whose cached files have expired.`,
}

var logLevel string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(unstarCmd)
	rootCmd.AddCommand(starredCmd)
	rootCmd.AddCommand(visitCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(clearCacheCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
