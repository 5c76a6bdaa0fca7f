package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mannskor/ovingslogg/internal/config"
	"github.com/mannskor/ovingslogg/internal/database"
	"github.com/mannskor/ovingslogg/internal/github"
	"github.com/mannskor/ovingslogg/internal/logbook"
	"github.com/mannskor/ovingslogg/internal/logging"
	"github.com/mannskor/ovingslogg/internal/roster"
	"github.com/mannskor/ovingslogg/internal/server"
	"github.com/mannskor/ovingslogg/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ovingslogg",
		Short: "Choir practice log backed by a GitHub issue thread",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("github-owner", defaults.GetString("github.owner"), "GitHub repository owner")
	cmd.PersistentFlags().String("github-repo", defaults.GetString("github.repo"), "GitHub repository name")
	cmd.PersistentFlags().Int("issue-number", defaults.GetInt("github.issue_number"), "Issue number backing the log")
	cmd.PersistentFlags().Int("cache-ttl-seconds", defaults.GetInt("cache.ttl_seconds"), "Log snapshot cache TTL in seconds")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite path for token-less local runs")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("github-token", "", "GitHub API token (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "github.owner", "github-owner")
	bindFlag(cmd, "github.repo", "github-repo")
	bindFlag(cmd, "github.issue_number", "issue-number")
	bindFlag(cmd, "cache.ttl_seconds", "cache-ttl-seconds")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "github.token", "github-token")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	commentStore, cleanup, err := buildStore(appConfig, logger)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	logbookService, err := logbook.NewService(logbook.ServiceConfig{
		Store:    commentStore,
		Roster:   roster.DefaultRoster(),
		CacheTTL: appConfig.CacheTTL,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Logbook:     logbookService,
		IssueNumber: appConfig.IssueNumber,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.Bool("remote_store", appConfig.RemoteEnabled()))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func buildStore(appConfig config.AppConfig, logger *zap.Logger) (store.CommentStore, func(), error) {
	if appConfig.RemoteEnabled() {
		client, err := github.NewClient(github.ClientConfig{
			Token:      appConfig.GitHubToken,
			Owner:      appConfig.GitHubOwner,
			Repository: appConfig.GitHubRepo,
			BaseURL:    appConfig.GitHubAPIURL,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}

	logger.Warn("no github token configured, using local sqlite store",
		zap.String("path", appConfig.LocalDBPath))

	db, err := database.OpenSQLite(appConfig.LocalDBPath, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	local, err := store.NewLocalStore(db)
	if err != nil {
		sqlDB.Close() //nolint:errcheck
		return nil, nil, err
	}

	cleanup := func() {
		sqlDB.Close() //nolint:errcheck
	}
	return local, cleanup, nil
}
