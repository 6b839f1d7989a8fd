package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/api"
	"github.com/terraincognita07/glowlog/internal/cache"
	"github.com/terraincognita07/glowlog/internal/cli"
	"github.com/terraincognita07/glowlog/internal/config"
	"github.com/terraincognita07/glowlog/internal/db"
	"github.com/terraincognita07/glowlog/internal/llm"
	"github.com/terraincognita07/glowlog/internal/logging"
	"github.com/terraincognita07/glowlog/internal/scheduler"
	"github.com/terraincognita07/glowlog/internal/services"
)

const (
	serviceName     = "glowlog"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Skincare procedure calendar and habit challenge backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newResetPasswordCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily challenge sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and seed the catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			database, err := db.Open(databaseOptions(cfg, logger))
			if err != nil {
				return fmt.Errorf("database init failed: %w", err)
			}
			defer func() { _ = db.Close(database) }()

			logger.Info("database is up to date", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func newResetPasswordCommand() *cobra.Command {
	var email string
	command := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace a user's password with a temporary one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			database, err := db.Open(databaseOptions(cfg, logger))
			if err != nil {
				return fmt.Errorf("database init failed: %w", err)
			}
			defer func() { _ = db.Close(database) }()

			client := cache.NewClient(redisOptions(cfg))
			defer func() { _ = client.Close() }()

			options := cli.ResetPasswordOptions{
				Database: database,
				Email:    email,
				Out:      cmd.OutOrStdout(),
			}
			if err := cache.Ping(cmd.Context(), client); err != nil {
				logger.Warn("redis unavailable, existing sessions stay valid until they expire", zap.Error(err))
			} else {
				options.Sessions = cache.NewSessionStore(client)
			}

			_, err = cli.RunResetPasswordCommand(cmd.Context(), options)
			return err
		},
	}
	command.Flags().StringVar(&email, "email", "", "email of the account to reset")
	_ = command.MarkFlagRequired("email")
	return command
}

func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
		ServiceName: serviceName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	secretKey, err := cfg.ResolveSecretKey()
	if err != nil {
		return err
	}
	location, ok := cfg.Location()
	if !ok {
		logger.Warn("invalid timezone, falling back to UTC", zap.String("timezone", cfg.Timezone))
	}

	database, err := db.Open(databaseOptions(cfg, logger))
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	redisClient, err := connectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	handler, err := newHandler(cfg, database, redisClient, secretKey, location, logger)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := api.NewApp(handler, logger)
	sweep := scheduler.NewDailySweep(handler.ChallengeService(), location, cfg.SweepHour, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("glowlog listening",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("timezone", location.String()),
			zap.Bool("recommendations", cfg.LLMEnabled()),
		)
		return app.Listen(":" + cfg.Port)
	})
	group.Go(func() error {
		return sweep.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newHandler(cfg *config.Config, database *gorm.DB, redisClient *redis.Client, secretKey []byte, location *time.Location, logger *zap.Logger) (*api.Handler, error) {
	return api.NewHandler(api.Options{
		Database:        database,
		Sessions:        cache.NewSessionStore(redisClient),
		SecretKey:       secretKey,
		Location:        location,
		AccessTokenTTL:  cfg.AccessTokenTTL(),
		RefreshTokenTTL: cfg.RefreshTokenTTL(),
		Completer:       newCompleter(cfg, logger),
		Logger:          logger,
	})
}

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := cache.NewClient(redisOptions(cfg))
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis init failed: %w", err)
	}
	return client, nil
}

// newCompleter returns a nil interface when no model endpoint is configured so
// the recommendation service reports itself unavailable.
func newCompleter(cfg *config.Config, logger *zap.Logger) services.Completer {
	if !cfg.LLMEnabled() {
		return nil
	}
	return llm.NewClient(llm.Options{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	}, logger)
}

func databaseOptions(cfg *config.Config, logger *zap.Logger) db.Options {
	return db.Options{
		Driver:      cfg.Database.Driver,
		SQLitePath:  cfg.Database.Path,
		PostgresDSN: cfg.Database.URL,
		Logger:      logger,
	}
}

func redisOptions(cfg *config.Config) cache.Options {
	return cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}
