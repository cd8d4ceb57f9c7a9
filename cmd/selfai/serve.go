package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	aicore "github.com/selfai-labs/selfai/src/ai/core"
	"github.com/selfai-labs/selfai/src/api/webserver"
	"github.com/selfai-labs/selfai/src/approvals"
	"github.com/selfai-labs/selfai/src/companions"
	"github.com/selfai-labs/selfai/src/config"
	"github.com/selfai-labs/selfai/src/data"
	"github.com/selfai-labs/selfai/src/farcaster"
	"github.com/selfai-labs/selfai/src/interactions"
	"github.com/selfai-labs/selfai/src/ledger"
	"github.com/selfai-labs/selfai/src/logging"
	"github.com/selfai-labs/selfai/src/notify"
	"github.com/selfai-labs/selfai/src/schedule"
	"github.com/selfai-labs/selfai/src/trending"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Listen port (overrides SELFAI_PORT)")
	serveCmd.Flags().String("log-level", "", "Log level (overrides SELFAI_LOG_LEVEL)")
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.New("selfai", cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(gin.ReleaseMode)

	registry := companions.NewRegistry()

	var store approvals.Store = approvals.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := data.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = approvals.NewRedisStore(rdb)
		logger.Info().Msg("approval queue backed by redis")
	}
	queue := approvals.NewQueue(store, registry)

	var recorder ledger.Recorder = ledger.NewMemory()
	if cfg.MySQLDSN != "" {
		db, err := data.OpenMySQL(cfg.MySQLDSN, logging.Component(logger, "gorm"))
		if err != nil {
			return err
		}
		if err := ledger.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		recorder = ledger.NewGorm(db)
		logger.Info().Msg("activity ledger backed by mysql")
	}

	generator, err := aicore.NewClient(aicore.FactoryConfig{
		Provider:    cfg.AIProvider,
		Model:       cfg.AIModel,
		OpenAIKey:   cfg.OpenAIKey,
		ClaudeKey:   cfg.ClaudeKey,
		GeminiKey:   cfg.GeminiKey,
		DeepSeekKey: cfg.DeepSeekKey,
		BaseURL:     cfg.AIBaseURL,
		Timeout:     cfg.GenerationTimeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("text generation unavailable; interactions will fail with 502")
		generator = nil
	}

	var reporter *trending.Reporter
	opts := []interactions.Option{
		interactions.WithLedger(recorder),
		interactions.WithLogger(logging.Component(logger, "interactions")),
		interactions.WithTimeouts(cfg.GenerationTimeout, cfg.PublishTimeout),
	}
	if cfg.NeynarAPIKey != "" {
		fc := farcaster.NewClient(cfg.NeynarAPIKey, cfg.NeynarBaseURL, cfg.PublishTimeout)
		reporter = trending.NewReporter(fc, logging.Component(logger, "trending"), cfg.TrendingTimeout)
		opts = append(opts, interactions.WithPublisher(fc), interactions.WithTrends(reporter))
	} else {
		logger.Warn().Msg("SELFAI_NEYNAR_API_KEY not set; publishing and trending are disabled")
	}
	if cfg.DiscordToken != "" {
		discord, err := notify.NewDiscord(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			return err
		}
		opts = append(opts, interactions.WithNotifier(discord))
	}

	dispatcher := interactions.New(registry, queue, generator, opts...)
	router := webserver.New(webserver.Deps{
		Config:     cfg,
		Logger:     logging.Component(logger, "http"),
		Registry:   registry,
		Schedule:   schedule.NewStore(registry),
		Queue:      queue,
		Dispatcher: dispatcher,
		Trends:     reporter,
		Ledger:     recorder,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err = run(ctx, httpSrv, logger)
	// let queued-approval notifications finish sending
	dispatcher.Wait()
	return err
}

func run(ctx context.Context, httpSrv *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info().Str("addr", httpSrv.Addr).Msg("SelfAI API listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("SelfAI API stopped")
	return nil
}
