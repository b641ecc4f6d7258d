package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/analysis"
	"github.com/jonathan/resume-screener/internal/cache"
	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/logger"
	"github.com/jonathan/resume-screener/internal/metrics"
	"github.com/jonathan/resume-screener/internal/profiles"
	"github.com/jonathan/resume-screener/internal/server"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
)

var (
	servePort          int
	serveSecureCookies bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the auth, resume analysis and candidate search endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveSecureCookies, "secure-cookies", false, "Mark auth cookies Secure (enable behind HTTPS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.Migrate(ctx)
	if err != nil {
		return err
	}
	log.Info("database ready", zap.Strings("migrations", applied))

	mgr := metrics.NewManager()
	opts := []profiles.Option{
		profiles.WithRecorder(mgr),
		profiles.WithLogger(log.Named("profiles")),
		profiles.WithLookupConcurrency(cfg.Search.LookupConcurrency),
	}
	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			// search works without the cache
			log.Warn("search cache disabled", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			opts = append(opts, profiles.WithCache(cache.New(client, cfg.Search.CacheTTL)))
			log.Info("search cache enabled", zap.Duration("ttl", cfg.Search.CacheTTL))
		}
	}
	profileService := profiles.NewService(database, database, opts...)

	llmCfg := llm.DefaultConfig().WithModel(cfg.LLM.Model)
	llmCfg.RequestsPerMinute = cfg.LLM.RequestsPerMinute
	if err := llmCfg.Validate(); err != nil {
		return err
	}
	llmClient, err := llm.NewGeminiClient(ctx, llmCfg, cfg.LLM.APIKey)
	if err != nil {
		return err
	}
	defer func() { _ = llmClient.Close() }()

	limiter := ratelimit.NewLimiter(ratelimit.NewConfig(
		cfg.RateLimit.Enabled,
		cfg.RateLimit.DefaultLimit,
		cfg.RateLimit.DefaultWindow,
		cfg.RateLimit.Whitelist,
		cfg.RateLimit.Blacklist,
	))

	srv, err := server.New(server.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		SecureCookies:  serveSecureCookies,
	}, server.Deps{
		Users:       database,
		Profiles:    profileService,
		Analyzer:    analysis.NewAnalyzer(llmClient, log.Named("analysis")),
		JWT:         &cfg.JWT,
		Password:    &cfg.Password,
		RateLimiter: limiter,
		Metrics:     mgr,
		Logger:      log,
		Ping:        database.Ping,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("starting resume screener",
		zap.Int("port", cfg.Server.Port),
		zap.String("model", llmClient.Model()))
	return srv.Start(ctx)
}
