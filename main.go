package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	"github.com/Chative-shop-assistant/server/internal/agent/catalog"
	"github.com/Chative-shop-assistant/server/internal/agent/conversations"
	"github.com/Chative-shop-assistant/server/internal/agent/fallback"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
	"github.com/Chative-shop-assistant/server/internal/agent/reply"
	"github.com/Chative-shop-assistant/server/internal/agent/repo"
	"github.com/Chative-shop-assistant/server/internal/agent/router"
	"github.com/Chative-shop-assistant/server/internal/agent/tools"
	"github.com/Chative-shop-assistant/server/internal/core"
	"github.com/Chative-shop-assistant/server/internal/server"
	logx "github.com/Chative-shop-assistant/server/pkg/logger"
	pkgredis "github.com/Chative-shop-assistant/server/pkg/redis"
	"github.com/Chative-shop-assistant/server/pkg/snowflake"
)

// AppConfig defines all configurable parameters of the shop assistant,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Server model.ServerConfig
	Redis  pkgredis.Config

	// LLM provider; the fallback is disabled without a key
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Catalog  model.CatalogConfig
	Fallback model.FallbackModelConfig
	Prompt   model.AssistantPromptConfig
	Session  model.SessionConfig

	OrderNodeID int64 `envconfig:"ORDER_NODE_ID" default:"-1"`
}

type stores struct {
	sessions      model.SessionRepository
	conversations model.ConversationRepository
	closer        func()
}

func openStores(ctx context.Context, cfg AppConfig) stores {
	switch cfg.Session.Store {
	case model.SessionStoreRedis:
		rdb := cfg.Redis.MustNew(ctx)
		logx.Info().Msg("Connected to Redis successfully")
		return stores{
			sessions:      repo.NewRedisSessionRepository(rdb, cfg.Session.TTL),
			conversations: repo.NewRedisConversationRepository(rdb, cfg.Session.TTL, cfg.Session.MaxMessages()),
			closer:        func() { closeRedis(rdb) },
		}
	case model.SessionStoreMemory, "":
		return stores{
			sessions:      repo.NewMemorySessionRepository(cfg.Session.TTL),
			conversations: repo.NewMemoryConversationRepository(cfg.Session.TTL, cfg.Session.MaxMessages()),
			closer:        func() {},
		}
	default:
		logx.Fatal().Str("store", cfg.Session.Store).Msg("Unknown SESSION_STORE")
		return stores{}
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		logx.Warn().Err(err).Msg("Failed to close Redis client")
	}
}

func newFallback(ctx context.Context, cfg AppConfig, products *catalog.Catalog, messages *conversations.MessagesManager) *fallback.Guard {
	if cfg.APIKey == "" {
		logx.Warn().Msg("GEMINI_API_KEY not set, unmatched messages get the fixed apology")
		return fallback.NewGuard(nil, cfg.Fallback.Timeout)
	}

	cm, err := fallback.NewGeminiChatModel(ctx, fallback.GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Fallback,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create fallback chat model")
	}

	gen, err := fallback.NewGraphGenerator(ctx, cm, fallback.GraphConfig{
		ModelName:    cfg.Fallback.Model,
		Prompt:       cfg.Prompt,
		Currency:     cfg.Catalog.Currency,
		Products:     products.All(),
		Messages:     messages,
		Tools:        tools.NewCatalogTools(products),
		MaxToolCalls: cfg.Fallback.MaxToolCalls,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build fallback graph")
	}
	return fallback.NewGuard(gen, cfg.Fallback.Timeout)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load(".env")

	// Load structured config from env
	var cfg AppConfig
	cfgErr := envconfig.Process("", &cfg)

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})
	if envErr != nil {
		logx.Warn().Err(envErr).Msg("Could not load .env file")
	}
	if cfgErr != nil {
		logx.Fatal().Err(cfgErr).Msg("Failed to process environment config")
	}

	products, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logx.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load catalog")
	}

	if err := snowflake.SetNodeID(cfg.OrderNodeID); err != nil {
		logx.Fatal().Err(err).Int64("node_id", cfg.OrderNodeID).Msg("Invalid ORDER_NODE_ID")
	}

	st := openStores(ctx, cfg)
	defer st.closer()

	messages := conversations.NewMessagesManager(st.conversations, cfg.Session)

	bot, err := router.New(router.Config{
		Catalog:          products,
		Sessions:         st.sessions,
		Messages:         messages,
		Fallback:         newFallback(ctx, cfg, products, messages),
		Formatter:        reply.NewFormatter(cfg.Catalog),
		MaxPendingMisses: cfg.Session.MaxPendingMisses,
		NewOrderID:       snowflake.Next,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build router")
	}

	metrics := server.NewMetrics()
	srv := server.NewServer(cfg.Server, server.NewHandler(bot, metrics), metrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logx.Info().Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			logx.Error().Err(err).Msg("HTTP server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logx.Warn().Err(err).Msg("Graceful shutdown failed")
	}
}
