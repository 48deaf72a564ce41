package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/feedback-backend/internal/clients/redis"
	"github.com/yungbote/feedback-backend/internal/platform/gemini"
	"github.com/yungbote/feedback-backend/internal/platform/llm"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/services"
)

type Clients struct {
	// Completer is nil when no model credential is configured.
	Completer services.Completer
	Provider  string
	Redis     *goredis.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	completer, err := newCompleter(ctx, log, cfg.LLM)
	if err != nil {
		return Clients{}, err
	}

	var rdb *goredis.Client
	if cfg.Cache.Backend == CacheRedis {
		if cfg.Cache.RedisAddr == "" {
			return Clients{}, errors.New("CACHE_BACKEND=redis requires REDIS_ADDR")
		}
		rdb, err = redis.New(ctx, log, redis.Config{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
	}

	return Clients{
		Completer: completer,
		Provider:  cfg.LLM.Provider,
		Redis:     rdb,
	}, nil
}

// newCompleter returns nil, nil when the provider has no credential; the
// generator then answers with canned replies only.
func newCompleter(ctx context.Context, log *logger.Logger, cfg LLMConfig) (services.Completer, error) {
	if cfg.APIKey == "" {
		log.Warn("No LLM credential configured, replies will use canned text", "provider", cfg.Provider)
		return nil, nil
	}
	switch cfg.Provider {
	case ProviderGroq, ProviderOpenAI:
		base, model := llm.DefaultGroqBaseURL, llm.DefaultGroqModel
		if cfg.Provider == ProviderOpenAI {
			base, model = llm.DefaultOpenAIBaseURL, llm.DefaultOpenAIModel
		}
		if cfg.BaseURL != "" {
			base = cfg.BaseURL
		}
		if cfg.Model != "" {
			model = cfg.Model
		}
		c, err := llm.New(log, llm.Config{BaseURL: base, APIKey: cfg.APIKey, Model: model, Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("init %s client: %w", cfg.Provider, err)
		}
		log.Info("LLM client ready", "provider", cfg.Provider, "model", c.Model())
		return c, nil
	case ProviderGemini:
		c, err := gemini.New(ctx, log, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		log.Info("LLM client ready", "provider", cfg.Provider, "model", c.Model())
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (want groq, openai or gemini)", cfg.Provider)
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
		c.Redis = nil
	}
}
