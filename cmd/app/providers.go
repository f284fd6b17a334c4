package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/dermalens/skin-advisor/internal/domain/analysis"
	"github.com/dermalens/skin-advisor/internal/domain/auth"
	"github.com/dermalens/skin-advisor/internal/domain/catalog"
	"github.com/dermalens/skin-advisor/internal/domain/stats"
	"github.com/dermalens/skin-advisor/internal/infra/catalogrepo"
	"github.com/dermalens/skin-advisor/internal/infra/config"
	"github.com/dermalens/skin-advisor/internal/infra/imaging"
	"github.com/dermalens/skin-advisor/internal/infra/llm/openai"
	"github.com/dermalens/skin-advisor/internal/infra/logstore"
	httpiface "github.com/dermalens/skin-advisor/internal/interface/http"
)

func provideAnalysisConfig(cfg *config.Config) analysis.Config {
	return analysis.Config{
		Prompt:              cfg.Analyze.Prompt,
		Model:               cfg.LLM.Model,
		MaxCompletionTokens: cfg.Analyze.MaxCompletionTokens,
		Timeout:             cfg.Analyze.Timeout,
		MaxUploadBytes:      cfg.Analyze.MaxUploadBytes,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:            cfg.Auth.Secret,
		TokenTTL:          cfg.Auth.TokenTTL,
		Password:          cfg.Auth.Password,
		AdminPassword:     cfg.Auth.AdminPassword,
		PasswordHash:      cfg.Auth.PasswordHash,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		LoginWindow:       cfg.Auth.LoginWindow,
		LoginMaxAttempts:  cfg.Auth.LoginMaxAttempts,
	}
}

func provideOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	return openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideNormalizer(cfg *config.Config) *imaging.Normalizer {
	return imaging.NewNormalizer(cfg.Analyze.MaxDimension, cfg.Analyze.JPEGQuality)
}

// provideStatsStore picks valkey when configured and reachable, and
// falls back to the in-process store otherwise. The fallback keeps
// analysis available when the log store is down; rate limiting then
// only holds per process.
func provideStatsStore(cfg *config.Config, logger *slog.Logger) stats.Store {
	if cfg.Logstore.Enabled {
		opt, err := buildValkeyOptions(cfg.Logstore.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return logstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return logstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("valkey log store enabled", "addr", cfg.Logstore.Addr)
			return logstore.NewValkeyStore(client)
		}
	}
	return logstore.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideAttemptCounter(store stats.Store) auth.AttemptCounter {
	return store
}

func provideStatsService(cfg *config.Config, store stats.Store, logger *slog.Logger) stats.Service {
	return stats.NewService(store, cfg.Logstore.LogRetention, logger)
}

func provideCatalogRepository(cfg *config.Config, logger *slog.Logger) catalog.Repository {
	fallback := catalogrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Catalog.DSN)
	if dsn == "" {
		logger.Info("catalog postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Catalog.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Catalog.MaxConns
	}
	if cfg.Catalog.MinConns > 0 {
		poolConfig.MinConns = cfg.Catalog.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("catalog postgres repository enabled")
	return catalogrepo.NewPostgresRepository(pool)
}

func provideHandler(cfg *config.Config, analysisSvc analysis.Service, authSvc *auth.Service, catalogSvc *catalog.Service, statsSvc stats.Service, logger *slog.Logger) *httpiface.Handler {
	return httpiface.NewHandler(analysisSvc, authSvc, catalogSvc, statsSvc, provideAuthConfig(cfg), cfg.Auth.SecureCookies, cfg.Analyze.MaxUploadBytes, logger)
}
