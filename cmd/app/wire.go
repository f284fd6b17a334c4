//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/dermalens/skin-advisor/internal/bootstrap"
	"github.com/dermalens/skin-advisor/internal/domain/analysis"
	"github.com/dermalens/skin-advisor/internal/domain/auth"
	"github.com/dermalens/skin-advisor/internal/domain/catalog"
	"github.com/dermalens/skin-advisor/internal/infra/config"
	"github.com/dermalens/skin-advisor/internal/infra/imaging"
	"github.com/dermalens/skin-advisor/internal/infra/llm/openai"
	httpiface "github.com/dermalens/skin-advisor/internal/interface/http"
	"github.com/dermalens/skin-advisor/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAnalysisConfig,
		provideAuthConfig,
		provideOpenAIClient,
		provideNormalizer,
		provideStatsStore,
		provideStatsService,
		provideAttemptCounter,
		provideCatalogRepository,
		provideHandler,
		analysis.NewService,
		auth.NewService,
		catalog.NewService,
		wire.Bind(new(analysis.ChatClient), new(*openai.Client)),
		wire.Bind(new(analysis.Normalizer), new(*imaging.Normalizer)),
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
