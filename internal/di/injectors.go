//go:build wireinject
// +build wireinject

package di

import (
	"tad/internal"
	"tad/internal/controllers"
	"tad/internal/providers"
	"tad/internal/services"
	"tad/internal/structures"
	"tad/internal/tacho"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,

		tacho.NewZstdCompressor,
		services.NewAnalysisService,
		tacho.NewAnalyzer,
		tacho.NewResultStore,
		tacho.NewScheduler,
		controllers.NewHealthController,
		internal.NewApp,
	)

	return nil, nil
}
