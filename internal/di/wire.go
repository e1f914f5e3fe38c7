//go:build wireinject
// +build wireinject

package di

import (
	"TradePulse/pkg/config"
	"TradePulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideMetrics,
		ProvideKafkaProducer,
		ProvideLogger,

		// Market data services
		ProvideCache,
		ProvideCandleProvider,
		ProvideSentiment,
		ProvideCandleArchive,
		ProvideTradeEvents,

		// Engine
		ProvideIndicators,
		ProvideClassifier,
		ProvideGenerator,
		ProvideLedger,
		ProvideRefreshUseCase,

		// Streaming
		ProvidePriceStream,
		ProvideTickPipeline,

		// HTTP
		ProvideDashboardHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
