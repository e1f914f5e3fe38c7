//go:build !wireinject
// +build !wireinject

package di

import (
	"TradePulse/pkg/config"
	"TradePulse/pkg/server"
)

// InitializeApp mirrors the wire.Build graph in wire.go. Keep the two in
// sync when the provider set changes, or replace this file with the output
// of github.com/google/wire/cmd/wire.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := ProvideLogger(cfg, producer)
	if err != nil {
		return nil, err
	}
	metrics := ProvideMetrics()
	bytesCache := ProvideCache(cfg)
	candleProvider := ProvideCandleProvider(cfg, logger, bytesCache)
	sentimentProvider := ProvideSentiment(cfg, logger)
	candleArchive, err := ProvideCandleArchive(cfg, logger)
	if err != nil {
		return nil, err
	}
	tradeEventPublisher := ProvideTradeEvents(producer, cfg)
	indicatorConfig := ProvideIndicators(cfg)
	classifier := ProvideClassifier(cfg)
	generator := ProvideGenerator(cfg)
	ledgerLedger := ProvideLedger(cfg)
	refreshUseCase := ProvideRefreshUseCase(cfg, candleProvider, sentimentProvider, candleArchive, tradeEventPublisher, metrics, logger, indicatorConfig, classifier, generator, ledgerLedger)
	priceStream := ProvidePriceStream(cfg, logger)
	tickPipeline := ProvideTickPipeline(refreshUseCase, metrics, cfg)
	dashboardHandler := ProvideDashboardHandler(logger, refreshUseCase, cfg)
	app := ProvideApp(cfg, logger, refreshUseCase, priceStream, tickPipeline, dashboardHandler, candleArchive, tradeEventPublisher)
	return app, nil
}
