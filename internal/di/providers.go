package di

import (
	"context"
	"fmt"
	"time"

	"TradePulse/internal/domain/repository"
	"TradePulse/internal/handler/api"
	"TradePulse/internal/indicator"
	"TradePulse/internal/ledger"
	mid "TradePulse/internal/middleware"
	"TradePulse/internal/regime"
	internalrepo "TradePulse/internal/repository"
	"TradePulse/internal/service/binance"
	"TradePulse/internal/service/cache"
	"TradePulse/internal/service/coingecko"
	"TradePulse/internal/service/news"
	"TradePulse/internal/service/provider"
	"TradePulse/internal/service/ratelimit"
	"TradePulse/internal/service/stream"
	"TradePulse/internal/signal"
	"TradePulse/internal/usecase"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	pkgkafka "TradePulse/pkg/kafka"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/metrics"
	"TradePulse/pkg/server"
)

// ProvideLogger creates the application logger with the warn/error collector
// attached. Aggregated entries go to Kafka when an events producer exists;
// the in-memory ring backs the /api/logs endpoint either way.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	cc := &applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		RecentLimit:    200,
		Topic:          "app-logs",
	}
	if producer != nil {
		cc.Publisher = logPublisher{producer}
	}
	l.AddCollector(cc)
	return l, nil
}

// logPublisher adapts the Kafka producer to the log collector sink.
type logPublisher struct {
	p *pkgkafka.Producer
}

func (lp logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return lp.p.Publish(ctx, topic, nil, payload)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache selects the candle cache backend: Redis when configured,
// otherwise an in-process TTL map.
func ProvideCache(cfg *config.Config) cache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideCandleProvider builds the cached provider chain in configured order.
func ProvideCandleProvider(cfg *config.Config, l *applogger.Logger, c cache.BytesCache) repository.CandleProvider {
	var providers []repository.CandleProvider
	for _, name := range cfg.Market.Providers {
		switch name {
		case "binance":
			providers = append(providers, binance.New(cfg.Market.BinanceHosts, cfg.Market.FetchTimeout, l))
		case "coingecko":
			providers = append(providers, coingecko.New(cfg.Market.FetchTimeout, l))
		default:
			l.Warn("unknown candle provider in config", applogger.String("provider", name))
		}
	}
	chain := provider.NewChain(l, providers...)
	return provider.NewCached(chain, c, cfg.Cache.CandleTTL)
}

// ProvideSentiment creates the news analyzer, or nil when news is disabled.
func ProvideSentiment(cfg *config.Config, l *applogger.Logger) repository.SentimentProvider {
	if !cfg.News.Enabled {
		return nil
	}
	return news.NewAnalyzer(news.Config{
		BaseURL:  cfg.News.BaseURL,
		APIKey:   cfg.News.APIKey,
		Limit:    cfg.News.Limit,
		Timeout:  cfg.News.Timeout,
		CacheTTL: cfg.News.CacheTTL,
	}, l)
}

// ProvideCandleArchive creates the ClickHouse archive when enabled. The
// engine runs without it; fetch failures then have no offline fallback.
func ProvideCandleArchive(cfg *config.Config, l *applogger.Logger) (repository.CandleArchive, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}

	ch := cfg.Archive.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	archive := internalrepo.NewCHCandleArchive(client)
	archive.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		_ = archive.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideKafkaProducer creates the Kafka producer when events are enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}

	k := cfg.Events.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatchSize(k.BatchSize),
		pkgkafka.WithBatchBytes(k.BatchBytes),
		pkgkafka.WithBatchTimeout(k.Linger),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.ReadTimeout),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithAsync(k.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideTradeEvents creates the position lifecycle event publisher.
func ProvideTradeEvents(producer *pkgkafka.Producer, cfg *config.Config) repository.TradeEventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaTradeEvents(producer, cfg.Events.Kafka.Topic)
}

// ProvideIndicators maps config to indicator parameters.
func ProvideIndicators(cfg *config.Config) indicator.Config {
	return indicator.Config{
		RSIPeriod:    cfg.Indicators.RSIPeriod,
		MACDFast:     cfg.Indicators.MACDFast,
		MACDSlow:     cfg.Indicators.MACDSlow,
		MACDSignal:   cfg.Indicators.MACDSignal,
		BBPeriod:     cfg.Indicators.BBPeriod,
		BBStd:        cfg.Indicators.BBStd,
		SMAPeriods:   []int{cfg.Indicators.SMAShort, cfg.Indicators.SMALong},
		ADXPeriod:    cfg.Indicators.ADXPeriod,
		ATRPeriod:    cfg.Indicators.ATRPeriod,
		VolumePeriod: cfg.Indicators.VolumePeriod,
		SRWindow:     cfg.Indicators.SRWindow,
	}
}

// ProvideClassifier creates the regime classifier.
func ProvideClassifier(cfg *config.Config) *regime.Classifier {
	return regime.New(regime.Config{
		SMAShort:               cfg.Indicators.SMAShort,
		SMALong:                cfg.Indicators.SMALong,
		SidewaysWindow:         cfg.Regime.SidewaysWindow,
		SidewaysADXThreshold:   cfg.Regime.SidewaysADXThreshold,
		SidewaysRangeThreshold: cfg.Regime.SidewaysRangeThreshold,
		VolatilityPeriod:       cfg.Regime.VolatilityPeriod,
		CrisisVolatilityRatio:  cfg.Regime.CrisisVolatilityRatio,
		CrisisSentiment:        cfg.Regime.CrisisSentiment,
		WeakTrendADX:           cfg.Regime.WeakTrendADX,
	})
}

// ProvideGenerator creates the signal generator.
func ProvideGenerator(cfg *config.Config) *signal.Generator {
	return signal.New(signal.Config{
		SMAShort:        cfg.Indicators.SMAShort,
		SMALong:         cfg.Indicators.SMALong,
		ATRMultiplier:   cfg.Trading.ATRMultiplier,
		MinRiskReward:   cfg.Trading.MinRiskReward,
		MaxDailyTrades:  cfg.Trading.MaxDailyTrades,
		DisableOpposite: cfg.Trading.DisableOpposite,
	})
}

// ProvideLedger creates the paper-trading ledger.
func ProvideLedger(cfg *config.Config) *ledger.Ledger {
	return ledger.New(ledger.Config{
		InitialBalance: cfg.Trading.InitialBalance,
		RiskPerTrade:   cfg.Trading.RiskPerTrade,
		MaxDailyTrades: cfg.Trading.MaxDailyTrades,
	})
}

// ProvideRefreshUseCase assembles the engine cycle.
func ProvideRefreshUseCase(
	cfg *config.Config,
	candles repository.CandleProvider,
	sentiment repository.SentimentProvider,
	archive repository.CandleArchive,
	events repository.TradeEventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	ind indicator.Config,
	classifier *regime.Classifier,
	generator *signal.Generator,
	led *ledger.Ledger,
) *usecase.RefreshUseCase {
	return usecase.NewRefreshUseCase(
		usecase.RefreshConfig{
			Symbol:       cfg.Market.Symbol,
			Timeframe:    repository.NormalizeTimeframe(cfg.Market.Timeframe),
			CandleLimit:  cfg.Market.CandleLimit,
			HistoryLimit: cfg.Trading.HistoryLimit,
			SMAShort:     cfg.Indicators.SMAShort,
			SMALong:      cfg.Indicators.SMALong,
		},
		usecase.Deps{
			Provider:   candles,
			Sentiment:  sentiment,
			Archive:    archive,
			Events:     events,
			Metrics:    m,
			Logger:     l,
			Indicators: ind,
			Classifier: classifier,
			Generator:  generator,
			Ledger:     led,
		},
	)
}

// ProvidePriceStream creates the live tick stream when enabled.
func ProvidePriceStream(cfg *config.Config, l *applogger.Logger) repository.PriceStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.New(
		cfg.Stream.WebSocketURL,
		cfg.Market.Symbol,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		cfg.Stream.BufferSize,
		l,
	)
}

// ProvideTickPipeline places the throttle/buffer middleware between the
// stream and the engine.
func ProvideTickPipeline(uc *usecase.RefreshUseCase, m repository.Metrics, cfg *config.Config) *mid.TickPipeline {
	return mid.NewTickPipeline(uc, m,
		mid.WithMaxRPS(cfg.Stream.MaxTicksPerSec),
		mid.WithBufferSize(cfg.Stream.BufferSize),
	)
}

// ProvideDashboardHandler creates the HTTP API handler.
func ProvideDashboardHandler(l *applogger.Logger, uc *usecase.RefreshUseCase, cfg *config.Config) *api.DashboardHandler {
	return api.NewDashboardHandler(l, uc, ratelimit.New(), cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	uc *usecase.RefreshUseCase,
	priceStream repository.PriceStream,
	pipeline *mid.TickPipeline,
	handler *api.DashboardHandler,
	archive repository.CandleArchive,
	events repository.TradeEventPublisher,
) *server.App {
	return server.New(cfg, l, uc, priceStream, pipeline, handler, archive, events)
}
