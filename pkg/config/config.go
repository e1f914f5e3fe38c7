package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Market struct {
		Symbol         string        `yaml:"symbol" default:"BTCUSDT"`
		Timeframe      string        `yaml:"timeframe" default:"1h"`
		CandleLimit    int           `yaml:"candle_limit" default:"200"`
		UpdateInterval time.Duration `yaml:"update_interval" default:"60s"`
		BinanceHosts   []string      `yaml:"binance_hosts"`
		Providers      []string      `yaml:"providers"`
		FetchTimeout   time.Duration `yaml:"fetch_timeout" default:"30s"`
	} `yaml:"market"`
	Trading struct {
		InitialBalance  float64 `yaml:"initial_balance" default:"1000.0"`
		RiskPerTrade    float64 `yaml:"risk_per_trade" default:"0.02"`
		MaxDailyTrades  int     `yaml:"max_daily_trades" default:"3"`
		MinRiskReward   float64 `yaml:"min_risk_reward" default:"1.5"`
		ATRMultiplier   float64 `yaml:"atr_multiplier" default:"2.0"`
		HistoryLimit    int     `yaml:"history_limit" default:"5"`
		DisableOpposite bool    `yaml:"disable_opposite"`
	} `yaml:"trading"`
	Indicators struct {
		RSIPeriod    int     `yaml:"rsi_period" default:"14"`
		MACDFast     int     `yaml:"macd_fast" default:"12"`
		MACDSlow     int     `yaml:"macd_slow" default:"26"`
		MACDSignal   int     `yaml:"macd_signal" default:"9"`
		BBPeriod     int     `yaml:"bb_period" default:"20"`
		BBStd        float64 `yaml:"bb_std" default:"2.0"`
		SMAShort     int     `yaml:"sma_short" default:"20"`
		SMALong      int     `yaml:"sma_long" default:"50"`
		ADXPeriod    int     `yaml:"adx_period" default:"14"`
		ATRPeriod    int     `yaml:"atr_period" default:"14"`
		VolumePeriod int     `yaml:"volume_period" default:"20"`
		SRWindow     int     `yaml:"sr_window" default:"50"`
	} `yaml:"indicators"`
	Regime struct {
		SidewaysWindow         int     `yaml:"sideways_window" default:"20"`
		SidewaysADXThreshold   float64 `yaml:"sideways_adx_threshold" default:"20"`
		SidewaysRangeThreshold float64 `yaml:"sideways_range_threshold" default:"0.5"`
		VolatilityPeriod       int     `yaml:"volatility_period" default:"20"`
		CrisisVolatilityRatio  float64 `yaml:"crisis_volatility_ratio" default:"2.0"`
		CrisisSentiment        float64 `yaml:"crisis_sentiment_threshold" default:"-0.3"`
		WeakTrendADX           float64 `yaml:"weak_trend_adx" default:"20"`
	} `yaml:"regime"`
	News struct {
		Enabled   bool          `yaml:"enabled" default:"true"`
		BaseURL   string        `yaml:"base_url" default:"https://min-api.cryptocompare.com/data/v2/news/"`
		APIKey    string        `yaml:"api_key"`
		Limit     int           `yaml:"limit" default:"10"`
		Timeout   time.Duration `yaml:"timeout" default:"10s"`
		CacheTTL  time.Duration `yaml:"cache_ttl" default:"5m"`
	} `yaml:"news"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://stream.binance.com:9443/ws"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		MaxTicksPerSec int           `yaml:"max_ticks_per_sec" default:"10"`
		BufferSize     int           `yaml:"buffer_size" default:"1000"`
	} `yaml:"stream"`
	Cache struct {
		CandleTTL time.Duration `yaml:"candle_ttl" default:"30s"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Archive struct {
		Enabled    bool `yaml:"enabled"`
		ClickHouse struct {
			Host             string        `yaml:"host" default:"localhost"`
			Port             int           `yaml:"port" default:"9000"`
			Database         string        `yaml:"database" default:"tradepulse"`
			User             string        `yaml:"user" default:"default"`
			Password         string        `yaml:"password"`
			UseHTTP          bool          `yaml:"use_http"`
			AsyncInsert      bool          `yaml:"async_insert"`
			WaitForAsync     bool          `yaml:"wait_for_async_insert"`
			DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		} `yaml:"clickhouse"`
	} `yaml:"archive"`
	Events struct {
		Enabled bool `yaml:"enabled"`
		Kafka   struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"trade-events"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
	} `yaml:"events"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity" default:"5"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"2"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file. Zero-valued fields are
// filled with the documented defaults after parsing.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	c.applyDerivedDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// Default returns a config with every field at its documented default.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	c.applyDerivedDefaults()
	return &c
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOL"); v != "" {
		c.Market.Symbol = v
	}
	if v := os.Getenv("TIMEFRAME"); v != "" {
		c.Market.Timeframe = v
	}
	if v := os.Getenv("BINANCE_BASE_URLS"); v != "" {
		c.Market.BinanceHosts = strings.Split(v, ",")
	}
	if v := os.Getenv("USE_PROVIDER"); v != "" {
		c.Market.Providers = []string{strings.ToLower(v)}
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

// applyDerivedDefaults fills slice defaults the `default` tag cannot express.
func (c *Config) applyDerivedDefaults() {
	if len(c.Market.BinanceHosts) == 0 {
		c.Market.BinanceHosts = []string{
			"https://data-api.binance.vision/api/v3",
			"https://api.binance.com/api/v3",
		}
	}
	if len(c.Market.Providers) == 0 {
		c.Market.Providers = []string{"binance", "coingecko"}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Market.Symbol == "" {
		return fmt.Errorf("market.symbol is required")
	}
	if c.Market.CandleLimit <= 0 {
		return fmt.Errorf("market.candle_limit must be positive")
	}
	if c.Trading.RiskPerTrade <= 0 || c.Trading.RiskPerTrade >= 1 {
		return fmt.Errorf("trading.risk_per_trade must be in (0, 1), got %v", c.Trading.RiskPerTrade)
	}
	if c.Trading.MinRiskReward < 1 {
		return fmt.Errorf("trading.min_risk_reward must be >= 1, got %v", c.Trading.MinRiskReward)
	}
	if c.Indicators.SMAShort >= c.Indicators.SMALong {
		return fmt.Errorf("indicators.sma_short must be < sma_long")
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be < macd_slow")
	}
	if c.Events.Enabled && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers cannot be empty when events are enabled")
	}
	if c.Archive.Enabled && c.Archive.ClickHouse.Host == "" {
		return fmt.Errorf("archive.clickhouse.host is required when archive is enabled")
	}
	return nil
}
