// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	ExchangeRate   ExchangeRateConfig   `mapstructure:"exchange_rate"`
	P2P            P2PConfig            `mapstructure:"p2p"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Defaults       DefaultsConfig       `mapstructure:"defaults"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	LogMaxSize  int    `mapstructure:"log_max_size_mb"`
	LogBackups  int    `mapstructure:"log_max_backups"`
	LogMaxAge   int    `mapstructure:"log_max_age_days"`
}

// ServerConfig holds the inbound HTTP server settings.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	// TrustedProxies are CIDRs or addresses allowed to set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	// ErrorStatus maps pipeline failures to their HTTP status instead of 200.
	ErrorStatus bool `mapstructure:"error_status"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ExchangeRateConfig holds the fiat conversion API settings.
type ExchangeRateConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AccessKey string        `mapstructure:"access_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// P2PConfig holds the Binance P2P advertisement search settings.
type P2PConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Rows    int           `mapstructure:"rows"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HTTPConfig holds outbound transport settings shared by both upstreams.
type HTTPConfig struct {
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// CircuitBreakerConfig configures the breakers around upstream clients.
type CircuitBreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// DefaultsConfig holds request values used when a caller omits them.
type DefaultsConfig struct {
	Asset             string  `mapstructure:"asset"`
	BuyCurrency       string  `mapstructure:"buy_currency"`
	SellCurrency      string  `mapstructure:"sell_currency"`
	Amount            float64 `mapstructure:"amount"`
	PaymentMethodBuy  string  `mapstructure:"payment_method_buy"`
	PaymentMethodSell string  `mapstructure:"payment_method_sell"`
}

// AmountDecimal returns the default amount as decimal.Decimal.
func (c *DefaultsConfig) AmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Amount)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	Provider       string  `mapstructure:"provider"`
	Endpoint       string  `mapstructure:"endpoint"`
	SampleRate     float64 `mapstructure:"sample_rate"`
	PrometheusPort int     `mapstructure:"prometheus_port"`
	// MetricsEndpoint is an OTLP/gRPC collector URL metrics are pushed to
	// alongside Prometheus. Empty disables the push.
	MetricsEndpoint string `mapstructure:"metrics_endpoint"`
	MetricsInsecure bool   `mapstructure:"metrics_insecure"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_file", "ARB_LOG_FILE", "LOG_FILE")

	// Server
	v.BindEnv("server.port", "ARB_PORT", "PORT")
	v.BindEnv("server.requests_per_minute", "ARB_REQUESTS_PER_MINUTE")
	v.BindEnv("server.error_status", "ARB_ERROR_STATUS")
	v.BindEnv("server.trusted_proxies", "ARB_TRUSTED_PROXIES")

	// Upstreams
	v.BindEnv("exchange_rate.base_url", "ARB_EXCHANGE_RATE_URL", "EXCHANGE_RATE_URL")
	v.BindEnv("exchange_rate.access_key", "ARB_EXCHANGE_RATE_KEY", "EXCHANGE_RATE_ACCESS_KEY")
	v.BindEnv("p2p.base_url", "ARB_P2P_URL", "BINANCE_P2P_URL")
	v.BindEnv("p2p.rows", "ARB_P2P_ROWS")
	v.BindEnv("http.insecure_skip_verify", "ARB_INSECURE_SKIP_VERIFY", "INSECURE_SKIP_VERIFY")

	// Circuit breaker
	v.BindEnv("circuit_breaker.enabled", "ARB_CB_ENABLED")

	// Defaults
	v.BindEnv("defaults.asset", "ARB_DEFAULT_ASSET")
	v.BindEnv("defaults.buy_currency", "ARB_DEFAULT_BUY_CURRENCY")
	v.BindEnv("defaults.sell_currency", "ARB_DEFAULT_SELL_CURRENCY")
	v.BindEnv("defaults.amount", "ARB_DEFAULT_AMOUNT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.provider", "ARB_OTEL_PROVIDER")
	v.BindEnv("telemetry.endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.metrics_endpoint", "ARB_OTEL_METRICS_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
	v.BindEnv("telemetry.metrics_insecure", "ARB_OTEL_METRICS_INSECURE")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "p2p-arbitrage")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_max_size_mb", 50)
	v.SetDefault("app.log_max_backups", 3)
	v.SetDefault("app.log_max_age_days", 14)

	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.requests_per_minute", 60)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.error_status", false)
	v.SetDefault("server.trusted_proxies", []string{})

	// Upstream defaults
	v.SetDefault("exchange_rate.base_url", "https://api.exchangerate.host")
	v.SetDefault("exchange_rate.timeout", "10s")
	v.SetDefault("p2p.base_url", "https://p2p.binance.com")
	v.SetDefault("p2p.rows", 20)
	v.SetDefault("p2p.timeout", "10s")
	v.SetDefault("http.insecure_skip_verify", false)

	// Circuit breaker defaults
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.max_failures", 5)
	v.SetDefault("circuit_breaker.open_timeout", "30s")

	// Request defaults
	v.SetDefault("defaults.asset", "USDT")
	v.SetDefault("defaults.buy_currency", "GBP")
	v.SetDefault("defaults.sell_currency", "PKR")
	v.SetDefault("defaults.amount", 150)
	v.SetDefault("defaults.payment_method_buy", "Wise")
	v.SetDefault("defaults.payment_method_sell", "BankTransfer")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "p2p-arbitrage")
	v.SetDefault("telemetry.provider", "console")
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.ExchangeRate.BaseURL == "" {
		return fmt.Errorf("exchange_rate.base_url is required")
	}
	if c.P2P.BaseURL == "" {
		return fmt.Errorf("p2p.base_url is required")
	}
	if c.P2P.Rows <= 0 {
		return fmt.Errorf("p2p.rows must be positive, got %d", c.P2P.Rows)
	}
	if c.Defaults.Amount <= 0 {
		return fmt.Errorf("defaults.amount must be positive")
	}
	if c.Defaults.Asset == "" || c.Defaults.BuyCurrency == "" || c.Defaults.SellCurrency == "" {
		return fmt.Errorf("defaults.asset, defaults.buy_currency and defaults.sell_currency are required")
	}
	switch c.Telemetry.Provider {
	case "", "console", "zipkin", "otlp-grpc", "otlp-http", "none":
	default:
		return fmt.Errorf("unknown telemetry.provider: %s", c.Telemetry.Provider)
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" &&
		c.Telemetry.Provider != "console" && c.Telemetry.Provider != "none" {
		return fmt.Errorf("telemetry.endpoint is required for provider %s", c.Telemetry.Provider)
	}
	if c.Telemetry.MetricsEndpoint != "" {
		u, err := url.Parse(c.Telemetry.MetricsEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("telemetry.metrics_endpoint must be an http(s) URL, got %q", c.Telemetry.MetricsEndpoint)
		}
	}
	return nil
}
