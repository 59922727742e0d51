package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.P2P.Rows != 20 {
		t.Errorf("P2P.Rows = %d, want 20", cfg.P2P.Rows)
	}
	if cfg.Defaults.Asset != "USDT" || cfg.Defaults.BuyCurrency != "GBP" || cfg.Defaults.SellCurrency != "PKR" {
		t.Errorf("unexpected defaults: %+v", cfg.Defaults)
	}
	if cfg.Defaults.PaymentMethodBuy != "Wise" || cfg.Defaults.PaymentMethodSell != "BankTransfer" {
		t.Errorf("unexpected payment methods: %+v", cfg.Defaults)
	}
	if cfg.Defaults.AmountDecimal().String() != "150" {
		t.Errorf("Defaults.Amount = %v, want 150", cfg.Defaults.Amount)
	}
	if cfg.CircuitBreaker.Enabled {
		t.Error("circuit breaker should be disabled by default")
	}
	if cfg.P2P.Timeout != 10*time.Second {
		t.Errorf("P2P.Timeout = %v", cfg.P2P.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("ARB_P2P_ROWS", "5")
	t.Setenv("INSECURE_SKIP_VERIFY", "true")
	t.Setenv("ARB_TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.P2P.Rows != 5 {
		t.Errorf("P2P.Rows = %d, want 5", cfg.P2P.Rows)
	}
	if !cfg.HTTP.InsecureSkipVerify {
		t.Error("HTTP.InsecureSkipVerify should be true")
	}
	if len(cfg.Server.TrustedProxies) != 2 || cfg.Server.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("Server.TrustedProxies = %v", cfg.Server.TrustedProxies)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("defaults:\n  asset: BTC\n  sell_currency: INR\nexchange_rate:\n  access_key: secret\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Defaults.Asset != "BTC" || cfg.Defaults.SellCurrency != "INR" {
		t.Errorf("unexpected defaults: %+v", cfg.Defaults)
	}
	if cfg.Defaults.BuyCurrency != "GBP" {
		t.Errorf("BuyCurrency = %s, want default GBP", cfg.Defaults.BuyCurrency)
	}
	if cfg.ExchangeRate.AccessKey != "secret" {
		t.Errorf("AccessKey = %q", cfg.ExchangeRate.AccessKey)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:       ServerConfig{Port: 3000},
			ExchangeRate: ExchangeRateConfig{BaseURL: "https://api.exchangerate.host"},
			P2P:          P2PConfig{BaseURL: "https://p2p.binance.com", Rows: 20},
			Defaults:     DefaultsConfig{Asset: "USDT", BuyCurrency: "GBP", SellCurrency: "PKR", Amount: 150},
			Telemetry:    TelemetryConfig{Provider: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"missing rate url", func(c *Config) { c.ExchangeRate.BaseURL = "" }, true},
		{"zero rows", func(c *Config) { c.P2P.Rows = 0 }, true},
		{"zero amount", func(c *Config) { c.Defaults.Amount = 0 }, true},
		{"missing asset", func(c *Config) { c.Defaults.Asset = "" }, true},
		{"unknown provider", func(c *Config) { c.Telemetry.Provider = "jaeger" }, true},
		{"otlp metrics endpoint", func(c *Config) { c.Telemetry.MetricsEndpoint = "http://collector:4317" }, false},
		{"metrics endpoint without scheme", func(c *Config) { c.Telemetry.MetricsEndpoint = "collector:4317" }, true},
		{"zipkin without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Provider = "zipkin"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
