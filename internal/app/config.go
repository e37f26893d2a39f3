package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration, loadable from
// environment variables (FIT_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (FIT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	BaseURL      string `default:"http://localhost:8080" usage:"Public application URL for payment callbacks" flag:"base-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (FIT_API_KEY_PEPPER)" flag:"api-key-pepper"`
	Checkout     CheckoutConfig
	MercadoPago  MercadoPagoConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// CheckoutConfig controls pricing policy.
type CheckoutConfig struct {
	ShippingFee string `default:"15.00" usage:"Flat shipping fee charged per order" flag:"shipping-fee"`
	Currency    string `default:"BRL" usage:"ISO currency code sent to the payment provider"`
}

// ShippingFeeDecimal parses the configured shipping fee.
func (c CheckoutConfig) ShippingFeeDecimal() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid shipping fee %q", c.ShippingFee)
	}
	if fee.IsNegative() {
		return decimal.Zero, errors.Errorf("shipping fee %q must not be negative", c.ShippingFee)
	}
	return fee, nil
}

// MercadoPagoConfig holds the payment provider credentials.
type MercadoPagoConfig struct {
	AccessToken string `usage:"Mercado Pago access token (FIT_MERCADO_PAGO_ACCESS_TOKEN)" flag:"mp-access-token"`
	BaseURL     string `default:"https://api.mercadopago.com" usage:"Mercado Pago API endpoint" flag:"mp-base-url"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "FIT",
		Files:     []string{"config.yaml", "/etc/powerfit/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set FIT_DATABASE_URL or DATABASE_URL")
	}
	if cfg.MercadoPago.AccessToken == "" {
		return nil, errors.New("Mercado Pago access token is required: set FIT_MERCADO_PAGO_ACCESS_TOKEN")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's FIT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
