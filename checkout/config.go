package checkout

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	APIVersion     = "v71"
	DefaultTimeout = 60 * time.Second

	testBaseURL = "https://checkout-test.adyen.com"
)

// Environment selects the processor's test or live endpoints.
type Environment struct {
	Live bool
	// URLPrefix is the merchant-specific live endpoint prefix.
	URLPrefix string
}

var TestEnvironment = Environment{}

func LiveEnvironment(urlPrefix string) Environment {
	return Environment{Live: true, URLPrefix: urlPrefix}
}

// BaseURL returns the root every endpoint is built from.
func (e Environment) BaseURL() (string, error) {
	if !e.Live {
		return testBaseURL, nil
	}
	if e.URLPrefix == "" {
		return "", fmt.Errorf("live environment requires a url prefix")
	}
	return fmt.Sprintf("https://%s-checkout-live.adyenpayments.com/checkout", e.URLPrefix), nil
}

func (e Environment) String() string {
	if e.Live {
		return "live"
	}
	return "test"
}

// Config is a configuration for the checkout gateway
type Config struct {
	Environment Environment
	APIKey      string
	Timeout     time.Duration
	// BaseURL overrides the environment's base URL (stubs, proxies).
	BaseURL string
	// HTTPClient is used as is when set; Timeout is ignored then.
	HTTPClient *http.Client
}

func DefaultConfig() *Config {
	return &Config{
		Environment: TestEnvironment,
		Timeout:     DefaultTimeout,
	}
}

// ConfigFromEnv reads CHECKOUT_API_KEY, CHECKOUT_ENVIRONMENT (test|live),
// CHECKOUT_LIVE_URL_PREFIX, CHECKOUT_TIMEOUT and CHECKOUT_BASE_URL.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.APIKey = os.Getenv("CHECKOUT_API_KEY")
	cfg.BaseURL = os.Getenv("CHECKOUT_BASE_URL")

	switch env := strings.ToLower(getenv("CHECKOUT_ENVIRONMENT", "test")); env {
	case "test":
	case "live":
		cfg.Environment = LiveEnvironment(os.Getenv("CHECKOUT_LIVE_URL_PREFIX"))
	default:
		return nil, fmt.Errorf("unsupported CHECKOUT_ENVIRONMENT=%s", env)
	}

	if v := os.Getenv("CHECKOUT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing CHECKOUT_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
