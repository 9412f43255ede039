package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freegames/claimer/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration is the explicit configuration value threaded through every
// component constructor. There is no ambient global configuration state.
type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Store      StoreConfig      `validate:"required"`
	Account    AccountConfig
	Browser    BrowserConfig
	Checkout   CheckoutConfig `validate:"required"`
	Solver     SolverConfig
	Runtime    RuntimeConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// StoreConfig carries the storefront endpoints and the locale used when
// fetching the promotions feed.
type StoreConfig struct {
	Locale          string `validate:"required"`
	FeedURL         string `mapstructure:"feed_url" validate:"required,url"`
	LandingURL      string `mapstructure:"landing_url" validate:"required,url"`
	LoginURL        string `mapstructure:"login_url" validate:"required,url"`
	CartURL         string `mapstructure:"cart_url" validate:"required,url"`
	CartSuccessURL  string `mapstructure:"cart_success_url" validate:"required,url"`
	ProductBaseURL  string `mapstructure:"product_base_url" validate:"required,url"`
	BundleBaseURL   string `mapstructure:"bundle_base_url" validate:"required,url"`
	OrderHistoryURL string `mapstructure:"order_history_url" validate:"required,url"`
}

type AccountConfig struct {
	Email    string
	Password string
}

type BrowserConfig struct {
	Headless          bool
	UserDataDir       string        `mapstructure:"user_data_dir"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
}

// CheckoutConfig holds the knobs of the checkout orchestration: the cart
// reconciliation budget, the bounded retry counts and the dirty-cart gate.
type CheckoutConfig struct {
	// ReconcileBudget bounds the number of cart reconciliation passes.
	ReconcileBudget int `mapstructure:"reconcile_budget" validate:"required,min=1"`
	// ReconcileWait is how long to let the cart re-render between passes.
	ReconcileWait time.Duration `mapstructure:"reconcile_wait"`
	// CartAttempts bounds the reload-and-retry loop of the cart checkout
	// sequence. The upstream behavior retried without bound.
	CartAttempts int `mapstructure:"cart_attempts" validate:"required,min=1"`
	// StrictCartGate aborts the cart checkout when reconciliation exhausts
	// its budget with paid items still present. When false the exhaustion
	// is logged and checkout proceeds anyway.
	StrictCartGate bool `mapstructure:"strict_cart_gate"`
	// BatchAttempts bounds the top-level retry of the whole claim batch.
	// Only timeout-class failures are retried.
	BatchAttempts int `mapstructure:"batch_attempts" validate:"required,min=1"`
	// SuccessWait bounds the wait for the post-purchase success URL.
	SuccessWait time.Duration `mapstructure:"success_wait"`
}

// SolverConfig configures the external challenge-solving client. The client
// is constructed once from these values; the vendor library is never patched
// at runtime.
type SolverConfig struct {
	Enabled bool
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string
	// WaitTimeout bounds how long a single challenge may block checkout.
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

type RuntimeConfig struct {
	Dir            string
	ScreenshotsDir string `mapstructure:"screenshots_dir"`
}

func NewConfig() (*Configuration, error) {
	// Optional .env for local development, same keys as the environment.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/claimer")

	v.SetEnvPrefix("CLAIMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("logging.level", string(types.LogLevelInfo))

	v.SetDefault("store.locale", "en-US")
	v.SetDefault("store.feed_url", "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions")
	v.SetDefault("store.landing_url", "https://store.epicgames.com/en-US/free-games")
	v.SetDefault("store.login_url", "https://www.epicgames.com/id/login?lang=en-US&noHostRedirect=true&redirectUrl=https://store.epicgames.com/en-US/free-games")
	v.SetDefault("store.cart_url", "https://store.epicgames.com/en-US/cart")
	v.SetDefault("store.cart_success_url", "https://store.epicgames.com/en-US/cart/success")
	v.SetDefault("store.product_base_url", "https://store.epicgames.com/en-US/p/")
	v.SetDefault("store.bundle_base_url", "https://store.epicgames.com/en-US/bundles/")
	v.SetDefault("store.order_history_url", "https://www.epicgames.com/account/v2/payment/ajaxGetOrderHistory")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_data_dir", "volumes/user_data")
	v.SetDefault("browser.navigation_timeout", "45s")

	v.SetDefault("checkout.reconcile_budget", 30)
	v.SetDefault("checkout.reconcile_wait", "2s")
	v.SetDefault("checkout.cart_attempts", 3)
	v.SetDefault("checkout.strict_cart_gate", true)
	v.SetDefault("checkout.batch_attempts", 2)
	v.SetDefault("checkout.success_wait", "30s")

	v.SetDefault("solver.enabled", false)
	v.SetDefault("solver.base_url", "https://aihubmix.com")
	v.SetDefault("solver.model", "gemini-2.5-pro")
	v.SetDefault("solver.wait_timeout", "15m")

	v.SetDefault("runtime.dir", "volumes/runtime")
	v.SetDefault("runtime.screenshots_dir", "volumes/screenshots")
}

func (c Configuration) Validate() error {
	if !c.Logging.Level.Validate() {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development and
// tests. Paths stay relative so suites can redirect them to temp dirs.
func GetDefaultConfig() *Configuration {
	v := viper.New()
	setDefaults(v)

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		panic(err)
	}
	config.Deployment.Mode = types.ModeLocal
	config.Logging.Level = types.LogLevelDebug
	return &config
}
