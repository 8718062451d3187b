package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"lootradar/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	CheapShark CheapSharkConfig `mapstructure:"cheapshark"`
	Stores     StoresConfig     `mapstructure:"stores"`
	Currency   CurrencyConfig   `mapstructure:"currency"`
	Server     ServerConfig     `mapstructure:"server"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// CheapSharkConfig describes how the deals API is reached.
// A zero RequestTimeout leaves the transport default in place.
type CheapSharkConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RedirectBase   string        `mapstructure:"redirect_base"`
	SearchLimit    int           `mapstructure:"search_limit"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// StoresConfig tunes the store directory.
type StoresConfig struct {
	Placeholder string `mapstructure:"placeholder"`
}

// CurrencyConfig selects the currency used when none is requested.
type CurrencyConfig struct {
	Default string `mapstructure:"default"`
}

// ServerConfig covers the dashboard HTTP server.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// WatchConfig governs the watch loop cadence and threshold.
type WatchConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
	MinSavingsPct int           `mapstructure:"min_savings_pct"`
}

// AlertingConfig defines where watch notifications go.
type AlertingConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram bot credentials.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	ChartWidth  int `mapstructure:"chart_width"`
	ChartHeight int `mapstructure:"chart_height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LOOTRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "lootradar")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("cheapshark.base_url", "https://www.cheapshark.com/api/1.0")
	v.SetDefault("cheapshark.redirect_base", "https://www.cheapshark.com/redirect")
	v.SetDefault("cheapshark.search_limit", 12)
	v.SetDefault("cheapshark.request_timeout", "0s")
	v.SetDefault("cheapshark.user_agent", "")

	v.SetDefault("stores.placeholder", "Store")

	v.SetDefault("currency.default", "EUR")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("watch.interval", "1h")
	v.SetDefault("watch.align_to_bucket", false)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.min_savings_pct", 50)

	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CheapShark.BaseURL) == "" {
		return fmt.Errorf("cheapshark.base_url must be set")
	}
	if c.CheapShark.SearchLimit <= 0 || c.CheapShark.SearchLimit > MaxSearchLimit {
		return fmt.Errorf("cheapshark.search_limit must be between 1 and %d", MaxSearchLimit)
	}
	if c.CheapShark.RequestTimeout < 0 {
		return fmt.Errorf("cheapshark.request_timeout cannot be negative")
	}
	switch strings.ToUpper(strings.TrimSpace(c.Currency.Default)) {
	case "EUR", "USD":
	default:
		return fmt.Errorf("currency.default must be EUR or USD, got %q", c.Currency.Default)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Watch.MinSavingsPct < 0 || c.Watch.MinSavingsPct > 100 {
		return fmt.Errorf("watch.min_savings_pct must be between 0 and 100")
	}
	if c.Export.ChartWidth <= 0 || c.Export.ChartHeight <= 0 {
		return fmt.Errorf("export chart dimensions must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be set when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be set when telegram is enabled")
		}
	}
	return nil
}

// MaxSearchLimit caps how many titles a single search may request.
const MaxSearchLimit = 60

// ResolveLimit returns either the caller's override or the configured default.
func (c *Config) ResolveLimit(override int) int {
	if override > 0 && override <= MaxSearchLimit {
		return override
	}
	return c.CheapShark.SearchLimit
}
