// Package config loads application configuration from file, environment
// variables, and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"tickflash/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Logging logging.Config `mapstructure:"logging"`
	Stream  StreamConfig   `mapstructure:"stream"`
	Watch   WatchConfig    `mapstructure:"watch"`
	Engine  EngineConfig   `mapstructure:"engine"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Export  ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// StreamConfig governs the feed websocket connection.
type StreamConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	MaxReconnectDelay time.Duration `mapstructure:"max_reconnect_delay"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	Buffer            int           `mapstructure:"buffer"`
}

// WatchConfig governs outbound watch requests.
type WatchConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Debounce       time.Duration `mapstructure:"debounce"`
	Provider       string        `mapstructure:"provider"`
}

// EngineConfig bounds in-memory state.
type EngineConfig struct {
	EventCap    int `mapstructure:"event_cap"`
	BucketLimit int `mapstructure:"bucket_limit"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Listen    string `mapstructure:"listen"`
	Namespace string `mapstructure:"namespace"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	ChartWidth  int    `mapstructure:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height"`
	MaxRows     int    `mapstructure:"max_rows"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TICKFLASH")
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
	v.SetDefault("app.name", "tickflash")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("stream.endpoint", "ws://127.0.0.1:8037/stream")
	v.SetDefault("stream.reconnect_delay", "1s")
	v.SetDefault("stream.max_reconnect_delay", "30s")
	v.SetDefault("stream.ping_interval", "20s")
	v.SetDefault("stream.read_timeout", "60s")
	v.SetDefault("stream.write_timeout", "10s")
	v.SetDefault("stream.buffer", 1024)

	v.SetDefault("watch.base_url", "http://127.0.0.1:8037")
	v.SetDefault("watch.request_timeout", "15s")
	v.SetDefault("watch.debounce", "350ms")
	v.SetDefault("watch.provider", "tradier")

	v.SetDefault("engine.event_cap", 800)
	v.SetDefault("engine.bucket_limit", 12)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9108")
	v.SetDefault("metrics.namespace", "tickflash")

	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)
	v.SetDefault("export.max_rows", 100000)
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
	if c.Stream.Endpoint == "" {
		return fmt.Errorf("stream.endpoint must be set")
	}
	if c.Watch.BaseURL == "" {
		return fmt.Errorf("watch.base_url must be set")
	}
	if c.Engine.EventCap <= 0 {
		return fmt.Errorf("engine.event_cap must be greater than zero")
	}
	if c.Engine.BucketLimit <= 0 {
		return fmt.Errorf("engine.bucket_limit must be greater than zero")
	}
	if c.Export.MaxRows <= 0 {
		return fmt.Errorf("export.max_rows must be greater than zero")
	}
	return nil
}
