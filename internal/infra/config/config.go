package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	API       APISettings       `mapstructure:"api"`
	Cache     CacheSettings     `mapstructure:"cache"`
	Resolver  ResolverSettings  `mapstructure:"resolver"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// APISettings locates the admin API the console talks to.
type APISettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheSettings tunes the query cache refetch behaviour.
type CacheSettings struct {
	RefetchTimeout time.Duration `mapstructure:"refetch_timeout"`
}

// ResolverSettings tunes target-name resolution memoization.
type ResolverSettings struct {
	MemoTTL time.Duration `mapstructure:"memo_ttl"`
}

type TelemetrySettings struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("SUBHUB")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"api.base_url",
		"api.timeout",
		"cache.refetch_timeout",
		"resolver.memo_ttl",
		"telemetry.metrics_addr",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "subhub-console")
	v.SetDefault("app.env", "development")

	v.SetDefault("api.base_url", "http://localhost:8080/bison/api")
	v.SetDefault("api.timeout", "15s")

	v.SetDefault("cache.refetch_timeout", "10s")

	v.SetDefault("resolver.memo_ttl", "15m")

	v.SetDefault("telemetry.metrics_addr", "")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
