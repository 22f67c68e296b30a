package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/internal/source/httpsource"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "CATALOG_CONFIG_FILE"
	envPrefix         = "CATALOG"
)

type Source struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (s Source) Validate() error {
	return s.HTTPSource().Validate()
}

// HTTPSource converts the section into the remote client configuration.
func (s Source) HTTPSource() httpsource.Config {
	return httpsource.Config{BaseURL: s.BaseURL, Timeout: s.Timeout}
}

type Catalog struct {
	SearchCandidateLimit  int  `mapstructure:"search_candidate_limit"`
	ReuseSearchCandidates bool `mapstructure:"reuse_search_candidates"`
}

func (c Catalog) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SearchCandidateLimit, validation.Required, validation.Min(1), validation.Max(catalog.MaxLimit)),
	)
}

// Cache configures the result cache. A zero capacity selects the unbounded backend,
// which ignores every other key of the section.
type Cache struct {
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	TTL                time.Duration `mapstructure:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
	EarlyRefresh       EarlyRefresh  `mapstructure:"early_refresh"`
}

// EarlyRefresh lets the bounded cache refresh hot entries in the background before
// they expire. The durations only apply when Enabled is set.
type EarlyRefresh struct {
	Enabled             bool          `mapstructure:"enabled"`
	MinAsyncRefreshTime time.Duration `mapstructure:"min_async_refresh_time"`
	MaxAsyncRefreshTime time.Duration `mapstructure:"max_async_refresh_time"`
	SyncRefreshTime     time.Duration `mapstructure:"sync_refresh_time"`
	RetryBaseDelay      time.Duration `mapstructure:"retry_base_delay"`
}

func (c Cache) Validate() error {
	return c.CacheConfig().Validate()
}

// CacheConfig converts the section into a cache.Config.
func (c Cache) CacheConfig() cache.Config {
	if c.Capacity == 0 {
		return cache.UnboundedConfig()
	}
	cfg := cache.DefaultConfig()
	cfg.Capacity = c.Capacity
	cfg.NumShards = c.NumShards
	cfg.TTL = c.TTL
	cfg.EvictionPercentage = c.EvictionPercentage
	cfg.EvictionInterval = c.EvictionInterval
	if c.EarlyRefresh.Enabled {
		cfg.EarlyRefresh = &cache.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}
	return cfg
}

type Config struct {
	LogLevel       string  `mapstructure:"log_level"`
	HTTPServerAddr string  `mapstructure:"http_server_addr"`
	Source         Source  `mapstructure:"source"`
	Catalog        Catalog `mapstructure:"catalog"`
	Cache          Cache   `mapstructure:"cache"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.By(validLevel)),
		validation.Field(&c.HTTPServerAddr, validation.Required),
		validation.Field(&c.Source),
		validation.Field(&c.Catalog),
		validation.Field(&c.Cache),
	)
}

func validLevel(value any) error {
	s, _ := value.(string)
	if _, err := zerolog.ParseLevel(s); err != nil {
		return errors.New("must be a valid log level")
	}
	return nil
}

// Level returns the configured log level. Validate guarantees it parses.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Defaults returns the configuration used when no file, env or flag overrides a key.
func Defaults() Config {
	cacheDefaults := cache.DefaultConfig()
	return Config{
		LogLevel:       zerolog.InfoLevel.String(),
		HTTPServerAddr: ":8080",
		Source: Source{
			BaseURL: httpsource.DefaultBaseURL,
			Timeout: httpsource.DefaultTimeout,
		},
		Catalog: Catalog{
			SearchCandidateLimit:  catalog.MaxLimit,
			ReuseSearchCandidates: true,
		},
		Cache: Cache{
			Capacity:           cacheDefaults.Capacity,
			NumShards:          cacheDefaults.NumShards,
			TTL:                cacheDefaults.TTL,
			EvictionPercentage: cacheDefaults.EvictionPercentage,
			EvictionInterval:   cacheDefaults.EvictionInterval,
			EarlyRefresh: EarlyRefresh{
				MinAsyncRefreshTime: 10 * time.Minute,
				MaxAsyncRefreshTime: 30 * time.Minute,
				SyncRefreshTime:     time.Hour,
				RetryBaseDelay:      time.Second,
			},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, CATALOG_*
// environment variables and command line flags, in increasing precedence.
//
// The file is named by --config or, when set, the CATALOG_CONFIG_FILE variable.
func Load(args []string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	flags := pflag.NewFlagSet("catalogd", pflag.ContinueOnError)
	configFile := flags.String("config", "", "config file")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("http-addr", "", "HTTP listen address")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if err := bindFlag(v, flags, "log_level", "log-level"); err != nil {
		return Config{}, err
	}
	if err := bindFlag(v, flags, "http_server_addr", "http-addr"); err != nil {
		return Config{}, err
	}

	if path := configFilepath(*configFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bindFlag makes an explicitly set flag override key. Unset flags leave key alone.
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) error {
	flag := flags.Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	return v.BindPFlag(key, flag)
}

func configFilepath(flagValue string) string {
	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		return env
	}
	return flagValue
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("http_server_addr", d.HTTPServerAddr)
	v.SetDefault("source.base_url", d.Source.BaseURL)
	v.SetDefault("source.timeout", d.Source.Timeout)
	v.SetDefault("catalog.search_candidate_limit", d.Catalog.SearchCandidateLimit)
	v.SetDefault("catalog.reuse_search_candidates", d.Catalog.ReuseSearchCandidates)
	v.SetDefault("cache.capacity", d.Cache.Capacity)
	v.SetDefault("cache.num_shards", d.Cache.NumShards)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.eviction_percentage", d.Cache.EvictionPercentage)
	v.SetDefault("cache.eviction_interval", d.Cache.EvictionInterval)
	v.SetDefault("cache.early_refresh.enabled", d.Cache.EarlyRefresh.Enabled)
	v.SetDefault("cache.early_refresh.min_async_refresh_time", d.Cache.EarlyRefresh.MinAsyncRefreshTime)
	v.SetDefault("cache.early_refresh.max_async_refresh_time", d.Cache.EarlyRefresh.MaxAsyncRefreshTime)
	v.SetDefault("cache.early_refresh.sync_refresh_time", d.Cache.EarlyRefresh.SyncRefreshTime)
	v.SetDefault("cache.early_refresh.retry_base_delay", d.Cache.EarlyRefresh.RetryBaseDelay)
}
