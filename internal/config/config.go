// Package config loads service configuration from .env, YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Data      DataConfig      `mapstructure:"data"`
}

type HTTPConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig enables the listing view cache when Address is set.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (r RedisConfig) Enabled() bool { return r.Address != "" }

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	ReassessSchedule string `mapstructure:"reassess_schedule"`
}

type DataConfig struct {
	ListingsPath string `mapstructure:"listings_path"`
	RulesPath    string `mapstructure:"rules_path"`
	SeedOnStart  bool   `mapstructure:"seed_on_start"`
}

// legacyEnv maps the flat variable names the service has always read.
var legacyEnv = map[string]string{
	"http.address":       "API_ADDRESS",
	"database.path":      "DB_PATH",
	"data.listings_path": "LISTINGS_PATH",
	"data.rules_path":    "RULES_PATH",
}

// Load reads .env (if any), configs/config.yaml (if any) and environment
// overrides such as HTTP_ADDRESS or REDIS_ADDRESS.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New(), []string{"./configs", "."})
}

func load(v *viper.Viper, paths []string) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.path", "data/auctions.db")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reassess_schedule", "0 0 6,18 * * *")
	v.SetDefault("data.listings_path", "data/listings.json")
	v.SetDefault("data.rules_path", "configs/rules.json")
	v.SetDefault("data.seed_on_start", false)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Address) == "" {
		return errors.New("http.address is required")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	if c.Scheduler.Enabled && strings.TrimSpace(c.Scheduler.ReassessSchedule) == "" {
		return errors.New("scheduler.reassess_schedule is required when the scheduler is enabled")
	}
	if c.Redis.Enabled() && c.Redis.TTL <= 0 {
		return errors.New("redis.ttl must be positive")
	}
	return nil
}
