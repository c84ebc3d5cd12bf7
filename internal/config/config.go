package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Indexer  IndexerConfig  `mapstructure:"indexer"`
	Listing  ListingConfig  `mapstructure:"listing"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type ChainConfig struct {
	RPCURL          string        `mapstructure:"rpc_url"`
	ContractAddress string        `mapstructure:"contract_address"`
	ChainID         uint64        `mapstructure:"chain_id"`     // 0 accepts whatever the node reports
	CallTimeout     time.Duration `mapstructure:"call_timeout"` // seconds
}

// Contract returns the configured contract address.
func (c *ChainConfig) Contract() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds Redis TTLs, all in seconds.
type CacheConfig struct {
	EnvelopeTTL time.Duration `mapstructure:"envelope_ttl"`
	ViewerTTL   time.Duration `mapstructure:"viewer_ttl"`
	LimitsTTL   time.Duration `mapstructure:"limits_ttl"`
}

type IndexerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"` // seconds
	Window   int           `mapstructure:"window"`   // newest ids refreshed on every run
}

type ListingConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultContractAddress is the first contract deployed on a fresh local hardhat node.
const DefaultContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

func NewConfig() (*Config, error) {
	return Load(".", "./config")
}

// Load reads config.yaml from the first of paths that has one. Environment
// variables override file values, e.g. CHAIN_RPC_URL for chain.rpc_url.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Convert timeouts to durations
	cfg.Chain.CallTimeout = cfg.Chain.CallTimeout * time.Second
	cfg.Cache.EnvelopeTTL = cfg.Cache.EnvelopeTTL * time.Second
	cfg.Cache.ViewerTTL = cfg.Cache.ViewerTTL * time.Second
	cfg.Cache.LimitsTTL = cfg.Cache.LimitsTTL * time.Second
	cfg.Indexer.Interval = cfg.Indexer.Interval * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Red Envelope Service")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.env", "development")

	v.SetDefault("chain.rpc_url", "http://127.0.0.1:8545")
	v.SetDefault("chain.contract_address", DefaultContractAddress)
	v.SetDefault("chain.call_timeout", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("cache.envelope_ttl", 10)
	v.SetDefault("cache.viewer_ttl", 10)
	v.SetDefault("cache.limits_ttl", 3600)

	v.SetDefault("indexer.enabled", true)
	v.SetDefault("indexer.interval", 10)
	v.SetDefault("indexer.window", 30)

	v.SetDefault("listing.default_limit", 20)
	v.SetDefault("listing.max_limit", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Chain.RPCURL) == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if !common.IsHexAddress(c.Chain.ContractAddress) {
		return fmt.Errorf("chain.contract_address %q is not a valid address", c.Chain.ContractAddress)
	}
	if c.Listing.DefaultLimit <= 0 || c.Listing.MaxLimit < c.Listing.DefaultLimit {
		return fmt.Errorf("listing limits invalid: default %d, max %d", c.Listing.DefaultLimit, c.Listing.MaxLimit)
	}
	if c.Indexer.Enabled && c.Indexer.Interval <= 0 {
		return fmt.Errorf("indexer.interval must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Version is set during build via ldflags.
var Version = "dev"
