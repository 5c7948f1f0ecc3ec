package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "PORTAL_"

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	APIBase     string        `env:"API_BASE,     default=http://localhost:5000"`
	Env         string        `env:"ENV,          default=development"`
	LogLevel    string        `env:"LOG_LEVEL,    default=warn"`
	LogPretty   bool          `env:"LOG_PRETTY,   default=false"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT, default=0s"`
	MetricsFile string        `env:"METRICS_FILE"`

	Store StoreConfig
	Redis RedisConfig
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=file"`
	Path    string `env:"STORE_PATH"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Password string        `env:"REDIS_PASSWORD"`
	Prefix   string        `env:"REDIS_PREFIX,   default=portal"`
	TTL      time.Duration `env:"REDIS_TTL,      default=720h"`
}

// Load reads PORTAL_* variables from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadFile reads PORTAL_* variables from the process environment, falling
// back to the dotenv file at path. A missing file is not an error.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		return Load(ctx)
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return LoadWith(ctx, envconfig.MultiLookuper(envconfig.OsLookuper(), envconfig.MapLookuper(vars)))
}

// LoadWith reads configuration through l, which tests replace with a map.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	switch c.Store.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("config: %sSTORE_BACKEND must be %q or %q, got %q", EnvPrefix, BackendFile, BackendRedis, c.Store.Backend)
	}
	if c.Store.Path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		c.Store.Path = filepath.Join(dir, "portal", "state.json")
	}
	return nil
}
