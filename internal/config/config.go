package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	StaticDir    string        `yaml:"static_dir"`
	JWT          struct {
		Secret   string `yaml:"secret"`
		TTLHours int    `yaml:"ttlHours"`
	} `yaml:"jwt"`
}

type MongoCfg struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"-"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GeocodeCfg struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

type SecurityCfg struct {
	AuthRateLimitPerMinute int `yaml:"authRateLimitPerMinute"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Redis    RedisCfg    `yaml:"redis"`
	Geocode  GeocodeCfg  `yaml:"geocode"`
	Security SecurityCfg `yaml:"security"`
}

const defaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("APP_PORT", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	})
	override("STATIC_DIR", func(v string) { cfg.App.StaticDir = v })
	override("JWT_SECRET", func(v string) { cfg.App.JWT.Secret = v })
	override("JWT_TTL_HOURS", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.JWT.TTLHours = n
		}
	})
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("MONGO_CONNECT_TIMEOUT_SECONDS", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Mongo.ConnectTimeout = time.Duration(n) * time.Second
		}
	})
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("REDIS_DB", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	})
	override("GEOCODE_API_KEY", func(v string) { cfg.Geocode.APIKey = v })
	override("GEOCODE_BASE_URL", func(v string) { cfg.Geocode.BaseURL = v })
	override("AUTH_RATE_LIMIT_PER_MINUTE", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.AuthRateLimitPerMinute = n
		}
	})

	if cfg.App.Port == 0 {
		cfg.App.Port = 5001
	}
	if cfg.App.ReadTimeout == 0 {
		cfg.App.ReadTimeout = 10 * time.Second
	}
	if cfg.App.WriteTimeout == 0 {
		cfg.App.WriteTimeout = 10 * time.Second
	}
	if cfg.App.IdleTimeout == 0 {
		cfg.App.IdleTimeout = 60 * time.Second
	}
	if cfg.App.StaticDir == "" {
		cfg.App.StaticDir = "web"
	}
	if cfg.App.JWT.TTLHours == 0 {
		cfg.App.JWT.TTLHours = 5
	}
	if cfg.Geocode.BaseURL == "" {
		cfg.Geocode.BaseURL = defaultGeocodeBaseURL
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "shelterfinder"
	}
	if cfg.Mongo.ConnectTimeout == 0 {
		cfg.Mongo.ConnectTimeout = 15 * time.Second
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.App.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}

	return cfg, nil
}
