package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultAppID namespaces leaderboard data when no identifier is configured.
const DefaultAppID = "default-quiz-app"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	App struct {
		ID string `yaml:"id"`
	} `yaml:"app"`
	Trivia struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"trivia"`
	Auth struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path and applies environment overrides.
// Environment values take precedence over the file; a missing file is not
// an error so the service can run on overrides (or defaults) alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}
	cfg.applyEnv()
	if cfg.App.ID == "" {
		cfg.App.ID = DefaultAppID
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.App.ID, "APP_ID")
	overrideString(&c.Trivia.BaseURL, "TRIVIA_BASE_URL")
	overrideString(&c.Auth.URL, "AUTH_URL")
	overrideString(&c.Auth.Token, "AUTH_TOKEN")
	overrideString(&c.Redis.Addr, "REDIS_ADDR")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	overrideInt(&c.Redis.DB, "REDIS_DB")
	overrideString(&c.Postgres.URL, "POSTGRES_URL")
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
