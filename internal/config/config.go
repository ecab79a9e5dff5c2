package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	Backend struct {
		URL            string        `yaml:"url"`
		Timeout        time.Duration `yaml:"timeout"`
		HealthInterval time.Duration `yaml:"health_interval"`
		WSToken        string        `yaml:"ws_token"`
	} `yaml:"backend"`

	Database struct {
		Dialect string `yaml:"dialect"`
		Path    string `yaml:"path"`
	} `yaml:"database"`

	Intent struct {
		Provider    string `yaml:"provider"` // backend, keyword, llm
		OpenAIKey   string `yaml:"openai_key"`
		OpenAIModel string `yaml:"openai_model"`
	} `yaml:"intent"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
}

// DefaultBackendURL is used when neither config file nor environment set one.
const DefaultBackendURL = "http://localhost:8000"

// Load reads the YAML config file and applies environment overrides. A
// missing file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BACKEND_URL"); v != "" {
		c.Backend.URL = v
	} else if v := os.Getenv("NEXT_PUBLIC_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Intent.OpenAIKey == "" {
		c.Intent.OpenAIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("WS_TOKEN"); v != "" {
		c.Backend.WSToken = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9090
	}
	if c.Backend.URL == "" {
		c.Backend.URL = DefaultBackendURL
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 15 * time.Second
	}
	if c.Backend.HealthInterval == 0 {
		c.Backend.HealthInterval = 30 * time.Second
	}
	if c.Database.Dialect == "" {
		c.Database.Dialect = "sqlite3"
	}
	if c.Database.Path == "" {
		c.Database.Path = "siipcoffee.db"
	}
	if c.Intent.Provider == "" {
		c.Intent.Provider = "backend"
	}
}
