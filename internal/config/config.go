package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Providers   map[string]ProviderConfig `json:"providers"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address"`
	Provider      string `json:"provider"`
	SystemPrompt  string `json:"system_prompt"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
	DSN      string `json:"dsn"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// DefaultSystemPrompt is the persona directive sent as the first prompt
// turn when no system_prompt is configured.
const DefaultSystemPrompt = "You are an expert AI tutor for cloud computing topics. " +
	"Explain concisely and clearly, answer the question directly, and " +
	"encourage follow-up questions to support the user's learning."

// Load reads configuration from the provided path (defaults to
// config.json) and then applies environment overrides. A missing config
// file is not an error; the service can run on environment alone.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	cfg := defaults()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		BasicConfig: BasicConfig{
			ServerAddress: ":8000",
			Provider:      "openai",
			SystemPrompt:  DefaultSystemPrompt,
		},
		Databases: map[string]DatabaseConfig{},
		Providers: map[string]ProviderConfig{},
	}
}

// applyEnv overlays the environment variables the deployment surface
// documents: DB_* for the store and per-provider API keys.
func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		c.BasicConfig.ServerAddress = v
	}
	if v := os.Getenv("ASKRELAY_PROVIDER"); v != "" {
		c.BasicConfig.Provider = v
	}
	if v := os.Getenv("ASKRELAY_SYSTEM_PROMPT"); v != "" {
		c.BasicConfig.SystemPrompt = v
	}

	db := c.Databases["mysql"]
	if v := os.Getenv("DB_HOST"); v != "" {
		db.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			db.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		db.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		db.Password = v
	}
	if v := os.Getenv("DB_DATABASE"); v != "" {
		db.DBName = v
	}
	c.Databases["mysql"] = db

	for provider, envKey := range map[string]string{
		"openai": "OPENAI_API_KEY",
		"gemini": "GEMINI_API_KEY",
		"claude": "CLAUDE_API_KEY",
	} {
		if v := os.Getenv(envKey); v != "" {
			p := c.Providers[provider]
			p.APIKey = v
			c.Providers[provider] = p
		}
	}
}

func (c *Config) fillDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = ":8000"
	}
	if c.BasicConfig.Provider == "" {
		c.BasicConfig.Provider = "openai"
	}
	if c.BasicConfig.SystemPrompt == "" {
		c.BasicConfig.SystemPrompt = DefaultSystemPrompt
	}
	if db, ok := c.Databases["mysql"]; ok {
		if db.Host == "" {
			db.Host = "127.0.0.1"
		}
		if db.Port == 0 {
			db.Port = 3306
		}
		if db.Params == "" {
			db.Params = "parseTime=true&charset=utf8mb4"
		}
		c.Databases["mysql"] = db
	}
	if p, ok := c.Providers["openai"]; ok && p.Model == "" {
		p.Model = "gpt-4o-mini"
		c.Providers["openai"] = p
	}
}
