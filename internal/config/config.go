package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the magicchat server configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Weaviate WeaviateConfig `yaml:"weaviate"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Cache    CacheConfig    `yaml:"cache"`
	Session  SessionConfig  `yaml:"session"`
	Chat     ChatConfig     `yaml:"chat"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// WeaviateConfig holds the vector database connection.
type WeaviateConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Class      string `yaml:"class"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// OpenAIConfig holds the AI service key forwarded to Weaviate's generative and vectorizer modules.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// CacheConfig holds query result cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis, valkey, none (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SessionConfig holds chat session lifetime settings.
type SessionConfig struct {
	IdleTTLMin      int `yaml:"idle_ttl_min"`
	CleanupEveryMin int `yaml:"cleanup_every_min"`
}

// ChatConfig holds turn executor settings.
type ChatConfig struct {
	RevealDelayMs int `yaml:"reveal_delay_ms"` // pause between streamed tokens
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// vars holds values returned by RequireEnv; they take precedence over the file.
func Load(env string, vars map[string]string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data, vars)
}

// Parse decodes YAML configuration, expanding ${VAR} references first.
// vars is applied after decoding, so its values never pass through YAML.
func Parse(data []byte, vars map[string]string) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyEnv(vars)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv copies the required environment values into the config.
// Absent or empty entries leave the file values untouched.
func (c *Config) ApplyEnv(vars map[string]string) {
	set := func(dst *string, name string) {
		if v := vars[name]; v != "" {
			*dst = v
		}
	}
	set(&c.Weaviate.URL, EnvWeaviateURL)
	set(&c.Weaviate.APIKey, EnvWeaviateAPIKey)
	set(&c.OpenAI.APIKey, EnvOpenAIAPIKey)
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Weaviate.Class == "" {
		c.Weaviate.Class = "Card"
	}
	if c.Weaviate.TimeoutSec <= 0 {
		c.Weaviate.TimeoutSec = 30
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "magicchat:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Session.IdleTTLMin <= 0 {
		c.Session.IdleTTLMin = 60
	}
	if c.Session.CleanupEveryMin <= 0 {
		c.Session.CleanupEveryMin = 10
	}
	if c.Chat.RevealDelayMs < 0 {
		c.Chat.RevealDelayMs = 0
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Weaviate.URL == "" {
		return fmt.Errorf("weaviate.url is required")
	}
	switch c.Cache.Driver {
	case "memory", "none":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"memory\", \"redis\", \"valkey\" or \"none\", got %q", c.Cache.Driver)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
