// Package config resolves all runtime configuration from the environment,
// with an optional .env file and an optional YAML override file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is resolved once at process start and passed explicitly to the
// components that need it.
type Config struct {
	Server ServerConfig `yaml:"server"`
	OpenAI OpenAIConfig `yaml:"openai"`
	IBM    IBMConfig    `yaml:"ibm"`
	Sim    SimConfig    `yaml:"sim"`

	DefaultShots int `yaml:"default_shots"`
}

// ServerConfig covers the HTTP surface.
type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // "debug" or "release"
}

// OpenAIConfig gates the language-model classification path.
type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// IBMConfig gates the remote-hardware execution tier.
type IBMConfig struct {
	Token        string        `yaml:"token"`
	BaseURL      string        `yaml:"base_url"`
	JobTimeout   time.Duration `yaml:"job_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// SimConfig tunes the local simulator.
type SimConfig struct {
	MaxQubits int   `yaml:"max_qubits"`
	Seed      int64 `yaml:"seed"` // 0 means time-based
}

// Load resolves configuration: .env (if present), then environment
// variables, then a YAML file named by QUANTUMD_CONFIG overriding both.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "7080"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			Timeout: getDurationEnv("OPENAI_TIMEOUT", 30*time.Second),
		},
		IBM: IBMConfig{
			Token:        getEnv("IBM_QUANTUM_TOKEN", ""),
			BaseURL:      getEnv("IBM_QUANTUM_URL", ""),
			JobTimeout:   getDurationEnv("IBM_JOB_TIMEOUT", 2*time.Minute),
			PollInterval: getDurationEnv("IBM_POLL_INTERVAL", 5*time.Second),
		},
		Sim: SimConfig{
			MaxQubits: getIntEnv("SIM_MAX_QUBITS", 25),
			Seed:      int64(getIntEnv("SIM_SEED", 0)),
		},
		DefaultShots: getIntEnv("DEFAULT_SHOTS", 1024),
	}

	if path := os.Getenv("QUANTUMD_CONFIG"); path != "" {
		if err := cfg.applyYAML(path); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("Failed to apply YAML config override")
		}
	}
	return cfg
}

func (c *Config) applyYAML(path string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// RedactedKey returns at most the first 8 characters of a secret for
// diagnostics. Full values must never be logged.
func RedactedKey(key string) string {
	if key == "" {
		return "(missing)"
	}
	if len(key) <= 8 {
		return key + "..."
	}
	return key[:8] + "..."
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
