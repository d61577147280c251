package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "BILL_ANALYZER_CONFIG"
	logLevelEnv      = "LOG_LEVEL"
	portalBaseURLEnv = "PORTAL_BASE_URL"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	geminiModelEnv   = "GEMINI_MODEL"
	concurrencyEnv   = "BATCH_CONCURRENCY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Portal  PortalConfig  `yaml:"portal"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Cache   CacheConfig   `yaml:"cache"`
	Batch   BatchConfig   `yaml:"batch"`
	Server  ServerConfig  `yaml:"server"`
}

// LoggingConfig selects level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PortalConfig describes the legislature portal endpoints.
type PortalConfig struct {
	BaseURL           string  `yaml:"baseUrl"`
	SearchPath        string  `yaml:"searchPath"`
	DetailPath        string  `yaml:"detailPath"`
	UserAgent         string  `yaml:"userAgent"`
	TimeoutSeconds    int     `yaml:"timeoutSeconds"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	MaxDocumentBytes  int64   `yaml:"maxDocumentBytes"`
}

// Timeout converts TimeoutSeconds; zero means no client timeout.
func (p PortalConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// DefaultMaxResponseBytes is the Gemini response cap used when none is configured.
const DefaultMaxResponseBytes int64 = 4 << 20

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Model           string `yaml:"model"`
	APIKey          string `yaml:"apiKey"`
	Instruction     string `yaml:"instruction"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds"`
	MaxOutputTokens int    `yaml:"maxOutputTokens"`
	// MaxResponseBytes caps the generateContent response body.
	MaxResponseBytes int64 `yaml:"maxResponseBytes"`
}

// Timeout converts TimeoutSeconds; zero means no client timeout.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// CacheConfig caps the number of entries per store; 0 keeps everything.
type CacheConfig struct {
	MaxEntries int `yaml:"maxEntries"`
}

// BatchConfig controls row parallelism; 1 is strictly sequential.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ServerConfig holds the HTTP API listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(DefaultPath())
}

// DefaultPath is the config file named by BILL_ANALYZER_CONFIG, if any.
func DefaultPath() string {
	return os.Getenv(configPathEnv)
}

// LoadFile is Load with an explicit path; an empty path skips the file.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if cfg.Batch.Concurrency <= 0 {
		cfg.Batch.Concurrency = 1
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(portalBaseURLEnv); v != "" {
		c.Portal.BaseURL = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(concurrencyEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Batch.Concurrency = n
		} else {
			log.Printf("config: invalid %s=%q, keeping %d", concurrencyEnv, v, c.Batch.Concurrency)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Portal.BaseURL != "" {
		base.Portal.BaseURL = override.Portal.BaseURL
	}
	if override.Portal.SearchPath != "" {
		base.Portal.SearchPath = override.Portal.SearchPath
	}
	if override.Portal.DetailPath != "" {
		base.Portal.DetailPath = override.Portal.DetailPath
	}
	if override.Portal.UserAgent != "" {
		base.Portal.UserAgent = override.Portal.UserAgent
	}
	if override.Portal.TimeoutSeconds > 0 {
		base.Portal.TimeoutSeconds = override.Portal.TimeoutSeconds
	}
	if override.Portal.RequestsPerSecond > 0 {
		base.Portal.RequestsPerSecond = override.Portal.RequestsPerSecond
	}
	if override.Portal.MaxDocumentBytes > 0 {
		base.Portal.MaxDocumentBytes = override.Portal.MaxDocumentBytes
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Instruction != "" {
		base.Gemini.Instruction = override.Gemini.Instruction
	}
	if override.Gemini.TimeoutSeconds > 0 {
		base.Gemini.TimeoutSeconds = override.Gemini.TimeoutSeconds
	}
	if override.Gemini.MaxOutputTokens > 0 {
		base.Gemini.MaxOutputTokens = override.Gemini.MaxOutputTokens
	}
	if override.Gemini.MaxResponseBytes > 0 {
		base.Gemini.MaxResponseBytes = override.Gemini.MaxResponseBytes
	}

	if override.Cache.MaxEntries > 0 {
		base.Cache.MaxEntries = override.Cache.MaxEntries
	}

	if override.Batch.Concurrency > 0 {
		base.Batch.Concurrency = override.Batch.Concurrency
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Portal: PortalConfig{
			BaseURL:          "https://www.al.sp.gov.br",
			SearchPath:       "/alesp/pesquisa-proposicoes/",
			DetailPath:       "/propositura/",
			UserAgent:        "BillAnalyzer/1.0",
			TimeoutSeconds:   30,
			MaxDocumentBytes: 20 << 20,
		},
		Gemini: GeminiConfig{
			Endpoint:         "https://generativelanguage.googleapis.com/v1beta/models",
			Model:            "gemini-2.0-flash",
			APIKey:           "",
			Instruction:      DefaultInstruction,
			TimeoutSeconds:   180,
			MaxOutputTokens:  8192,
			MaxResponseBytes: DefaultMaxResponseBytes,
		},
		Cache:  CacheConfig{MaxEntries: 0},
		Batch:  BatchConfig{Concurrency: 1},
		Server: ServerConfig{Addr: ":8080"},
	}
}
