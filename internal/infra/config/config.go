package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Analyze  AnalyzeConfig  `yaml:"analyze"`
	Logstore LogstoreConfig `yaml:"logstore"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// AuthConfig drives the password gate and token verification.
type AuthConfig struct {
	// Secret signs session tokens. Shorter than 32 characters is a
	// fatal startup condition.
	Secret            string        `yaml:"secret"`
	TokenTTL          time.Duration `yaml:"tokenTtl"`
	Password          string        `yaml:"password"`
	AdminPassword     string        `yaml:"adminPassword"`
	PasswordHash      string        `yaml:"passwordHash"`
	AdminPasswordHash string        `yaml:"adminPasswordHash"`
	LoginWindow       time.Duration `yaml:"loginWindow"`
	LoginMaxAttempts  int           `yaml:"loginMaxAttempts"`
	SecureCookies     bool          `yaml:"secureCookies"`
}

// LLMConfig contains OpenAI connection settings.
type LLMConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
}

// AnalyzeConfig controls the skin analysis pipeline.
type AnalyzeConfig struct {
	Prompt              string        `yaml:"prompt"`
	MaxCompletionTokens int           `yaml:"maxCompletionTokens"`
	Timeout             time.Duration `yaml:"timeout"`
	MaxUploadBytes      int64         `yaml:"maxUploadBytes"`
	MaxDimension        int           `yaml:"maxDimension"`
	JPEGQuality         int           `yaml:"jpegQuality"`
}

// LogstoreConfig contains connection information for the usage log store.
type LogstoreConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	LogRetention time.Duration `yaml:"logRetention"`
}

// CatalogConfig contains DSN and pooling settings for the product catalog.
type CatalogConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("AUTH_PASSWORD_HASH"); v != "" {
		cfg.Auth.PasswordHash = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Auth.AdminPasswordHash = v
	}
	if v := os.Getenv("AUTH_LOGIN_WINDOW"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.LoginWindow = parsed
		}
	}
	if v := os.Getenv("AUTH_LOGIN_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Auth.LoginMaxAttempts = parsed
		}
	}
	if v := os.Getenv("AUTH_SECURE_COOKIES"); v != "" {
		cfg.Auth.SecureCookies = isTrue(v)
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ANALYZE_PROMPT"); v != "" {
		cfg.Analyze.Prompt = v
	}
	if v := os.Getenv("ANALYZE_MAX_COMPLETION_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Analyze.MaxCompletionTokens = parsed
		}
	}
	if v := os.Getenv("ANALYZE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Analyze.Timeout = parsed
		}
	}
	if v := os.Getenv("ANALYZE_MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Analyze.MaxUploadBytes = parsed
		}
	}
	if v := os.Getenv("ANALYZE_MAX_DIMENSION"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Analyze.MaxDimension = parsed
		}
	}
	if v := os.Getenv("ANALYZE_JPEG_QUALITY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Analyze.JPEGQuality = parsed
		}
	}
	if v := os.Getenv("LOGSTORE_ENABLED"); v != "" {
		cfg.Logstore.Enabled = isTrue(v)
	}
	if v := os.Getenv("LOGSTORE_ADDR"); v != "" {
		cfg.Logstore.Addr = v
	}
	if v := os.Getenv("LOGSTORE_LOG_RETENTION"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Logstore.LogRetention = parsed
		}
	}
	if v := os.Getenv("CATALOG_POSTGRES_DSN"); v != "" {
		cfg.Catalog.DSN = v
	}
	if v := os.Getenv("CATALOG_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CATALOG_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.MinConns = int32(parsed)
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:         7 * 24 * time.Hour,
			LoginWindow:      5 * time.Minute,
			LoginMaxAttempts: 5,
			SecureCookies:    true,
		},
		LLM: LLMConfig{
			Model: "gpt-5-nano",
		},
		Analyze: AnalyzeConfig{
			Prompt:              defaultAnalysisPrompt,
			MaxCompletionTokens: 3000,
			Timeout:             60 * time.Second,
			MaxUploadBytes:      5 << 20,
			MaxDimension:        1024,
			JPEGQuality:         85,
		},
		Logstore: LogstoreConfig{
			Enabled:      false,
			LogRetention: 365 * 24 * time.Hour,
		},
		Catalog: CatalogConfig{
			MaxConns: 4,
			MinConns: 0,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if len(c.Auth.Secret) < 32 {
		return errors.New("auth.secret must be at least 32 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return errors.New("auth.password or auth.passwordHash must be set")
	}
	if c.Auth.LoginWindow <= 0 {
		return errors.New("auth.loginWindow must be positive")
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		return errors.New("auth.loginMaxAttempts must be positive")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Analyze.Prompt == "" {
		return errors.New("analyze.prompt cannot be empty")
	}
	if c.Analyze.MaxCompletionTokens <= 0 {
		return errors.New("analyze.maxCompletionTokens must be positive")
	}
	if c.Analyze.Timeout <= 0 {
		return errors.New("analyze.timeout must be positive")
	}
	if c.Analyze.MaxUploadBytes <= 0 {
		return errors.New("analyze.maxUploadBytes must be positive")
	}
	if c.Analyze.MaxDimension <= 0 {
		return errors.New("analyze.maxDimension must be positive")
	}
	if c.Analyze.JPEGQuality <= 0 || c.Analyze.JPEGQuality > 100 {
		return errors.New("analyze.jpegQuality must be within (0,100]")
	}
	if c.Logstore.Enabled && strings.TrimSpace(c.Logstore.Addr) == "" {
		return errors.New("logstore.addr cannot be empty when the log store is enabled")
	}
	if c.Logstore.LogRetention < 0 {
		return errors.New("logstore.logRetention cannot be negative")
	}
	return nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
