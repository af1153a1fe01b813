package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultModel         = "gpt-4.1-mini"
	defaultSQLDriver     = "postgres"
	defaultOpenAITimeout = 60 * time.Second
)

type Config struct {
	ServerAddr string
	OpenAI     OpenAIConfig
	SQL        SQLConfig
	Logging    LoggingConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Configured reports whether the chat loop can reach the LLM endpoint.
func (o OpenAIConfig) Configured() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

type SQLConfig struct {
	Server   string
	Database string
	User     string
	Password string
	Driver   string
}

// BuildDSN assembles a pool DSN from the SQL_* parts. The driver name is
// carried as the URL scheme so the config surface stays driver-agnostic.
// url.URL handles userinfo escaping so credentials with spaces or URL
// metacharacters round-trip intact.
func (s SQLConfig) BuildDSN() string {
	dsn := url.URL{
		Scheme:   s.Driver,
		User:     url.UserPassword(s.User, s.Password),
		Host:     s.Server,
		Path:     "/" + s.Database,
		RawQuery: "sslmode=prefer",
	}
	return dsn.String()
}

// Complete reports whether every required SQL credential is present.
func (s SQLConfig) Complete() bool {
	return s.Server != "" && s.Database != "" && s.User != "" && s.Password != ""
}

type LoggingConfig struct {
	Level        string
	Encoding     string
	Development  bool
	EnableCaller bool
	ServiceName  string
}

// Load reads configuration from environment variables. A missing OPENAI_API_KEY
// and missing SQL credentials are not errors here: the first degrades the chat
// loop to a fixed reply, the second surfaces when a tool first needs the
// database.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: envOrDefault("SERVER_ADDR", ":8080"),
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Model:   envOrDefault("OPENAI_MODEL", defaultModel),
			BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")), "/"),
			Timeout: parseDuration(envOrDefault("OPENAI_TIMEOUT", "60s"), defaultOpenAITimeout),
		},
		SQL: SQLConfig{
			Server:   strings.TrimSpace(os.Getenv("SQL_SERVER")),
			Database: strings.TrimSpace(os.Getenv("SQL_DATABASE")),
			User:     strings.TrimSpace(os.Getenv("SQL_USER")),
			Password: os.Getenv("SQL_PASSWORD"),
			Driver:   envOrDefault("SQL_DRIVER", defaultSQLDriver),
		},
		Logging: LoggingConfig{
			Level:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			Encoding:     strings.ToLower(envOrDefault("LOG_ENCODING", "console")),
			Development:  parseBool(envOrDefault("LOG_DEVELOPMENT", "false"), false),
			EnableCaller: parseBool(envOrDefault("LOG_CALLER", "false"), false),
			ServiceName:  envOrDefault("SERVICE_NAME", "canave-ia"),
		},
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}
