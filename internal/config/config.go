package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	LogLevel    string
	Database    DatabaseConfig
	NATSURL     string
	NATSSubject string
	UI          UIConfig
}

// DatabaseConfig describes how to reach the relational store.
type DatabaseConfig struct {
	Host             string
	Port             int
	Name             string
	User             string
	Password         string
	SSLMode          string
	RetryDelay       time.Duration
	RetryMaxAttempts int
}

// UIConfig holds settings for the browser-facing UI process.
type UIConfig struct {
	Port       string
	APIBaseURL string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	return listenAddress(c.AppPort)
}

// Address returns the address the UI server should listen on.
func (u UIConfig) Address() string {
	return listenAddress(u.Port)
}

// DSN renders the postgres connection URL.
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}

	return dsn.String()
}

func listenAddress(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}

	return fmt.Sprintf(":%s", port)
}

// Load reads configuration values from environment variables and an optional .env file.
// Extra file paths replace the default .env lookup. Variables already present in the
// environment take precedence over file values.
func Load(envFiles ...string) (Config, error) {
	v := newViper(envFiles...)

	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("database.port")))
	if err != nil || port <= 0 {
		return Config{}, fmt.Errorf("invalid DATABASE_PORT %q", v.GetString("database.port"))
	}

	delay, err := time.ParseDuration(v.GetString("database.retry_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid database retry delay: %w", err)
	}
	if delay < 0 {
		return Config{}, fmt.Errorf("database retry delay must not be negative")
	}

	rawAttempts := strings.TrimSpace(v.GetString("database.retry_max_attempts"))
	maxAttempts, err := strconv.Atoi(rawAttempts)
	if err != nil || maxAttempts < 0 {
		return Config{}, fmt.Errorf("invalid DATABASE_RETRY_MAX_ATTEMPTS %q", rawAttempts)
	}

	cfg := Config{
		AppName:  v.GetString("app.name"),
		AppEnv:   v.GetString("app.env"),
		AppPort:  v.GetString("app.port"),
		LogLevel: strings.ToLower(v.GetString("log.level")),
		Database: DatabaseConfig{
			Host:             v.GetString("database.host"),
			Port:             port,
			Name:             v.GetString("database.name"),
			User:             v.GetString("database.user"),
			Password:         v.GetString("database.password"),
			SSLMode:          v.GetString("database.sslmode"),
			RetryDelay:       delay,
			RetryMaxAttempts: maxAttempts,
		},
		NATSURL:     v.GetString("nats.url"),
		NATSSubject: v.GetString("nats.subject"),
		UI:          uiConfig(v),
	}

	var missing []string
	for _, required := range []struct {
		env   string
		value string
	}{
		{"DATABASE_HOST", cfg.Database.Host},
		{"DATABASE_NAME", cfg.Database.Name},
		{"DATABASE_USER", cfg.Database.User},
		{"DATABASE_PASSWORD", cfg.Database.Password},
	} {
		if strings.TrimSpace(required.value) == "" {
			missing = append(missing, required.env)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// LoadUI reads only the settings the UI process needs; it never requires database credentials.
func LoadUI(envFiles ...string) (Config, error) {
	v := newViper(envFiles...)

	cfg := Config{
		AppName:  v.GetString("app.name"),
		AppEnv:   v.GetString("app.env"),
		LogLevel: strings.ToLower(v.GetString("log.level")),
		UI:       uiConfig(v),
	}

	if _, err := url.ParseRequestURI(cfg.UI.APIBaseURL); err != nil {
		return Config{}, fmt.Errorf("invalid UI_API_BASE_URL: %w", err)
	}

	return cfg, nil
}

func uiConfig(v *viper.Viper) UIConfig {
	return UIConfig{
		Port:       v.GetString("ui.port"),
		APIBaseURL: strings.TrimRight(v.GetString("ui.api_base_url"), "/"),
	}
}

func newViper(envFiles ...string) *viper.Viper {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "University API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.retry_delay", "2s")
	v.SetDefault("database.retry_max_attempts", 0)
	v.SetDefault("nats.subject", "university.students")
	v.SetDefault("ui.port", "8501")
	v.SetDefault("ui.api_base_url", "http://localhost:8080")

	return v
}
