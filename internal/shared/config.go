package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	TMDB TMDBConfig `toml:"tmdb"`
}

// TMDBConfig contains The Movie Database API credentials and request defaults.
//
// Either APIKey (v3) or AccessToken (v4 read access token) must be set.
type TMDBConfig struct {
	APIKey       string  `toml:"api_key"`
	AccessToken  string  `toml:"access_token"`
	BaseURL      string  `toml:"base_url"`
	ImageBaseURL string  `toml:"image_base_url"`
	Language     string  `toml:"language"`
	RateLimit    float64 `toml:"rate_limit"` // outbound requests per second, 0 disables
}

// DatabaseConfig contains database connection settings.
//
// Driver is one of "sqlite3", "postgres" or "libsql". Path holds the file path for
// sqlite3 and the connection URL for the other drivers.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port pair the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv reads key=value pairs from the given dotenv files into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values with environment variables when present.
//
// Recognized: TMDB_API_KEY, TMDB_ACCESS_TOKEN, TMDB_LANGUAGE, DATABASE_DRIVER, DATABASE_URL, HOST, PORT.
func (c *Config) ApplyEnv() error {
	overrides := map[string]*string{
		"TMDB_API_KEY":      &c.Credentials.TMDB.APIKey,
		"TMDB_ACCESS_TOKEN": &c.Credentials.TMDB.AccessToken,
		"TMDB_LANGUAGE":     &c.Credentials.TMDB.Language,
		"DATABASE_DRIVER":   &c.Database.Driver,
		"DATABASE_URL":      &c.Database.Path,
		"HOST":              &c.Server.Host,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q is not a number", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate reports configuration that would make the server unable to serve metadata or auth routes.
func (c *Config) Validate() error {
	tmdb := c.Credentials.TMDB
	if tmdb.APIKey == "" && tmdb.AccessToken == "" {
		return fmt.Errorf("%w: credentials.tmdb.api_key or credentials.tmdb.access_token is required", ErrMissingCredentials)
	}
	if tmdb.BaseURL == "" {
		return fmt.Errorf("%w: credentials.tmdb.base_url is empty", ErrInvalidConfig)
	}
	if tmdb.RateLimit < 0 {
		return fmt.Errorf("%w: credentials.tmdb.rate_limit must not be negative", ErrInvalidConfig)
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverLibSQL:
	default:
		return fmt.Errorf("%w: unsupported database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrMissingConfig)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}
