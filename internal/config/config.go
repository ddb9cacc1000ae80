package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sss-sync/console/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "console.json"

	// DefaultBaseURL is the default sync backend address.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout is the default timeout for backend calls.
	DefaultTimeout = "10s"

	// DefaultPort is the default port for the serve command.
	DefaultPort = 5173

	// DefaultHost is the default host for the serve command.
	DefaultHost = "localhost"

	// DefaultSessionFile is the default file backend location, relative to the config dir.
	DefaultSessionFile = ".syncconsole/session.json"

	// DefaultKeyringService is the default OS keyring service name.
	DefaultKeyringService = "sss-sync-console"

	// DefaultRedisPrefix is the default key prefix for the redis backend.
	DefaultRedisPrefix = "sss:console:"

	// DefaultSQLTable is the default table for the sql backend.
	DefaultSQLTable = "console_session"
)

// Storage backends.
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendRedis   = "redis"
	BackendSQL     = "sql"
)

// SQL drivers.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Config represents the complete console.json configuration.
type Config struct {
	// API configures the sync backend the console logs in against.
	API APIConfig `json:"api,omitempty"`

	// Storage configures where the session is persisted.
	Storage StorageConfig `json:"storage,omitempty"`

	// Serve configures the local console server.
	Serve ServeConfig `json:"serve,omitempty"`

	// Log configures structured logging.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// APIConfig contains sync backend settings.
type APIConfig struct {
	// BaseURL is the backend root (the login call goes to BaseURL + /api/auth/login).
	BaseURL string `json:"baseURL,omitempty"`

	// Timeout bounds each backend request (e.g., "10s").
	Timeout string `json:"timeout,omitempty"`
}

// StorageConfig contains session persistence settings.
type StorageConfig struct {
	// Backend is one of memory, file, keyring, redis, sql.
	Backend string `json:"backend,omitempty"`

	File    FileStorageConfig    `json:"file,omitempty"`
	Keyring KeyringStorageConfig `json:"keyring,omitempty"`
	Redis   RedisStorageConfig   `json:"redis,omitempty"`
	SQL     SQLStorageConfig     `json:"sql,omitempty"`
}

// FileStorageConfig configures the JSON file backend.
type FileStorageConfig struct {
	Path string `json:"path,omitempty"`
}

// KeyringStorageConfig configures the OS keyring backend.
type KeyringStorageConfig struct {
	Service string `json:"service,omitempty"`
}

// RedisStorageConfig configures the redis backend.
type RedisStorageConfig struct {
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
}

// SQLStorageConfig configures the database/sql backend.
type SQLStorageConfig struct {
	// Driver is sqlite (modernc.org/sqlite) or pgx (PostgreSQL).
	Driver string `json:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty"`
	Table  string `json:"table,omitempty"`
}

// ServeConfig contains local server settings.
type ServeConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for console.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C100").
				WithDetail("No console.json found in " + filepath.Dir(path)).
				WithSuggestion("Create console.json or pass --config")
		}
		return nil, errors.New("C101").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C101").
			WithDetail("Failed to parse console.json: " + err.Error()).
			WithSuggestion("Check that console.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = DefaultTimeout
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.File.Path == "" {
		c.Storage.File.Path = DefaultSessionFile
	}
	if c.Storage.Keyring.Service == "" {
		c.Storage.Keyring.Service = DefaultKeyringService
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = DefaultRedisPrefix
	}
	if c.Storage.SQL.Driver == "" {
		c.Storage.SQL.Driver = DriverSQLite
	}
	if c.Storage.SQL.Table == "" {
		c.Storage.SQL.Table = DefaultSQLTable
	}

	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("C104").
			WithDetail("api.baseURL is " + strconv.Quote(c.API.BaseURL))
	}
	if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
		return errors.Newf(errors.CategoryConfig, "api.timeout %q is not a positive duration", c.API.Timeout)
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendKeyring, BackendRedis, BackendSQL:
	default:
		return errors.New("C102").
			WithDetail("storage.backend is " + strconv.Quote(c.Storage.Backend))
	}
	if c.Storage.Backend == BackendSQL {
		if c.Storage.SQL.Driver != DriverSQLite && c.Storage.SQL.Driver != DriverPgx {
			return errors.New("C106").
				WithDetail("storage.sql.driver is " + strconv.Quote(c.Storage.SQL.Driver))
		}
		if c.Storage.SQL.DSN == "" {
			return errors.Newf(errors.CategoryConfig, "storage.sql.dsn is required for the sql backend")
		}
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("C103")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("C105").WithDetail("log.level is " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C105").WithDetail("log.format is " + strconv.Quote(c.Log.Format))
	}
	return nil
}

// Timeout returns the backend request timeout.
// Validate guarantees the value parses; an unparsable value falls back to the default.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// SessionFilePath returns the absolute path of the file backend.
func (c *Config) SessionFilePath() string {
	path := c.Storage.File.Path
	if filepath.IsAbs(path) {
		return path
	}
	if dir := c.Dir(); dir != "" {
		return filepath.Join(dir, path)
	}
	return path
}

// ServeAddress returns the listen address of the serve command.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing console.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C100").
				WithDetail("No console.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create console.json or pass --config")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
// When no console.json exists anywhere up the tree, defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		cfg := New()
		cfg.configPath = filepath.Join(wd, ConfigFileName)
		return cfg, nil
	}

	return Load(root)
}
