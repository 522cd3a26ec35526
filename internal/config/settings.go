package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultAPIBaseURL       = "http://localhost:3000"
	defaultAPITimeout       = 10 * time.Second
	defaultFilterOptionsTTL = 5 * time.Minute
	defaultCopiedDuration   = 2 * time.Second
	defaultDownloadsDir     = "~/Downloads"
)

const (
	CredentialsBearer = "bearer"
	CredentialsCookie = "cookie"
)

const (
	StorageBbolt = "bbolt"
	StorageFile  = "file"
)

const (
	EnvAPIURL             = "NOTEDECK_API_URL"
	EnvWebURL             = "NOTEDECK_WEB_URL"
	EnvGoogleClientID     = "NOTEDECK_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "NOTEDECK_GOOGLE_CLIENT_SECRET"
	EnvLogLevel           = "NOTEDECK_LOG_LEVEL"
)

type Config struct {
	API     APIConfig     `json:"api" toml:"api"`
	Auth    AuthConfig    `json:"auth" toml:"auth"`
	Logging LoggingConfig `json:"logging" toml:"logging"`
	UI      UIConfig      `json:"ui" toml:"ui"`
	Storage StorageConfig `json:"storage" toml:"storage"`
}

type APIConfig struct {
	BaseURL     string `json:"base_url" toml:"base_url"`
	WebURL      string `json:"web_url" toml:"web_url"`
	Timeout     string `json:"timeout" toml:"timeout"`
	Credentials string `json:"credentials" toml:"credentials"`
}

type AuthConfig struct {
	GoogleClientID     string `json:"google_client_id" toml:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret" toml:"google_client_secret"`
}

type LoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type UIConfig struct {
	FilterOptionsTTL string `json:"filter_options_ttl" toml:"filter_options_ttl"`
	CopiedDuration   string `json:"copied_duration" toml:"copied_duration"`
	DownloadsDir     string `json:"downloads_dir" toml:"downloads_dir"`
}

type StorageConfig struct {
	Backend string `json:"backend" toml:"backend"`
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:     defaultAPIBaseURL,
			Timeout:     defaultAPITimeout.String(),
			Credentials: CredentialsBearer,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			FilterOptionsTTL: defaultFilterOptionsTTL.String(),
			CopiedDuration:   defaultCopiedDuration.String(),
			DownloadsDir:     defaultDownloadsDir,
		},
		Storage: StorageConfig{
			Backend: StorageBbolt,
		},
	}
}

// Load reads config.toml from the data dir, then applies .env files and the
// process environment on top.
func Load() (Config, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return Config{}, err
	}
	cfg, err := loadConfigFromPath(paths.Config)
	if err != nil {
		return Config{}, err
	}
	loadDotEnv(".env", paths.Env)
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c Config) APIBaseURL() string {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		base = defaultAPIBaseURL
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/api")
	return base
}

// WebBaseURL is the address of the browser front end, used for share links.
// It falls back to the API host.
func (c Config) WebBaseURL() string {
	web := strings.TrimRight(strings.TrimSpace(c.API.WebURL), "/")
	if web == "" {
		return c.APIBaseURL()
	}
	return web
}

func (c Config) APITimeout() time.Duration {
	return parseDuration(c.API.Timeout, defaultAPITimeout)
}

func (c Config) CredentialPolicy() string {
	switch strings.ToLower(strings.TrimSpace(c.API.Credentials)) {
	case CredentialsCookie:
		return CredentialsCookie
	default:
		return CredentialsBearer
	}
}

// StorageBackend selects where the signed-in session is persisted.
func (c Config) StorageBackend() string {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case StorageFile:
		return StorageFile
	default:
		return StorageBbolt
	}
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) GoogleConfigured() bool {
	return strings.TrimSpace(c.Auth.GoogleClientID) != ""
}

// FilterOptionsTTL bounds how long derived filter option sets are reused.
// Zero means they refresh on every non-empty result.
func (c Config) FilterOptionsTTL() time.Duration {
	return parseDuration(c.UI.FilterOptionsTTL, defaultFilterOptionsTTL)
}

func (c Config) CopiedDuration() time.Duration {
	return parseDuration(c.UI.CopiedDuration, defaultCopiedDuration)
}

func (c Config) DownloadsDir() (string, error) {
	dir := strings.TrimSpace(c.UI.DownloadsDir)
	if dir == "" {
		dir = defaultDownloadsDir
	}
	return expandHome(dir)
}

// TOML renders the effective configuration.
func (c Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if c == nil || getenv == nil {
		return
	}
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvWebURL)); v != "" {
		c.API.WebURL = v
	}
	if v := strings.TrimSpace(getenv(EnvGoogleClientID)); v != "" {
		c.Auth.GoogleClientID = v
	}
	if v := strings.TrimSpace(getenv(EnvGoogleClientSecret)); v != "" {
		c.Auth.GoogleClientSecret = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
}

// loadDotEnv never overrides variables that are already set; missing files
// are ignored.
func loadDotEnv(paths ...string) {
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

func loadConfigFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func expandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
	}
	return filepath.Abs(path)
}
