package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Paths  PathsConfig  `yaml:"paths"`
	Build  BuildConfig  `yaml:"build"`
	ECount ECountConfig `yaml:"ecount"`
	Log    LogConfig    `yaml:"log"`
}

// PathsConfig holds the source, snapshot and export locations
type PathsConfig struct {
	SourceDir  string `yaml:"source_dir" validate:"required"`
	DBDir      string `yaml:"db_dir" validate:"required"`
	ExportDir  string `yaml:"export_dir"`
	HistoryDir string `yaml:"history_dir"`
}

// BuildConfig holds build-db switches
type BuildConfig struct {
	EnableOrderParsing bool `yaml:"enable_order_parsing"`
}

// ECountConfig holds ERP client configuration
type ECountConfig struct {
	Disabled     bool          `yaml:"disabled"`
	ZoneHost     string        `yaml:"zone_host" validate:"required,url"`
	ComCode      string        `yaml:"com_code" validate:"required_unless=Disabled true"`
	UserID       string        `yaml:"user_id" validate:"required_unless=Disabled true"`
	APICertKey   string        `yaml:"api_cert_key" validate:"required_unless=Disabled true"`
	LanType      string        `yaml:"lan_type"`
	ForceZone    string        `yaml:"force_zone"`
	UserPassword string        `yaml:"user_password"`
	CacheDir     string        `yaml:"cache_dir"`
	CacheTTL     time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	SessionTTL   time.Duration `yaml:"session_ttl" validate:"gt=0"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	Retries      int           `yaml:"retries" validate:"gte=1,lte=10"`
	BaseDelay    time.Duration `yaml:"base_delay" validate:"gte=0"`
	PageSize     int           `yaml:"page_size" validate:"gte=1"`
	MaxPages     int           `yaml:"max_pages" validate:"gte=1"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// LoadConfig loads configuration from an optional .env file, an optional YAML
// file named by CMES_CONFIG, and environment variables (highest precedence).
// Directories derived from DBDir stay empty until FillDerived runs, so
// callers can still override DBDir first.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, NewAppError("CONFIG_ERROR", "failed to read .env", err)
	}

	cfg := defaultConfig()
	if path := os.Getenv("CMES_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "failed to read config file "+path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "failed to parse config file "+path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			SourceDir: "청명장비 엑셀",
			DBDir:     "db",
		},
		ECount: ECountConfig{
			ZoneHost:   "https://sboapi.ecount.com",
			LanType:    "ko-KR",
			CacheTTL:   time.Minute,
			SessionTTL: 19 * time.Minute,
			Timeout:    30 * time.Second,
			Retries:    3,
			BaseDelay:  time.Second,
			PageSize:   500,
			MaxPages:   200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) applyEnv() {
	c.Paths.SourceDir = getEnv("CMES_SOURCE_DIR", c.Paths.SourceDir)
	c.Paths.DBDir = getEnv("CMES_DB_DIR", c.Paths.DBDir)
	c.Paths.ExportDir = getEnv("CMES_EXPORT_DIR", c.Paths.ExportDir)
	c.Paths.HistoryDir = getEnv("CMES_HISTORY_DIR", c.Paths.HistoryDir)

	c.Build.EnableOrderParsing = getEnvAsBool("ENABLE_ORDER_PARSING", c.Build.EnableOrderParsing)

	c.ECount.Disabled = getEnvAsBool("ECOUNT_DISABLED", c.ECount.Disabled)
	c.ECount.ZoneHost = getEnv("ECOUNT_ZONE_HOST", c.ECount.ZoneHost)
	c.ECount.ComCode = getEnv("COM_CODE", c.ECount.ComCode)
	c.ECount.UserID = getEnv("USER_ID", c.ECount.UserID)
	c.ECount.APICertKey = getEnv("API_CERT_KEY", c.ECount.APICertKey)
	c.ECount.LanType = getEnv("LAN_TYPE", c.ECount.LanType)
	c.ECount.ForceZone = getEnv("FORCE_ZONE", c.ECount.ForceZone)
	c.ECount.UserPassword = getEnv("USER_PW", getEnv("PASSWORD", c.ECount.UserPassword))
	c.ECount.CacheDir = getEnv("ECOUNT_CACHE_DIR", c.ECount.CacheDir)
	c.ECount.CacheTTL = getEnvAsDuration("ECOUNT_CACHE_TTL", c.ECount.CacheTTL)
	c.ECount.SessionTTL = getEnvAsDuration("ECOUNT_SESSION_TTL", c.ECount.SessionTTL)
	c.ECount.Timeout = getEnvAsDuration("ECOUNT_TIMEOUT", c.ECount.Timeout)
	c.ECount.Retries = getEnvAsInt("ECOUNT_RETRIES", c.ECount.Retries)
	c.ECount.BaseDelay = getEnvAsDuration("ECOUNT_BASE_DELAY", c.ECount.BaseDelay)
	c.ECount.PageSize = getEnvAsInt("ECOUNT_PAGE_SIZE", c.ECount.PageSize)
	c.ECount.MaxPages = getEnvAsInt("ECOUNT_MAX_PAGES", c.ECount.MaxPages)

	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", c.Log.Format))
}

// FillDerived defaults the directories that hang off DBDir. Values set
// explicitly are kept.
func (c *Config) FillDerived() {
	if c.Paths.ExportDir == "" {
		c.Paths.ExportDir = filepath.Join(c.Paths.DBDir, "export")
	}
	if c.Paths.HistoryDir == "" {
		c.Paths.HistoryDir = filepath.Join(c.Paths.DBDir, "history")
	}
	if c.ECount.CacheDir == "" {
		c.ECount.CacheDir = filepath.Join(c.Paths.DBDir, ".cache")
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

var configValidator = validator.New()

// Validate validates the sections every command needs (paths and logging)
func (c *Config) Validate() error {
	if err := validateSection(c.Paths); err != nil {
		return err
	}
	return validateSection(c.Log)
}

// ValidateECount validates the ERP section; only ecount-sync needs it.
func (c *Config) ValidateECount() error {
	return validateSection(c.ECount)
}

func validateSection(section any) error {
	if err := configValidator.Struct(section); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return NewAppError("CONFIG_ERROR", strings.Join(msgs, "; "), ErrInvalidInput)
		}
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}
