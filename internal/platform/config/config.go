// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix of environment variables read by Load.
const envPrefix = "APP_"

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultMaxErrorBodySize is the default cap on buffered error bodies (4MB).
	DefaultMaxErrorBodySize = 4 << 20

	// DefaultFallbackLocale is the locale used when no requested locale matches.
	DefaultFallbackLocale = "en"

	// DefaultAdmissionMaxConcurrent is the default number of in-flight API requests.
	DefaultAdmissionMaxConcurrent = 256

	// DefaultAdmissionRate is the default sustained API request rate per second.
	DefaultAdmissionRate = 500.0

	// DefaultAdmissionBurst is the default token bucket size.
	DefaultAdmissionBurst = 100

	// DefaultRedisTTL is the default lifetime of cached users.
	DefaultRedisTTL = 5 * time.Minute

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App         AppConfig         `koanf:"app"         validate:"required"`
	Server      ServerConfig      `koanf:"server"      validate:"required"`
	Log         LogConfig         `koanf:"log"         validate:"required"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
	Auth        AuthConfig        `koanf:"auth"`
	I18n        I18nConfig        `koanf:"i18n"        validate:"required"`
	Admission   AdmissionConfig   `koanf:"admission"`
	Database    DatabaseConfig    `koanf:"database"`
	Redis       RedisConfig       `koanf:"redis"`
	CORS        CORSConfig        `koanf:"cors"`
	Compression CompressionConfig `koanf:"compression"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=10ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,hostname_port"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig contains the gateway header names carrying user claims. When
// enabled, user writes require a subject and deletes require AdminRole.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	AdminRole     string `koanf:"admin_role"     validate:"required_if=Enabled true"`
	RolesHeader   string `koanf:"roles_header"`
	ScopesHeader  string `koanf:"scopes_header"`
	SubjectHeader string `koanf:"subject_header"`
}

// I18nConfig contains error translation settings.
type I18nConfig struct {
	// FallbackLocale must have a catalog bundle.
	FallbackLocale string `koanf:"fallback_locale" validate:"required,bcp47_language_tag"`

	// Dir optionally holds <locale>.yaml bundles overlaid on the built-in ones.
	Dir string `koanf:"dir"`

	// MaxErrorBodySize caps how much of a failure body is buffered for translation.
	MaxErrorBodySize int64 `koanf:"max_error_body_size" validate:"required,min=1024"`
}

// AdmissionConfig contains load shedding settings for the API.
type AdmissionConfig struct {
	Enabled       bool    `koanf:"enabled"`
	MaxConcurrent int64   `koanf:"max_concurrent" validate:"required_if=Enabled true,omitempty,min=1"`
	Rate          float64 `koanf:"rate"           validate:"min=0"`
	Burst         int     `koanf:"burst"          validate:"min=0"`
}

// DatabaseConfig contains Postgres settings. When disabled, users are kept
// in memory.
type DatabaseConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"             validate:"required_if=Enabled true"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"omitempty,min=100ms"`
}

// RedisConfig contains user cache settings.
type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"     validate:"required_if=Enabled true,omitempty,hostname_port"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"       validate:"min=0,max=15"`
	TTL      time.Duration `koanf:"ttl"      validate:"required_if=Enabled true,omitempty,min=1s"`
}

// CORSConfig contains cross-origin settings.
type CORSConfig struct {
	Enabled          bool          `koanf:"enabled"`
	AllowOrigins     []string      `koanf:"allow_origins"     validate:"required_if=Enabled true,dive,required"`
	AllowCredentials bool          `koanf:"allow_credentials"`
	MaxAge           time.Duration `koanf:"max_age"`
}

// CompressionConfig contains response compression settings.
type CompressionConfig struct {
	Enabled bool `koanf:"enabled"`
	Level   int  `koanf:"level" validate:"min=-1,max=9"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "lingo-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "25s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "lingo-service",
		"telemetry.sampling_rate": 1.0,

		"auth.enabled":        false,
		"auth.admin_role":     "admin",
		"auth.roles_header":   "X-User-Roles",
		"auth.scopes_header":  "X-User-Scopes",
		"auth.subject_header": "X-User-ID",

		"i18n.fallback_locale":     DefaultFallbackLocale,
		"i18n.dir":                 "",
		"i18n.max_error_body_size": DefaultMaxErrorBodySize,

		"admission.enabled":        true,
		"admission.max_concurrent": DefaultAdmissionMaxConcurrent,
		"admission.rate":           DefaultAdmissionRate,
		"admission.burst":          DefaultAdmissionBurst,

		"database.enabled":         false,
		"database.url":             "",
		"database.connect_timeout": "5s",

		"redis.enabled":  false,
		"redis.addr":     "localhost:6379",
		"redis.password": "",
		"redis.db":       0,
		"redis.ttl":      DefaultRedisTTL.String(),

		"cors.enabled":           true,
		"cors.allow_origins":     []string{"*"},
		"cors.allow_credentials": false,
		"cors.max_age":           "12h",

		"compression.enabled": true,
		"compression.level":   -1,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider(envPrefix, ".", envKey(k.Keys())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_SERVER_READ_TIMEOUT to server.read_timeout. Known keys
// are matched with '.' and '_' treated alike; anything else has every '_'
// turned into a '.'.
func envKey(known []string) func(string) string {
	index := make(map[string]string, len(known))
	for _, key := range known {
		index[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if key, ok := index[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
