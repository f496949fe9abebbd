package config

import (
	"bytes"
	"fmt"
	neturl "net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "kautilya"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisURL   = "redis://localhost:6379/0"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	JWTSecret      string         `yaml:"jwt_secret"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"`
	Storage        StorageConfig  `yaml:"storage"`
	Auth           AuthConfig     `yaml:"auth"`
	Paths          PathsConfig    `yaml:"paths"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Loc      string `yaml:"loc"`
}

// StorageConfig selects and configures the object-store adapter.
// "s3" supports delete-by-path; "cloudinary" is upload-only and the
// application drops references without releasing the binaries.
type StorageConfig struct {
	Driver     string            `yaml:"driver"` // "s3" | "cloudinary"
	S3         S3Options         `yaml:"s3"`
	Cloudinary CloudinaryOptions `yaml:"cloudinary"`

	AllowedFormats string `yaml:"allowed_formats"` // comma-separated extensions
	MaxSizeMB      int    `yaml:"max_size_mb"`
	KeyTemplate    string `yaml:"key_template"` // e.g. "uploads/{Y}/{m}/{uuid}.{ext}"
}

type S3Options struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyleAccess bool   `yaml:"path_style_access"`
}

type CloudinaryOptions struct {
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
}

type AuthConfig struct {
	GoogleClientID        string `yaml:"google_client_id"`
	FirstLoginRedirectURL string `yaml:"first_login_redirect_url"`
	SessionTTLHours       int    `yaml:"session_ttl_hours"`
}

type PathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
	Static  string `yaml:"static"`
}

// Load reads and validates the YAML config at path.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	switch cfg.Storage.Driver {
	case "", "s3", "cloudinary":
	default:
		return nil, fmt.Errorf("invalid storage.driver %q, expected s3 or cloudinary", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "s3"
	}
	return cfg, nil
}

// Default returns a config populated with development defaults.
func Default() *AppConfig {
	return &AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		RedisURL: defaultRedisURL,
		Storage: StorageConfig{
			Driver:         "s3",
			AllowedFormats: "jpg,jpeg,png,webp,gif",
			MaxSizeMB:      10,
		},
		Auth: AuthConfig{SessionTTLHours: 24 * 30},
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// DSN assembles the MySQL DSN from either the raw dsn field or the
// host/port/user parts.
func (c DatabaseConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.User)
	if user == "" {
		user = defaultDBUser
	}
	password := c.Password
	if password == "" {
		password = defaultDBPassword
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultDBName
	}
	charset := strings.TrimSpace(c.Charset)
	if charset == "" {
		charset = defaultDBCharset
	}
	loc := strings.TrimSpace(c.Loc)
	if loc == "" {
		loc = defaultDBLoc
	}

	params := neturl.Values{}
	params.Set("charset", charset)
	params.Set("parseTime", strconv.FormatBool(true))
	params.Set("loc", loc)

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", user, password, host, port, name, params.Encode())
}
