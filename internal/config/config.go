package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // scheduler timezones must resolve in minimal images

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Media     MediaConfig     `yaml:"media"`
	Push      PushConfig      `yaml:"push"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port" env:"SERVER_PORT"`
	Host string `yaml:"host" env:"SERVER_HOST"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
}

// StoreConfig selects the document store backend
type StoreConfig struct {
	Driver  string `yaml:"driver" env:"STORE_DRIVER"` // postgres | memory
	Migrate bool   `yaml:"migrate" env:"STORE_MIGRATE"`
}

// AuthConfig holds caller token settings
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	Issuer    string `yaml:"issuer" env:"AUTH_ISSUER"`
}

// MediaConfig holds media hosting configuration
type MediaConfig struct {
	Provider     string   `yaml:"provider" env:"MEDIA_PROVIDER"` // cloudinary | s3
	Host         string   `yaml:"host" env:"MEDIA_HOST"`         // domain profile URLs are served from
	CloudName    string   `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	APIKey       string   `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
	APISecret    string   `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
	APIBaseURL   string   `yaml:"api_base_url" env:"CLOUDINARY_API_BASE_URL"`
	UploadPreset string   `yaml:"upload_preset" env:"MEDIA_UPLOAD_PRESET"`
	S3           S3Config `yaml:"s3"`
}

// S3Config holds S3-compatible storage configuration
type S3Config struct {
	Region    string `yaml:"region" env:"S3_REGION"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
}

// PushConfig holds push delivery configuration
type PushConfig struct {
	Driver string `yaml:"driver" env:"PUSH_DRIVER"` // fcm | apns | log

	// FCM
	ProjectID       string `yaml:"project_id" env:"FCM_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"FCM_CREDENTIALS_FILE"`

	// APNs
	KeyFile    string `yaml:"key_file" env:"APNS_KEY_FILE"`
	KeyID      string `yaml:"key_id" env:"APNS_KEY_ID"`
	TeamID     string `yaml:"team_id" env:"APNS_TEAM_ID"`
	Topic      string `yaml:"topic" env:"APNS_TOPIC"`
	Production bool   `yaml:"production" env:"APNS_PRODUCTION"`
}

// SchedulerConfig holds the daily scan schedule
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled" env:"SCHEDULER_ENABLED"`
	Schedule string `yaml:"schedule" env:"SCHEDULER_SCHEDULE"`
	Timezone string `yaml:"timezone" env:"SCHEDULER_TIMEZONE"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// A missing file is not an error: configuration then comes from ENV + defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "postgres"
	}
	if c.Media.Provider == "" {
		c.Media.Provider = "cloudinary"
	}
	if c.Media.Host == "" {
		c.Media.Host = "res.cloudinary.com"
	}
	if c.Media.UploadPreset == "" {
		c.Media.UploadPreset = "unsigned_uploads"
	}
	if c.Push.Driver == "" {
		c.Push.Driver = "fcm"
	}
	if c.Scheduler.Schedule == "" {
		c.Scheduler.Schedule = "0 9 * * *"
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "Asia/Kolkata"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}

	switch c.Store.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for the postgres store"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	switch c.Media.Provider {
	case "cloudinary":
		if c.Media.CloudName == "" || c.Media.APIKey == "" || c.Media.APISecret == "" {
			errs = append(errs, errors.New("media.cloud_name, media.api_key and media.api_secret are required for cloudinary"))
		}
	case "s3":
		if c.Media.S3.Bucket == "" || c.Media.S3.Region == "" {
			errs = append(errs, errors.New("media.s3.bucket and media.s3.region are required for s3"))
		}
		if c.Media.APIKey == "" || c.Media.APISecret == "" {
			errs = append(errs, errors.New("media.api_key and media.api_secret are required to sign uploads"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown media.provider %q", c.Media.Provider))
	}

	switch c.Push.Driver {
	case "fcm":
		if c.Push.ProjectID == "" {
			errs = append(errs, errors.New("push.project_id is required for fcm"))
		}
	case "apns":
		if c.Push.KeyFile == "" || c.Push.KeyID == "" || c.Push.TeamID == "" || c.Push.Topic == "" {
			errs = append(errs, errors.New("push.key_file, push.key_id, push.team_id and push.topic are required for apns"))
		}
	case "log":
	default:
		errs = append(errs, fmt.Errorf("unknown push.driver %q", c.Push.Driver))
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.timezone: %w", err))
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
