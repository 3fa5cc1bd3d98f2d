package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Store backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	StoreBackend  string `envconfig:"STORE_BACKEND" default:"file" validate:"oneof=file redis"`
	StoreDir      string `envconfig:"STORE_DIR" default:".quotesync" validate:"required_if=StoreBackend file"`
	QuotesKey     string `envconfig:"QUOTES_KEY" default:"quotes" validate:"required"`
	CategoryKey   string `envconfig:"CATEGORY_KEY" default:"selectedCategory" validate:"required,nefield=QuotesKey"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required_if=StoreBackend redis"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"min=0"`

	RemoteURL      string `envconfig:"REMOTE_URL" default:"https://jsonplaceholder.typicode.com/posts" validate:"required,url"`
	RemotePostURL  string `envconfig:"REMOTE_POST_URL" validate:"omitempty,url"`
	RemoteCategory string `envconfig:"REMOTE_CATEGORY" default:"Server" validate:"required"`
	RemoteLimit    int    `envconfig:"REMOTE_LIMIT" default:"5" validate:"min=0"`

	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL" default:"30s" validate:"min=1s"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"min=100ms"`
	MaxRetries   int           `envconfig:"MAX_RETRIES" default:"3" validate:"min=0,max=10"`
	RetryBackoff time.Duration `envconfig:"RETRY_BACKOFF" default:"1s"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal"`
	LogFile     string `envconfig:"LOG_FILE"`
	LogToStdout bool   `envconfig:"LOG_TO_STDOUT" default:"false"`
	LogJSON     bool   `envconfig:"LOG_JSON" default:"false"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New は新しい設定インスタンスを作成します。
// 環境変数から自動的に設定を読み込み、値が不正な場合はエラーを返します
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values against the constraints in the struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// PostURL returns the endpoint new quotes are reported to.
func (c *Config) PostURL() string {
	if c.RemotePostURL != "" {
		return c.RemotePostURL
	}
	return c.RemoteURL
}

func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "oneof":
			errs = append(errs, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
		case "min":
			errs = append(errs, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "max":
			errs = append(errs, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		case "required", "required_if":
			errs = append(errs, fmt.Sprintf("%s is required", e.Field()))
		default:
			errs = append(errs, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
		}
	}

	return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
}
