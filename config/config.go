package config

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ArtifactsConfig points at the vocabulary and model produced by training.
// Values are local paths or s3://, minio://, http(s):// URLs.
type ArtifactsConfig struct {
	Vocabulary string `mapstructure:"vocabulary"`
	Model      string `mapstructure:"model"`
	Timeout    string `mapstructure:"timeout"`
}

type S3Config struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type ONNXConfig struct {
	LibraryPath string `mapstructure:"library_path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Toggle struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	S3        S3Config        `mapstructure:"s3"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	ONNX      ONNXConfig      `mapstructure:"onnx"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   Toggle          `mapstructure:"metrics"`
	Swagger   Toggle          `mapstructure:"swagger"`
}

// Load reads configuration. paths are searched for config.yaml and .env;
// they default to ./config and the working directory.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{"./config", "."}
	}

	for _, p := range paths {
		envFile := filepath.Join(p, ".env")
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			slog.Error("failed to read env file", slog.String("file", envFile), slog.String("error", err.Error()))
			return nil, err
		}
	}

	v := viper.New()
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("artifacts.vocabulary", "symptom_list.json")
	v.SetDefault("artifacts.model", "disease_model.json")
	v.SetDefault("artifacts.timeout", "30s")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", true)
	v.SetDefault("onnx.library_path", "")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("swagger.enabled", true)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("server.port", "PORT", "SERVER_PORT"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// Addr is the listen address: every interface, configured port.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// ArtifactTimeout is the parsed artifacts.timeout.
func (c *Config) ArtifactTimeout() time.Duration {
	d, err := time.ParseDuration(c.Artifacts.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.Artifacts),
		validation.Field(&c.MinIO),
		validation.Field(&c.CORS),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port,
			validation.Required,
			validation.By(validatePort),
		),
		validation.Field(&s.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
	)
}

func (a ArtifactsConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Vocabulary, validation.Required),
		validation.Field(&a.Model, validation.Required),
		validation.Field(&a.Timeout,
			validation.Required,
			validation.By(validateDuration),
		),
	)
}

func (m MinIOConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Endpoint, validation.By(validateEndpoint)),
	)
}

func (c CORSConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AllowedOrigins,
			validation.Required,
			validation.Each(validation.Required, validation.By(validateOrigin)),
		),
	)
}

func validatePort(value interface{}) error {
	port, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return validation.NewError("validation_invalid_port", "must be a number between 1 and 65535")
	}

	return nil
}

func validateEndpoint(value interface{}) error {
	endpoint, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if endpoint == "" {
		return nil
	}

	host := endpoint
	if strings.Contains(endpoint, ":") {
		h, port, err := net.SplitHostPort(endpoint)
		if err != nil || port == "" {
			return validation.NewError("validation_invalid_hostport", "must be host or host:port")
		}
		host = h
	}
	if err := is.Host.Validate(host); err != nil {
		return validation.NewError("validation_invalid_host", "invalid host")
	}
	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil || d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be a positive duration (e.g., 10s, 1m)")
	}

	return nil
}

func validateOrigin(value interface{}) error {
	origin, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if origin == "*" {
		return nil
	}
	if err := is.URL.Validate(origin); err != nil {
		return validation.NewError("validation_invalid_origin", "must be * or an origin URL")
	}
	return nil
}
