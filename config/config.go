package config

import (
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
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

// Platform variables that hint at the public URL before any request arrives.
const (
	EnvRenderExternalURL = "RENDER_EXTERNAL_URL"
	EnvKoyebPublicURL    = "KOYEB_PUBLIC_URL"
)

const minInterval = time.Second

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type PublicURLConfig struct {
	Render string `mapstructure:"render"`
	Koyeb  string `mapstructure:"koyeb"`
}

type PingerConfig struct {
	LocalInterval    string `mapstructure:"local_interval"`
	ExternalInterval string `mapstructure:"external_interval"`
	RequestTimeout   string `mapstructure:"request_timeout"`
}

type VerifierConfig struct {
	Interval string `mapstructure:"interval"`
	Timeout  string `mapstructure:"timeout"`
}

type BreakerConfig struct {
	FailureThreshold int `mapstructure:"failure_threshold"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	PublicURL PublicURLConfig `mapstructure:"public_url"`
	Pinger    PingerConfig    `mapstructure:"pinger"`
	Verifier  VerifierConfig  `mapstructure:"verifier"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
}

// Load reads defaults, an optional config.yaml from ./config or the working
// directory, and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("public_url.render", "")
	v.SetDefault("public_url.koyeb", "")
	v.SetDefault("pinger.local_interval", "2m")
	v.SetDefault("pinger.external_interval", "4m")
	v.SetDefault("pinger.request_timeout", "30s")
	v.SetDefault("verifier.interval", "10m")
	v.SetDefault("verifier.timeout", "3s")
	v.SetDefault("breaker.failure_threshold", 3)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Hosting platforms export these under fixed names.
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("public_url.render", EnvRenderExternalURL)
	_ = v.BindEnv("public_url.koyeb", EnvKoyebPublicURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// Address returns the host:port the HTTP server binds to.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// InitialPublicURL returns the public URL hinted by the platform, if any.
// Koyeb's variable wins when both are present.
func (c *Config) InitialPublicURL() string {
	if u := strings.TrimRight(c.PublicURL.Koyeb, "/"); u != "" {
		return u
	}
	return strings.TrimRight(c.PublicURL.Render, "/")
}

func (c *Config) LocalInterval() time.Duration    { return mustDuration(c.Pinger.LocalInterval) }
func (c *Config) ExternalInterval() time.Duration { return mustDuration(c.Pinger.ExternalInterval) }
func (c *Config) RequestTimeout() time.Duration   { return mustDuration(c.Pinger.RequestTimeout) }
func (c *Config) VerifyInterval() time.Duration   { return mustDuration(c.Verifier.Interval) }
func (c *Config) VerifyTimeout() time.Duration    { return mustDuration(c.Verifier.Timeout) }

// mustDuration is only called on validated configs; a parse failure yields 0.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Host,
						validation.Required,
						is.Host,
					),
					validation.Field(&sc.Port,
						validation.Required,
						validation.Min(1),
						validation.Max(65535),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.PublicURL,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PublicURLConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PublicURLConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Render, validation.By(validatePublicURL)),
					validation.Field(&pc.Koyeb, validation.By(validatePublicURL)),
				)
			}),
		),
		validation.Field(&c.Pinger,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PingerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PingerConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.LocalInterval, validation.Required, validation.By(validateInterval)),
					validation.Field(&pc.ExternalInterval, validation.Required, validation.By(validateInterval)),
					validation.Field(&pc.RequestTimeout, validation.Required, validation.By(validateTimeout)),
				)
			}),
		),
		validation.Field(&c.Verifier,
			validation.Required,
			validation.By(func(value interface{}) error {
				vc, ok := value.(VerifierConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a VerifierConfig")
				}
				return validation.ValidateStruct(&vc,
					validation.Field(&vc.Interval, validation.Required, validation.By(validateInterval)),
					validation.Field(&vc.Timeout, validation.Required, validation.By(validateTimeout)),
				)
			}),
		),
		validation.Field(&c.Breaker,
			validation.Required,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.FailureThreshold, validation.Required, validation.Min(1)),
				)
			}),
		),
	)
}

func validateInterval(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 30s, 4m, 1h)")
	}

	if d < minInterval {
		return validation.NewError("validation_interval_too_short", "must be at least 1s")
	}

	return nil
}

func validateTimeout(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 3s, 500ms)")
	}

	if d <= 0 {
		return validation.NewError("validation_invalid_timeout", "must be positive")
	}

	return nil
}

func validatePublicURL(value interface{}) error {
	publicURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	// Not running on that platform.
	if publicURL == "" {
		return nil
	}

	parsedURL, err := url.Parse(publicURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
