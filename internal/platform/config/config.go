// Package config loads the service configuration from defaults, an optional
// loan.yaml, LOAN_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"loan_backend/internal/platform/db"
	"loan_backend/internal/platform/password"
)

// EnvPrefix is prepended to every environment variable, e.g. LOAN_JWT_SECRET.
const EnvPrefix = "LOAN"

// ErrMissingJWTSecret is returned when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("jwt.secret must be set")

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type PasswordConfig struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
}

// Params converts the configured cost into hasher parameters.
func (p PasswordConfig) Params() password.Params {
	out := password.DefaultParams
	out.Memory = p.Memory
	out.Iterations = p.Iterations
	out.Parallelism = p.Parallelism
	return out
}

// Config is the complete service configuration.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	DB       db.Config      `mapstructure:"db"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Password PasswordConfig `mapstructure:"password"`
}

// Defaults lists every recognised key. Keys must be known to viper for
// AutomaticEnv to pick up their environment variables during Unmarshal.
func Defaults() map[string]any {
	return map[string]any{
		"http.addr":            ":8000",
		"log.level":            "info",
		"log.format":           "json",
		"db.driver":            db.DriverSQLite,
		"db.path":              "loan.db",
		"db.host":              "",
		"db.port":              "",
		"db.user":              "",
		"db.password":          "",
		"db.name":              "",
		"db.instance":          "",
		"db.run_migrations":    true,
		"db.connect_timeout":   db.DefaultConnectTimeout,
		"jwt.secret":           "",
		"redis.enabled":        false,
		"redis.addr":           "localhost:6379",
		"redis.password":       "",
		"redis.db":             0,
		"redis.ttl":            30 * time.Second,
		"password.memory":      password.DefaultParams.Memory,
		"password.iterations":  password.DefaultParams.Iterations,
		"password.parallelism": password.DefaultParams.Parallelism,
	}
}

// Load builds the configuration. configFile may be empty, in which case
// loan.yaml is looked up in the working directory and is optional.
// flags may be nil; only flags whose names match config keys are bound.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	var c Config

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("loan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if strings.Contains(key, ".") && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("failed to decode config: %w", err)
	}
	return c, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if _, err := db.Dialector(c.DB.Driver, ""); err != nil {
		return err
	}
	return nil
}
