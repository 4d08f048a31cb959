package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// MinJWTSecretBytes is the shortest signing secret accepted at startup.
const MinJWTSecretBytes = 32

type ServerConfig struct {
	Address   string `mapstructure:"address"`
	Port      int    `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	PublicDir string `mapstructure:"public_dir"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// PresenceConfig controls how long a login keeps a user in the active list.
// Zero means entries stay until logout or restart.
type PresenceConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type SeedConfig struct {
	File string `mapstructure:"file"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Presence PresenceConfig `mapstructure:"presence"`
	Log      LogConfig      `mapstructure:"log"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

var (
	appConfig *Config
	mu        sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.public_dir", "./public")
	v.SetDefault("database.path", "data/tweet.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "mvp-tweet")
	v.SetDefault("jwt.expire_hours", 1)
	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("presence.ttl_minutes", 0)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("seed.file", "")
}

// Load loads configuration from given file path (e.g. "config.yaml") and
// validates it for serving.
// If path is empty, "config.yaml" in the working directory is used when present;
// a missing default file is not an error, defaults and environment still apply.
func Load(path string) (*Config, error) {
	c, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	appConfig = c
	mu.Unlock()
	return c, nil
}

// Read loads configuration like Load but skips validation. Offline tools
// that never sign tokens use it.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. TWEET_JWT_SECRET=..., TWEET_SERVER_PORT=9000
	v.SetEnvPrefix("TWEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "TWEET_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.JWT.Secret)
	if secret == "" {
		return errors.New("config: jwt.secret is required (set TWEET_JWT_SECRET)")
	}
	if len(secret) < MinJWTSecretBytes {
		return fmt.Errorf("config: jwt.secret must be at least %d characters", MinJWTSecretBytes)
	}
	if c.JWT.ExpireHours <= 0 {
		return fmt.Errorf("config: jwt.expire_hours must be positive, got %d", c.JWT.ExpireHours)
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: security.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.Presence.TTLMinutes < 0 {
		return fmt.Errorf("config: presence.ttl_minutes must not be negative")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("config: database.path is required")
	}
	return nil
}

// Get returns the last successfully loaded configuration.
// Call Load() once at application startup.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return appConfig
}
