package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/linkguard/")
	v.AddConfigPath("$HOME/.linkguard")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("LINKGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")

	// VirusTotal defaults (primary reputation source)
	v.SetDefault("virustotal.api_key", "")
	v.SetDefault("virustotal.base_url", "https://www.virustotal.com/api/v3")
	v.SetDefault("virustotal.timeout", "15s")
	v.SetDefault("virustotal.weight", 0.75)

	// Safe Browsing defaults (secondary reputation source)
	v.SetDefault("safebrowsing.api_key", "")
	v.SetDefault("safebrowsing.timeout", "15s")
	v.SetDefault("safebrowsing.weight", 0.25)

	// Redirect resolver defaults
	v.SetDefault("redirect.max_hops", 10)
	v.SetDefault("redirect.timeout", "10s")

	// Domain-auth defaults
	v.SetDefault("dnsauth.server", "1.1.1.1:53")
	v.SetDefault("dnsauth.timeout", "5s")

	// Scoring defaults
	v.SetDefault("scan.heuristic_cap", 30)
	v.SetDefault("scan.override_floor", 85)
	v.SetDefault("scan.auth_offset", 5)
	v.SetDefault("scan.url_malicious_threshold", 70)
	v.SetDefault("scan.url_suspicious_threshold", 40)
	v.SetDefault("scan.email_malicious_threshold", 80)
	v.SetDefault("scan.email_suspicious_threshold", 50)
	v.SetDefault("scan.link_concurrency", 8)
	v.SetDefault("scan.max_body_size", 65536)
	v.SetDefault("scan.trusted_domains", []string{})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_frequency", "10m")
	v.SetDefault("cache.sqlite_path", "/data/linkguard_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/linkguard")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
