package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// AllowedOrigins is the CORS allow-list. Empty rejects cross-origin requests.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the gorm dialect. Path is only used by sqlite.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig controls the cache backend and the TTL of each logical cache.
type CacheConfig struct {
	Backend          string        `mapstructure:"backend"`
	PlanTTL          time.Duration `mapstructure:"plan_ttl"`
	PlanDropdownTTL  time.Duration `mapstructure:"plan_dropdown_ttl"`
	PromoTTL         time.Duration `mapstructure:"promo_ttl"`
	ValidationTTL    time.Duration `mapstructure:"validation_ttl"`
	SubscriptionTTL  time.Duration `mapstructure:"subscription_ttl"`
	AnalyticsTTL     time.Duration `mapstructure:"analytics_ttl"`
	ScanBatchSize    int64         `mapstructure:"scan_batch_size"`
	DeleteBatchSize  int           `mapstructure:"delete_batch_size"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type BillingConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	// SweepBatchSize bounds how many ended subscriptions one sweep query loads.
	SweepBatchSize int `mapstructure:"sweep_batch_size"`
	// SweepInterval runs the sweep inside the server process when positive.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitConfig bounds promo code validate/apply calls per caller. A
// non-positive limit disables that window.
type RateLimitConfig struct {
	PromoPerMinute int `mapstructure:"promo_per_minute"`
	PromoPerHour   int `mapstructure:"promo_per_hour"`
}
