package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cbrne_dashboard/internal/filter"

	"github.com/spf13/viper"
)

// Config is the application configuration read from configs/config.yml.
type Config struct {
	Port     string         `mapstructure:"port"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Filters  FiltersConfig  `mapstructure:"filters"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	WS       WSConfig       `mapstructure:"ws"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// FiltersConfig configures every dashboard view's filter toolbar.
type FiltersConfig struct {
	Timezone          string `mapstructure:"timezone"`
	filter.Visibility `mapstructure:",squash"`
	Catalog           filter.Catalog `mapstructure:"catalog"`
}

// SessionsConfig controls expiry of filter sessions nobody uses.
type SessionsConfig struct {
	IdleTTL      time.Duration `mapstructure:"idle_ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
}

// WSConfig bounds the per-connection snapshot backlog and the browser
// origins allowed to open a stream.
type WSConfig struct {
	Buffer         int      `mapstructure:"buffer"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var errMissingSigningKey = errors.New("auth.signing_key must be set")

// Location resolves the configured timezone; empty means the host zone.
func (f FiltersConfig) Location() (*time.Location, error) {
	if f.Timezone == "" || strings.EqualFold(f.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load filters.timezone %q: %w", f.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	vis := filter.DefaultVisibility()
	cat := filter.DefaultCatalog()

	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("filters.timezone", "UTC")
	v.SetDefault("filters.show_building_filter", vis.ShowBuildingFilter)
	v.SetDefault("filters.show_status_filter", vis.ShowStatusFilter)
	v.SetDefault("filters.show_severity_filter", vis.ShowSeverityFilter)
	v.SetDefault("filters.show_date_filter", vis.ShowDateFilter)
	v.SetDefault("filters.show_sensor_type_filter", vis.ShowSensorTypeFilter)
	v.SetDefault("filters.catalog.buildings", cat.Buildings)
	v.SetDefault("filters.catalog.statuses", cat.Statuses)
	v.SetDefault("filters.catalog.severities", cat.Severities)
	v.SetDefault("filters.catalog.sensor_types", cat.SensorTypes)
	v.SetDefault("sessions.idle_ttl", 30*time.Minute)
	v.SetDefault("sessions.reap_interval", time.Minute)
	v.SetDefault("ws.buffer", 64)
	v.SetDefault("ws.allowed_origins", []string{})
}

// Load reads <dir>/config.yml (if present) and CBRNE_* environment overrides.
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetEnvPrefix("cbrne")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if strings.TrimSpace(cfg.Auth.SigningKey) == "" {
		return Config{}, errMissingSigningKey
	}
	if _, err := cfg.Filters.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
