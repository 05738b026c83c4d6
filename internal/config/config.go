// Package config loads site configuration with Viper from a YAML file and
// KEKETSO_<SECTION>_<KEY> environment variables. The store URL and key also
// answer to the SUPABASE_URL / SUPABASE_KEY names the hosted store documents.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/keketsolithane/keketso/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSupabase = "supabase"
	DriverOxiDB    = "oxidb"
	DriverSQLite   = "sqlite"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KEKETSO"

// Missing store settings are fatal for the supabase driver.
var (
	ErrMissingStoreURL = store.ErrMissingURL
	ErrMissingStoreKey = store.ErrMissingKey
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	OxiDB  OxiDBConfig  `mapstructure:"oxidb"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Log    LogConfig    `mapstructure:"log"`
	Site   SiteConfig   `mapstructure:"site"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver  string        `mapstructure:"driver"`
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OxiDBConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	PoolSize  int           `mapstructure:"pool_size"`
	Keepalive time.Duration `mapstructure:"keepalive"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	GelfAddr string `mapstructure:"gelf_addr"`
}

// SiteConfig is the company information shown on the pages.
type SiteConfig struct {
	Name    string `mapstructure:"name"`
	Email   string `mapstructure:"email"`
	Phone   string `mapstructure:"phone"`
	Address string `mapstructure:"address"`
	City    string `mapstructure:"city"`
	Hours   string `mapstructure:"hours"`
	MapURL  string `mapstructure:"map_url"`
}

// Error is a configuration problem found at startup.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.driver", DriverSupabase)
	v.SetDefault("store.url", "")
	v.SetDefault("store.key", "")
	v.SetDefault("store.timeout", time.Duration(0))

	v.SetDefault("oxidb.host", "127.0.0.1")
	v.SetDefault("oxidb.port", 4444)
	v.SetDefault("oxidb.pool_size", 3)
	v.SetDefault("oxidb.keepalive", 10*time.Second)

	v.SetDefault("sqlite.path", "keketso.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.gelf_addr", "")

	v.SetDefault("site.name", "SparkleSmart Technologies")
	v.SetDefault("site.email", "info@jkltechno.com")
	v.SetDefault("site.phone", "+266-56864062/62623825")
	v.SetDefault("site.address", "Hatsolo (By-Pass)")
	v.SetDefault("site.city", "Maseru, Lesotho")
	v.SetDefault("site.hours", "Mon - Fri: 9:00 AM - 5:00 PM")
	v.SetDefault("site.map_url", "https://www.google.com/maps/search/Hatsolo+By-Pass+Maseru+Lesotho")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("store.url", EnvPrefix+"_STORE_URL", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	_ = v.BindEnv("store.key", EnvPrefix+"_STORE_KEY", "SUPABASE_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
}

// Load reads the configuration held by v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration. The store URL and key are only
// required when the Supabase driver will be constructed.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverSupabase:
		if strings.TrimSpace(c.Store.URL) == "" {
			errs = append(errs, &Error{Key: "store.url", Err: ErrMissingStoreURL})
		} else if u, err := url.Parse(c.Store.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, &Error{Key: "store.url", Err: fmt.Errorf("%q is not an absolute http(s) url", c.Store.URL)})
		}
		if strings.TrimSpace(c.Store.Key) == "" {
			errs = append(errs, &Error{Key: "store.key", Err: ErrMissingStoreKey})
		}
		if c.Store.Timeout < 0 {
			errs = append(errs, &Error{Key: "store.timeout", Err: errors.New("must not be negative")})
		}
	case DriverOxiDB:
		if c.OxiDB.Host == "" {
			errs = append(errs, &Error{Key: "oxidb.host", Err: errors.New("must be set")})
		}
		if c.OxiDB.Port < 1 || c.OxiDB.Port > 65535 {
			errs = append(errs, &Error{Key: "oxidb.port", Err: fmt.Errorf("%d is out of range", c.OxiDB.Port)})
		}
		if c.OxiDB.PoolSize < 1 {
			errs = append(errs, &Error{Key: "oxidb.pool_size", Err: errors.New("must be at least 1")})
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			errs = append(errs, &Error{Key: "sqlite.path", Err: errors.New("must be set")})
		}
	default:
		errs = append(errs, &Error{Key: "store.driver", Err: fmt.Errorf("unknown driver %q", c.Store.Driver)})
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &Error{Key: "log.level", Err: err})
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, &Error{Key: "log.format", Err: fmt.Errorf("unknown format %q", c.Log.Format)})
	}
	if c.Server.Addr == "" {
		errs = append(errs, &Error{Key: "server.addr", Err: errors.New("must be set")})
	}
	return errors.Join(errs...)
}
