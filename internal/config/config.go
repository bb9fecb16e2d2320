// Package config loads server settings from defaults, an optional TOML file and the
// environment, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration lets TOML files spell durations as strings such as "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type StoreConfig struct {
	Driver        string `toml:"driver"`
	DBPath        string `toml:"db_path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

type CacheConfig struct {
	RedisAddr string   `toml:"redis_addr"`
	DedupeTTL Duration `toml:"dedupe_ttl"`
}

type EmailConfig struct {
	ResendAPIKey  string   `toml:"resend_api_key"`
	ResendBaseURL string   `toml:"resend_base_url"`
	From          string   `toml:"from"`
	InternalTo    []string `toml:"internal_to"`
	ScheduleURL   string   `toml:"schedule_url"`
	Timeout       Duration `toml:"timeout"`
}

type AdminConfig struct {
	Username  string   `toml:"username"`
	Password  string   `toml:"password"`
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`
}

// Config is the fully resolved server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Email  EmailConfig  `toml:"email"`
	Admin  AdminConfig  `toml:"admin"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port: "2000",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Store: StoreConfig{
			Driver:        "sqlite",
			DBPath:        "data/fit-guide.db",
			MongoDatabase: "fitguide",
		},
		Cache: CacheConfig{DedupeTTL: Duration{10 * time.Minute}},
		Email: EmailConfig{
			From:        "noreply@missionvox.ai",
			InternalTo:  []string{"tim@missionvox.ai"},
			ScheduleURL: "https://www.hopechest.org/vision-trips/",
			Timeout:     Duration{15 * time.Second},
		},
		Admin: AdminConfig{Username: "admin", TokenTTL: Duration{12 * time.Hour}},
	}
}

// Load resolves the configuration. When path is empty FITGUIDE_CONFIG names the file;
// with neither set only defaults and the environment apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("FITGUIDE_CONFIG"))
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setList(&c.Server.AllowedOrigins, "ALLOWED_ORIGINS")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DBPath, "FITGUIDE_DB_PATH")
	setString(&c.Store.MongoURI, "MONGO_URI")
	setString(&c.Store.MongoDatabase, "MONGO_DATABASE")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Email.ResendAPIKey, "RESEND_API_KEY")
	setString(&c.Email.ResendBaseURL, "RESEND_BASE_URL")
	setString(&c.Email.From, "EMAIL_FROM")
	setList(&c.Email.InternalTo, "INTERNAL_EMAIL_TO")
	setString(&c.Email.ScheduleURL, "SCHEDULE_URL")
	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")
	setString(&c.Admin.JWTSecret, "JWT_SECRET")

	durations := []struct {
		target *Duration
		env    string
	}{
		{&c.Cache.DedupeTTL, "SUBMISSION_DEDUPE_TTL"},
		{&c.Email.Timeout, "EMAIL_TIMEOUT"},
		{&c.Admin.TokenTTL, "ADMIN_TOKEN_TTL"},
	}
	for _, d := range durations {
		raw := strings.TrimSpace(os.Getenv(d.env))
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		d.target.Duration = parsed
	}
	return nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Store.DBPath) == "" {
			return fmt.Errorf("store: db_path is required for the sqlite driver")
		}
	case "mongo":
		if strings.TrimSpace(c.Store.MongoURI) == "" {
			return fmt.Errorf("store: mongo_uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("server: port is required")
	}
	return nil
}

func setString(target *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*target = v
	}
}

func setList(target *[]string, env string) {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*target = out
}
