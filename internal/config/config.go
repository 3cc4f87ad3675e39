package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevSessionSecret is used when SESSION_SECRET is not provided.
const DevSessionSecret = "dev-only-session-secret-change-me"

// Config is the full runtime configuration, built once at startup and
// passed to constructors.
type Config struct {
	Port     string
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Argon2   Argon2Config
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// DSN returns a lib/pq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + quoteDSN(c.Host),
		"port=" + quoteDSN(c.Port),
		"user=" + quoteDSN(c.User),
		"dbname=" + quoteDSN(c.Name),
		"sslmode=" + quoteDSN(c.SSLMode),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteDSN(c.Password))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if v == "" || strings.ContainsAny(v, ` '\`) {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `'`, `\'`)
		return "'" + v + "'"
	}
	return v
}

// RedisConfig holds session store connection settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// SessionConfig controls session tokens and the cookie carrying them.
type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// Argon2Config holds password hashing parameters.
type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength uint32
}

// AuthConfig holds limits for the public auth endpoints.
type AuthConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig selects logger level and output format.
type LogConfig struct {
	Level  string
	Format string
}

var bindings = map[string]string{
	"port": "PORT",

	"database.host":              "DB_HOST",
	"database.port":              "DB_PORT",
	"database.user":              "DB_USER",
	"database.password":          "DB_PASSWORD",
	"database.name":              "DB_NAME",
	"database.ssl_mode":          "DB_SSL_MODE",
	"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"database.auto_migrate":      "DB_AUTO_MIGRATE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"session.secret":        "SESSION_SECRET",
	"session.ttl":           "SESSION_TTL",
	"session.cookie_name":   "SESSION_COOKIE_NAME",
	"session.cookie_secure": "SESSION_COOKIE_SECURE",

	"argon2.time":        "ARGON2_TIME",
	"argon2.memory":      "ARGON2_MEMORY",
	"argon2.threads":     "ARGON2_THREADS",
	"argon2.key_length":  "ARGON2_KEY_LENGTH",
	"argon2.salt_length": "ARGON2_SALT_LENGTH",

	"auth.rate_limit_rps":   "AUTH_RATE_LIMIT_RPS",
	"auth.rate_limit_burst": "AUTH_RATE_LIMIT_BURST",

	"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",

	"log.level":  "LOG_LEVEL",
	"log.format": "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "bank")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "bank_session")
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("auth.rate_limit_rps", 5.0)
	v.SetDefault("auth.rate_limit_burst", 10)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://localhost:5000")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from the optional env file and the process
// environment. Environment variables win over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		} else {
			// dotenv keys arrive upper-cased and flat; map them onto the nested keys.
			for key, env := range bindings {
				if v.IsSet(strings.ToLower(env)) && !v.InConfig(key) {
					v.SetDefault(key, v.Get(strings.ToLower(env)))
				}
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port: v.GetString("port"),
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: SessionConfig{
			Secret:       v.GetString("session.secret"),
			TTL:          v.GetDuration("session.ttl"),
			CookieName:   v.GetString("session.cookie_name"),
			CookieSecure: v.GetBool("session.cookie_secure"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetUint32("argon2.salt_length"),
		},
		Auth: AuthConfig{
			RateLimitRPS:   v.GetFloat64("auth.rate_limit_rps"),
			RateLimitBurst: v.GetInt("auth.rate_limit_burst"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = DevSessionSecret
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("config: PORT must not be empty")
	case c.Database.Host == "" || c.Database.Name == "":
		return errors.New("config: DB_HOST and DB_NAME are required")
	case c.Session.TTL <= 0:
		return errors.New("config: SESSION_TTL must be positive")
	case c.Session.CookieName == "":
		return errors.New("config: SESSION_COOKIE_NAME must not be empty")
	case c.Argon2.Time == 0 || c.Argon2.Memory == 0 || c.Argon2.Threads == 0:
		return errors.New("config: argon2 time, memory and threads must be positive")
	case c.Argon2.KeyLength < 16 || c.Argon2.SaltLength < 8:
		return errors.New("config: argon2 key length must be >= 16 and salt length >= 8")
	case len(c.CORS.AllowedOrigins) == 0:
		return errors.New("config: CORS_ALLOWED_ORIGINS must list at least one origin")
	case hasWildcard(c.CORS.AllowedOrigins):
		return errors.New("config: CORS_ALLOWED_ORIGINS must not contain wildcards, credentials are allowed")
	}
	return nil
}

func hasWildcard(origins []string) bool {
	for _, origin := range origins {
		if strings.Contains(origin, "*") {
			return true
		}
	}
	return false
}

// UsesDevSecret reports whether the built-in session secret is in effect.
func (c *Config) UsesDevSecret() bool {
	return c.Session.Secret == DevSessionSecret
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
