package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string

	DBDriver       string // sqlite|postgres|pq
	DBDSN          string
	DBMaxOpenConns int

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	CookieSecure     bool

	BcryptCost int

	CORSOrigins []string

	// Optional bootstrap admin; both must be set.
	AdminEmail    string
	AdminPassword string
}

// FromEnv layers defaults, an optional YAML file, an optional .env file and
// the process environment (highest precedence).
func FromEnv() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigFile(v.GetString("CONFIG_FILE"))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			log.Printf("config: %v (using environment only)", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CONFIG_FILE", "./configs/config.yaml")
	v.SetDefault("HTTP_ADDR", ":4000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("JWT_SECRET", "secretkey")
	v.SetDefault("JWT_REFRESH_SECRET", "supersecretrefreshkey")
	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
}

func fromViper(v *viper.Viper) Config {
	return Config{
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		DBDriver:         strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DBDSN:            v.GetString("DB_DSN"),
		DBMaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTRefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   durationOr(v, "ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL:  durationOr(v, "REFRESH_TOKEN_TTL", 7*24*time.Hour),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		CORSOrigins:      csv(v.GetString("CORS_ORIGINS")),
		AdminEmail:       strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
		AdminPassword:    v.GetString("ADMIN_PASSWORD"),
	}
}

func durationOr(v *viper.Viper, k string, def time.Duration) time.Duration {
	if d := v.GetDuration(k); d > 0 {
		return d
	}
	return def
}

func csv(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
