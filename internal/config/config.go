package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// EnvPrefix namespaces environment overrides, e.g. BXTRACK_MONGO_URI.
const EnvPrefix = "BXTRACK_"

type Config struct {
	Port        string `koanf:"port"`
	AppEnv      string `koanf:"app_env"`
	MongoURI    string `koanf:"mongo_uri"`
	MongoDB     string `koanf:"mongo_db"`
	JWTSecret   string `koanf:"jwt_secret"`
	JWTExpire   int    `koanf:"jwt_expire_hours"`
	FrontendURL string `koanf:"frontend_url"`
	LogLevel    string `koanf:"log_level"`

	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	CloudinaryCloudName string `koanf:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `koanf:"cloudinary_api_key"`
	CloudinaryAPISecret string `koanf:"cloudinary_api_secret"`

	// Path to a Firebase service account JSON. Google login is disabled
	// when empty.
	FirebaseCredentials string `koanf:"firebase_credentials"`
	// OAuth client ID used to verify Google ID tokens directly when no
	// Firebase credentials are configured.
	GoogleClientID string `koanf:"google_client_id"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"port":             "8080",
		"app_env":          "development",
		"mongo_uri":        "mongodb://localhost:27017",
		"mongo_db":         "bxtrack",
		"jwt_secret":       "secret",
		"jwt_expire_hours": 168,
		"frontend_url":     "http://localhost:3000",
		"log_level":        "info",
		"rate_limit_rps":   10.0,
		"rate_limit_burst": 30,
	}
}

// legacyEnv are the unprefixed variable names read from .env files.
var legacyEnv = []string{
	"PORT", "APP_ENV", "MONGO_URI", "MONGO_DB", "JWT_SECRET", "JWT_EXPIRE_HOURS",
	"FRONTEND_URL", "LOG_LEVEL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
	"FIREBASE_CREDENTIALS", "GOOGLE_CLIENT_ID",
}

// Load reads configuration in increasing priority: built-in defaults, the
// TOML file at path (or ./bxtrack.toml when path is empty and it exists),
// unprefixed variables such as MONGO_URI, then BXTRACK_-prefixed variables.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat("bxtrack.toml"); err == nil {
			path = "bxtrack.toml"
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	legacy := make(map[string]interface{})
	for _, name := range legacyEnv {
		if value := os.Getenv(name); value != "" {
			legacy[strings.ToLower(name)] = value
		}
	}
	if err := k.Load(confmap.Provider(legacy, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.IsProduction() && cfg.JWTSecret == "secret" {
		return nil, fmt.Errorf("jwt_secret must be set in production")
	}

	return &cfg, nil
}
