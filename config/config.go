package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI   = "mongodb://127.0.0.1:27017/ewaste"
	defaultDatabase   = "ewaste"
	developmentSecret = "devsecret"
)

type Config struct {
	Port           string
	Environment    string
	Store          string // mongo or memory
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	RequestTimeout time.Duration
	AllowedOrigins []string
	RateLimitRPM   int
	RateLimitBurst int
	RedisURL       string
	LogLevel       string

	SendGridAPIKey string
	EmailSender    string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error

	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	mongoURI := getEnv("MONGODB_URI", defaultMongoURI)

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		Environment:         env,
		Store:               strings.ToLower(getEnv("STORE", "mongo")),
		MongoURI:            mongoURI,
		MongoDatabase:       getEnv("MONGODB_DATABASE", databaseFromURI(mongoURI)),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AllowedOrigins:      parseList(getEnv("ALLOWED_ORIGINS", "*")),
		RedisURL:            os.Getenv("REDIS_URL"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SendGridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		EmailSender:         os.Getenv("EMAIL_SENDER"),
		CloudinaryName:      os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "ewaste/profiles"),
	}

	var err error
	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 12); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitRPM, err = getEnvInt("RATE_LIMIT_RPM", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 3); err != nil {
		errs = append(errs, err)
	}

	if cfg.Store != "mongo" && cfg.Store != "memory" {
		errs = append(errs, fmt.Errorf("STORE must be mongo or memory, got %q", cfg.Store))
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
		cfg.JWTSecret = developmentSecret
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDevelopmentSecret reports whether tokens are signed with the built-in key.
func (c *Config) UsesDevelopmentSecret() bool {
	return c.JWTSecret == developmentSecret
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return defaultDatabase
	}
	return name
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}
