package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	minSecretLength = 32
	defaultAddr     = ":8082"
)

type Config struct {
	Production    bool
	Addr          string
	SessionSecret []byte
	// EphemeralSecret is set when no secret was configured outside
	// production and one was generated for this process.
	EphemeralSecret bool
	AccountsFile    string
	MySQLDSN        string
	MongoURI        string
	MongoDBName     string
	LoginRate       float64
	LoginBurst      int
	LogLevel        string
	StaticDir       string
}

// Load reads the optional env file named by ENV_FILE and then the process
// environment.
func Load() (*Config, error) {
	if file := os.Getenv("ENV_FILE"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("env file %s: %w", file, err)
		}
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Production:   strings.EqualFold(getenv("APP_ENV"), "production"),
		Addr:         withDefault(getenv("ADDR"), defaultAddr),
		AccountsFile: getenv("ACCOUNTS_FILE"),
		MySQLDSN:     getenv("MYSQL_DSN"),
		MongoURI:     getenv("MONGO_URI"),
		MongoDBName:  withDefault(getenv("MONGO_DB_NAME"), "hospitaladmin"),
		LogLevel:     withDefault(getenv("LOG_LEVEL"), "info"),
		StaticDir:    withDefault(getenv("STATIC_DIR"), "./static"),
	}

	var err error
	if cfg.LoginRate, err = strconv.ParseFloat(withDefault(getenv("LOGIN_RATE"), "1"), 64); err != nil || cfg.LoginRate <= 0 {
		return nil, errors.New("LOGIN_RATE must be a positive number")
	}
	if cfg.LoginBurst, err = strconv.Atoi(withDefault(getenv("LOGIN_BURST"), "10")); err != nil || cfg.LoginBurst <= 0 {
		return nil, errors.New("LOGIN_BURST must be a positive integer")
	}

	secret := getenv("SESSION_SECRET")
	switch {
	case len(secret) >= minSecretLength:
		cfg.SessionSecret = []byte(secret)
	case cfg.Production:
		return nil, errors.New("SESSION_SECRET must be set to at least 32 bytes in production")
	case secret != "":
		return nil, errors.New("SESSION_SECRET is shorter than 32 bytes")
	default:
		cfg.SessionSecret = make([]byte, minSecretLength)
		if _, err := rand.Read(cfg.SessionSecret); err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
		cfg.EphemeralSecret = true
	}

	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
