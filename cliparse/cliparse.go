package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	SessionSalt  string
	RateLimit    int
	RateWindowS  int
	RecencyDays  int
}

// ParseFlags validates flags and applies environment fallbacks. A .env file
// in the working directory is loaded first, so local development needs no
// exported variables.
func ParseFlags(args []string) (Config, error) {
	// Missing .env is fine; exported variables still apply.
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("lunchpick", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")

	// Tuning knobs
	fs.IntVar(&cfg.RateLimit, "rate-limit", 0, "Requests allowed per client per window")
	fs.IntVar(&cfg.RateWindowS, "rate-window", 0, "Rate limit window in seconds")
	fs.IntVar(&cfg.RecencyDays, "recency-days", 0, "Default recency exclusion window for draws")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3180)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "sqlite" {
			cfg.DatabaseURL = "file:lunchpick.db"
		} else {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	}

	// Secrets - MUST be provided
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}

	var err error
	if cfg.RateLimit == 0 {
		if cfg.RateLimit, err = envInt("RATE_LIMIT", 120); err != nil {
			return Config{}, err
		}
	}
	if cfg.RateWindowS == 0 {
		if cfg.RateWindowS, err = envInt("RATE_WINDOW_SEC", 60); err != nil {
			return Config{}, err
		}
	}
	if cfg.RecencyDays == 0 {
		if cfg.RecencyDays, err = envInt("RECENCY_DAYS", 7); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid " + key + " env variable")
	}
	return n, nil
}
