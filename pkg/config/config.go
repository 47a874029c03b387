package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// TrustedProxies are the peers whose X-Forwarded-For is honoured.
	TrustedProxies []string

	// Database
	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string
	PGHost      string
	PGPort      string
	PGDatabase  string
	PGUser      string
	PGPassword  string
	SQLitePath  string

	Email EmailConfig

	RateLimit RateLimitConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminUser string
	AdminPass string
}

// EmailConfig groups the outbound email settings shared by both transports.
type EmailConfig struct {
	Transport     string // "resend" or "smtp"
	ResendAPIKey  string
	ResendBaseURL string
	ResendRPS     float64
	From          string
	AdminTo       string
	AdminCC       string
	Timeout       time.Duration
	SiteURL       string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

type RateLimitConfig struct {
	Window       time.Duration
	Max          int
	Scope        string // "shared" or "per_action"
	Backend      string // "database" or "redis"
	StatsEnabled bool
	IPRPS        float64
}

const (
	TransportResend = "resend"
	TransportSMTP   = "smtp"

	ScopeShared    = "shared"
	ScopePerAction = "per_action"

	BackendDatabase = "database"
	BackendRedis    = "redis"
)

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		PGHost:      getEnv("PG_HOST", "localhost"),
		PGPort:      getEnv("PG_PORT", "5432"),
		PGDatabase:  getEnv("PG_DATABASE", "improtango"),
		PGUser:      getEnv("PG_USER", "postgres"),
		PGPassword:  getEnv("PG_PASSWORD", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "data/site.db"),

		Email: EmailConfig{
			Transport:     strings.ToLower(getEnv("EMAIL_TRANSPORT", TransportResend)),
			ResendAPIKey:  getEnv("AUTH_RESEND_KEY", ""),
			ResendBaseURL: strings.TrimRight(getEnv("RESEND_BASE_URL", "https://api.resend.com"), "/"),
			ResendRPS:     getFloat("RESEND_RPS", 2),
			From:          getEnv("AUTH_EMAIL", ""),
			AdminTo:       getEnv("ADMIN_EMAIL", ""),
			AdminCC:       getEnv("ADMIN_EMAIL_CC", ""),
			Timeout:       getDuration("EMAIL_TIMEOUT", 10*time.Second),
			SiteURL:       strings.TrimRight(getEnv("SITE_URL", "https://improtango.fi"), "/"),
			SMTPHost:      getEnv("SMTP_SERVER", ""),
			SMTPPort:      getInt("SMTP_PORT", 587),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		},

		RateLimit: RateLimitConfig{
			Window:       getDuration("RATE_LIMIT_WINDOW", time.Hour),
			Max:          getInt("RATE_LIMIT_MAX", 1),
			Scope:        strings.ToLower(getEnv("RATE_LIMIT_SCOPE", ScopeShared)),
			Backend:      strings.ToLower(getEnv("RATE_LIMIT_BACKEND", BackendDatabase)),
			StatsEnabled: getBool("RATE_LIMIT_STATS", false),
			IPRPS:        getFloat("IP_RATE_LIMIT_RPS", 0.2),
		},

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		AdminUser: getEnv("ADMIN_USER", ""),
		AdminPass: getEnv("ADMIN_PASS", ""),
	}
}

// MissingEmailSettings lists the environment variables a contact submission
// needs but which are not set. ADMIN_EMAIL_CC is optional.
func (e EmailConfig) MissingEmailSettings() []string {
	var missing []string
	switch e.Transport {
	case TransportSMTP:
		if e.SMTPHost == "" {
			missing = append(missing, "SMTP_SERVER")
		}
	default:
		if e.ResendAPIKey == "" {
			missing = append(missing, "AUTH_RESEND_KEY")
		}
	}
	if e.From == "" {
		missing = append(missing, "AUTH_EMAIL")
	}
	if e.AdminTo == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
