package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	EnableGoogleAuth   bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string // e.g., PUBLIC_URL + "/auth/google/callback"
	GoogleAllowedHD    string // optional hosted-domain restriction

	SendgridAPIKey string
	EmailFrom      string
	EmailFromName  string

	// Sliding-window limit on the auth endpoints.
	AuthRateLimit  int
	AuthRateWindow int // seconds
}

// FromEnv reads configuration from the environment, loading a local .env
// file first when one exists.
func FromEnv() Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	pub := os.Getenv("PUBLIC_URL")
	return Config{
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: pub,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		AuthSecret:    envOr("AUTH_HMAC_SECRET", "paramedtrack-dev-key"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),

		EnableGoogleAuth:   envBool("ENABLE_GOOGLE_AUTH", false),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  envOr("GOOGLE_REDIRECT_URI", strings.TrimSuffix(pub, "/")+"/auth/google/callback"),
		GoogleAllowedHD:    os.Getenv("GOOGLE_ALLOWED_HD"),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:      envOr("EMAIL_FROM", "noreply@localhost"),
		EmailFromName:  envOr("EMAIL_FROM_NAME", "ParamedTrack"),

		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: envInt("AUTH_RATE_WINDOW_SEC", 60),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
