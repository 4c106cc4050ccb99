package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSupabase = "supabase"
	BackendMySQL    = "mysql"
	// BackendMemory keeps everything in process; for local development.
	BackendMemory = "memory"
)

type Env struct {
	AppAddr string
	GinMode string

	Backend         string
	SupabaseURL     string
	SupabaseAnonKey string
	DBDSN           string
	JWTSecret       string
	TokenTTL        time.Duration

	RealtimePollInterval time.Duration
	CORSAllowedOrigins   []string
	// AuthRateLimit is requests per minute per client IP on /api/auth.
	AuthRateLimit int
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" when none)
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("BACKEND")))
	if backend == "" {
		backend = BackendSupabase
	}

	return Env{
		AppAddr: appAddr,
		GinMode: ginMode,

		Backend:         backend,
		SupabaseURL:     strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseAnonKey: strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),
		DBDSN:           strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:        durationEnv("TOKEN_TTL", time.Hour),

		RealtimePollInterval: durationEnv("REALTIME_POLL_INTERVAL", 3*time.Second),
		CORSAllowedOrigins:   listEnv("CORS_ALLOWED_ORIGINS"),
		AuthRateLimit:        intEnv("AUTH_RATE_LIMIT", 30),
	}
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	// bare numbers are seconds
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
