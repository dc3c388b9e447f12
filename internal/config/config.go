package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Auth
	AuthSecret      string // HMAC secret for end-user bearer tokens
	SchedulerSecret string // HMAC secret for scheduler callback credentials (distinct from end-user auth)

	// Named-task scheduler (empty SchedulerURL = gateway disabled, sweep-only mode)
	SchedulerURL    string        // base URL of the external named-task scheduler API
	SchedulerQueue  string        // queue namespace for reminder tasks
	CallbackBaseURL string        // public base URL of this backend, target of fire callbacks
	SchedulerHTTPTO time.Duration // timeout for scheduler API calls

	// Push delivery (empty PushURL = delivery disabled, sends are logged no-ops)
	PushURL    string        // base URL of the push-notification delivery service
	PushToken  string        // bearer token for the delivery service
	PushHTTPTO time.Duration // timeout for delivery calls

	// Due-reminder sweep
	SweepSchedule string        // cron expression for the internal sweep cadence ("" = external trigger only)
	SweepLockTTL  time.Duration // advisory lock lease for one sweep pass
	DigestHour    int           // fixed time-of-day anchor (UTC hour) used when the sweep re-arms reminders

	// Metadata fetcher
	MetadataTimeout time.Duration // timeout for URL metadata fetches

	// Optional bookmark import file (YAML), loaded once at startup
	ImportFile string

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedCIDRS []string // optional, restrict internal endpoints (sweep trigger) to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LM_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LM_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LM_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LM_PRETTY_LOG", false),

		// Auth
		AuthSecret:      requireEnv("LM_AUTH_SECRET"),
		SchedulerSecret: requireEnv("LM_SCHEDULER_SECRET"),

		// Named-task scheduler
		SchedulerURL:    getenv("LM_SCHEDULER_URL", ""),
		SchedulerQueue:  getenv("LM_SCHEDULER_QUEUE", "bookmark-reminders"),
		CallbackBaseURL: getenv("LM_CALLBACK_BASE_URL", ""),
		SchedulerHTTPTO: mustDuration("LM_SCHEDULER_TIMEOUT", 10*time.Second),

		// Push delivery
		PushURL:    getenv("LM_PUSH_URL", ""),
		PushToken:  getenv("LM_PUSH_TOKEN", ""),
		PushHTTPTO: mustDuration("LM_PUSH_TIMEOUT", 10*time.Second),

		// Sweep
		SweepSchedule: getenv("LM_SWEEP_SCHEDULE", ""),
		SweepLockTTL:  mustDuration("LM_SWEEP_LOCK_TTL", 5*time.Minute),
		DigestHour:    getenvInt("LM_DIGEST_HOUR", 9),

		// Metadata fetcher
		MetadataTimeout: mustDuration("LM_METADATA_TIMEOUT", 10*time.Second),

		// Import
		ImportFile: getenv("LM_IMPORT_FILE", ""),

		// Redis settings
		RedisAddr:             requireEnv("LM_REDIS_ADDR"),
		RedisUser:             getenv("LM_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LM_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("LM_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LM_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: splitAndTrim(getenv("LM_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LM_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: LM_REDIS_PASSWORD is required when LM_REDIS_PASSWORD_REQUIRED=true")
	}

	// The gateway needs a callback target to point tasks at.
	if cfg.SchedulerURL != "" && cfg.CallbackBaseURL == "" {
		panic("❌ FATAL: LM_CALLBACK_BASE_URL is required when LM_SCHEDULER_URL is set")
	}

	if cfg.DigestHour < 0 || cfg.DigestHour > 23 {
		panic(fmt.Sprintf("❌ FATAL: LM_DIGEST_HOUR must be 0-23, got %d", cfg.DigestHour))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.AuthSecret = "***REDACTED***"
		cfgCopy.SchedulerSecret = "***REDACTED***"
		cfgCopy.PushToken = "***REDACTED***"
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// SchedulerEnabled reports whether the durable named-task scheduler is
// configured. Must mirror the gateway's own enabled check: URL, callback
// and queue all set. When false, reminders rely entirely on the due sweep.
func (c *Config) SchedulerEnabled() bool {
	return c.SchedulerURL != "" && c.CallbackBaseURL != "" && c.SchedulerQueue != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
