package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"routegraph/dashboard/internal/constants"
)

// Config holds every setting of the dashboard service.
type Config struct {
	AppEnv  string
	Addr    string
	LogFile string

	BackendBaseURL string

	PushTransport      string // "stomp" or "redis"
	PushURL            string
	PushReconnectDelay time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string

	IdentityStore string // "memory" or "redis"
	SessionSecret string
	SessionTTL    time.Duration

	RoutesPageSize      int
	PagePlacement       constants.PagePlacement
	ImportWatchInterval time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		AppEnv:              "development",
		Addr:                ":3000",
		BackendBaseURL:      "http://localhost:8080/api",
		PushTransport:       "stomp",
		PushURL:             "ws://localhost:8080/ws/websocket",
		PushReconnectDelay:  constants.DefaultReconnectDelay,
		RedisHost:           "localhost",
		RedisPort:           "6379",
		IdentityStore:       "memory",
		SessionSecret:       "dev-session-secret",
		SessionTTL:          constants.DefaultSessionTTL,
		RoutesPageSize:      constants.DefaultRoutesPageSize,
		PagePlacement:       constants.PlacementOptimistic,
		ImportWatchInterval: constants.DefaultImportWatchInterval,
		RateLimitRPS:        10,
		RateLimitBurst:      20,
		AllowedOrigins:      []string{"http://localhost:3000"},
	}
}

// Load reads an optional .env file, then the environment, then flags.
func Load(args []string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	addr := fs.String("a", "", "address and port to run the dashboard on")
	backend := fs.String("b", "", "backend REST base URL")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *backend != "" {
		cfg.BackendBaseURL = *backend
	}

	cfg.Addr = validateAddress(cfg.Addr)
	cfg.BackendBaseURL = strings.TrimRight(cfg.BackendBaseURL, "/")
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("APP_ENV", &c.AppEnv)
	str("DASHBOARD_ADDR", &c.Addr)
	str("LOG_FILE", &c.LogFile)
	str("BACKEND_BASE_URL", &c.BackendBaseURL)
	str("PUSH_TRANSPORT", &c.PushTransport)
	str("PUSH_URL", &c.PushURL)
	str("REDIS_HOST", &c.RedisHost)
	str("REDIS_PORT", &c.RedisPort)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("IDENTITY_STORE", &c.IdentityStore)
	str("SESSION_SECRET", &c.SessionSecret)

	if v := getenv("PAGE_PLACEMENT"); v != "" {
		c.PagePlacement = constants.PagePlacement(v)
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}

	durations := map[string]*time.Duration{
		"PUSH_RECONNECT_DELAY":  &c.PushReconnectDelay,
		"SESSION_TTL":           &c.SessionTTL,
		"IMPORT_WATCH_INTERVAL": &c.ImportWatchInterval,
	}
	for key, dst := range durations {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := getenv("ROUTES_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROUTES_PAGE_SIZE: %w", err)
		}
		c.RoutesPageSize = n
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	return nil
}

// Validate rejects combinations the service cannot run with.
func (c *Config) Validate() error {
	switch c.PushTransport {
	case "stomp", "redis":
	default:
		return fmt.Errorf("PUSH_TRANSPORT must be stomp or redis, got %q", c.PushTransport)
	}
	switch c.IdentityStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("IDENTITY_STORE must be memory or redis, got %q", c.IdentityStore)
	}
	switch c.PagePlacement {
	case constants.PlacementOptimistic, constants.PlacementRefetch:
	default:
		return fmt.Errorf("PAGE_PLACEMENT must be optimistic or refetch, got %q", c.PagePlacement)
	}
	if c.RoutesPageSize <= 0 {
		return fmt.Errorf("ROUTES_PAGE_SIZE must be > 0")
	}
	if c.PushReconnectDelay <= 0 {
		return fmt.Errorf("PUSH_RECONNECT_DELAY must be > 0")
	}
	if c.AppEnv == "production" && c.SessionSecret == Default().SessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}

// RedisAddr joins host and port.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func validateAddress(addr string) string {
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
