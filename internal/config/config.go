package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseDriver         string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	NotificationChannel    string
	NotificationKeepAlive  time.Duration
	JWTSecret              string
	JWTTTL                 time.Duration
	FrontendURL            string
	AllowedOrigins         []string
	UploadDir              string
	UploadMaxSizeMB        int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	CourseCacheTTL         time.Duration
	AllowCoordinatorSignup bool
	LoginRateLimit         int
	BootstrapCoordinator   BootstrapCoordinator
}

// BootstrapCoordinator describes the account seeded at startup so a fresh
// deployment always has somebody able to administer users.
type BootstrapCoordinator struct {
	Name     string
	Email    string
	Password string
}

// Enabled reports whether a bootstrap coordinator was configured.
func (b BootstrapCoordinator) Enabled() bool {
	return strings.TrimSpace(b.Email) != "" && b.Password != ""
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// CloudinaryEnabled reports whether remote image storage credentials are present.
func (c Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// CORSOrigins returns the full allowlist, including the local dev servers and the frontend URL.
func (c Config) CORSOrigins() []string {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	for _, origin := range c.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COURSEHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CourseHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("notifications.channel", "coursehub")
	v.SetDefault("notifications.keepalive", "30s")
	v.SetDefault("jwt.ttl", "720h")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size_mb", 2)
	v.SetDefault("cloudinary.folder", "coursehub")
	v.SetDefault("courses.cache_ttl", "2m")
	v.SetDefault("auth.allow_coordinator_signup", false)
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("bootstrap.coordinator.name", "Coordinator")

	keepAlive, err := parseDuration(v, "notifications.keepalive", "30s")
	if err != nil {
		return Config{}, fmt.Errorf("invalid notification keepalive: %w", err)
	}

	jwtTTL, err := parseDuration(v, "jwt.ttl", "720h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v, "courses.cache_ttl", "2m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid course cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseDriver:         strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		NotificationChannel:    v.GetString("notifications.channel"),
		NotificationKeepAlive:  keepAlive,
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 jwtTTL,
		FrontendURL:            v.GetString("frontend.url"),
		AllowedOrigins:         splitList(v.GetString("cors.allowed_origins")),
		UploadDir:              v.GetString("upload.dir"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		CourseCacheTTL:         cacheTTL,
		AllowCoordinatorSignup: v.GetBool("auth.allow_coordinator_signup"),
		LoginRateLimit:         v.GetInt("auth.login_rate_limit"),
		BootstrapCoordinator: BootstrapCoordinator{
			Name:     v.GetString("bootstrap.coordinator.name"),
			Email:    v.GetString("bootstrap.coordinator.email"),
			Password: v.GetString("bootstrap.coordinator.password"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 2
	}

	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
