package app

import (
	"strings"
	"time"

	"github.com/yungbote/gymflow-backend/internal/http/middleware"
	"github.com/yungbote/gymflow-backend/internal/platform/envutil"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string

	// DatabaseDriver is "postgres" or "sqlite"; SQLitePath applies to the latter.
	DatabaseDriver string
	SQLitePath     string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Location            *time.Location
	ExpiryWindowDays    int
	SweepCron           string
	NotifyTimeout       time.Duration
	BookingTemplatePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	SendGridEnabled bool
	TwilioEnabled   bool

	MetricsAddr    string
	AllowedOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	tzName := envutil.GetEnv("APP_TIMEZONE", "UTC", log)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Warn("Unknown APP_TIMEZONE, falling back to UTC", "timezone", tzName, "error", err)
		loc = time.UTC
	}

	expiryWindow := envutil.GetEnvAsInt("CONTRACT_EXPIRY_WINDOW_DAYS", 7, log)
	if expiryWindow < 0 {
		expiryWindow = 7
	}
	notifyTimeout := envutil.GetEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 10, log)
	if notifyTimeout <= 0 {
		notifyTimeout = 10
	}

	return Config{
		Port:        envutil.GetEnv("PORT", "8080", log),
		ServiceName: envutil.GetEnv("SERVICE_NAME", "gymflow-api", log),
		Environment: envutil.GetEnv("APP_ENV", "development", log),
		Version:     envutil.GetEnv("APP_VERSION", "dev", log),

		DatabaseDriver: strings.ToLower(envutil.GetEnv("DATABASE_DRIVER", "postgres", log)),
		SQLitePath:     envutil.GetEnv("SQLITE_PATH", "gymflow.db", log),

		JWTSecretKey:   envutil.GetEnv("JWT_SECRET_KEY", "", log),
		AccessTokenTTL: time.Duration(envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)) * time.Second,

		Location:            loc,
		ExpiryWindowDays:    expiryWindow,
		SweepCron:           envutil.GetEnv("CONTRACT_SWEEP_CRON", "@daily", log),
		NotifyTimeout:       time.Duration(notifyTimeout) * time.Second,
		BookingTemplatePath: envutil.GetEnv("BOOKING_EMAIL_TEMPLATE_YAML", "", log),

		RedisAddr:     envutil.GetEnv("REDIS_ADDR", "", log),
		RedisPassword: envutil.GetEnv("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.GetEnvAsInt("REDIS_DB", 0, log),
		RedisChannel:  envutil.GetEnv("REDIS_BOOKING_CHANNEL", "bookings", log),

		SendGridEnabled: envutil.GetEnv("SENDGRID_API_KEY", "", log) != "",
		TwilioEnabled:   envutil.GetEnv("TWILIO_ACCOUNT_SID", "", log) != "",

		MetricsAddr:    envutil.GetEnv("METRICS_ADDR", "", log),
		AllowedOrigins: middleware.AllowedOriginsFromEnv(),
	}
}
