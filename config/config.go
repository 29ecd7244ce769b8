package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve on images without a zoneinfo database

	"retail-service/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port        string
	Env         string
	CORSOrigins []string
	JWT         JWT
	Session     Session
	DB          DB
	Redis       Redis
	Kafka       Kafka
	Orders      Orders
	Auth        Auth
}

type JWT struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessExp time.Duration
}

type Session struct {
	IdleTimeout   time.Duration
	CookieName    string
	Secure        bool
	SweepInterval time.Duration
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Enabled     bool
	Brokers     []string
	TopicOrders string
}

type Orders struct {
	EnableStockDecrement bool
	DeliveryLeadTime     time.Duration
	MaxNumberAttempts    int
	// Location dates order numbers; ORDER_TIMEZONE unset means time.Local.
	Location *time.Location
}

type Auth struct {
	// PasswordScheme is "plain" or "bcrypt".
	PasswordScheme string
	BcryptCost     int
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port:        getEnvDefault("APP_PORT", "8080"),
		Env:         getEnvDefault("ENV", "production"),
		CORSOrigins: splitAndTrim(getEnvDefault("CORS_ORIGINS", "*")),
		JWT: JWT{
			Secret:    getEnv("JWT_SECRET", log),
			Issuer:    getEnvDefault("JWT_ISSUER", "retail-service"),
			Audience:  getEnvDefault("JWT_AUDIENCE", "retail-clients"),
			AccessExp: durationDefault(os.Getenv("ACCESS_EXP"), 3*time.Hour),
		},
		Session: Session{
			IdleTimeout:   durationDefault(os.Getenv("SESSION_IDLE"), 30*time.Minute),
			CookieName:    getEnvDefault("SESSION_COOKIE", "retail_session"),
			Secure:        os.Getenv("SESSION_SECURE") == "true",
			SweepInterval: durationDefault(os.Getenv("SESSION_SWEEP_INTERVAL"), 15*time.Minute),
		},
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
			},
		},
		Redis: Redis{
			Enabled:  os.Getenv("REDIS_ENABLED") == "true",
			Addr:     getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
		},
		Kafka: Kafka{
			Enabled:     os.Getenv("KAFKA_ENABLED") == "true",
			Brokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			TopicOrders: getEnvDefault("KAFKA_TOPIC_ORDERS", "retail.orders"),
		},
		Orders: Orders{
			EnableStockDecrement: os.Getenv("ORDER_STOCK_DECREMENT") == "true",
			DeliveryLeadTime:     durationDefault(os.Getenv("ORDER_DELIVERY_LEAD"), 7*24*time.Hour),
			MaxNumberAttempts:    atoiDefault(os.Getenv("ORDER_NUMBER_ATTEMPTS"), 100),
			Location:             getLocation("ORDER_TIMEZONE", log),
		},
		Auth: Auth{
			PasswordScheme: getEnvDefault("PASSWORD_SCHEME", "plain"),
			BcryptCost:     atoiDefault(os.Getenv("BCRYPT_COST"), 10),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

// getLocation loads an IANA zone name; a bad name is fatal like a missing
// required variable.
func getLocation(key string, log *zap.Logger) *time.Location {
	name := os.Getenv(key)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error("invalid time zone", zap.String("key", key), zap.String("value", name), zap.Error(err))
		panic("invalid time zone in " + key + ": " + name)
	}
	return loc
}

// parseDurationWithDays accepts time.ParseDuration syntax plus an "Nd" form.
func parseDurationWithDays(s string) (time.Duration, error) {
	if daysStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func durationDefault(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := parseDurationWithDays(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
