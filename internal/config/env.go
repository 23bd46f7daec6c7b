package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Env is the process configuration read once at startup. Runtime dispatch
// switches (enabled flag, batch size) live in the dispatch_settings table.
type Env struct {
	AppAddr string
	GinMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret          string
	CORSAllowedOrigins []string

	DispatchInterval         time.Duration
	DispatchLockTTL          time.Duration
	DispatchLockWait         time.Duration
	DispatchDefaultBatchSize int
}

func defaultEnv() Env {
	return Env{
		AppAddr:                  ":8080",
		DBHost:                   "127.0.0.1",
		DBPort:                   "3306",
		DBUser:                   "root",
		DBName:                   "charter_app",
		KafkaTopic:               "charter.booking-events",
		DispatchInterval:         5 * time.Minute,
		DispatchLockTTL:          10 * time.Second,
		DispatchLockWait:         3 * time.Second,
		DispatchDefaultBatchSize: 50,
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}
}

func LoadEnv() (Env, error) {
	env := defaultEnv()
	var errs []error

	setString(&env.AppAddr, "APP_ADDR")
	env.GinMode = strings.TrimSpace(os.Getenv("GIN_MODE"))

	setString(&env.DBHost, "DB_HOST")
	setString(&env.DBPort, "DB_PORT")
	setString(&env.DBUser, "DB_USER")
	env.DBPassword = os.Getenv("DB_PASSWORD")
	setString(&env.DBName, "DB_NAME")

	env.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	env.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		env.KafkaBrokers = splitAndTrim(v)
	}
	setString(&env.KafkaTopic, "KAFKA_TOPIC")

	env.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSAllowedOrigins = splitAndTrim(v)
	}

	setDuration(&env.DispatchInterval, "DISPATCH_INTERVAL", &errs)
	setDuration(&env.DispatchLockTTL, "DISPATCH_LOCK_TTL", &errs)
	setDuration(&env.DispatchLockWait, "DISPATCH_LOCK_WAIT", &errs)
	setInt(&env.DispatchDefaultBatchSize, "DISPATCH_DEFAULT_BATCH_SIZE", &errs)

	if env.DispatchInterval < 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_INTERVAL must be >= 0"))
	}
	if env.DispatchLockTTL <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_LOCK_TTL must be > 0"))
	}
	if env.DispatchLockWait <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_LOCK_WAIT must be > 0"))
	}
	if env.DispatchDefaultBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_DEFAULT_BATCH_SIZE must be > 0"))
	}

	return env, errors.Join(errs...)
}

// DSN builds the MySQL connection string for the configured database.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser,
		e.DBPassword,
		e.DBHost,
		e.DBPort,
		e.DBName,
	)
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func setDuration(target *time.Duration, key string, errs *[]error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setInt(target *int, key string, errs *[]error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
