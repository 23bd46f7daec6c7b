package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadEnv_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ADDR", "DB_HOST", "KAFKA_BROKERS", "DISPATCH_INTERVAL", "DISPATCH_DEFAULT_BATCH_SIZE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.AppAddr != ":8080" || env.DispatchInterval != 5*time.Minute || env.DispatchDefaultBatchSize != 50 {
		t.Fatalf("unexpected defaults %+v", env)
	}
	if len(env.KafkaBrokers) != 0 {
		t.Fatalf("brokers should be empty, got %v", env.KafkaBrokers)
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("DISPATCH_INTERVAL", "0")
	t.Setenv("DISPATCH_LOCK_WAIT", "750ms")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "charter")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.KafkaBrokers) != 2 || env.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", env.KafkaBrokers)
	}
	if env.DispatchInterval != 0 {
		t.Fatalf("interval 0 should disable the scheduler, got %v", env.DispatchInterval)
	}
	if env.DispatchLockWait != 750*time.Millisecond {
		t.Fatalf("unexpected lock wait %v", env.DispatchLockWait)
	}
	if !strings.Contains(env.DSN(), "@tcp(db:3306)/charter?parseTime=true") {
		t.Fatalf("unexpected dsn %s", env.DSN())
	}
}

func TestLoadEnv_JoinsErrors(t *testing.T) {
	t.Setenv("DISPATCH_INTERVAL", "soon")
	t.Setenv("DISPATCH_DEFAULT_BATCH_SIZE", "-3")

	_, err := LoadEnv()
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "invalid DISPATCH_INTERVAL") || !strings.Contains(msg, "DISPATCH_DEFAULT_BATCH_SIZE must be > 0") {
		t.Fatalf("expected both problems reported, got %q", msg)
	}
}
