package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress  string
	DatabaseURI string
	JWTSecret   string

	// PaymentWindow is the in-flow timeout checked before dispatching a
	// payment. SweepTimeout is the stricter threshold the background
	// sweep applies to stale PENDING orders. They are deliberately
	// separate knobs.
	PaymentWindow time.Duration
	SweepTimeout  time.Duration
	SweepInterval time.Duration

	SlotCapacity  int
	InitialCredit float64
}

func New() *Config {
	// Missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	cfg := &Config{}

	var paymentWindowMin, sweepTimeoutMin, sweepIntervalSec int

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "server address and port")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI (empty for in-memory stores)")
	flag.StringVar(&cfg.JWTSecret, "s", "super-secret-jwt-key", "jwt signing key")
	flag.IntVar(&paymentWindowMin, "payment-window", 15, "payment window in minutes")
	flag.IntVar(&sweepTimeoutMin, "sweep-timeout", 5, "sweep expiration threshold in minutes")
	flag.IntVar(&sweepIntervalSec, "sweep-interval", 30, "sweep interval in seconds")
	flag.IntVar(&cfg.SlotCapacity, "slot-capacity", 10, "orders per delivery slot")
	flag.Float64Var(&cfg.InitialCredit, "initial-credit", 100, "starting student credit balance")
	flag.Parse()

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.DatabaseURI = getEnv("DATABASE_URI", cfg.DatabaseURI)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	paymentWindowMin = getEnvInt("PAYMENT_WINDOW_MINUTES", paymentWindowMin)
	sweepTimeoutMin = getEnvInt("SWEEP_TIMEOUT_MINUTES", sweepTimeoutMin)
	sweepIntervalSec = getEnvInt("SWEEP_INTERVAL_SECONDS", sweepIntervalSec)
	cfg.SlotCapacity = getEnvInt("SLOT_CAPACITY", cfg.SlotCapacity)
	cfg.InitialCredit = getEnvFloat("INITIAL_CREDIT", cfg.InitialCredit)

	cfg.PaymentWindow = time.Duration(paymentWindowMin) * time.Minute
	cfg.SweepTimeout = time.Duration(sweepTimeoutMin) * time.Minute
	cfg.SweepInterval = time.Duration(sweepIntervalSec) * time.Second

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
