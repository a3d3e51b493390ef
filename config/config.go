package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const EnvDevelopment = "development"

type (
	APP struct {
		Name           string
		Host           string
		Port           string
		Env            string
		PublicBaseURL  string
		RequestTimeout time.Duration
		TrustedProxies []string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
		Timeout  time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
		MaxBytes int
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	Limits struct {
		CreateRPS   float64
		CreateBurst int
		IdleTTL     time.Duration
	}
	Sweep struct {
		Interval time.Duration
		Grace    time.Duration
	}

	Config struct {
		App    APP
		DB     DB
		Redis  Redis
		MQ     MQ
		Limits Limits
		Sweep  Sweep
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

// getEnvList splits a comma separated value. Unset yields nil.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func Load() Config {
	app := APP{
		Name:           getEnv("SERVICE_NAME", "jsonshare"),
		Host:           getEnv("SERVICE_HOST", ""),
		Port:           getEnv("SERVICE_PORT", "8080"),
		Env:            getEnv("SERVICE_ENV", ""),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", "5432"),
		Timeout:  getEnvDuration("DB_TIMEOUT", 5*time.Second),
	}
	redis := Redis{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		TTL:      getEnvDuration("REDIS_TTL", time.Hour),
		MaxBytes: getEnvInt("REDIS_MAX_BYTES", 1<<20),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", "5672"),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "jsonshare.events"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "topic"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "jsonshare.audit"),
	}
	limits := Limits{
		CreateRPS:   getEnvFloat("RATE_LIMIT_RPS", 2),
		CreateBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		IdleTTL:     getEnvDuration("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
	}
	sweep := Sweep{
		Interval: getEnvDuration("SWEEP_INTERVAL", 0),
		Grace:    getEnvDuration("SWEEP_GRACE", 7*24*time.Hour),
	}

	return Config{
		App:    app,
		DB:     db,
		Redis:  redis,
		MQ:     mq,
		Limits: limits,
		Sweep:  sweep,
	}
}

func (c Config) IsDevelopment() bool { return c.App.Env == EnvDevelopment }

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

func (r Redis) Enabled() bool { return r.Addr != "" }

func (m MQ) Enabled() bool { return m.Host != "" }

func (s Sweep) Enabled() bool { return s.Interval > 0 }
