// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех сервисов
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	Currency                string `yaml:"currency" env-default:"EUR"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	FareAPI                 `yaml:"fare_api"`
	Alerts                  `yaml:"alerts"`
	Sampler                 `yaml:"sampler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	MetricsAddress string        `yaml:"metrics_address"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой Addr означает, что redis не используется: дедупликация
// оповещений остается только в памяти процесса.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
	RabbitMQWorkers    int           `yaml:"rabbitmq_workers" env-default:"10"`
}

// SMTP структура для настройки почтового транспорта.
// SMTPTLSServerName задает имя сервера для проверки сертификата,
// когда оно отличается от адреса подключения; пустое значение
// означает использование SMTPHost.
type SMTP struct {
	SMTPHost          string `yaml:"smtp_host"`
	SMTPPort          string `yaml:"smtp_port" env-default:"587"`
	SMTPUser          string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass          string `yaml:"smtp_pass" env:"SMTP_PASS"`
	SMTPTLSServerName string `yaml:"smtp_tls_server_name"`
}

// FareAPI структура для настройки клиента fare-API
type FareAPI struct {
	BaseURL       string        `yaml:"base_url" env-default:"https://www.ryanair.com"`
	Timeout       time.Duration `yaml:"timeout" env-default:"30s"`
	MaxRetries    int           `yaml:"max_retries" env-default:"2"`
	RetryDelay    time.Duration `yaml:"retry_delay" env-default:"500ms"`
	RatePerSecond float64       `yaml:"rate_per_second" env-default:"2"`
	RateBurst     int           `yaml:"rate_burst" env-default:"4"`
	Workers       int           `yaml:"workers" env-default:"4"`
}

// Alerts структура для настройки проверки правил оповещений
type Alerts struct {
	AlertsInterval time.Duration `yaml:"alerts_interval" env-default:"6h"`
	Recipient      string        `yaml:"recipient" env:"ALERT_RECIPIENT"`
}

// Sampler структура для настройки сбора истории цен
type Sampler struct {
	SamplerInterval time.Duration  `yaml:"sampler_interval" env-default:"24h"`
	TrackedRoutes   []TrackedRoute `yaml:"tracked_routes"`
}

// TrackedRoute пара аэропортов, по которой собирается история цен
type TrackedRoute struct {
	Origin      string `yaml:"origin"`
	Destination string `yaml:"destination"`
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
