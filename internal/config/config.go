// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех бинарников сервиса
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQConnection      `yaml:"rabbitmq_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	SMTPConnection          `yaml:"smtp_connection"`
	PaymentProvider         `yaml:"payment_provider"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQConnection структура для настройки подключения к rabbitmq
type RabbitMQConnection struct {
	AddressRabbitMQ string        `yaml:"addressrabbitmq" env:"RABBITMQ_ADDRESS"`
	RetriesRabbitMQ int           `yaml:"retries" env-default:"5"`
	DelayRabbitMQ   time.Duration `yaml:"delay" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"15m"`
	RefreshTTL   time.Duration `yaml:"refresh_ttl" env-default:"720h"`
}

// SMTPConnection структура для настройки отправки почты
type SMTPConnection struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// PaymentProvider структура для настройки клиента платёжного провайдера.
// APIKey передаётся в сервис как зависимость, а не как глобальное состояние.
type PaymentProvider struct {
	APIKey     string `yaml:"api_key" env:"PAYMENT_PROVIDER_API_KEY"`
	APIURL     string `yaml:"api_url" env-default:"https://api.stripe.com/v1"`
	Currency   string `yaml:"currency" env-default:"rub"`
	SuccessURL string `yaml:"success_url" env-default:"http://localhost:8080/api/v1/payments/success"`
	CancelURL  string `yaml:"cancel_url" env-default:"http://localhost:8080/api/v1/payments/cancel"`
}

// Scheduler структура для настройки фоновой деактивации пользователей
type Scheduler struct {
	DeactivateCronSpec string `yaml:"deactivate_cron_spec" env-default:"0 3 * * *"`
	DormantDays        int    `yaml:"dormant_days" env-default:"30"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной окружения CONFIG_PATH
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
