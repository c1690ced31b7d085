package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	ServerPort    string `env:"SERVER_PORT" envDefault:"8080"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Настройки аутентификации
	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"12"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// RabbitMQ не обязателен для сервера: без URL события не публикуются
	RabbitMQ struct {
		RabbitMQURL       string        `env:"RABBITMQ_URL"`
		RabbitMQQueueName string        `env:"RABBITMQ_QUEUE_NAME" envDefault:"user_events_queue"`
		Prefetch          int           `env:"RABBITMQ_PREFETCH" envDefault:"1"`
		RetryDelay        time.Duration `env:"RABBITMQ_RETRY_DELAY" envDefault:"1s"` // пауза перед повторной доставкой
	}

	// S3 / MinIO для архива событий, нужен только воркеру
	S3 struct {
		Endpoint        string `env:"S3_ENDPOINT"`
		AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
		UseSSL          bool   `env:"S3_USE_SSL"`
		BucketName      string `env:"S3_BUCKET_NAME" envDefault:"user-audit"`
		Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	return &cfg, nil
}

// ValidateWorker проверяет параметры, без которых воркер не запустится.
func (c *Config) ValidateWorker() error {
	var errs []error
	if c.RabbitMQ.RabbitMQURL == "" {
		errs = append(errs, errors.New("RABBITMQ_URL is required in worker mode"))
	}
	if c.S3.Endpoint == "" || c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
		errs = append(errs, errors.New("S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required in worker mode"))
	}
	return errors.Join(errs...)
}
