package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/GoArmGo/UserService/internal/adapter/storage/s3archive"
	"github.com/GoArmGo/UserService/internal/app"
	"github.com/GoArmGo/UserService/internal/config"
	"github.com/GoArmGo/UserService/internal/core/ports"
	"github.com/GoArmGo/UserService/internal/credential"
	"github.com/GoArmGo/UserService/internal/database/client"
	"github.com/GoArmGo/UserService/internal/database/storage"
	"github.com/GoArmGo/UserService/internal/handler"
	"github.com/GoArmGo/UserService/internal/logger"
	"github.com/GoArmGo/UserService/internal/rabbitmq"
	"github.com/GoArmGo/UserService/internal/token"
	"github.com/GoArmGo/UserService/internal/usecase"
)

// BuildApp инициализирует зависимости для режима mode и возвращает готовый объект App.
func BuildApp(ctx context.Context, mode string) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	switch mode {
	case app.ModeServer:
		return buildServer(cfg, slogger)
	case app.ModeWorker:
		return buildWorker(ctx, cfg, slogger)
	default:
		return nil, fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}
}

func buildServer(cfg *config.Config, slogger *slog.Logger) (*app.App, error) {
	// 2. PostgreSQL: sqlx для миграций и пинга, GORM для хранилища
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	userStorage := storage.NewUserStorage(dbClient.Gorm, slogger)

	// 3. Пароли и токены
	hasher := credential.NewBcryptHasher(cfg.BcryptCost)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)

	// 4. RabbitMQ опционален: без URL события не публикуются
	var publisher ports.UserEventPublisher = ports.NopPublisher{}
	closers := []io.Closer{dbClient}
	if cfg.RabbitMQ.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			dbClient.Close()
			return nil, err
		}
		publisher = mq
		closers = append(closers, mq)
	} else {
		slogger.Warn("RABBITMQ_URL is not set, user events will not be published")
	}

	// 5. Бизнес-логика и HTTP
	userUseCase := usecase.NewUserUseCase(userStorage, hasher, issuer, publisher, slogger)
	router := handler.NewRouter(
		handler.NewUserHandler(userUseCase, slogger),
		handler.NewHealthHandler(dbClient, slogger),
		slogger,
		cfg.CORSAllowedOrigins,
	)

	slogger.Info("server dependencies initialized", "bcrypt_cost", hasher.Cost())
	return app.NewServerApp(cfg, slogger, router, closers...), nil
}

func buildWorker(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*app.App, error) {
	if err := cfg.ValidateWorker(); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}

	archive, err := s3archive.NewClient(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}

	mq, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	slogger.Info("worker dependencies initialized", "bucket", cfg.S3.BucketName, "queue", cfg.RabbitMQ.RabbitMQQueueName)
	return app.NewWorkerApp(cfg, slogger, mq, archive, mq), nil
}
