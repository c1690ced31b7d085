package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/UserService/internal/core/ports"
	"github.com/GoArmGo/UserService/internal/messaging/payloads"
)

// runWorker читает события из очереди и архивирует их до отмены ctx
// или обрыва потока сообщений
func runWorker(
	ctx context.Context,
	consumer ports.UserEventConsumer,
	archive ports.EventArchive,
	logger *slog.Logger,
) error {
	logger.Info("worker started, waiting for events")

	done, err := consumer.StartConsumingUserEvents(ctx, archiveHandler(archive, logger))
	if err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	select {
	case err, ok := <-done:
		if ok && err != nil {
			return fmt.Errorf("потребитель RabbitMQ остановился: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("worker stopped")
	return nil
}

// archiveHandler возвращает обработчик, сохраняющий каждое событие в архив.
// Ошибка возвращает сообщение в очередь.
func archiveHandler(archive ports.EventArchive, logger *slog.Logger) func(context.Context, payloads.UserEvent) error {
	return func(ctx context.Context, event payloads.UserEvent) error {
		key, err := archive.ArchiveUserEvent(ctx, event)
		if err != nil {
			return fmt.Errorf("archive %s for user %s: %w", event.Type, event.UserID, err)
		}
		logger.Debug("event handled", "type", event.Type, "user_id", event.UserID, "key", key)
		return nil
	}
}
