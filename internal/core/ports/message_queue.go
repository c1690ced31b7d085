package ports

import (
	"context"

	"github.com/GoArmGo/UserService/internal/messaging/payloads"
)

// UserEventPublisher публикует события жизненного цикла пользователя.
// Используется usecase-слоем после успешной записи в хранилище
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, event payloads.UserEvent) error
}

// UserEventConsumer читает события из очереди, используется воркером.
// handler вызывается для каждого сообщения; ошибка handler возвращает сообщение в очередь.
// Канал done получает ошибку, если поток сообщений оборвался, и закрывается
// без ошибки после отмены ctx
type UserEventConsumer interface {
	StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEvent) error) (done <-chan error, err error)
}

// NopPublisher ничего не публикует, когда RabbitMQ не настроен
type NopPublisher struct{}

func (NopPublisher) PublishUserEvent(context.Context, payloads.UserEvent) error { return nil }
