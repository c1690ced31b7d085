package ports

import (
	"context"

	"github.com/GoArmGo/UserService/internal/messaging/payloads"
)

// EventArchive сохраняет события в долговременное хранилище (S3, MinIO)
type EventArchive interface {
	// ArchiveUserEvent сохраняет событие и возвращает ключ объекта
	ArchiveUserEvent(ctx context.Context, event payloads.UserEvent) (string, error)
}
