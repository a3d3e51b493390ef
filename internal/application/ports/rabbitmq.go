package ports

import (
	"context"

	"json-share-api/internal/domain/share"
)

type EventPublisher interface {
	Publish(e share.Event)
}

type RabbitMQ interface {
	EventPublisher
	Connect(ctx context.Context, dsn string) error
	Init() error
	PublisherWorker(ctx context.Context)
	Close() error
}
