package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GoArmGo/UserService/internal/config"
	"github.com/GoArmGo/UserService/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger

	prefetch   int
	retryDelay time.Duration

	// amqp.Channel нельзя использовать из нескольких горутин для публикации
	mu sync.Mutex
}

// NewClient создает и инициализирует новый клиент RabbitMQ
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{
		logger:     logger,
		prefetch:   cfg.RabbitMQ.Prefetch,
		retryDelay: cfg.RabbitMQ.RetryDelay,
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// Идемпотентно: очередь создается, если ее нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q

	logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)
	return client, nil
}

// Close закрывает соединение и канал RabbitMQ
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	c.logger.Info("RabbitMQ connection closed")
	return nil
}

// PublishUserEvent публикует событие пользователя в очередь.
// Реализует ports.UserEventPublisher.
func (c *Client) PublishUserEvent(ctx context.Context, event payloads.UserEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Debug("event published", "queue", c.queue.Name, "type", event.Type, "user_id", event.UserID)
	return nil
}

// ErrConsumerStopped означает, что брокер закрыл поток доставки.
var ErrConsumerStopped = errors.New("rabbitmq: delivery stream closed")

// StartConsumingUserEvents начинает потребление событий из очереди.
// Реализует ports.UserEventConsumer. Сообщения обрабатываются в отдельной
// горутине; возвращаемый канал получает ErrConsumerStopped, если брокер
// закрыл поток, и закрывается без ошибки при отмене ctx.
func (c *Client) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEvent) error) (<-chan error, error) {
	if c.prefetch > 0 {
		if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	closed := c.channel.NotifyClose(make(chan *amqp.Error, 1))

	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name, "prefetch", c.prefetch)
	return c.consume(ctx, msgs, closed, handler), nil
}

// consume обрабатывает доставки до отмены ctx или закрытия msgs.
func (c *Client) consume(
	ctx context.Context,
	msgs <-chan amqp.Delivery,
	closed <-chan *amqp.Error,
	handler func(context.Context, payloads.UserEvent) error,
) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					err := ErrConsumerStopped
					select {
					case reason, ok := <-closed:
						if ok && reason != nil {
							err = fmt.Errorf("%w: %s", ErrConsumerStopped, reason.Error())
						}
					default:
					}
					c.logger.Error("RabbitMQ delivery channel closed, stopping consumer", "error", err)
					done <- err
					return
				}
				c.handleDelivery(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return done
}

// handleDelivery разбирает сообщение и подтверждает его по результату handler.
// Битый JSON отклоняется без возврата в очередь, ошибка handler — с возвратом
// после паузы retryDelay.
func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.UserEvent) error) {
	var event payloads.UserEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error("failed to unmarshal message", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		c.logger.Error("failed to process event", "error", err, "type", event.Type, "user_id", event.UserID)
		c.waitRetry(ctx)
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "error", err)
		return
	}
	c.logger.Debug("event processed", "type", event.Type, "user_id", event.UserID)
}

func (c *Client) waitRetry(ctx context.Context) {
	if c.retryDelay <= 0 {
		return
	}
	t := time.NewTimer(c.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
