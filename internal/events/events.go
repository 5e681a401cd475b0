// Package events публикует события обновления кеша в RabbitMQ. Подписчики
// (push-уведомления, виджеты) узнают из них, что данные аккаунта посвежели,
// без опроса API.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

const exchange = "cache-events"

// Notifier публикует событие обновления домена кеша аккаунта.
type Notifier interface {
	CacheRefreshed(accountLocalID, domain string) error
}

// QueueConfig описывает очередь и ключ маршрутизации подписчика.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// RefreshQueues возвращает очереди подписчиков событий обновления.
func RefreshQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "cache.refreshed", RoutingKey: "refreshed"},
	}
}

// refreshEvent — тело события обновления кеша.
type refreshEvent struct {
	AccountLocalID string `json:"account_local_id"`
	Domain         string `json:"domain"`
	Timestamp      int64  `json:"timestamp"`
}

// Publisher публикует события в канал RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// Connect подключается к RabbitMQ с повторами.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "events.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// NewPublisher открывает канал, объявляет обменник и очереди подписчиков.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	const op = "events.NewPublisher"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range RefreshQueues() {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			exchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return &Publisher{ch: ch}, nil
}

// CacheRefreshed публикует событие обновления домена кеша аккаунта.
func (p *Publisher) CacheRefreshed(accountLocalID, domain string) error {
	const op = "events.Publisher.CacheRefreshed"

	body, err := json.Marshal(refreshEvent{
		AccountLocalID: accountLocalID,
		Domain:         domain,
		Timestamp:      time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		exchange,
		"refreshed",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Noop — заглушка для окружений без RabbitMQ.
type Noop struct{}

// CacheRefreshed ничего не делает.
func (Noop) CacheRefreshed(string, string) error { return nil }
