package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"vidtube/logger"
)

// AMQPQueue publishes jobs to a durable RabbitMQ queue on the default
// exchange and consumes them with manual acknowledgement.
type AMQPQueue struct {
	conn     *amqp.Connection
	pubMu    sync.Mutex
	pub      *amqp.Channel
	name     string
	prefetch int
}

func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	q := &AMQPQueue{conn: conn, pub: ch, name: TranscodeQueue, prefetch: 4}
	if err := q.declare(ch); err != nil {
		q.Close()
		return nil, err
	}
	return q, nil
}

func (q *AMQPQueue) declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		q.name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", q.name, err)
	}
	return nil
}

func (q *AMQPQueue) Enqueue(ctx context.Context, job TranscodeJob) error {
	body, err := encode(job)
	if err != nil {
		return err
	}
	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	err = q.pub.PublishWithContext(ctx, "", q.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         body,
	})
	return errors.Wrap(err, "amqp publish")
}

func (q *AMQPQueue) Consume(ctx context.Context, h Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()
	if err := ch.Qos(q.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := q.declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(
		q.name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	log := logger.L().WithField("queue", q.name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrClosed
			}
			job, err := decode(d.Body)
			if err != nil {
				log.WithError(err).Error("dropping malformed job")
				d.Nack(false, false)
				continue
			}
			if err := h(ctx, job); err != nil {
				log.WithError(err).WithField("job", job.ID).Debug("handler returned error")
			}
			if err := d.Ack(false); err != nil {
				log.WithError(err).WithField("job", job.ID).Warn("ack failed")
			}
		}
	}
}

func (q *AMQPQueue) Close() error {
	if q.pub != nil {
		q.pub.Close()
	}
	if q.conn != nil && !q.conn.IsClosed() {
		return q.conn.Close()
	}
	return nil
}
