package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/mhsenam/rentmio/internal/utils"
)

const handleTimeout = 30 * time.Second

func openChannel(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return conn, ch, nil
}

/* ------------------------------------------------------------------
   Publisher
------------------------------------------------------------------ */

type AMQPPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, ch, err := openChannel(url, queue)
	if err != nil {
		return nil, err
	}
	utils.Logger.WithField("queue", queue).Info("AMQP publisher ready")
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, ev PropertyEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	// amqp.Channel is not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.Publish(
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

/* ------------------------------------------------------------------
   Consumer
------------------------------------------------------------------ */

type AMQPConsumer struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	handler Handler
}

func NewAMQPConsumer(url, queue string, h Handler) (*AMQPConsumer, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, ch, err := openChannel(url, queue)
	if err != nil {
		return nil, err
	}
	return &AMQPConsumer{conn: conn, ch: ch, queue: queue, handler: h}, nil
}

// Start consumes one message at a time until ctx is done or the channel closes.
func (c *AMQPConsumer) Start(ctx context.Context) error {
	if err := c.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	msgs, err := c.ch.Consume(
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	utils.Logger.WithField("queue", c.queue).Info("AMQP consumer started")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					utils.Logger.Warn("AMQP delivery channel closed")
					return
				}
				c.process(ctx, msg)
			}
		}
	}()
	return nil
}

func (c *AMQPConsumer) process(ctx context.Context, msg amqp.Delivery) {
	ack, requeue := dispatch(ctx, c.handler, msg.Body)
	if ack {
		if err := msg.Ack(false); err != nil {
			utils.Logger.WithError(err).Warn("failed to ack property event")
		}
		return
	}
	if err := msg.Nack(false, requeue); err != nil {
		utils.Logger.WithError(err).Warn("failed to nack property event")
	}
}

// dispatch decides the delivery outcome: malformed bodies are dropped,
// handler failures are requeued.
func dispatch(ctx context.Context, h Handler, body []byte) (ack, requeue bool) {
	ev, err := decodeEvent(body)
	if err != nil {
		utils.Logger.WithError(err).Warn("dropping property event")
		return false, false
	}

	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	log := utils.Logger.WithFields(logrus.Fields{"action": ev.Action, "property_id": ev.PropertyID})
	if err := h.Handle(hctx, ev); err != nil {
		log.WithError(err).Error("property event handler failed, requeueing")
		return false, true
	}
	log.Debug("property event processed")
	return true, false
}

func (c *AMQPConsumer) Close() error {
	if err := c.ch.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
