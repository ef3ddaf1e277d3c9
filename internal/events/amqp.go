// internal/events/amqp.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/kpay-backend/internal/models"
)

// AMQPPublisher publishes events to a durable topic exchange.
type AMQPPublisher struct {
	url      string
	exchange string
	logger   *logrus.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	if !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewAMQPPublisher(rawURL, exchange string, logger *logrus.Logger) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(rawURL)
	if err != nil {
		return nil, err
	}
	p := &AMQPPublisher{url: cleanURL, exchange: exchange, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect() error {
	conn, err := amqp091.DialConfig(p.url, amqp091.Config{
		Dial: func(network, addr string) (net.Conn, error) {
			return net.DialTimeout(network, addr, 10*time.Second)
		},
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.conn = conn
	p.channel = channel
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, events []models.ContractEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range events {
		body, err := json.Marshal(NewMessage(e))
		if err != nil {
			return err
		}
		msg := amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    fmt.Sprintf("%d", e.Sequence),
			Timestamp:    e.CreatedAt,
			Body:         body,
		}

		if err := p.publishOne(ctx, RoutingKey(e), msg); err != nil {
			// one reconnect, then give up on the rest of the batch
			p.close()
			if cerr := p.connect(); cerr != nil {
				return fmt.Errorf("publish %s: %w (reconnect: %v)", RoutingKey(e), err, cerr)
			}
			if err := p.publishOne(ctx, RoutingKey(e), msg); err != nil {
				return fmt.Errorf("publish %s: %w", RoutingKey(e), err)
			}
		}
		p.logger.WithFields(logrus.Fields{
			"exchange":    p.exchange,
			"routing_key": RoutingKey(e),
			"sequence":    e.Sequence,
		}).Debug("published contract event")
	}
	return nil
}

func (p *AMQPPublisher) publishOne(ctx context.Context, key string, msg amqp091.Publishing) error {
	if p.channel == nil || p.channel.IsClosed() {
		return amqp091.ErrClosed
	}
	return p.channel.PublishWithContext(ctx, p.exchange, key, false, false, msg)
}

func (p *AMQPPublisher) close() {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.close()
	return nil
}
