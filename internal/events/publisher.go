// internal/events/publisher.go
package events

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/kpay-backend/internal/models"
)

// Publisher fans committed contract events out to external consumers. It is
// called after the commit; a failure never undoes state.
type Publisher interface {
	Publish(ctx context.Context, events []models.ContractEvent) error
	Close() error
}

// Message is the wire form of one event.
type Message struct {
	Sequence     uint64              `json:"sequence"`
	Contract     string              `json:"contract"`
	ContractKind models.ContractKind `json:"contract_kind"`
	Name         string              `json:"name"`
	Args         models.JSONB        `json:"args"`
	EmittedAt    string              `json:"emitted_at"`
}

func NewMessage(e models.ContractEvent) Message {
	return Message{
		Sequence:     e.Sequence,
		Contract:     e.Contract,
		ContractKind: e.ContractKind,
		Name:         e.Name,
		Args:         e.Args,
		EmittedAt:    e.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// RoutingKey is "<contract-kind>.<EventName>", e.g. "nft_marketplace.NFTSold".
func RoutingKey(e models.ContractEvent) string {
	return fmt.Sprintf("%s.%s", e.ContractKind, e.Name)
}

// LogPublisher writes events to the structured log. It is used when no broker
// is configured and as the fallback when the broker is unreachable.
type LogPublisher struct {
	logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events []models.ContractEvent) error {
	for _, e := range events {
		p.logger.WithFields(logrus.Fields{
			"sequence":    e.Sequence,
			"contract":    e.Contract,
			"routing_key": RoutingKey(e),
			"args":        e.Args,
		}).Info("contract event")
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// New returns the AMQP publisher when url is set and reachable, the log
// publisher otherwise.
func New(url, exchange string, logger *logrus.Logger) Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if url == "" {
		logger.Info("AMQP_URL not set, contract events go to the log")
		return NewLogPublisher(logger)
	}
	p, err := NewAMQPPublisher(url, exchange, logger)
	if err != nil {
		logger.WithError(err).Warn("event broker unavailable, contract events go to the log")
		return NewLogPublisher(logger)
	}
	return p
}
