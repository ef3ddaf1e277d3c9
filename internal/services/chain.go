// internal/services/chain.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/events"
	"github.com/javajoker/kpay-backend/internal/models"
)

// Chain serializes state-mutating operations. Each call to Execute is one
// commit: it runs under a process-wide lock inside a single database
// transaction, so commits are totally ordered and all-or-nothing.
type Chain struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *logrus.Logger
	mu        sync.Mutex
}

// Tx is the handle a commit body works with. All reads and writes of the
// commit go through DB().
type Tx struct {
	db     *gorm.DB
	now    time.Time
	events []models.ContractEvent
}

func NewChain(db *gorm.DB, publisher events.Publisher, logger *logrus.Logger) *Chain {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Chain{db: db, publisher: publisher, logger: logger}
}

func (t *Tx) DB() *gorm.DB { return t.db }

func (t *Tx) Now() time.Time { return t.now }

// Emit records an event; it is persisted only if the commit succeeds.
func (t *Tx) Emit(contract string, kind models.ContractKind, name string, args models.JSONB) {
	t.events = append(t.events, models.ContractEvent{
		Contract:     contract,
		ContractKind: kind,
		Name:         name,
		Args:         args,
	})
}

// Execute runs fn as one commit and returns the events it emitted with their
// assigned sequence numbers.
func (c *Chain) Execute(ctx context.Context, op string, fn func(tx *Tx) error) ([]models.ContractEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var committed []models.ContractEvent
	err := c.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		tx := &Tx{db: db, now: time.Now().UTC()}
		if err := fn(tx); err != nil {
			return err
		}
		if len(tx.events) == 0 {
			return nil
		}

		var last uint64
		if err := db.Model(&models.ContractEvent{}).Select("COALESCE(MAX(sequence), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("read event sequence: %w", err)
		}
		for i := range tx.events {
			last++
			tx.events[i].Sequence = last
			tx.events[i].CreatedAt = tx.now
		}
		if err := db.Create(&tx.events).Error; err != nil {
			return fmt.Errorf("write events: %w", err)
		}
		committed = tx.events
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			c.logger.WithFields(logrus.Fields{"op": op, "reason": err.Error()}).Debug("commit rejected")
		} else {
			c.logger.WithError(err).WithField("op", op).Error("commit failed")
		}
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{"op": op, "events": len(committed)}).Debug("commit applied")

	if c.publisher != nil && len(committed) > 0 {
		if err := c.publisher.Publish(ctx, committed); err != nil {
			c.logger.WithError(err).WithField("op", op).Warn("failed to publish contract events")
		}
	}
	return committed, nil
}

var domainErrors = []error{
	ErrUnauthorized, ErrInvalidArgument, ErrAlreadyListed, ErrNotListed,
	ErrInsufficientAllowance, ErrInsufficientBalance, ErrNothingToWithdraw,
	ErrInsufficientFunds, ErrOperationPaused, ErrNotFound,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
