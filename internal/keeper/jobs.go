// internal/keeper/jobs.go
package keeper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/kpay-backend/pkg/kpayclient"
)

// PurchaseClient is the part of the kpay API the keeper drives.
type PurchaseClient interface {
	GetMyOrder(ctx context.Context) (*kpayclient.Order, bool, error)
	ExecutePurchase(ctx context.Context) (*kpayclient.Order, error)
}

// Jobs holds the keeper's scheduled work. The ledger does not enforce the
// purchase interval, so the keeper does.
type Jobs struct {
	client  PurchaseClient
	logger  *logrus.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewJobs(client PurchaseClient, logger *logrus.Logger, timeout time.Duration) *Jobs {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Jobs{client: client, logger: logger, timeout: timeout, now: time.Now}
}

// Due reports whether an order should run at now.
func Due(order *kpayclient.Order, now time.Time) bool {
	if order.LastExecutedAt == nil || order.PurchaseInterval == 0 {
		return true
	}
	next := order.LastExecutedAt.Add(time.Duration(order.PurchaseInterval) * time.Second)
	return !now.Before(next)
}

// ExecuteDuePurchase runs the caller's order once if it is active and due.
func (j *Jobs) ExecuteDuePurchase() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	order, active, err := j.client.GetMyOrder(ctx)
	if err != nil {
		j.logger.WithError(err).Error("failed to fetch purchase order")
		return
	}
	if !active {
		j.logger.Debug("no active purchase order")
		return
	}
	if !Due(order, j.now()) {
		j.logger.WithField("last_executed_at", order.LastExecutedAt).Debug("purchase not due yet")
		return
	}

	executed, err := j.client.ExecutePurchase(ctx)
	if err != nil {
		if kpayclient.IsCode(err, "INSUFFICIENT_BALANCE") || kpayclient.IsCode(err, "INSUFFICIENT_ALLOWANCE") {
			j.logger.WithError(err).Warn("purchase skipped")
			return
		}
		j.logger.WithError(err).Error("failed to execute purchase")
		return
	}

	j.logger.WithFields(logrus.Fields{
		"token":           executed.TokenAddress,
		"kpay_amount":     executed.KpayAmount,
		"execution_count": executed.ExecutionCount,
	}).Info("purchase executed")
}
