// internal/services/scheduler_service_test.go
package services

import (
	"github.com/javajoker/kpay-backend/internal/models"
)

func (suite *LedgerTestSuite) order(owner, human string, interval uint64) *models.PurchaseOrder {
	order, err := suite.scheduler.CreatePurchaseOrder(suite.ctx, owner, &CreateOrderRequest{
		TokenAddress:     suite.deployment.Kpay,
		PurchaseInterval: interval,
		KpayAmount:       kpay(human),
	})
	suite.Require().NoError(err)
	return order
}

func (suite *LedgerTestSuite) TestCreatePurchaseOrderValidation() {
	owner := suite.newAccount()
	cases := []struct {
		name   string
		req    CreateOrderRequest
		reason string
	}{
		{"zero token", CreateOrderRequest{TokenAddress: models.ZeroAddress, PurchaseInterval: 60, KpayAmount: kpay("1")}, "Invalid token address"},
		{"malformed token", CreateOrderRequest{TokenAddress: "kpay", PurchaseInterval: 60, KpayAmount: kpay("1")}, "Invalid token address"},
		{"zero amount", CreateOrderRequest{TokenAddress: suite.deployment.Kpay, PurchaseInterval: 60}, "Kpay amount must be greater than 0"},
		{"zero interval", CreateOrderRequest{TokenAddress: suite.deployment.Kpay, KpayAmount: kpay("1")}, "Purchase interval must be greater than 0"},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			req := tc.req
			_, err := suite.scheduler.CreatePurchaseOrder(suite.ctx, owner, &req)
			suite.ErrorIs(err, ErrInvalidArgument)
			suite.Equal(tc.reason, Reason(err))
		})
	}
}

func (suite *LedgerTestSuite) TestGetPurchaseOrderDefaultsToEmpty() {
	order, err := suite.scheduler.GetPurchaseOrder(suite.ctx, suite.newAccount())
	suite.Require().NoError(err)
	suite.False(order.Active())
	suite.Equal(models.ZeroAddress, order.TokenAddress)
	suite.Equal(uint64(0), order.PurchaseInterval)
	suite.True(order.KpayAmount.IsZero())
	suite.Nil(order.LastExecutedAt)
}

func (suite *LedgerTestSuite) TestCreateReplacesPreviousOrder() {
	owner := suite.newAccount()
	suite.order(owner, "1", 60)
	suite.order(owner, "2", 120)

	order, err := suite.scheduler.GetPurchaseOrder(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.assertAmount("2", order.KpayAmount)
	suite.Equal(uint64(120), order.PurchaseInterval)

	var rows int64
	suite.Require().NoError(suite.db.Model(&models.PurchaseOrder{}).Where("owner = ?", owner).Count(&rows).Error)
	suite.Equal(int64(1), rows)
}

func (suite *LedgerTestSuite) TestExecutePurchase() {
	owner := suite.newAccount()
	suite.fund(owner, "5")
	suite.approve(owner, suite.deployment.Scheduler, "5")
	suite.order(owner, "2", 60)

	order, err := suite.scheduler.ExecutePurchase(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.Equal(uint64(1), order.ExecutionCount)
	suite.Require().NotNil(order.LastExecutedAt)

	// the interval is not enforced here, a second call goes straight through
	order, err = suite.scheduler.ExecutePurchase(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.Equal(uint64(2), order.ExecutionCount)

	suite.assertAmount("1", suite.balance(owner))
	suite.assertAmount("4", suite.balance(suite.deployment.Scheduler))

	stored, err := suite.scheduler.GetPurchaseOrder(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.Equal(uint64(2), stored.ExecutionCount)
	suite.NotNil(stored.LastExecutedAt)
}

func (suite *LedgerTestSuite) TestExecutePurchaseFailures() {
	owner := suite.newAccount()

	_, err := suite.scheduler.ExecutePurchase(suite.ctx, owner)
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("No active purchase order", Reason(err))

	suite.order(owner, "2", 60)
	suite.fund(owner, "1")
	suite.approve(owner, suite.deployment.Scheduler, "2")
	_, err = suite.scheduler.ExecutePurchase(suite.ctx, owner)
	suite.ErrorIs(err, ErrInsufficientBalance)
	suite.Equal("Insufficient KPAY balance", Reason(err))

	suite.fund(owner, "1")
	suite.approve(owner, suite.deployment.Scheduler, "1")
	_, err = suite.scheduler.ExecutePurchase(suite.ctx, owner)
	suite.ErrorIs(err, ErrInsufficientAllowance)

	order, err := suite.scheduler.GetPurchaseOrder(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.Equal(uint64(0), order.ExecutionCount)
	suite.assertAmount("2", suite.balance(owner))
}

func (suite *LedgerTestSuite) TestCancelPurchaseOrder() {
	owner := suite.newAccount()

	// cancelling without an order is allowed
	suite.Require().NoError(suite.scheduler.CancelPurchaseOrder(suite.ctx, owner))

	suite.order(owner, "1", 60)
	suite.Require().NoError(suite.scheduler.CancelPurchaseOrder(suite.ctx, owner))
	suite.Require().NoError(suite.scheduler.CancelPurchaseOrder(suite.ctx, owner))

	order, err := suite.scheduler.GetPurchaseOrder(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.False(order.Active())
	suite.Equal(models.ZeroAddress, order.TokenAddress)

	_, err = suite.scheduler.ExecutePurchase(suite.ctx, owner)
	suite.ErrorIs(err, ErrInvalidArgument)
}

func (suite *LedgerTestSuite) TestSchedulerWithdrawTokens() {
	owner := suite.newAccount()
	suite.fund(owner, "3")
	suite.approve(owner, suite.deployment.Scheduler, "3")
	suite.order(owner, "3", 60)
	_, err := suite.scheduler.ExecutePurchase(suite.ctx, owner)
	suite.Require().NoError(err)

	err = suite.scheduler.WithdrawTokens(suite.ctx, owner, suite.deployment.Kpay, kpay("3"))
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("Ownable: caller is not the owner", Reason(err))

	err = suite.scheduler.WithdrawTokens(suite.ctx, testAdmin, suite.deployment.Kpay, kpay("4"))
	suite.ErrorIs(err, ErrInsufficientBalance)

	suite.Require().NoError(suite.scheduler.WithdrawTokens(suite.ctx, testAdmin, suite.deployment.Kpay, kpay("3")))
	suite.True(suite.balance(suite.deployment.Scheduler).IsZero())
	suite.assertAmount("10000", suite.balance(testAdmin))
}

func (suite *LedgerTestSuite) TestPausedSchedulerRejectsNewOrders() {
	suite.Require().NoError(suite.contracts.Pause(suite.ctx, testAdmin, models.ContractKindScheduler))

	_, err := suite.scheduler.CreatePurchaseOrder(suite.ctx, suite.newAccount(), &CreateOrderRequest{
		TokenAddress:     suite.deployment.Kpay,
		PurchaseInterval: 60,
		KpayAmount:       kpay("1"),
	})
	suite.ErrorIs(err, ErrOperationPaused)
}
