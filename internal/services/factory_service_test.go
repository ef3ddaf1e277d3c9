// internal/services/factory_service_test.go
package services

func (suite *LedgerTestSuite) createToken(creator, name, symbol, supply string) string {
	suite.approve(creator, suite.deployment.Factory, "100")
	created, err := suite.factory.CreateToken(suite.ctx, creator, &CreateTokenRequest{
		Name:          name,
		Symbol:        symbol,
		InitialSupply: kpay(supply),
	})
	suite.Require().NoError(err)
	return created.TokenAddress
}

func (suite *LedgerTestSuite) TestCreateTokenChargesFee() {
	creator := suite.newAccount()
	suite.fund(creator, "150")

	address := suite.createToken(creator, "Test Token", "TST", "1000")

	suite.Equal(DeriveAddress(suite.deployment.Factory, 0), address)
	suite.assertAmount("50", suite.balance(creator))
	suite.assertAmount("100", suite.balance(suite.deployment.Factory))

	allowance, err := suite.tokens.Allowance(suite.ctx, suite.deployment.Kpay, creator, suite.deployment.Factory)
	suite.Require().NoError(err)
	suite.True(allowance.IsZero())

	info, err := suite.tokens.Get(suite.ctx, address)
	suite.Require().NoError(err)
	suite.Equal("TST", info.Symbol)
	suite.Equal(creator, info.Owner)
	suite.assertAmount("1000", info.TotalSupply)

	held, err := suite.tokens.BalanceOf(suite.ctx, address, creator)
	suite.Require().NoError(err)
	suite.assertAmount("1000", held)
}

func (suite *LedgerTestSuite) TestCreateTokenWithoutAllowance() {
	creator := suite.newAccount()
	suite.fund(creator, "150")

	_, err := suite.factory.CreateToken(suite.ctx, creator, &CreateTokenRequest{Name: "A", Symbol: "A", InitialSupply: kpay("1")})
	suite.ErrorIs(err, ErrInsufficientAllowance)
	suite.Equal("ERC20InsufficientAllowance", Reason(err))

	tokens, err := suite.factory.GetAllTokens(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(tokens)
}

func (suite *LedgerTestSuite) TestCreateTokenWithoutFunds() {
	creator := suite.newAccount()
	suite.approve(creator, suite.deployment.Factory, "100")

	_, err := suite.factory.CreateToken(suite.ctx, creator, &CreateTokenRequest{Name: "A", Symbol: "A", InitialSupply: kpay("1")})
	suite.ErrorIs(err, ErrInsufficientBalance)
}

func (suite *LedgerTestSuite) TestCreateTokenRequiresNameAndSymbol() {
	_, err := suite.factory.CreateToken(suite.ctx, suite.newAccount(), &CreateTokenRequest{Name: "", Symbol: "X"})
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("Name and symbol are required", Reason(err))
}

func (suite *LedgerTestSuite) TestTokenRegistryOrder() {
	alice, bob := suite.newAccount(), suite.newAccount()
	suite.fund(alice, "200")
	suite.fund(bob, "100")

	a1 := suite.createToken(alice, "Alpha", "ALP", "1")
	b1 := suite.createToken(bob, "Beta", "BET", "1")
	a2 := suite.createToken(alice, "Gamma", "GAM", "1")

	all, err := suite.factory.GetAllTokens(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{a1, b1, a2}, all)

	mine, err := suite.factory.GetUserTokens(suite.ctx, alice)
	suite.Require().NoError(err)
	suite.Equal([]string{a1, a2}, mine)

	count, err := suite.factory.GetUserTokenCount(suite.ctx, bob)
	suite.Require().NoError(err)
	suite.Equal(1, count)

	records, err := suite.factory.CreatedTokens(suite.ctx, "")
	suite.Require().NoError(err)
	suite.Require().Len(records, 3)
	suite.Equal(uint64(2), records[2].Sequence)
	suite.assertAmount("100", records[0].FeePaid)
}

func (suite *LedgerTestSuite) TestWithdrawFees() {
	_, err := suite.factory.WithdrawFees(suite.ctx, testAdmin)
	suite.ErrorIs(err, ErrNothingToWithdraw)
	suite.Equal("No fees to withdraw", Reason(err))

	creator := suite.newAccount()
	suite.fund(creator, "100")
	suite.createToken(creator, "Fee", "FEE", "1")

	_, err = suite.factory.WithdrawFees(suite.ctx, creator)
	suite.ErrorIs(err, ErrUnauthorized)

	withdrawn, err := suite.factory.WithdrawFees(suite.ctx, testAdmin)
	suite.Require().NoError(err)
	suite.assertAmount("100", withdrawn)
	suite.assertAmount("10000", suite.balance(testAdmin))
	suite.True(suite.balance(suite.deployment.Factory).IsZero())
}

func (suite *LedgerTestSuite) TestSetKpayToken() {
	creator := suite.newAccount()
	suite.fund(creator, "100")
	created := suite.createToken(creator, "Other", "OTH", "10")

	err := suite.factory.SetKpayToken(suite.ctx, creator, created)
	suite.ErrorIs(err, ErrUnauthorized)

	err = suite.factory.SetKpayToken(suite.ctx, testAdmin, suite.newAccount())
	suite.ErrorIs(err, ErrInvalidArgument)

	suite.Require().NoError(suite.factory.SetKpayToken(suite.ctx, testAdmin, created))

	// fees held in the old token are no longer reachable through the factory
	_, err = suite.factory.WithdrawFees(suite.ctx, testAdmin)
	suite.ErrorIs(err, ErrNothingToWithdraw)
	suite.assertAmount("100", suite.balance(suite.deployment.Factory))
}
