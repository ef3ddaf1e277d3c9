// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/kpay-backend/internal/i18n"
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type errorMapping struct {
	target error
	status int
	code   string
	key    string
}

var errorMappings = []errorMapping{
	{services.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED", i18n.KeyLedgerUnauthorized},
	{services.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT", i18n.KeyLedgerInvalidArgument},
	{services.ErrAlreadyListed, http.StatusConflict, "ALREADY_LISTED", i18n.KeyLedgerAlreadyListed},
	{services.ErrNotListed, http.StatusConflict, "NOT_LISTED", i18n.KeyLedgerNotListed},
	{services.ErrInsufficientAllowance, http.StatusUnprocessableEntity, "INSUFFICIENT_ALLOWANCE", i18n.KeyLedgerInsufficientAllowance},
	{services.ErrInsufficientBalance, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", i18n.KeyLedgerInsufficientBalance},
	{services.ErrNothingToWithdraw, http.StatusConflict, "NOTHING_TO_WITHDRAW", i18n.KeyLedgerNothingToWithdraw},
	{services.ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", i18n.KeyLedgerInsufficientFunds},
	{services.ErrOperationPaused, http.StatusLocked, "OPERATION_PAUSED", i18n.KeyLedgerOperationPaused},
	{services.ErrNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyLedgerNotFound},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", i18n.KeyAuthInvalidCredentials},
	{services.ErrMetadataUnavailable, http.StatusBadGateway, "METADATA_UNAVAILABLE", i18n.KeyMetadataUnavailable},
}

// respondError writes the envelope for a service error. Ledger failures carry
// the revert reason in details; anything unrecognised is a 500.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			utils.ErrorResponse(c, m.status, m.code, i18n.T(lang, m.key), services.Reason(err))
			return
		}
	}

	logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
	utils.InternalErrorResponse(c, "")
}

// bindJSON decodes and validates a request body, responding on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, models.ErrInvalidAmount) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationAmount, "amount"), err.Error())
			return false
		}
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationID, name), nil)
		return 0, false
	}
	return id, true
}

func caller(c *gin.Context) string {
	address, _ := utils.GetCallerFromContext(c)
	return address
}

// amountView renders a base-unit amount next to its whole-KPAY form.
func amountView(a models.Amount) gin.H {
	return gin.H{
		"value":   a.String(),
		"display": utils.FormatUnits(a, utils.DefaultDecimals),
	}
}
