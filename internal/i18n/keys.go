// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthAPIKeyNotice       = "auth.api_key_notice"

	// Ledger error identities
	KeyLedgerUnauthorized          = "ledger.unauthorized"
	KeyLedgerInvalidArgument       = "ledger.invalid_argument"
	KeyLedgerAlreadyListed         = "ledger.already_listed"
	KeyLedgerNotListed             = "ledger.not_listed"
	KeyLedgerInsufficientAllowance = "ledger.insufficient_allowance"
	KeyLedgerInsufficientBalance   = "ledger.insufficient_balance"
	KeyLedgerNothingToWithdraw     = "ledger.nothing_to_withdraw"
	KeyLedgerInsufficientFunds     = "ledger.insufficient_funds"
	KeyLedgerOperationPaused       = "ledger.operation_paused"
	KeyLedgerNotFound              = "ledger.not_found"
	KeyMetadataUnavailable         = "metadata.unavailable"

	// Operations
	KeyNFTCreated       = "nft.created"
	KeyNFTTransferred   = "nft.transferred"
	KeyListingCreated   = "listing.created"
	KeyListingCancelled = "listing.cancelled"
	KeyListingUpdated   = "listing.price_updated"
	KeyListingSold      = "listing.sold"
	KeyTokenCreated     = "token.created"
	KeyTokenApproved    = "token.approved"
	KeyTokenTransferred = "token.transferred"
	KeyTokenMinted      = "token.minted"
	KeyTokenBurned      = "token.burned"
	KeyOrderCreated     = "order.created"
	KeyOrderCancelled   = "order.cancelled"
	KeyOrderExecuted    = "order.executed"
	KeyWithdrawSuccess  = "treasury.withdrawn"

	// Admin
	KeyAdminActionSuccess = "admin.action_success"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationAddress  = "validation.invalid_address"
	KeyValidationAmount   = "validation.invalid_amount"
	KeyValidationID       = "validation.invalid_id"

	// Rate limiting
	KeyRateLimited = "rate_limited"
)
