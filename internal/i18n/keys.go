// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	KeyInternalError = "internal_error"
	KeyRateLimited   = "rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenRevoked       = "auth.token_revoked"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthForbidden          = "auth.forbidden"

	// Accounts
	KeyUserNotFound        = "user.not_found"
	KeyUserCreated         = "user.created"
	KeyUserStatusUpdated   = "user.status_updated"
	KeyUserPasswordChanged = "user.password_changed"
	KeyUserUsernameTaken   = "user.username_taken"
	KeyUserWrongPassword   = "user.wrong_password"
	KeyUserSelfStatus      = "user.self_status"

	// Collection store
	KeyStoreUnknownCollection = "store.unknown_collection"
	KeyStoreVersionConflict   = "store.version_conflict"
	KeyStoreSaved             = "store.saved"
	KeyStoreUnavailable       = "store.unavailable"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// Ledger workflow
	KeyProductSaved          = "ledger.product_saved"
	KeySaleRegistered        = "ledger.sale_registered"
	KeyPaymentRegistered     = "ledger.payment_registered"
	KeyPaymentNothingDue     = "ledger.payment_nothing_due"
	KeyInsufficientStock     = "ledger.insufficient_stock"
	KeyProductNotFound       = "ledger.product_not_found"
	KeyClientNotFound        = "ledger.client_not_found"
	KeyConcurrentUpdate      = "ledger.conflict"
	KeyTransportFailed       = "ledger.transport"
	KeyOperationFailed       = "ledger.operation_failed"
	KeyReconciled            = "ledger.reconciled"
	KeyReconcileClean        = "ledger.reconcile_clean"
	KeyValidationClientName  = "ledger.validation.client_name"
	KeyValidationProductName = "ledger.validation.product_name"
	KeyValidationProductID   = "ledger.validation.product_id"
	KeyValidationQuantity    = "ledger.validation.quantity"
	KeyValidationPrice       = "ledger.validation.price"

	// Session
	KeySessionLoggedIn      = "session.logged_in"
	KeySessionLoggedOut     = "session.logged_out"
	KeySessionAnonymous     = "session.anonymous"
	KeySessionAuthenticated = "session.authenticated"

	// Labels
	KeyStockLow    = "label.stock_low"
	KeyStockNormal = "label.stock_normal"
	KeySalePending = "label.sale_pending"
	KeySalePaid    = "label.sale_paid"
)
