package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// Clients map these codes to their own messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"
	ValidationEmptyUpdate  = "VALIDATION_EMPTY_UPDATE"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (PRODUCT_) ====================
	ProductNotFound    = "PRODUCT_NOT_FOUND"
	ProductInvalidSort = "PRODUCT_INVALID_SORT"

	// ==================== Cart (CART_) ====================
	CartItemNotFound = "CART_ITEM_NOT_FOUND"
	CartEmpty        = "CART_EMPTY"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInsufficientStock = "ORDER_INSUFFICIENT_STOCK"
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadNotConfigured   = "UPLOAD_NOT_CONFIGURED"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
