package handlers

const (
	// maxBodyBytes caps JSON request bodies. Backup imports use maxImportBytes.
	maxBodyBytes   = 1 << 20
	maxImportBytes = 64 << 20

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidID           = "Invalid ID"
	ErrInvalidQuery        = "Invalid query parameter"
	ErrValidationFailed    = "Validation failed"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRF         = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
)
