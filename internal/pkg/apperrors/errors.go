package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Registration workflow errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrMissingDocuments    = errors.New("missing required documents")
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
	ErrIncompleteDocuments = errors.New("required documents incomplete")
	ErrMissingRemarks      = errors.New("remarks are required")
	ErrInvalidReviewAction = errors.New("invalid review action")
	ErrInvalidDocStatus    = errors.New("invalid document status")
)

// Invoice bridge errors
var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvalidPayment       = errors.New("invalid payment request")
	ErrExternalUnavailable  = errors.New("external system unavailable")
	ErrUnsupportedKeyFormat = errors.New("unsupported private key format")
	ErrTunnelNotReady       = errors.New("ssh tunnel never became ready")
)

