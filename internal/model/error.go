package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeInactiveProduct        = "INACTIVE_PRODUCT"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeInsufficientBalance    = "INSUFFICIENT_BALANCE"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeUpstreamUnavailable    = "UPSTREAM_UNAVAILABLE"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// DomainError carries a stable error code for business rule violations.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	// Input errors: no mutation was performed, retrying is pointless.
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInactiveProduct   = NewDomainError(ErrCodeInactiveProduct, "One or more products are no longer available")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Requested status change is not allowed")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")

	// Consistency errors: the operation may succeed on retry.
	ErrInsufficientBalance    = NewDomainError(ErrCodeInsufficientBalance, "Point balance is insufficient")
	ErrConcurrentModification = NewDomainError(ErrCodeConcurrentModification, "Order was modified concurrently, try again")

	// Collaborator errors.
	ErrUpstreamUnavailable = NewDomainError(ErrCodeUpstreamUnavailable, "Catalog store is unavailable")
)
