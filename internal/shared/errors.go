package shared

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist or does not
	// belong to the caller's shop.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName indicates a shop-scoped unique name collision.
	ErrDuplicateName = errors.New("name already exists")
	// ErrValidation indicates malformed or missing input caught at the boundary.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock indicates a sale line exceeds on-hand quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidReturnAmount indicates a return quantity outside the line's
	// remaining unreturned amount.
	ErrInvalidReturnAmount = errors.New("invalid return amount")
	// ErrNoShopAssigned indicates the acting manager operates no shop.
	ErrNoShopAssigned = errors.New("no shop assigned")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the acting user lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
