package domain

import (
	"net/http"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
)

// Checkout precondition errors. Callers return copies via WithMessage when a
// more specific message helps; errors.Is still matches on the code.
var (
	ErrNoBranchSelected    = apperrors.New("NO_BRANCH_SELECTED", http.StatusBadRequest, "select a branch first", apperrors.ErrInvalidInput)
	ErrNoCustomerSelected  = apperrors.New("NO_CUSTOMER_SELECTED", http.StatusBadRequest, "select a customer first", apperrors.ErrInvalidInput)
	ErrEmptyCart           = apperrors.New("EMPTY_CART", http.StatusBadRequest, "cart is empty", apperrors.ErrInvalidInput)
	ErrMissingPrescription = apperrors.New("MISSING_PRESCRIPTION", http.StatusBadRequest, "prescription required", apperrors.ErrInvalidInput)
	ErrInvalidDiscount     = apperrors.New("INVALID_DISCOUNT", http.StatusBadRequest, "invalid discount", apperrors.ErrInvalidInput)
	ErrProductInactive     = apperrors.New("PRODUCT_INACTIVE", http.StatusBadRequest, "product is not active", apperrors.ErrInvalidInput)
)

// Stock and cart line errors.
var (
	ErrOutOfStock        = apperrors.New("OUT_OF_STOCK", http.StatusConflict, "product is out of stock", apperrors.ErrConflict)
	ErrInsufficientStock = apperrors.New("INSUFFICIENT_STOCK", http.StatusConflict, "not enough stock", apperrors.ErrConflict)
	ErrLineNotFound      = apperrors.New("LINE_NOT_FOUND", http.StatusNotFound, "product is not in the cart", apperrors.ErrNotFound)
)

// ErrPrescriptionNotUsable rejects attaching a prescription that is not one
// of the selected customer's active, unexpired prescriptions.
var ErrPrescriptionNotUsable = apperrors.New("PRESCRIPTION_NOT_USABLE", http.StatusBadRequest,
	"prescription is not an active prescription of the selected customer", apperrors.ErrInvalidInput)

// Session state errors.
var (
	ErrAlreadyInProgress = apperrors.New("ALREADY_IN_PROGRESS", http.StatusConflict, "a checkout is already in progress", apperrors.ErrConflict)
	ErrSessionReset      = apperrors.New("SESSION_RESET", http.StatusConflict, "session was reset while the request was running", apperrors.ErrConflict)
)
