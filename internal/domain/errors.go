package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrSessionExists indicates a checkout is already open for the same buyer and content.
	ErrSessionExists = errors.New("checkout session already open")
)

// PurchaseErrorCode classifies the outcome of a failed submission.
type PurchaseErrorCode string

const (
	ErrCodeInsufficientFunds PurchaseErrorCode = "insufficient_funds"
	ErrCodeVendorRejected    PurchaseErrorCode = "vendor_rejected"
	ErrCodeNetworkFailure    PurchaseErrorCode = "network_failure"
	ErrCodeCancelled         PurchaseErrorCode = "cancelled"
	ErrCodeUnknown           PurchaseErrorCode = "unknown"
)

// PurchaseError is the error returned by funds movement and attached to a
// checkout in the error stage.
type PurchaseError struct {
	Code    PurchaseErrorCode `json:"code"`
	Message string            `json:"message,omitempty"`
}

func (e *PurchaseError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPurchaseError builds a PurchaseError with the given code.
func NewPurchaseError(code PurchaseErrorCode, msg string) *PurchaseError {
	return &PurchaseError{Code: code, Message: msg}
}

var purchaseErrorMessages = map[PurchaseErrorCode]string{
	ErrCodeInsufficientFunds: "not enough funds to complete the purchase",
	ErrCodeVendorRejected:    "the payment was declined",
	ErrCodeNetworkFailure:    "the payment service did not respond in time",
	ErrCodeCancelled:         "the purchase was cancelled",
	ErrCodeUnknown:           "the purchase could not be completed",
}

// PurchaseErrorFor builds a PurchaseError carrying the fixed buyer-facing
// message for code. Use it when the cause must not reach the buyer.
func PurchaseErrorFor(code PurchaseErrorCode) *PurchaseError {
	msg, ok := purchaseErrorMessages[code]
	if !ok {
		code, msg = ErrCodeUnknown, purchaseErrorMessages[ErrCodeUnknown]
	}
	return &PurchaseError{Code: code, Message: msg}
}

// AsPurchaseError converts any error into a PurchaseError. Errors that are not
// already classified become ErrCodeUnknown without exposing their text.
func AsPurchaseError(err error) *PurchaseError {
	if err == nil {
		return nil
	}
	var pe *PurchaseError
	if errors.As(err, &pe) {
		return pe
	}
	return PurchaseErrorFor(ErrCodeUnknown)
}
