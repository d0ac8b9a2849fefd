package domain

import "strings"

// PaymentMethod is how the customer pays at the counter.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "EFECTIVO"
	PaymentCard     PaymentMethod = "TARJETA"
	PaymentTransfer PaymentMethod = "TRANSFERENCIA"
)

// DefaultPaymentMethod is selected on new sessions.
const DefaultPaymentMethod = PaymentCash

// ParsePaymentMethod normalizes s and reports whether it names a known method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return m, true
	default:
		return "", false
	}
}
