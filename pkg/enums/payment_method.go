package enums

import "fmt"

// PaymentMethod describes how a customer intends to settle an order.
// All methods are arranged offline; the storefront never charges cards.
type PaymentMethod string

const (
	PaymentMethodArrange        PaymentMethod = "arrange"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodTransfer       PaymentMethod = "transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodArrange,
	PaymentMethodCashOnDelivery,
	PaymentMethodTransfer,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
