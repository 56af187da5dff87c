package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/leonjames-san/familiams/internal/money"
)

// PaymentMethod is the customer's chosen way to pay. It is a label only;
// no gateway integration happens here.
type PaymentMethod string

const (
	MethodPix      PaymentMethod = "pix"
	MethodCard     PaymentMethod = "card"
	MethodBankSlip PaymentMethod = "bank_slip"
)

// pixDiscount is the fixed discount granted on Pix payments.
var pixDiscount = decimal.NewFromFloat(0.05)

// ParsePaymentMethod validates a wire-level payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodPix, MethodCard, MethodBankSlip:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("checkout: unknown payment method %q", s)
}

// PayableAmount is the final amount due for a cart total under the given
// payment method. Pix gets the 5% discount applied once, at the order level;
// everything else passes through unchanged.
func PayableAmount(total money.Money, method PaymentMethod) money.Money {
	if method == MethodPix {
		return total.ApplyDiscount(pixDiscount)
	}
	return total
}
