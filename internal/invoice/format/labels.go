package format

import "github.com/smallbiznis/invoicekit/internal/invoice/domain"

// paymentMethodLabels maps the enumerated codes to their human-readable
// form. Unrecognized codes render verbatim.
var paymentMethodLabels = map[domain.PaymentMethod]string{
	domain.PaymentBankTransfer: "Bank Transfer",
	domain.PaymentCreditCard:   "Credit Card",
	domain.PaymentPaypal:       "PayPal",
	domain.PaymentCash:         "Cash",
	domain.PaymentCheque:       "Cheque",
}

// PaymentMethodLabel returns the display label for a payment method code.
func PaymentMethodLabel(method domain.PaymentMethod) string {
	if label, ok := paymentMethodLabels[method]; ok {
		return label
	}
	return string(method)
}
