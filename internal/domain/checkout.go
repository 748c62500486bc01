package domain

type CheckoutStatus string

const (
	CheckoutStatusStarted        CheckoutStatus = "STARTED"
	CheckoutStatusPaymentPending CheckoutStatus = "PAYMENT_PENDING"
	CheckoutStatusCompleted      CheckoutStatus = "COMPLETED"
	CheckoutStatusCancelled      CheckoutStatus = "CANCELLED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusCancelled
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	switch from {
	case CheckoutStatusStarted:
		return to == CheckoutStatusPaymentPending || to == CheckoutStatusCompleted || to == CheckoutStatusCancelled
	case CheckoutStatusPaymentPending:
		return to == CheckoutStatusCompleted || to == CheckoutStatusCancelled
	default:
		return false
	}
}

// ShippingDetails is the contact/address input collected at checkout.
type ShippingDetails struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Address       string
	City          string
	PostalCode    string
	PaymentMethod string
	Notes         string
}
