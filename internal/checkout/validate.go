package checkout

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/alvbalcab/PetJoy/internal/domain"
)

// ValidationErrors maps a field name to a human-readable problem.
type ValidationErrors map[string]string

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

var paymentMethods = map[string]bool{
	"card":     true,
	"transfer": true,
	"cod":      true,
}

// ValidateShipping checks the checkout form field by field. It normalizes
// whitespace in place and defaults the payment method to card.
func ValidateShipping(form *domain.ShippingDetails) ValidationErrors {
	errs := ValidationErrors{}

	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.Email = strings.TrimSpace(form.Email)
	form.Address = strings.TrimSpace(form.Address)
	form.City = strings.TrimSpace(form.City)
	form.PostalCode = strings.TrimSpace(form.PostalCode)

	if form.FirstName == "" {
		errs["first_name"] = "first name is required"
	}
	if form.LastName == "" {
		errs["last_name"] = "last name is required"
	}
	if form.Email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(form.Email); err != nil {
		errs["email"] = "email is not a valid address"
	}
	if form.Address == "" {
		errs["address"] = "address is required"
	}
	if form.City == "" {
		errs["city"] = "city is required"
	}
	if !postalCodeRe.MatchString(form.PostalCode) {
		errs["postal_code"] = "postal code must be 5 digits"
	}

	if form.PaymentMethod == "" {
		form.PaymentMethod = "card"
	} else if !paymentMethods[form.PaymentMethod] {
		errs["payment_method"] = "unknown payment method"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
