package checkout

import (
	"testing"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName:  "Ana",
		LastName:   "García",
		Email:      "ana@example.com",
		Address:    "Calle Mayor 1",
		City:       "Madrid",
		PostalCode: "28001",
	}
}

func TestValidateShipping_Valid(t *testing.T) {
	form := validForm()
	errs := ValidateShipping(&form)
	assert.Nil(t, errs)
	assert.Equal(t, "card", form.PaymentMethod, "empty payment method defaults to card")
}

func TestValidateShipping_TrimsWhitespace(t *testing.T) {
	form := validForm()
	form.FirstName = "  Ana  "
	form.PostalCode = " 28001 "

	errs := ValidateShipping(&form)
	require.Nil(t, errs)
	assert.Equal(t, "Ana", form.FirstName)
	assert.Equal(t, "28001", form.PostalCode)
}

func TestValidateShipping_MissingFields(t *testing.T) {
	form := domain.ShippingDetails{}
	errs := ValidateShipping(&form)

	require.NotNil(t, errs)
	assert.Contains(t, errs, "first_name")
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "address")
	assert.Contains(t, errs, "city")
	assert.Contains(t, errs, "postal_code")
}

func TestValidateShipping_InvalidEmail(t *testing.T) {
	form := validForm()
	form.Email = "not-an-email"

	errs := ValidateShipping(&form)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "email")
}

func TestValidateShipping_PostalCode(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"28001", true},
		{"08001", true},
		{"ABCDE", false},
		{"2800", false},
		{"280011", false},
		{"2800a", false},
		{"", false},
	}

	for _, tc := range cases {
		form := validForm()
		form.PostalCode = tc.code
		errs := ValidateShipping(&form)
		if tc.ok {
			assert.Nil(t, errs, "postal code %q should be accepted", tc.code)
		} else {
			assert.Contains(t, errs, "postal_code", "postal code %q should be rejected", tc.code)
		}
	}
}

func TestValidateShipping_UnknownPaymentMethod(t *testing.T) {
	form := validForm()
	form.PaymentMethod = "cheque"

	errs := ValidateShipping(&form)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "payment_method")
}

func TestValidateShipping_KnownPaymentMethods(t *testing.T) {
	for _, method := range []string{"card", "transfer", "cod"} {
		form := validForm()
		form.PaymentMethod = method
		assert.Nil(t, ValidateShipping(&form), "method %q should be accepted", method)
	}
}
