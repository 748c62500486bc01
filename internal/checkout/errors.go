package checkout

import "errors"

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	// ErrPaymentNotCompleted means the provider did not report the session as
	// paid; no order may be created from it.
	ErrPaymentNotCompleted = errors.New("payment session is not paid")
	// ErrStalePaymentReturn means the return handler found neither pending
	// checkout state nor an existing order for the session.
	ErrStalePaymentReturn  = errors.New("no pending checkout or order for payment session")
	IllegalTransitionError = errors.New("illegal transition of checkout status")
)
