package checkout

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
)

type Step int

const (
	StepShipping Step = iota + 1
	StepBilling
	StepPayment
	StepReview
)

const (
	PaymentOnline = "online"
	PaymentCOD    = "cod"
)

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is the ephemeral checkout form: a 4-step linear machine
// Shipping -> Billing -> Payment -> Review. Forward transitions are gated by
// step-local validation; backward transitions are unconditional and clear the
// error. The form lives only for the duration of one checkout flow.
type Form struct {
	Step                  Step            `json:"step"`
	Shipping              backend.Address `json:"shipping_address"`
	Billing               backend.Address `json:"billing_address"`
	BillingSameAsShipping bool            `json:"billing_same_as_shipping"`
	PaymentMethod         string          `json:"payment_method"`
	ShippingMethod        string          `json:"shipping_method"`
	Notes                 string          `json:"notes"`
	Err                   string          `json:"error,omitempty"`

	// One key per form, so a re-submitted order is deduplicated server-side.
	IdempotencyKey string `json:"-"`

	submitting bool
}

func NewForm() *Form {
	return &Form{
		Step:                  StepShipping,
		BillingSameAsShipping: true,
		IdempotencyKey:        uuid.NewString(),
	}
}

// Next validates the current step and advances on success. On failure it sets
// the visible error and stays put; it never panics or throws past this point.
func (f *Form) Next() bool {
	if msg := f.validate(f.Step); msg != "" {
		f.Err = msg
		return false
	}
	f.Err = ""
	if f.Step < StepReview {
		f.Step++
	}
	return true
}

// Prev is unconditional and clears the error.
func (f *Form) Prev() {
	f.Err = ""
	if f.Step > StepShipping {
		f.Step--
	}
}

func (f *Form) validate(step Step) string {
	switch step {
	case StepShipping:
		if f.Shipping.FirstName == "" || f.Shipping.LastName == "" {
			return "First and last name are required"
		}
		if !emailRx.MatchString(f.Shipping.Email) {
			return "A valid email address is required"
		}
		if f.Shipping.ID == "" {
			return "Please select a shipping address"
		}
	case StepBilling:
		if f.BillingSameAsShipping {
			return ""
		}
		if f.Billing.FirstName == "" || f.Billing.LastName == "" {
			return "First and last name are required"
		}
		if !emailRx.MatchString(f.Billing.Email) {
			return "A valid email address is required"
		}
		if f.Billing.Address == "" || f.Billing.City == "" || f.Billing.State == "" || f.Billing.PostalCode == "" {
			return "Complete billing address is required"
		}
	case StepPayment:
		if f.PaymentMethod == "" {
			return "Please select a payment method"
		}
	}
	return ""
}

// incomplete reports why the form cannot be submitted yet. Submission is only
// valid from the review step, and every gated step must still pass: the
// update path can change fields after the step was cleared.
func (f *Form) incomplete() string {
	if f.Step != StepReview {
		return "Please complete all checkout steps"
	}
	for s := StepShipping; s < StepReview; s++ {
		if msg := f.validate(s); msg != "" {
			return msg
		}
	}
	return ""
}

// BillingAddress resolves the billing address honoring the same-as-shipping flag.
func (f *Form) BillingAddress() backend.Address {
	if f.BillingSameAsShipping {
		return f.Shipping
	}
	return f.Billing
}
