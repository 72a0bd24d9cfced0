package types

import "strings"

// BillingAddress carries the postal fields collected on the checkout form.
type BillingAddress struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// BillingDetails is the full billing payload forwarded to the payment processor.
type BillingDetails struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Address BillingAddress `json:"address"`
}

// Complete reports whether every required billing field is non-empty.
func (b BillingDetails) Complete() bool {
	fields := []string{b.Name, b.Email, b.Address.Line1, b.Address.City, b.Address.PostalCode}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}
