// Package pricing turns a package selection into the amounts shown and charged at checkout.
package pricing

import (
	"math"

	"github.com/wolfman30/therapy-booking/internal/catalog"
)

// GSTRate is the tax applied to paid bookings.
const GSTRate = 0.18

// Quote is a checkout breakdown in whole rupees.
type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Calculate prices pkg. Assessments are free regardless of package.
func Calculate(pkg catalog.Package, isAssessment bool) Quote {
	if isAssessment {
		return Quote{}
	}
	return FromSubtotal(pkg.Price)
}

// FromSubtotal applies GST to subtotal, rounding tax half away from zero.
func FromSubtotal(subtotal int64) Quote {
	tax := int64(math.Round(float64(subtotal) * GSTRate))
	return Quote{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}
