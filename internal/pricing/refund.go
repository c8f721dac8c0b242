package pricing

import "math"

// RefundTier is the cancellation policy bracket a session falls into.
type RefundTier struct {
	Percent int    `json:"percent"`
	Label   string `json:"label"`
}

var (
	fullRefund    = RefundTier{Percent: 100, Label: "Full refund"}
	partialRefund = RefundTier{Percent: 50, Label: "50% refund"}
	noRefund      = RefundTier{Percent: 0, Label: "No refund"}
)

// RefundTierFor returns the policy bracket for a cancellation hoursBefore the session:
// 48h or more is a full refund, 24h up to 48h is half, anything later is nothing.
func RefundTierFor(hoursBefore float64) RefundTier {
	switch {
	case hoursBefore >= 48:
		return fullRefund
	case hoursBefore >= 24:
		return partialRefund
	default:
		return noRefund
	}
}

// RefundQuote is what the policy says a cancellation would return.
type RefundQuote struct {
	Tier        RefundTier `json:"tier"`
	Fee         int64      `json:"fee"`
	Amount      int64      `json:"amount"`
	HoursBefore float64    `json:"hoursBefore"`
}

// QuoteRefund applies the policy to fee. Free sessions always quote zero.
func QuoteRefund(fee int64, hoursBefore float64) RefundQuote {
	tier := RefundTierFor(hoursBefore)
	amount := int64(0)
	if fee > 0 {
		amount = int64(math.Round(float64(fee) * float64(tier.Percent) / 100))
	}
	return RefundQuote{Tier: tier, Fee: fee, Amount: amount, HoursBefore: hoursBefore}
}
