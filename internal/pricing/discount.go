package pricing

import "math"

// Tier buckets a discount percentage.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Score is the price-competitiveness score of the tier.
func (t Tier) Score() int {
	switch t {
	case TierA:
		return 95
	case TierB:
		return 80
	case TierC:
		return 65
	}
	return 50
}

// TierFor maps a discount percentage to its tier. Lower bounds are inclusive.
func TierFor(discount int) Tier {
	switch {
	case discount >= 40:
		return TierA
	case discount >= 30:
		return TierB
	case discount >= 20:
		return TierC
	default:
		return TierD
	}
}

// DiscountPercent returns round((1 - minimumBid/appraisal) * 100), rounding
// half away from zero. A non-positive appraisal yields 0. The result is
// negative when the minimum bid exceeds the appraisal.
func DiscountPercent(appraisal, minimumBid int64) int {
	if appraisal <= 0 {
		return 0
	}
	// Integer arithmetic keeps exact boundaries (e.g. 30% must not become 29.999...).
	num := (appraisal - minimumBid) * 100
	if num >= 0 {
		return int((2*num + appraisal) / (2 * appraisal))
	}
	return -int((-2*num + appraisal) / (2 * appraisal))
}

// DiscountRate is the one-decimal discount used in generated prose.
func DiscountRate(appraisal, minimumBid int64) float64 {
	if appraisal <= 0 {
		return 0
	}
	r := (1 - float64(minimumBid)/float64(appraisal)) * 100
	return math.Round(r*10) / 10
}

// Metrics bundles the derived price values of a listing.
type Metrics struct {
	Discount            int
	Tier                Tier
	BidExceedsAppraisal bool
}

// Derive computes Metrics. A minimum bid above the appraisal is reported via
// BidExceedsAppraisal and scored as tier D.
func Derive(appraisal, minimumBid int64) Metrics {
	d := DiscountPercent(appraisal, minimumBid)
	return Metrics{
		Discount:            d,
		Tier:                TierFor(d),
		BidExceedsAppraisal: appraisal > 0 && minimumBid > appraisal,
	}
}

// CardDiscount is the discount shown on listing cards: a minimum bid above
// the appraisal shows as 0, with BidExceedsAppraisal carrying the flag.
func (m Metrics) CardDiscount() int {
	if m.Discount < 0 {
		return 0
	}
	return m.Discount
}
