package negotiation

import "github.com/shopspring/decimal"

// sellerTolerance is the soft concession on the seller side: a proposal at
// or above 90% of the expected price is acceptable.
var sellerTolerance = decimal.RequireFromString("0.9")

// Feasible reports whether a proposed price satisfies both parties'
// declared constraints: the buyer budget [min, max] is a hard bound, the
// seller tolerates down to 0.9 x expected. This asymmetry is a business
// rule, not a fairness test. Decimal arithmetic keeps the 90% boundary
// exact.
func Feasible(price, minBudget, maxBudget, expectedPrice float64) bool {
	p := decimal.NewFromFloat(price)
	if p.LessThan(decimal.NewFromFloat(minBudget)) {
		return false
	}
	if p.GreaterThan(decimal.NewFromFloat(maxBudget)) {
		return false
	}
	floor := decimal.NewFromFloat(expectedPrice).Mul(sellerTolerance)
	return p.GreaterThanOrEqual(floor)
}
