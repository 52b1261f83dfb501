// Package negotiation implements the bargaining core: decision detection,
// feasibility checking, and the bounded multi-round engine.
package negotiation

import (
	"regexp"
	"strconv"
	"strings"
)

// DecisionType classifies what a free-text negotiation message commits to.
type DecisionType string

const (
	DecisionNone         DecisionType = "none"
	DecisionAccepted     DecisionType = "accepted"
	DecisionPriceAgreed  DecisionType = "price_agreed"
	DecisionRejected     DecisionType = "rejected"
	DecisionCounterOffer DecisionType = "counter_offer"
)

// Decision is the detector's verdict. HasPrice is false when a message
// carries a decision but no checkable price.
type Decision struct {
	Type     DecisionType
	Price    float64
	HasPrice bool
}

// The keyword sets overlap in real traffic (a polite counter-offer may say
// "sorry"), so classification follows a strict precedence:
// price-bearing acceptance > acceptance > rejection > counter-offer > none.
var (
	acceptPhrases = []string{
		"accept",
		"i agree",
		"agreed",
		"deal",
		"sounds good",
		"i'll take it",
		"we have an agreement",
	}
	rejectPhrases = []string{
		"reject",
		"decline",
		"no deal",
		"cannot accept",
		"can't accept",
		"not interested",
		"sorry",
	}
	counterPhrases = []string{
		"counter",
		"how about",
		"what if",
		"would you consider",
		"i propose",
		"can you do",
	}
)

// negatedAcceptRe strips negated acceptance ("cannot accept", "no deal") so
// it does not register as an acceptance signal; the remaining rejection
// keywords still classify the message.
var negatedAcceptRe = regexp.MustCompile(`(?:cannot|can't|can not|won't|will not|do not|don't|unable to) accept|no deal`)

// priceRe matches the first numeric token adjacent to the currency unit,
// on either side: "14 HBAR", "HBAR 14", "14.5HBAR".
var priceRe = regexp.MustCompile(`(?i)(?:(\d+(?:\.\d+)?)\s*hbar|hbar\s*(\d+(?:\.\d+)?))`)

// ExtractPrice returns the first price mentioned with the currency unit.
func ExtractPrice(content string) (float64, bool) {
	m := priceRe.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	token := m[1]
	if token == "" {
		token = m[2]
	}
	price, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// Detect classifies a message. Absence of a price never blocks an acceptance
// classification; it only downgrades price_agreed to accepted.
func Detect(content string) Decision {
	lower := strings.ToLower(content)
	price, hasPrice := ExtractPrice(content)

	if containsAny(negatedAcceptRe.ReplaceAllString(lower, ""), acceptPhrases) {
		if hasPrice {
			return Decision{Type: DecisionPriceAgreed, Price: price, HasPrice: true}
		}
		return Decision{Type: DecisionAccepted}
	}
	if containsAny(lower, rejectPhrases) {
		return Decision{Type: DecisionRejected, Price: price, HasPrice: hasPrice}
	}
	if containsAny(lower, counterPhrases) {
		return Decision{Type: DecisionCounterOffer, Price: price, HasPrice: hasPrice}
	}
	return Decision{Type: DecisionNone, Price: price, HasPrice: hasPrice}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
