// Package llm holds the contracts for the natural-language collaborators:
// match scoring for counterparty selection and proposal generation during
// negotiation. Only the request/response shapes matter to the core.
package llm

import "context"

// Intent is a buyer's declared purchase intent handed to the scorer.
type Intent struct {
	Title       string
	Description string
	MinPrice    float64
	MaxPrice    float64
	Category    string
}

// Candidate is one open listing offered to the scorer.
type Candidate struct {
	ListingID     string
	Title         string
	Description   string
	BasePrice     float64
	ExpectedPrice float64
}

// MatchScore is the scorer's verdict for one candidate: a 0-100 confidence
// and a short rationale.
type MatchScore struct {
	ListingID string `json:"listing_id"`
	Score     int    `json:"score"`
	Reason    string `json:"reason"`
}

// Scorer ranks candidate listings against a buy intent.
type Scorer interface {
	ScoreListings(ctx context.Context, intent Intent, candidates []Candidate) ([]MatchScore, error)
}

// Turn is one prior message in a negotiation, buyer or seller.
type Turn struct {
	Sender  string
	Content string
}

// ProposalContext seeds the completer with the full turn history and both
// parties' declared constraints.
type ProposalContext struct {
	ItemTitle      string
	Round          int
	BuyerMin       float64
	BuyerMax       float64
	SellerBase     float64
	SellerExpected float64
	History        []Turn
}

// Completer generates the driver side's next negotiation message. Each call
// must yield one concrete proposal or decision.
type Completer interface {
	NextProposal(ctx context.Context, pc ProposalContext) (string, error)
}
