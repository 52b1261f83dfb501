// Package matcher selects the negotiation counterparty for a buy request.
package matcher

import (
	"context"
	"log/slog"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/llm"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
)

// DefaultScoreFloor is the minimum confidence treated as a match.
const DefaultScoreFloor = 60

// Match is the winning candidate with the scorer's verdict attached.
type Match struct {
	Listing model.Listing
	Score   int
	Reason  string
}

// Matcher ranks open listings against a buy request via the scoring
// collaborator and picks the single best candidate above the floor.
type Matcher struct {
	scorer     llm.Scorer
	scoreFloor int
}

func New(scorer llm.Scorer, scoreFloor int) *Matcher {
	if scoreFloor <= 0 {
		scoreFloor = DefaultScoreFloor
	}
	return &Matcher{scorer: scorer, scoreFloor: scoreFloor}
}

// BestMatch returns the highest-scoring affordable listing, or nil when
// nothing clears the floor. A failing or empty scoring call yields "no
// match" rather than an error: the orchestrator must never land in an
// ambiguous state because ranking degraded.
func (m *Matcher) BestMatch(ctx context.Context, br model.BuyRequest, listings []model.Listing) *Match {
	candidates := make([]llm.Candidate, 0, len(listings))
	byID := make(map[string]model.Listing, len(listings))
	for _, l := range listings {
		// Affordability prefilter: a listing whose floor exceeds the budget
		// can never produce a feasible agreement.
		if l.BasePrice > br.MaxPrice {
			continue
		}
		candidates = append(candidates, llm.Candidate{
			ListingID:     l.ID,
			Title:         l.Title,
			Description:   l.Description,
			BasePrice:     l.BasePrice,
			ExpectedPrice: l.ExpectedPrice,
		})
		byID[l.ID] = l
	}
	if len(candidates) == 0 {
		return nil
	}

	scores, err := m.scorer.ScoreListings(ctx, llm.Intent{
		Title:       br.Title,
		Description: br.Description,
		MinPrice:    br.MinPrice,
		MaxPrice:    br.MaxPrice,
		Category:    br.Category,
	}, candidates)
	if err != nil {
		slog.WarnContext(ctx, "match scoring failed", "buy_request_id", br.ID, "error", err)
		return nil
	}

	var best *Match
	for _, s := range scores {
		listing, ok := byID[s.ListingID]
		if !ok || s.Score < m.scoreFloor {
			continue
		}
		if best == nil || s.Score > best.Score {
			best = &Match{Listing: listing, Score: s.Score, Reason: s.Reason}
		}
	}
	return best
}
