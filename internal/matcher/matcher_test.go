package matcher

import (
	"context"
	"errors"
	"testing"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/llm"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
)

type fakeScorer struct {
	scores []llm.MatchScore
	err    error
	called bool
}

func (f *fakeScorer) ScoreListings(ctx context.Context, intent llm.Intent, candidates []llm.Candidate) ([]llm.MatchScore, error) {
	f.called = true
	return f.scores, f.err
}

func buyRequest() model.BuyRequest {
	return model.BuyRequest{ID: "buyreq_1", Title: "vintage synth", MinPrice: 10, MaxPrice: 20}
}

func listings() []model.Listing {
	return []model.Listing{
		{ID: "lst_a", Title: "analog synth", BasePrice: 12, ExpectedPrice: 15, Status: model.ListingOpen},
		{ID: "lst_b", Title: "guitar pedal", BasePrice: 8, ExpectedPrice: 10, Status: model.ListingOpen},
		{ID: "lst_c", Title: "grand piano", BasePrice: 500, ExpectedPrice: 800, Status: model.ListingOpen},
	}
}

func TestBestMatchPicksHighestAboveFloor(t *testing.T) {
	scorer := &fakeScorer{scores: []llm.MatchScore{
		{ListingID: "lst_a", Score: 92, Reason: "same instrument class"},
		{ListingID: "lst_b", Score: 35, Reason: "different category"},
	}}
	m := New(scorer, 60)

	match := m.BestMatch(context.Background(), buyRequest(), listings())
	if match == nil {
		t.Fatal("BestMatch() = nil, want lst_a")
	}
	if match.Listing.ID != "lst_a" || match.Score != 92 {
		t.Errorf("match = %s/%d, want lst_a/92", match.Listing.ID, match.Score)
	}
}

func TestBestMatchScoreFloor(t *testing.T) {
	scorer := &fakeScorer{scores: []llm.MatchScore{
		{ListingID: "lst_a", Score: 59},
		{ListingID: "lst_b", Score: 40},
	}}
	m := New(scorer, 60)

	if match := m.BestMatch(context.Background(), buyRequest(), listings()); match != nil {
		t.Fatalf("BestMatch() = %+v, want nil below floor", match)
	}
}

func TestBestMatchAffordabilityPrefilter(t *testing.T) {
	// lst_c's base price exceeds the budget max; the scorer must never even
	// see it.
	scorer := &fakeScorer{scores: []llm.MatchScore{{ListingID: "lst_c", Score: 99}}}
	m := New(scorer, 60)

	if match := m.BestMatch(context.Background(), buyRequest(), listings()); match != nil {
		t.Fatalf("BestMatch() = %+v, want nil for unaffordable listing", match)
	}
}

func TestBestMatchScorerFailureIsNoMatch(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("scoring backend down")}
	m := New(scorer, 60)

	if match := m.BestMatch(context.Background(), buyRequest(), listings()); match != nil {
		t.Fatalf("BestMatch() = %+v, want nil on scorer failure", match)
	}
}

func TestBestMatchNoAffordableCandidates(t *testing.T) {
	scorer := &fakeScorer{}
	m := New(scorer, 60)

	br := buyRequest()
	br.MaxPrice = 1
	if match := m.BestMatch(context.Background(), br, listings()); match != nil {
		t.Fatal("BestMatch() != nil for empty candidate set")
	}
	if scorer.called {
		t.Error("scorer invoked with no affordable candidates")
	}
}
