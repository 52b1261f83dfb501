package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/a2a"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/agentcard"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/events"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/llm"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/matcher"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/negotiation"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/service"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/store"
)

type noScorer struct{}

func (noScorer) ScoreListings(ctx context.Context, intent llm.Intent, candidates []llm.Candidate) ([]llm.MatchScore, error) {
	return nil, nil
}

type noCompleter struct{}

func (noCompleter) NextProposal(ctx context.Context, pc llm.ProposalContext) (string, error) {
	return "", nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st := store.NewMemoryStore()
	dir := agentcard.NewMemoryDirectory()
	pub := events.NewPublisher("test")
	engine := negotiation.NewEngine(st, a2a.NewClient(time.Second), noCompleter{}, pub, negotiation.DefaultMaxRounds)
	orch := service.NewOrchestrator(st, matcher.New(noScorer{}, matcher.DefaultScoreFloor), agentcard.NewResolver(dir), engine, pub)
	return NewRouter(service.New(st, dir, pub, orch))
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q, want healthy", body["status"])
	}
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	payload, _ := json.Marshal(service.ListingSubmission{
		SellerAgentID: "seller-1",
		Title:         "vintage synth",
		BasePrice:     12,
		ExpectedPrice: 15,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/listings", bytes.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var fetched model.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.ID != created.ID || fetched.Status != model.ListingOpen {
		t.Errorf("fetched = %+v", fetched)
	}
}

func TestCreateListingRejectsInvalidPayload(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/listings", bytes.NewReader([]byte(`{"title":"no seller"}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing seller", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/listings", bytes.NewReader([]byte(`not json`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed body", rec.Code)
	}
}

func TestCreateBuyRequestRejectsInvertedBand(t *testing.T) {
	router := newTestRouter(t)

	payload, _ := json.Marshal(service.BuyRequestSubmission{
		BuyerAgentID: "buyer-1",
		Title:        "synth wanted",
		MinPrice:     20,
		MaxPrice:     10,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/buy-requests", bytes.NewReader(payload)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetUnknownResourcesReturn404(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/v1/listings/lst_missing", "/v1/buy-requests/buyreq_missing", "/v1/rooms/room_missing", "/v1/rooms/room_missing/messages"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestRegisterAgentOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/agents", bytes.NewReader([]byte(`{"agent_id":"seller-1","base_url":"http://seller.example"}`))))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/agents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var agents []model.AgentEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &agents); err != nil {
		t.Fatal(err)
	}
	if len(agents) != 1 || agents[0].AgentID != "seller-1" {
		t.Errorf("agents = %+v", agents)
	}
}
