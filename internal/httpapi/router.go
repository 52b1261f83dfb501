package httpapi

import (
	"net/http"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/service"
)

func NewRouter(svc *service.Service) http.Handler {
	h := NewHandlers(svc)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/listings", h.HandleCreateListing)
	mux.HandleFunc("GET /v1/listings", h.HandleListListings)
	mux.HandleFunc("GET /v1/listings/{id}", h.HandleGetListing)

	mux.HandleFunc("POST /v1/buy-requests", h.HandleCreateBuyRequest)
	mux.HandleFunc("GET /v1/buy-requests", h.HandleListBuyRequests)
	mux.HandleFunc("GET /v1/buy-requests/{id}", h.HandleGetBuyRequest)

	mux.HandleFunc("GET /v1/rooms/{id}", h.HandleGetRoom)
	mux.HandleFunc("GET /v1/rooms/{id}/messages", h.HandleListRoomMessages)

	mux.HandleFunc("POST /v1/agents", h.HandleRegisterAgent)
	mux.HandleFunc("GET /v1/agents", h.HandleListAgents)

	mux.HandleFunc("GET /health", handleHealth)

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"agent-bazaar"}`))
}
