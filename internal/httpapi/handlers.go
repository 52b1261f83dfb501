package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/service"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/store"
)

type Handlers struct {
	svc *service.Service
}

func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleCreateListing handles POST /v1/listings
func (h *Handlers) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.ListingSubmission
	if !decodeBody(w, r, &req) {
		return
	}

	listing, err := h.svc.CreateListing(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidListing) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(ctx, "create listing", "error", err)
		http.Error(w, "failed to create listing", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

// HandleListListings handles GET /v1/listings
func (h *Handlers) HandleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.ListOpenListings(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list listings", "error", err)
		http.Error(w, "failed to list listings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// HandleGetListing handles GET /v1/listings/{id}
func (h *Handlers) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.GetListing(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrListingNotFound) {
			http.Error(w, "listing not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "get listing", "error", err)
		http.Error(w, "failed to get listing", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleCreateBuyRequest handles POST /v1/buy-requests
func (h *Handlers) HandleCreateBuyRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.BuyRequestSubmission
	if !decodeBody(w, r, &req) {
		return
	}

	br, err := h.svc.CreateBuyRequest(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBuyRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(ctx, "create buy request", "error", err)
		http.Error(w, "failed to create buy request", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, br)
}

// HandleListBuyRequests handles GET /v1/buy-requests
func (h *Handlers) HandleListBuyRequests(w http.ResponseWriter, r *http.Request) {
	buyerAgentID := r.URL.Query().Get("buyer_agent_id")
	out, err := h.svc.ListBuyRequests(r.Context(), buyerAgentID, 100)
	if err != nil {
		slog.ErrorContext(r.Context(), "list buy requests", "error", err)
		http.Error(w, "failed to list buy requests", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetBuyRequest handles GET /v1/buy-requests/{id}
func (h *Handlers) HandleGetBuyRequest(w http.ResponseWriter, r *http.Request) {
	br, err := h.svc.GetBuyRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrBuyRequestNotFound) {
			http.Error(w, "buy request not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "get buy request", "error", err)
		http.Error(w, "failed to get buy request", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, br)
}

// HandleGetRoom handles GET /v1/rooms/{id}
func (h *Handlers) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.svc.GetRoom(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "get room", "error", err)
		http.Error(w, "failed to get room", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// HandleListRoomMessages handles GET /v1/rooms/{id}/messages
func (h *Handlers) HandleListRoomMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.ListRoomMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "list room messages", "error", err)
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandleRegisterAgent handles POST /v1/agents
func (h *Handlers) HandleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
		BaseURL string `json:"base_url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.RegisterAgent(r.Context(), req.AgentID, req.BaseURL); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"agent_id": req.AgentID, "base_url": req.BaseURL})
}

// HandleListAgents handles GET /v1/agents
func (h *Handlers) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.svc.ListAgents(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list agents", "error", err)
		http.Error(w, "failed to list agents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
