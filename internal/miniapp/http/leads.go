package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/internal/miniapp/service"
	"github.com/swapline/miniapp/pkg/httpx"
)

// LeadCreateRequest is the body for POST /v1/leads.
type LeadCreateRequest struct {
	City          string         `json:"city"`
	ExchangeType  string         `json:"exchange_type"`
	ReceiveType   string         `json:"receive_type"`
	Sum           string         `json:"sum"`
	WalletAddress string         `json:"wallet_address"`
	Meta          map[string]any `json:"meta,omitempty"`
}

// LeadResponse is the wire form of a stored lead.
type LeadResponse struct {
	ID            string         `json:"id"`
	TgUserID      string         `json:"tg_user_id"`
	Username      string         `json:"username,omitempty"`
	City          string         `json:"city"`
	ExchangeType  string         `json:"exchange_type"`
	ReceiveType   string         `json:"receive_type"`
	Sum           string         `json:"sum"`
	WalletAddress string         `json:"wallet_address"`
	Meta          map[string]any `json:"meta,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// LeadCreateResponse wraps a newly created lead.
type LeadCreateResponse struct {
	OK   bool         `json:"ok"`
	Lead LeadResponse `json:"lead"`
}

// LeadListResponse wraps the caller's own leads, newest first.
type LeadListResponse struct {
	OK    bool           `json:"ok"`
	Leads []LeadResponse `json:"leads"`
}

func toLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:            lead.ID,
		TgUserID:      lead.TelegramID,
		Username:      lead.Username,
		City:          lead.City,
		ExchangeType:  lead.ExchangeType,
		ReceiveType:   lead.ReceiveType,
		Sum:           lead.Sum,
		WalletAddress: lead.WalletAddress,
		Meta:          lead.Meta,
		CreatedAt:     lead.CreatedAt,
	}
}

// LeadCreateHandler accepts an exchange request from the Mini App.
type LeadCreateHandler struct {
	LeadService *service.LeadService
}

// ServeHTTP handles POST /v1/leads.
//
//	@Summary		Submit exchange lead
//	@Description	Stores an exchange request for the authenticated user and
//	@Description	forwards it to the CRM.
//	@Tags			leads
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LeadCreateRequest	true	"Lead details"
//	@Success		201		{object}	LeadCreateResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/leads [post]
func (h *LeadCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req LeadCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lead, err := h.LeadService.Create(r.Context(), user, service.LeadInput{
		City:          req.City,
		ExchangeType:  req.ExchangeType,
		ReceiveType:   req.ReceiveType,
		Sum:           req.Sum,
		WalletAddress: req.WalletAddress,
		Meta:          req.Meta,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, LeadCreateResponse{OK: true, Lead: toLeadResponse(lead)})
}

// LeadListHandler returns the caller's own leads.
type LeadListHandler struct {
	LeadService *service.LeadService
}

// ServeHTTP handles GET /v1/leads.
//
//	@Summary		List own leads
//	@Description	Returns the authenticated user's leads, newest first.
//	@Tags			leads
//	@Produce		json
//	@Success		200	{object}	LeadListResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/leads [get]
func (h *LeadListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	leads, err := h.LeadService.List(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, toLeadResponse(lead))
	}

	httpx.WriteJSON(w, http.StatusOK, LeadListResponse{OK: true, Leads: out})
}
