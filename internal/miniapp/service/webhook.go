package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/pkg/slogx"
)

const leadForwardTimeout = 15 * time.Second

// LeadForwarder pushes created leads to the CRM webhook. Delivery is fire
// and forget: failures are logged and the lead stays persisted locally.
type LeadForwarder struct {
	URL    string
	Client *http.Client
}

// leadWebhookPayload mirrors what the CRM expects: who to contact and the
// lead variables.
type leadWebhookPayload struct {
	ContactBy string         `json:"contact_by"`
	Search    string         `json:"search"`
	Variables map[string]any `json:"variables"`
}

func (f *LeadForwarder) Forward(ctx context.Context, lead domain.Lead) {
	log := slogx.FromContext(ctx)
	if f.URL == "" {
		log.Debug("lead webhook forward disabled")
		return
	}

	search := lead.Username
	if search == "" {
		search = lead.TelegramID
	}

	payload := leadWebhookPayload{
		ContactBy: "telegram_name",
		Search:    search,
		Variables: map[string]any{
			"city":           lead.City,
			"exchange_type":  lead.ExchangeType,
			"receive_type":   lead.ReceiveType,
			"sum":            lead.Sum,
			"wallet_address": lead.WalletAddress,
			"username":       lead.Username,
			"tg_user_id":     lead.TelegramID,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("lead webhook payload marshal failed", "lead_id", lead.ID, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, leadForwardTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.URL, bytes.NewReader(body))
	if err != nil {
		log.Error("lead webhook request failed", "lead_id", lead.ID, "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Warn("lead webhook delivery failed", "lead_id", lead.ID, "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("lead webhook rejected", "lead_id", lead.ID, "status", resp.StatusCode)
		return
	}

	log.Info("lead forwarded to CRM", "lead_id", lead.ID, "status", resp.StatusCode)
}
