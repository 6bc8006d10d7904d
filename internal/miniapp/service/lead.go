package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/domain"
	"github.com/swapline/miniapp/internal/miniapp/store"
	"github.com/swapline/miniapp/pkg/idx"
	"github.com/swapline/miniapp/pkg/slogx"
)

var ErrInvalidLead = errors.New("invalid lead")

// LeadInput is what the Mini App submits when a user requests an exchange.
type LeadInput struct {
	City          string
	ExchangeType  string
	ReceiveType   string
	Sum           string
	WalletAddress string
	Meta          map[string]any
}

// LeadService stores exchange leads for authenticated users and forwards
// them to the CRM. Forwarding is best effort: a webhook failure never fails
// the request that created the lead.
type LeadService struct {
	Store     store.Store
	Forwarder *LeadForwarder // optional
}

func (s *LeadService) Create(ctx context.Context, user domain.User, input LeadInput) (domain.Lead, error) {
	if err := validateLeadInput(input); err != nil {
		return domain.Lead{}, err
	}

	lead := domain.Lead{
		ID:            idx.New().String(),
		CreatedAt:     time.Now().UTC(),
		TelegramID:    user.TelegramID,
		Username:      user.Username,
		City:          strings.TrimSpace(input.City),
		ExchangeType:  strings.TrimSpace(input.ExchangeType),
		ReceiveType:   strings.TrimSpace(input.ReceiveType),
		Sum:           strings.TrimSpace(input.Sum),
		WalletAddress: strings.TrimSpace(input.WalletAddress),
		Meta:          input.Meta,
	}

	if err := s.Store.Leads().Create(ctx, lead); err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}

	slogx.FromContext(ctx).Info("lead created",
		"lead_id", lead.ID,
		"tg_user_id", lead.TelegramID,
		"city", lead.City,
		"exchange_type", lead.ExchangeType,
	)

	if s.Forwarder != nil {
		s.Forwarder.Forward(ctx, lead)
	}

	return lead, nil
}

// List returns the user's own leads, newest first.
func (s *LeadService) List(ctx context.Context, user domain.User) ([]domain.Lead, error) {
	return s.Store.Leads().ListByTelegramID(ctx, user.TelegramID)
}

func validateLeadInput(input LeadInput) error {
	required := []struct {
		field, value string
	}{
		{"city", input.City},
		{"exchange_type", input.ExchangeType},
		{"receive_type", input.ReceiveType},
		{"sum", input.Sum},
		{"wallet_address", input.WalletAddress},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidLead, f.field)
		}
	}
	return nil
}
