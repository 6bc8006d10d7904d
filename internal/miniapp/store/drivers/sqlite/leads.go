package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/domain"
)

type leadsRepo struct {
	q querier
}

func (r *leadsRepo) Create(ctx context.Context, l domain.Lead) error {
	meta := sql.NullString{}
	if l.Meta != nil {
		raw, err := json.Marshal(l.Meta)
		if err != nil {
			return err
		}
		meta = sql.NullString{String: string(raw), Valid: true}
	}

	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO leads (
			id, tg_user_id, username, city, exchange_type, receive_type,
			sum, wallet_address, meta, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.TelegramID, toNullString(l.Username), l.City, l.ExchangeType,
		l.ReceiveType, l.Sum, l.WalletAddress, meta, createdAt)
	return err
}

func (r *leadsRepo) ListByTelegramID(ctx context.Context, telegramID string) ([]domain.Lead, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, tg_user_id, username, city, exchange_type, receive_type,
		       sum, wallet_address, meta, created_at
		FROM leads
		WHERE tg_user_id = ?
		ORDER BY created_at DESC, id DESC`, telegramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var (
			l        domain.Lead
			username sql.NullString
			meta     sql.NullString
		)
		if err := rows.Scan(
			&l.ID, &l.TelegramID, &username, &l.City, &l.ExchangeType,
			&l.ReceiveType, &l.Sum, &l.WalletAddress, &meta, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		l.Username = username.String
		if meta.Valid {
			if err := json.Unmarshal([]byte(meta.String), &l.Meta); err != nil {
				return nil, err
			}
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
