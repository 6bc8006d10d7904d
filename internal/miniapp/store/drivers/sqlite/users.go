package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/swapline/miniapp/internal/miniapp/domain"
)

type usersRepo struct {
	q querier
}

func (r *usersRepo) GetByTelegramID(ctx context.Context, telegramID string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, tg_user_id, username, created_at, updated_at
		FROM users
		WHERE tg_user_id = ?`, telegramID)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

// Upsert relies on the tg_user_id unique index: a conflicting concurrent
// insert degrades into the username update instead of a duplicate row.
func (r *usersRepo) Upsert(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()

	row := r.q.QueryRowContext(ctx, `
		INSERT INTO users (id, tg_user_id, username, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tg_user_id) DO UPDATE SET
			username = excluded.username,
			updated_at = excluded.updated_at
		RETURNING id, tg_user_id, username, created_at, updated_at`,
		u.ID, u.TelegramID, toNullString(u.Username), now, now)

	stored, err := scanUser(row)
	if err != nil {
		return domain.User{}, err
	}
	return stored, nil
}

func (r *usersRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u        domain.User
		username sql.NullString
	)
	if err := row.Scan(&u.ID, &u.TelegramID, &username, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.Username = username.String
	return u, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
