package subscriberrepo

import (
	"context"
	"database/sql"
	"time"

	"rentique/model"
)

type Repo interface {
	ByEmail(ctx context.Context, email string) (*model.Subscriber, error)
	Create(ctx context.Context, s *model.Subscriber) error
	Reactivate(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, email string) (bool, error)
	ListActive(ctx context.Context) ([]model.Subscriber, error)
	MarkNotified(ctx context.Context, ids []int64, at time.Time) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const subCols = `id, email, is_active, subscribed_at, last_notified, source`

func (r *repo) ByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	s := &model.Subscriber{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+subCols+`
		FROM subscribers
		WHERE email = lower($1)`, email,
	).Scan(&s.ID, &s.Email, &s.IsActive, &s.SubscribedAt, &s.LastNotified, &s.Source)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repo) Create(ctx context.Context, s *model.Subscriber) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (email, source)
		VALUES (lower($1), $2)
		RETURNING id, is_active, subscribed_at`,
		s.Email, s.Source,
	).Scan(&s.ID, &s.IsActive, &s.SubscribedAt)
}

func (r *repo) Reactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscribers
		SET is_active = true, subscribed_at = now()
		WHERE id = $1`, id)
	return err
}

func (r *repo) Deactivate(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscribers
		SET is_active = false
		WHERE email = lower($1) AND is_active`, email)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) ListActive(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subCols+`
		FROM subscribers
		WHERE is_active
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Subscriber
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.IsActive, &s.SubscribedAt, &s.LastNotified, &s.Source); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) MarkNotified(ctx context.Context, ids []int64, at time.Time) error {
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx, `
			UPDATE subscribers SET last_notified = $2 WHERE id = $1`, id, at); err != nil {
			return err
		}
	}
	return nil
}
