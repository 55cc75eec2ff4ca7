package repo

import (
	"context"
)

// SubscriptionRepo stores subscriber -> channel edges.
type SubscriptionRepo interface {
	Exists(ctx context.Context, subscriberID, channelID int64) (bool, error)
	Create(ctx context.Context, subscriberID, channelID int64) error
	Delete(ctx context.Context, subscriberID, channelID int64) error
}

type PGSubscriptionRepo struct {
	db DB
}

func NewPGSubscriptionRepo(db DB) *PGSubscriptionRepo {
	return &PGSubscriptionRepo{db: db}
}

func (r *PGSubscriptionRepo) Exists(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		subscriberID, channelID,
	).Scan(&exists)
	return exists, mapErr(err)
}

// Create is idempotent: an existing edge is left untouched.
func (r *PGSubscriptionRepo) Create(ctx context.Context, subscriberID, channelID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		subscriberID, channelID)
	return err
}

func (r *PGSubscriptionRepo) Delete(ctx context.Context, subscriberID, channelID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
	return err
}
