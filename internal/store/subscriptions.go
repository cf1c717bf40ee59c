package store

import (
	"context"
	"fmt"

	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/jmoiron/sqlx"
)

// Subscribing again to a known channel refreshes its data. The notification
// mode chosen by the user is never overwritten.
const upsertSubscriptionSQL = `
	INSERT INTO subscriptions (service_id, url, name, avatar_url, subscriber_count, description, notification_mode)
	VALUES (:service_id, :url, :name, :avatar_url, :subscriber_count, :description, :notification_mode)
	ON CONFLICT(service_id, url) DO UPDATE SET
		name = excluded.name,
		avatar_url = excluded.avatar_url,
		subscriber_count = excluded.subscriber_count,
		description = excluded.description
	RETURNING uid, notification_mode
`

func (s *SQLiteStore) Subscribe(ctx context.Context, info catalog.ChannelInfo) (*catalog.Subscription, error) {
	sub := catalog.NewSubscription(info)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.Named(upsertSubscriptionSQL, sub)
		if err != nil {
			return fmt.Errorf("bind subscription %s: %w", info.URL, err)
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&sub.UID, &sub.NotificationMode); err != nil {
			return fmt.Errorf("upsert subscription %s: %w", info.URL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SQLiteStore) GetSubscription(ctx context.Context, uid int64) (*catalog.Subscription, error) {
	var sub catalog.Subscription
	if err := s.db.GetContext(ctx, &sub, "SELECT * FROM subscriptions WHERE uid = ?", uid); err != nil {
		return nil, notFound(err, "subscription", uid)
	}
	return &sub, nil
}

func (s *SQLiteStore) GetSubscriptionByKey(ctx context.Context, key catalog.NaturalKey) (*catalog.Subscription, error) {
	var sub catalog.Subscription
	err := s.db.GetContext(ctx, &sub,
		"SELECT * FROM subscriptions WHERE service_id = ? AND url = ?", key.ServiceID, key.URL)
	if err != nil {
		return nil, notFound(err, "subscription", key.URL)
	}
	return &sub, nil
}

func (s *SQLiteStore) ListSubscriptions(ctx context.Context) ([]catalog.Subscription, error) {
	var subs []catalog.Subscription
	if err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM subscriptions ORDER BY name COLLATE NOCASE, uid"); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// UpdateSubscriptionData refreshes the channel data of a subscription in
// place. Identity and notification mode are untouched.
func (s *SQLiteStore) UpdateSubscriptionData(ctx context.Context, uid int64, info catalog.ChannelInfo) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var sub catalog.Subscription
		if err := tx.GetContext(ctx, &sub, "SELECT * FROM subscriptions WHERE uid = ?", uid); err != nil {
			return notFound(err, "subscription", uid)
		}

		sub.SetDataFrom(info)
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE subscriptions SET
				name = :name,
				avatar_url = :avatar_url,
				description = :description,
				subscriber_count = :subscriber_count
			WHERE uid = :uid
		`, &sub); err != nil {
			return fmt.Errorf("update subscription %d: %w", uid, err)
		}
		return nil
	})
}

func (s *SQLiteStore) SetNotificationMode(ctx context.Context, uid int64, mode catalog.NotificationMode) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE subscriptions SET notification_mode = ? WHERE uid = ?", mode, uid)
	if err != nil {
		return fmt.Errorf("set notification mode %d: %w", uid, err)
	}
	return affectedOrNotFound(res, "subscription", uid)
}

func (s *SQLiteStore) Unsubscribe(ctx context.Context, uid int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("unsubscribe %d: %w", uid, err)
	}
	return affectedOrNotFound(res, "subscription", uid)
}
