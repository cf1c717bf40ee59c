package store

import (
	"context"
	"fmt"

	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/jmoiron/sqlx"
)

// Required columns follow the newest source. Optional columns keep what is
// stored when the new source does not know them, so a queue item never erases
// view counts or upload dates from a full fetch.
const upsertStreamSQL = `
	INSERT INTO streams (service_id, url, title, live, audio_only, duration, uploader,
		uploader_url, thumbnail_url, view_count, textual_upload_date, upload_date, is_upload_date_approximation)
	VALUES (:service_id, :url, :title, :live, :audio_only, :duration, :uploader,
		:uploader_url, :thumbnail_url, :view_count, :textual_upload_date, :upload_date, :is_upload_date_approximation)
	ON CONFLICT(service_id, url) DO UPDATE SET
		title = excluded.title,
		live = excluded.live,
		audio_only = excluded.audio_only,
		duration = excluded.duration,
		uploader = excluded.uploader,
		uploader_url = COALESCE(excluded.uploader_url, streams.uploader_url),
		thumbnail_url = COALESCE(excluded.thumbnail_url, streams.thumbnail_url),
		view_count = COALESCE(excluded.view_count, streams.view_count),
		textual_upload_date = COALESCE(excluded.textual_upload_date, streams.textual_upload_date),
		upload_date = COALESCE(excluded.upload_date, streams.upload_date),
		is_upload_date_approximation = COALESCE(excluded.is_upload_date_approximation, streams.is_upload_date_approximation)
	RETURNING uid
`

func upsertStream(ctx context.Context, tx *sqlx.Tx, s *catalog.Stream) error {
	query, args, err := sqlx.Named(upsertStreamSQL, s)
	if err != nil {
		return fmt.Errorf("bind stream %s: %w", s.URL, err)
	}
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&s.UID); err != nil {
		return fmt.Errorf("upsert stream %s: %w", s.URL, err)
	}
	return nil
}

// UpsertStream inserts the stream or merges it into the row with the same
// (service, url), then sets s.UID to the stored uid.
func (s *SQLiteStore) UpsertStream(ctx context.Context, st *catalog.Stream) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return upsertStream(ctx, tx, st)
	})
}

func (s *SQLiteStore) UpsertStreams(ctx context.Context, streams []*catalog.Stream) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, st := range streams {
			if err := upsertStream(ctx, tx, st); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetStream(ctx context.Context, uid int64) (*catalog.Stream, error) {
	var st catalog.Stream
	if err := s.db.GetContext(ctx, &st, "SELECT * FROM streams WHERE uid = ?", uid); err != nil {
		return nil, notFound(err, "stream", uid)
	}
	return &st, nil
}

func (s *SQLiteStore) GetStreamByKey(ctx context.Context, key catalog.NaturalKey) (*catalog.Stream, error) {
	var st catalog.Stream
	err := s.db.GetContext(ctx, &st,
		"SELECT * FROM streams WHERE service_id = ? AND url = ?", key.ServiceID, key.URL)
	if err != nil {
		return nil, notFound(err, "stream", key.URL)
	}
	return &st, nil
}

// DeleteStream deletes a stream and, through the cascade, every membership
// pointing at it. The playlists that lost a position are compacted before
// the transaction commits.
func (s *SQLiteStore) DeleteStream(ctx context.Context, uid int64) error {
	return s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		var playlistIDs []int64
		if err := tx.SelectContext(ctx, &playlistIDs,
			"SELECT DISTINCT playlist_id FROM playlist_stream_join WHERE stream_id = ?", uid); err != nil {
			return fmt.Errorf("find playlists of stream %d: %w", uid, err)
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM streams WHERE uid = ?", uid)
		if err != nil {
			return fmt.Errorf("delete stream %d: %w", uid, err)
		}
		if err := affectedOrNotFound(res, "stream", uid); err != nil {
			return err
		}

		for _, pid := range playlistIDs {
			if err := compactPlaylist(ctx, tx, pid); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteOrphanStreams removes streams that no playlist references.
func (s *SQLiteStore) DeleteOrphanStreams(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM streams
		WHERE uid NOT IN (SELECT DISTINCT stream_id FROM playlist_stream_join)
	`)
	if err != nil {
		return 0, fmt.Errorf("delete orphan streams: %w", err)
	}
	return res.RowsAffected()
}
