package store

import (
	"context"
	"fmt"

	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/jmoiron/sqlx"
)

const upsertRemotePlaylistSQL = `
	INSERT INTO remote_playlists (service_id, name, url, thumbnail_url, uploader, stream_count)
	VALUES (:service_id, :name, :url, :thumbnail_url, :uploader, :stream_count)
	ON CONFLICT(service_id, url) DO UPDATE SET
		name = excluded.name,
		thumbnail_url = excluded.thumbnail_url,
		uploader = excluded.uploader,
		stream_count = excluded.stream_count
	RETURNING uid
`

// BookmarkRemotePlaylist stores a remote playlist. Bookmarking the same
// (service, url) again refreshes the existing row.
func (s *SQLiteStore) BookmarkRemotePlaylist(ctx context.Context, info catalog.PlaylistInfo) (*catalog.RemotePlaylist, error) {
	rp := catalog.NewRemotePlaylist(info)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.Named(upsertRemotePlaylistSQL, rp)
		if err != nil {
			return fmt.Errorf("bind remote playlist %s: %w", info.URL, err)
		}
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&rp.UID); err != nil {
			return fmt.Errorf("upsert remote playlist %s: %w", info.URL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rp, nil
}

func (s *SQLiteStore) GetRemotePlaylist(ctx context.Context, uid int64) (*catalog.RemotePlaylist, error) {
	var rp catalog.RemotePlaylist
	if err := s.db.GetContext(ctx, &rp, "SELECT * FROM remote_playlists WHERE uid = ?", uid); err != nil {
		return nil, notFound(err, "remote playlist", uid)
	}
	return &rp, nil
}

func (s *SQLiteStore) GetRemotePlaylistByKey(ctx context.Context, key catalog.NaturalKey) (*catalog.RemotePlaylist, error) {
	var rp catalog.RemotePlaylist
	err := s.db.GetContext(ctx, &rp,
		"SELECT * FROM remote_playlists WHERE service_id = ? AND url = ?", key.ServiceID, key.URL)
	if err != nil {
		return nil, notFound(err, "remote playlist", key.URL)
	}
	return &rp, nil
}

func (s *SQLiteStore) ListRemotePlaylists(ctx context.Context) ([]catalog.RemotePlaylist, error) {
	var playlists []catalog.RemotePlaylist
	if err := s.db.SelectContext(ctx, &playlists,
		"SELECT * FROM remote_playlists ORDER BY name COLLATE NOCASE, uid"); err != nil {
		return nil, fmt.Errorf("list remote playlists: %w", err)
	}
	return playlists, nil
}

// ReconcileRemotePlaylist compares the stored snapshot with freshly fetched
// metadata and rewrites it only when they differ. It reports whether a write
// happened.
func (s *SQLiteStore) ReconcileRemotePlaylist(ctx context.Context, uid int64, info catalog.PlaylistInfo) (bool, error) {
	updated := false
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var rp catalog.RemotePlaylist
		if err := tx.GetContext(ctx, &rp, "SELECT * FROM remote_playlists WHERE uid = ?", uid); err != nil {
			return notFound(err, "remote playlist", uid)
		}
		if rp.IsIdenticalTo(info) {
			return nil
		}

		rp.UpdateFrom(info)
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE remote_playlists SET
				service_id = :service_id,
				name = :name,
				url = :url,
				thumbnail_url = :thumbnail_url,
				uploader = :uploader,
				stream_count = :stream_count
			WHERE uid = :uid
		`, &rp); err != nil {
			return fmt.Errorf("update remote playlist %d: %w", uid, err)
		}
		updated = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (s *SQLiteStore) DeleteRemotePlaylist(ctx context.Context, uid int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM remote_playlists WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("delete remote playlist %d: %w", uid, err)
	}
	return affectedOrNotFound(res, "remote playlist", uid)
}
