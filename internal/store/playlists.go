package store

import (
	"context"
	"fmt"

	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/jmoiron/sqlx"
)

func insertPlaylist(ctx context.Context, tx *sqlx.Tx, p *catalog.Playlist) error {
	res, err := tx.NamedExecContext(ctx,
		"INSERT INTO playlists (name, thumbnail_url) VALUES (:name, :thumbnail_url)", p)
	if err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	p.UID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) CreatePlaylist(ctx context.Context, p *catalog.Playlist) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return insertPlaylist(ctx, tx, p)
	})
}

// CreatePlaylistWithStreams stores the streams, creates a playlist named name
// whose thumbnail is taken from the first stream, and appends all streams in
// order.
func (s *SQLiteStore) CreatePlaylistWithStreams(ctx context.Context, name string, streams []*catalog.Stream) (*catalog.Playlist, error) {
	p := catalog.NewPlaylist(name, nil)
	if len(streams) > 0 {
		p = catalog.NewPlaylistFromStream(name, streams[0])
	}

	err := s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		ids := make([]int64, len(streams))
		for i, st := range streams {
			if err := upsertStream(ctx, tx, st); err != nil {
				return err
			}
			ids[i] = st.UID
		}
		if err := insertPlaylist(ctx, tx, p); err != nil {
			return err
		}
		return insertJoins(ctx, tx, catalog.Reindex(p.UID, ids))
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) GetPlaylist(ctx context.Context, uid int64) (*catalog.Playlist, error) {
	var p catalog.Playlist
	if err := s.db.GetContext(ctx, &p, "SELECT * FROM playlists WHERE uid = ?", uid); err != nil {
		return nil, notFound(err, "playlist", uid)
	}
	return &p, nil
}

// ListPlaylists returns every local playlist with its stream count, ordered
// by name.
func (s *SQLiteStore) ListPlaylists(ctx context.Context) ([]catalog.PlaylistMetadata, error) {
	var playlists []catalog.PlaylistMetadata
	err := s.db.SelectContext(ctx, &playlists, `
		SELECT p.uid, p.name, p.thumbnail_url, COUNT(j.stream_id) AS stream_count
		FROM playlists p
		LEFT JOIN playlist_stream_join j ON j.playlist_id = p.uid
		GROUP BY p.uid
		ORDER BY p.name COLLATE NOCASE, p.uid
	`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	return playlists, nil
}

func (s *SQLiteStore) RenamePlaylist(ctx context.Context, uid int64, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE playlists SET name = ? WHERE uid = ?", name, uid)
	if err != nil {
		return fmt.Errorf("rename playlist %d: %w", uid, err)
	}
	return affectedOrNotFound(res, "playlist", uid)
}

func (s *SQLiteStore) SetPlaylistThumbnail(ctx context.Context, uid int64, thumbnailURL *string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE playlists SET thumbnail_url = ? WHERE uid = ?", thumbnailURL, uid)
	if err != nil {
		return fmt.Errorf("set playlist thumbnail %d: %w", uid, err)
	}
	return affectedOrNotFound(res, "playlist", uid)
}

// DeletePlaylist deletes a playlist. Its memberships go with it through the
// cascade; the streams stay.
func (s *SQLiteStore) DeletePlaylist(ctx context.Context, uid int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM playlists WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("delete playlist %d: %w", uid, err)
	}
	return affectedOrNotFound(res, "playlist", uid)
}
