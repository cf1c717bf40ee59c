package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/jmoiron/sqlx"
)

// Positions of a playlist are kept at exactly 0..n-1. Every mutation below
// runs in one transaction, so readers only ever see contiguous positions.
// (playlist_id, join_index) is unique and SQLite checks it row by row, so
// shifts walk the affected rows in an order that never collides.

func (s *SQLiteStore) AppendStreams(ctx context.Context, playlistID int64, streamIDs ...int64) error {
	return s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		n, err := countPositions(ctx, tx, playlistID)
		if err != nil {
			return err
		}
		joins := make([]catalog.PlaylistStream, len(streamIDs))
		for i, id := range streamIDs {
			joins[i] = catalog.PlaylistStream{PlaylistUID: playlistID, StreamUID: id, Index: n + i}
		}
		return insertJoins(ctx, tx, joins)
	})
}

// InsertStream puts streamID at pos and moves everything from pos on one
// place down. pos may equal the current length.
func (s *SQLiteStore) InsertStream(ctx context.Context, playlistID, streamID int64, pos int) error {
	return s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		n, err := countPositions(ctx, tx, playlistID)
		if err != nil {
			return err
		}
		if pos < 0 || pos > n {
			return fmt.Errorf("insert at %d into playlist %d of %d: %w", pos, playlistID, n, ErrPositionOutOfRange)
		}
		return insertAt(ctx, tx, playlistID, streamID, pos)
	})
}

// RemoveAt removes the membership at pos and closes the gap.
func (s *SQLiteStore) RemoveAt(ctx context.Context, playlistID int64, pos int) error {
	return s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := countPositions(ctx, tx, playlistID); err != nil {
			return err
		}
		_, err := removeAt(ctx, tx, playlistID, pos)
		return err
	})
}

// MoveStream moves the membership at from to to, as a removal followed by an
// insertion in the same transaction.
func (s *SQLiteStore) MoveStream(ctx context.Context, playlistID int64, from, to int) error {
	return s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		n, err := countPositions(ctx, tx, playlistID)
		if err != nil {
			return err
		}
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("move %d to %d in playlist %d of %d: %w", from, to, playlistID, n, ErrPositionOutOfRange)
		}
		if from == to {
			return nil
		}

		streamID, err := removeAt(ctx, tx, playlistID, from)
		if err != nil {
			return err
		}
		return insertAt(ctx, tx, playlistID, streamID, to)
	})
}

// ReplaceStreams rewrites the whole membership of a playlist.
func (s *SQLiteStore) ReplaceStreams(ctx context.Context, playlistID int64, streamIDs []int64) error {
	return s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := countPositions(ctx, tx, playlistID); err != nil {
			return err
		}
		return replaceStreams(ctx, tx, playlistID, streamIDs)
	})
}

// RemoveDuplicateStreams keeps the first position of every stream and
// returns how many positions were dropped.
func (s *SQLiteStore) RemoveDuplicateStreams(ctx context.Context, playlistID int64) (int, error) {
	removed := 0
	err := s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := countPositions(ctx, tx, playlistID); err != nil {
			return err
		}
		var ids []int64
		if err := tx.SelectContext(ctx, &ids, `
			SELECT stream_id FROM playlist_stream_join
			WHERE playlist_id = ? ORDER BY join_index
		`, playlistID); err != nil {
			return fmt.Errorf("list streams of playlist %d: %w", playlistID, err)
		}

		unique := catalog.Dedupe(ids)
		removed = len(ids) - len(unique)
		if removed == 0 {
			return nil
		}
		return replaceStreams(ctx, tx, playlistID, unique)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// PlaylistStreams returns the streams of a playlist in position order.
func (s *SQLiteStore) PlaylistStreams(ctx context.Context, playlistID int64) ([]catalog.PlaylistStreamEntry, error) {
	var entries []catalog.PlaylistStreamEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT s.*, j.playlist_id, j.join_index
		FROM playlist_stream_join j
		JOIN streams s ON s.uid = j.stream_id
		WHERE j.playlist_id = ?
		ORDER BY j.join_index
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list streams of playlist %d: %w", playlistID, err)
	}
	return entries, nil
}

// PlaylistsContainingStream returns the ids of playlists holding the stream.
func (s *SQLiteStore) PlaylistsContainingStream(ctx context.Context, streamID int64) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT playlist_id FROM playlist_stream_join
		WHERE stream_id = ? ORDER BY playlist_id
	`, streamID)
	if err != nil {
		return nil, fmt.Errorf("find playlists of stream %d: %w", streamID, err)
	}
	return ids, nil
}

// CheckContiguity reports catalog.ErrPositionGap or
// catalog.ErrDuplicatePosition when a playlist's positions are not 0..n-1.
func (s *SQLiteStore) CheckContiguity(ctx context.Context, playlistID int64) error {
	var indices []int
	if err := s.db.SelectContext(ctx, &indices,
		"SELECT join_index FROM playlist_stream_join WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("list positions of playlist %d: %w", playlistID, err)
	}
	if err := catalog.ValidatePositions(indices); err != nil {
		return fmt.Errorf("playlist %d: %w", playlistID, err)
	}
	return nil
}

// CompactPlaylist renumbers a playlist's positions to 0..n-1 keeping their
// relative order.
func (s *SQLiteStore) CompactPlaylist(ctx context.Context, playlistID int64) error {
	return s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := countPositions(ctx, tx, playlistID); err != nil {
			return err
		}
		return compactPlaylist(ctx, tx, playlistID)
	})
}

// CompactAll compacts every playlist and returns how many needed it.
func (s *SQLiteStore) CompactAll(ctx context.Context) (int, error) {
	repaired := 0
	err := s.withMembershipTx(ctx, func(tx *sqlx.Tx) error {
		var ids []int64
		if err := tx.SelectContext(ctx, &ids, "SELECT uid FROM playlists ORDER BY uid"); err != nil {
			return fmt.Errorf("list playlists: %w", err)
		}
		for _, id := range ids {
			var indices []int
			if err := tx.SelectContext(ctx, &indices,
				"SELECT join_index FROM playlist_stream_join WHERE playlist_id = ?", id); err != nil {
				return fmt.Errorf("list positions of playlist %d: %w", id, err)
			}
			if catalog.ValidatePositions(indices) == nil {
				continue
			}
			if err := compactPlaylist(ctx, tx, id); err != nil {
				return err
			}
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return repaired, nil
}

// countPositions returns the membership count of a playlist, or ErrNotFound
// when the playlist does not exist.
func countPositions(ctx context.Context, tx *sqlx.Tx, playlistID int64) (int, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM playlists WHERE uid = ?)", playlistID); err != nil {
		return 0, fmt.Errorf("check playlist %d: %w", playlistID, err)
	}
	if !exists {
		return 0, fmt.Errorf("playlist %d: %w", playlistID, ErrNotFound)
	}

	var n int
	if err := tx.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM playlist_stream_join WHERE playlist_id = ?", playlistID); err != nil {
		return 0, fmt.Errorf("count playlist %d: %w", playlistID, err)
	}
	return n, nil
}

func insertJoins(ctx context.Context, tx *sqlx.Tx, joins []catalog.PlaylistStream) error {
	for _, j := range joins {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO playlist_stream_join (playlist_id, stream_id, join_index)
			VALUES (:playlist_id, :stream_id, :join_index)
		`, j); err != nil {
			return fmt.Errorf("insert stream %d at %d of playlist %d: %w", j.StreamUID, j.Index, j.PlaylistUID, err)
		}
	}
	return nil
}

func insertAt(ctx context.Context, tx *sqlx.Tx, playlistID, streamID int64, pos int) error {
	if err := shiftFrom(ctx, tx, playlistID, pos, 1); err != nil {
		return err
	}
	return insertJoins(ctx, tx, []catalog.PlaylistStream{
		{PlaylistUID: playlistID, StreamUID: streamID, Index: pos},
	})
}

func removeAt(ctx context.Context, tx *sqlx.Tx, playlistID int64, pos int) (int64, error) {
	var streamID int64
	err := tx.GetContext(ctx, &streamID, `
		SELECT stream_id FROM playlist_stream_join
		WHERE playlist_id = ? AND join_index = ?
	`, playlistID, pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("remove %d from playlist %d: %w", pos, playlistID, ErrPositionOutOfRange)
	}
	if err != nil {
		return 0, fmt.Errorf("find position %d of playlist %d: %w", pos, playlistID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM playlist_stream_join
		WHERE playlist_id = ? AND join_index = ?
	`, playlistID, pos); err != nil {
		return 0, fmt.Errorf("remove %d from playlist %d: %w", pos, playlistID, err)
	}

	if err := shiftFrom(ctx, tx, playlistID, pos+1, -1); err != nil {
		return 0, err
	}
	return streamID, nil
}

// shiftFrom moves every position >= from by delta (+1 or -1). Moving up walks
// the rows from the end, moving down walks them from the start, so each row
// lands on a slot that is already free.
func shiftFrom(ctx context.Context, tx *sqlx.Tx, playlistID int64, from, delta int) error {
	order := "ASC"
	if delta > 0 {
		order = "DESC"
	}

	var indices []int
	if err := tx.SelectContext(ctx, &indices, `
		SELECT join_index FROM playlist_stream_join
		WHERE playlist_id = ? AND join_index >= ?
		ORDER BY join_index `+order, playlistID, from); err != nil {
		return fmt.Errorf("list positions of playlist %d: %w", playlistID, err)
	}

	for _, idx := range indices {
		if err := moveIndex(ctx, tx, playlistID, idx, idx+delta); err != nil {
			return err
		}
	}
	return nil
}

func compactPlaylist(ctx context.Context, tx *sqlx.Tx, playlistID int64) error {
	var indices []int
	if err := tx.SelectContext(ctx, &indices, `
		SELECT join_index FROM playlist_stream_join
		WHERE playlist_id = ? ORDER BY join_index
	`, playlistID); err != nil {
		return fmt.Errorf("list positions of playlist %d: %w", playlistID, err)
	}

	for want, idx := range indices {
		if idx == want {
			continue
		}
		if err := moveIndex(ctx, tx, playlistID, idx, want); err != nil {
			return err
		}
	}
	return nil
}

func moveIndex(ctx context.Context, tx *sqlx.Tx, playlistID int64, from, to int) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE playlist_stream_join SET join_index = ?
		WHERE playlist_id = ? AND join_index = ?
	`, to, playlistID, from); err != nil {
		return fmt.Errorf("move position %d to %d in playlist %d: %w", from, to, playlistID, err)
	}
	return nil
}

func replaceStreams(ctx context.Context, tx *sqlx.Tx, playlistID int64, streamIDs []int64) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM playlist_stream_join WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("clear playlist %d: %w", playlistID, err)
	}
	return insertJoins(ctx, tx, catalog.Reindex(playlistID, streamIDs))
}
