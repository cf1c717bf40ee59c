package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrPositionGap       = errors.New("playlist positions are not contiguous")
	ErrDuplicatePosition = errors.New("playlist position used twice")
)

// PlaylistStream places a stream at one position of a playlist. The pair
// (PlaylistUID, Index) is the identity; a stream may occupy several positions.
type PlaylistStream struct {
	PlaylistUID int64 `db:"playlist_id" json:"playlist_id"`
	StreamUID   int64 `db:"stream_id" json:"stream_id"`
	Index       int   `db:"join_index" json:"join_index"`
}

func (ps *PlaylistStream) LocalItemType() LocalItemType { return PlaylistMembershipItem }

// OrderingName is nil: memberships are ordered by Index.
func (ps *PlaylistStream) OrderingName() *string { return nil }

// PlaylistStreamEntry is a stream joined with its position in one playlist.
type PlaylistStreamEntry struct {
	Stream
	PlaylistUID int64 `db:"playlist_id" json:"playlist_id"`
	JoinIndex   int   `db:"join_index" json:"join_index"`
}

func (e *PlaylistStreamEntry) LocalItemType() LocalItemType { return PlaylistMembershipItem }

// Membership returns the join row behind the entry.
func (e *PlaylistStreamEntry) Membership() PlaylistStream {
	return PlaylistStream{PlaylistUID: e.PlaylistUID, StreamUID: e.UID, Index: e.JoinIndex}
}

// ValidatePositions checks that the indices of one playlist's memberships are
// exactly 0..n-1.
func ValidatePositions(indices []int) error {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	for i, idx := range sorted {
		if i > 0 && sorted[i-1] == idx {
			return fmt.Errorf("%w: %d", ErrDuplicatePosition, idx)
		}
		if idx != i {
			return fmt.Errorf("%w: expected %d, found %d", ErrPositionGap, i, idx)
		}
	}
	return nil
}

// Reindex builds the memberships of a playlist holding streamIDs in order.
func Reindex(playlistID int64, streamIDs []int64) []PlaylistStream {
	joins := make([]PlaylistStream, len(streamIDs))
	for i, id := range streamIDs {
		joins[i] = PlaylistStream{PlaylistUID: playlistID, StreamUID: id, Index: i}
	}
	return joins
}

// Dedupe keeps the first occurrence of each stream id, preserving order.
func Dedupe(streamIDs []int64) []int64 {
	seen := make(map[int64]bool, len(streamIDs))
	out := make([]int64, 0, len(streamIDs))
	for _, id := range streamIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
