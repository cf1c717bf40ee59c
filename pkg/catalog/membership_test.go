package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePositions(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		wantErr error
	}{
		{name: "empty", indices: nil},
		{name: "ordered", indices: []int{0, 1, 2}},
		{name: "unordered", indices: []int{2, 0, 1}},
		{name: "gap", indices: []int{0, 2}, wantErr: ErrPositionGap},
		{name: "not zero based", indices: []int{1, 2}, wantErr: ErrPositionGap},
		{name: "duplicate", indices: []int{0, 1, 1}, wantErr: ErrDuplicatePosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositions(tt.indices)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReindex(t *testing.T) {
	joins := Reindex(4, []int64{9, 8, 9})
	require.Len(t, joins, 3)
	for i, j := range joins {
		assert.Equal(t, int64(4), j.PlaylistUID)
		assert.Equal(t, i, j.Index)
	}
	assert.Equal(t, int64(9), joins[2].StreamUID)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, Dedupe([]int64{3, 1, 3, 2, 1}))
	assert.Empty(t, Dedupe(nil))
}

func TestPlaylistStreamEntryMembership(t *testing.T) {
	e := PlaylistStreamEntry{Stream: Stream{UID: 5, Title: "x"}, PlaylistUID: 2, JoinIndex: 1}
	assert.Equal(t, PlaylistStream{PlaylistUID: 2, StreamUID: 5, Index: 1}, e.Membership())
	assert.Equal(t, PlaylistMembershipItem, e.LocalItemType())
	assert.Equal(t, "x", *e.OrderingName())
}
