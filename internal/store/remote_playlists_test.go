package store

import (
	"context"
	"testing"

	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchedPlaylist() catalog.PlaylistInfo {
	return catalog.PlaylistInfo{
		ServiceID:         catalog.ServiceYouTube,
		URL:               "https://www.youtube.com/playlist?list=PL1",
		Name:              "Mix",
		UploaderName:      catalog.Ptr("Curator"),
		UploaderAvatarURL: catalog.Ptr("avatar"),
		StreamCount:       catalog.Ptr(int64(3)),
	}
}

func TestBookmarkRemotePlaylistUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rp, err := s.BookmarkRemotePlaylist(ctx, fetchedPlaylist())
	require.NoError(t, err)
	require.NotZero(t, rp.UID)
	assert.Equal(t, "avatar", *rp.ThumbnailURL)

	info := fetchedPlaylist()
	info.Name = "Mix 2"
	again, err := s.BookmarkRemotePlaylist(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, rp.UID, again.UID)

	list, err := s.ListRemotePlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mix 2", *list[0].Name)

	byKey, err := s.GetRemotePlaylistByKey(ctx, rp.Key())
	require.NoError(t, err)
	assert.Equal(t, rp.UID, byKey.UID)
}

func TestReconcileRemotePlaylist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rp, err := s.BookmarkRemotePlaylist(ctx, fetchedPlaylist())
	require.NoError(t, err)

	updated, err := s.ReconcileRemotePlaylist(ctx, rp.UID, fetchedPlaylist())
	require.NoError(t, err)
	assert.False(t, updated, "identical fetch is a no-op")

	info := fetchedPlaylist()
	info.StreamCount = nil
	info.ThumbnailURL = catalog.Ptr("thumb")
	updated, err = s.ReconcileRemotePlaylist(ctx, rp.UID, info)
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := s.GetRemotePlaylist(ctx, rp.UID)
	require.NoError(t, err)
	assert.Nil(t, got.StreamCount)
	assert.Equal(t, "thumb", *got.ThumbnailURL)
	assert.True(t, got.IsIdenticalTo(info))

	_, err = s.ReconcileRemotePlaylist(ctx, 404, info)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemotePlaylist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rp, err := s.BookmarkRemotePlaylist(ctx, fetchedPlaylist())
	require.NoError(t, err)
	require.NoError(t, s.DeleteRemotePlaylist(ctx, rp.UID))

	_, err = s.GetRemotePlaylist(ctx, rp.UID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteRemotePlaylist(ctx, rp.UID), ErrNotFound)
}
