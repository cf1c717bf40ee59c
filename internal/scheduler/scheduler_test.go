package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elonfeng/mediavault/internal/metrics"
	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/elonfeng/mediavault/pkg/feed"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	channels  map[string]catalog.ChannelInfo
	playlists map[string]catalog.PlaylistInfo
}

func (f *fakeFetcher) FetchChannel(_ context.Context, url string) (*feed.Channel, error) {
	info, ok := f.channels[url]
	if !ok {
		return nil, errors.New("feed unavailable")
	}
	return &feed.Channel{Info: info}, nil
}

func (f *fakeFetcher) FetchPlaylist(_ context.Context, url string) (*feed.Playlist, error) {
	info, ok := f.playlists[url]
	if !ok {
		return nil, errors.New("feed unavailable")
	}
	return &feed.Playlist{Info: info}, nil
}

type fakeCatalog struct {
	subs      []catalog.Subscription
	remotes   []catalog.RemotePlaylist
	subData   map[int64]catalog.ChannelInfo
	reconcile map[int64]catalog.PlaylistInfo
}

func (c *fakeCatalog) ListSubscriptions(context.Context) ([]catalog.Subscription, error) {
	return c.subs, nil
}

func (c *fakeCatalog) UpdateSubscriptionData(_ context.Context, uid int64, info catalog.ChannelInfo) error {
	c.subData[uid] = info
	return nil
}

func (c *fakeCatalog) ListRemotePlaylists(context.Context) ([]catalog.RemotePlaylist, error) {
	return c.remotes, nil
}

func (c *fakeCatalog) ReconcileRemotePlaylist(_ context.Context, uid int64, info catalog.PlaylistInfo) (bool, error) {
	for i := range c.remotes {
		if c.remotes[i].UID != uid {
			continue
		}
		c.reconcile[uid] = info
		if c.remotes[i].IsIdenticalTo(info) {
			return false, nil
		}
		c.remotes[i].UpdateFrom(info)
		return true, nil
	}
	return false, errors.New("not found")
}

func newFixture() (*fakeCatalog, *fakeFetcher) {
	stored := catalog.NewRemotePlaylist(catalog.PlaylistInfo{
		ServiceID: 3, URL: "https://example.com/pl/1", Name: "Mixes",
	})
	stored.UID = 10
	same := catalog.NewRemotePlaylist(catalog.PlaylistInfo{
		ServiceID: 3, URL: "https://example.com/pl/2", Name: "Stable",
	})
	same.UID = 11

	c := &fakeCatalog{
		subs: []catalog.Subscription{
			{UID: 1, URL: catalog.Ptr("https://example.com/c/ok")},
			{UID: 2, URL: catalog.Ptr("https://example.com/c/broken")},
		},
		remotes:   []catalog.RemotePlaylist{*stored, *same},
		subData:   map[int64]catalog.ChannelInfo{},
		reconcile: map[int64]catalog.PlaylistInfo{},
	}
	f := &fakeFetcher{
		channels: map[string]catalog.ChannelInfo{
			"https://example.com/c/ok": {URL: "https://example.com/c/ok", Name: "Renamed"},
		},
		playlists: map[string]catalog.PlaylistInfo{
			// service 0 in the feed must not leak into the bookmark.
			"https://example.com/pl/1": {URL: "https://example.com/pl/1", Name: "Mixes 2024"},
			"https://example.com/pl/2": {URL: "https://example.com/pl/2", Name: "Stable"},
		},
	}
	return c, f
}

func TestRefreshAll(t *testing.T) {
	c, f := newFixture()
	s := New(c, f, zerolog.Nop(), time.Minute, 2)

	updatedBefore := testutil.ToFloat64(metrics.RemotePlaylistReconcileTotal.WithLabelValues("updated"))
	failedBefore := testutil.ToFloat64(metrics.RefreshTotal.WithLabelValues("subscription", "error"))

	report, err := s.RefreshAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription 2")

	assert.Equal(t, Report{Subscriptions: 1, RemotePlaylists: 2, Updated: 1, Failed: 1}, report)
	assert.Equal(t, "Renamed", c.subData[1].Name)
	assert.NotContains(t, c.subData, int64(2))

	assert.Equal(t, 3, c.reconcile[10].ServiceID)
	assert.Equal(t, "Mixes 2024", catalog.Deref(c.remotes[0].Name))
	assert.Equal(t, 3, c.remotes[0].ServiceID)

	assert.Equal(t, updatedBefore+1, testutil.ToFloat64(metrics.RemotePlaylistReconcileTotal.WithLabelValues("updated")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(metrics.RefreshTotal.WithLabelValues("subscription", "error")))
}

func TestRefreshStopsOnCancel(t *testing.T) {
	c, f := newFixture()
	s := New(c, f, zerolog.Nop(), time.Minute, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := s.RefreshAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Subscriptions)
	assert.Zero(t, report.RemotePlaylists)
}

func TestRunReturnsOnCancel(t *testing.T) {
	c, f := newFixture()
	s := New(c, f, zerolog.Nop(), time.Hour, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
