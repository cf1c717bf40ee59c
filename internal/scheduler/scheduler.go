package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elonfeng/mediavault/internal/metrics"
	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/elonfeng/mediavault/pkg/feed"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// Fetcher downloads channel and playlist metadata.
type Fetcher interface {
	FetchChannel(ctx context.Context, url string) (*feed.Channel, error)
	FetchPlaylist(ctx context.Context, url string) (*feed.Playlist, error)
}

// Catalog is the part of the store the refresher writes to.
type Catalog interface {
	ListSubscriptions(ctx context.Context) ([]catalog.Subscription, error)
	UpdateSubscriptionData(ctx context.Context, uid int64, info catalog.ChannelInfo) error
	ListRemotePlaylists(ctx context.Context) ([]catalog.RemotePlaylist, error)
	ReconcileRemotePlaylist(ctx context.Context, uid int64, info catalog.PlaylistInfo) (bool, error)
}

// Report summarizes one refresh pass.
type Report struct {
	Subscriptions   int `json:"subscriptions"`
	RemotePlaylists int `json:"remote_playlists"`
	Updated         int `json:"remote_playlists_updated"`
	Failed          int `json:"failed"`
}

// Scheduler periodically refreshes subscriptions and bookmarked remote
// playlists from their feeds. Feeds are fetched in parallel; catalog writes
// are applied one at a time in list order.
type Scheduler struct {
	catalog     Catalog
	fetcher     Fetcher
	log         zerolog.Logger
	interval    time.Duration
	concurrency int
}

// New creates a new scheduler.
func New(c Catalog, f Fetcher, log zerolog.Logger, interval time.Duration, concurrency int) *Scheduler {
	if interval == 0 {
		interval = time.Hour
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		catalog:     c,
		fetcher:     f,
		log:         log.With().Str("component", "scheduler").Logger(),
		interval:    interval,
		concurrency: concurrency,
	}
}

type channelResult struct {
	channel *feed.Channel
	err     error
}

type playlistResult struct {
	playlist *feed.Playlist
	err      error
}

// Run refreshes once immediately and then on every tick. Blocks until ctx
// is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Msg("initial refresh")
	s.refreshAndLog(ctx)

	s.log.Info().Dur("interval", s.interval).Msg("running")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("stopped")
			return ctx.Err()
		case <-ticker.C:
			s.refreshAndLog(ctx)
		}
	}
}

func (s *Scheduler) refreshAndLog(ctx context.Context) {
	report, err := s.RefreshAll(ctx)
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Warn().Err(err)
	}
	ev.Int("subscriptions", report.Subscriptions).
		Int("remote_playlists", report.RemotePlaylists).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("refresh done")
}

// RefreshAll refreshes every subscription and remote playlist. A failing
// entry does not stop the pass; all failures are returned joined.
func (s *Scheduler) RefreshAll(ctx context.Context) (Report, error) {
	start := time.Now()
	defer func() { metrics.RefreshDuration.Observe(time.Since(start).Seconds()) }()

	var report Report
	subErr := s.RefreshSubscriptions(ctx, &report)
	rpErr := s.RefreshRemotePlaylists(ctx, &report)
	return report, errors.Join(subErr, rpErr)
}

// RefreshSubscriptions rewrites the refreshable data of every subscription.
// Notification modes are never touched.
func (s *Scheduler) RefreshSubscriptions(ctx context.Context, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subs, err := s.catalog.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	mapper := iter.Mapper[catalog.Subscription, channelResult]{MaxGoroutines: s.concurrency}
	results := mapper.Map(subs, func(sub *catalog.Subscription) channelResult {
		if err := ctx.Err(); err != nil {
			return channelResult{err: err}
		}
		ch, err := s.fetcher.FetchChannel(ctx, catalog.Deref(sub.URL))
		return channelResult{channel: ch, err: err}
	})

	var errs []error
	for i, sub := range subs {
		err := results[i].err
		if err == nil {
			err = s.catalog.UpdateSubscriptionData(ctx, sub.UID, results[i].channel.Info)
		}
		if err != nil {
			metrics.RefreshTotal.WithLabelValues("subscription", "error").Inc()
			s.log.Warn().Err(err).Int64("subscription", sub.UID).Str("url", catalog.Deref(sub.URL)).Msg("refresh failed")
			errs = append(errs, fmt.Errorf("subscription %d: %w", sub.UID, err))
			report.Failed++
			continue
		}
		metrics.RefreshTotal.WithLabelValues("subscription", "ok").Inc()
		report.Subscriptions++
	}
	return errors.Join(errs...)
}

// RefreshRemotePlaylists reconciles every bookmarked remote playlist with its
// feed, writing only the ones whose metadata changed.
func (s *Scheduler) RefreshRemotePlaylists(ctx context.Context, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, err := s.catalog.ListRemotePlaylists(ctx)
	if err != nil {
		return fmt.Errorf("list remote playlists: %w", err)
	}

	playlists := make([]catalog.RemotePlaylist, 0, len(stored))
	for _, rp := range stored {
		if catalog.Deref(rp.URL) != "" {
			playlists = append(playlists, rp)
		}
	}

	mapper := iter.Mapper[catalog.RemotePlaylist, playlistResult]{MaxGoroutines: s.concurrency}
	results := mapper.Map(playlists, func(rp *catalog.RemotePlaylist) playlistResult {
		if err := ctx.Err(); err != nil {
			return playlistResult{err: err}
		}
		pl, err := s.fetcher.FetchPlaylist(ctx, catalog.Deref(rp.URL))
		return playlistResult{playlist: pl, err: err}
	})

	var errs []error
	for i, rp := range playlists {
		updated, err := false, results[i].err
		if err == nil {
			updated, err = s.reconcile(ctx, &rp, results[i].playlist)
		}
		if err != nil {
			metrics.RefreshTotal.WithLabelValues("remote_playlist", "error").Inc()
			s.log.Warn().Err(err).Int64("remote_playlist", rp.UID).Str("url", catalog.Deref(rp.URL)).Msg("refresh failed")
			errs = append(errs, fmt.Errorf("remote playlist %d: %w", rp.UID, err))
			report.Failed++
			continue
		}
		metrics.RefreshTotal.WithLabelValues("remote_playlist", "ok").Inc()
		metrics.RemotePlaylistReconcileTotal.WithLabelValues(metrics.ReconcileResult(updated)).Inc()
		report.RemotePlaylists++
		if updated {
			report.Updated++
			s.log.Debug().Int64("remote_playlist", rp.UID).Msg("metadata changed")
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) reconcile(ctx context.Context, rp *catalog.RemotePlaylist, pl *feed.Playlist) (bool, error) {
	// Feeds carry no service of their own; keep the bookmark's.
	info := pl.Info
	info.ServiceID = rp.ServiceID
	return s.catalog.ReconcileRemotePlaylist(ctx, rp.UID, info)
}
