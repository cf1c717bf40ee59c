// Package feed turns channel and playlist Atom/RSS feeds into catalog info
// values.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// Channel is a fetched channel and its latest uploads.
type Channel struct {
	Info    catalog.ChannelInfo
	Streams []catalog.StreamInfoItem
}

// Playlist is a fetched playlist and the entries its feed exposes.
type Playlist struct {
	Info    catalog.PlaylistInfo
	Streams []catalog.StreamInfoItem
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client     *http.Client
	parser     *gofeed.Parser
	serviceID  int
	userAgent  string
	attempts   uint
	retryDelay time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRetries sets how many times a request is tried before giving up.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = uint(n)
		}
	}
}

// WithRetryDelay sets the base delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.retryDelay = d }
}

// NewFetcher creates a fetcher that tags everything it returns with serviceID.
func NewFetcher(serviceID int, userAgent string, timeout time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &Fetcher{
		client:     &http.Client{Timeout: timeout},
		parser:     gofeed.NewParser(),
		serviceID:  serviceID,
		userAgent:  userAgent,
		attempts:   1,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchChannel downloads the feed of a channel page or feed url.
func (f *Fetcher) FetchChannel(ctx context.Context, url string) (*Channel, error) {
	parsed, err := f.fetch(ctx, FeedURL(url))
	if err != nil {
		return nil, err
	}
	return ChannelFromFeed(parsed, f.serviceID, url), nil
}

// FetchPlaylist downloads the feed of a playlist page or feed url.
func (f *Fetcher) FetchPlaylist(ctx context.Context, url string) (*Playlist, error) {
	parsed, err := f.fetch(ctx, FeedURL(url))
	if err != nil {
		return nil, err
	}
	return PlaylistFromFeed(parsed, f.serviceID, url), nil
}

// fetch retries network failures, 429 and 5xx answers. Other statuses and
// unparseable bodies fail at once.
func (f *Fetcher) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	var parsed *gofeed.Feed
	err := retry.Do(
		func() error {
			var err error
			parsed, err = f.fetchOnce(ctx, url)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create feed request %s: %w", url, err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("feed %s status %d", url, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, retry.Unrecoverable(err)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("parse feed %s: %w", url, err))
	}
	return parsed, nil
}

// ChannelFromFeed maps a parsed feed to a channel. feedURL is used as the
// channel url when the feed does not link to its page.
func ChannelFromFeed(parsed *gofeed.Feed, serviceID int, feedURL string) *Channel {
	url := pageURL(parsed, feedURL)
	ch := &Channel{
		Info: catalog.ChannelInfo{
			ServiceID:   serviceID,
			URL:         url,
			Name:        strings.TrimSpace(parsed.Title),
			AvatarURL:   feedImage(parsed),
			Description: catalog.OptString(strings.TrimSpace(parsed.Description)),
		},
	}
	for _, item := range parsed.Items {
		s, ok := streamFromItem(item, serviceID, ch.Info.Name)
		if !ok {
			continue
		}
		s.UploaderURL = catalog.Ptr(url)
		ch.Streams = append(ch.Streams, s)
	}
	return ch
}

// PlaylistFromFeed maps a parsed feed to a playlist. Feeds only list the
// newest entries, so the stream count is left unknown.
func PlaylistFromFeed(parsed *gofeed.Feed, serviceID int, feedURL string) *Playlist {
	pl := &Playlist{
		Info: catalog.PlaylistInfo{
			ServiceID:    serviceID,
			URL:          pageURL(parsed, feedURL),
			Name:         strings.TrimSpace(parsed.Title),
			ThumbnailURL: feedImage(parsed),
			UploaderName: catalog.OptString(authorName(parsed.Authors)),
		},
	}
	for _, item := range parsed.Items {
		s, ok := streamFromItem(item, serviceID, authorName(parsed.Authors))
		if !ok {
			continue
		}
		pl.Streams = append(pl.Streams, s)
	}
	if pl.Info.ThumbnailURL == nil && len(pl.Streams) > 0 {
		pl.Info.ThumbnailURL = pl.Streams[0].ThumbnailURL
	}
	return pl
}

func streamFromItem(item *gofeed.Item, serviceID int, defaultUploader string) (catalog.StreamInfoItem, bool) {
	link := item.Link
	if link == "" && len(item.Links) > 0 {
		link = item.Links[0]
	}
	if link == "" {
		return catalog.StreamInfoItem{}, false
	}

	uploader := authorName(item.Authors)
	if uploader == "" {
		uploader = defaultUploader
	}

	s := catalog.StreamInfoItem{
		ServiceID:         serviceID,
		URL:               link,
		Name:              strings.TrimSpace(item.Title),
		UploaderName:      uploader,
		ThumbnailURL:      itemThumbnail(item),
		ViewCount:         itemViews(item),
		TextualUploadDate: catalog.OptString(item.Published),
		AudioOnly:         isAudio(item),
	}
	if item.PublishedParsed != nil {
		s.UploadDate = &catalog.DateWrapper{Time: item.PublishedParsed.UTC()}
	}
	if item.ITunesExt != nil {
		s.Duration = parseDuration(item.ITunesExt.Duration)
	}
	return s, true
}

func pageURL(parsed *gofeed.Feed, fallback string) string {
	if parsed.Link != "" {
		return parsed.Link
	}
	return fallback
}

func authorName(authors []*gofeed.Person) string {
	for _, a := range authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

func feedImage(parsed *gofeed.Feed) *string {
	if parsed.Image != nil && parsed.Image.URL != "" {
		return catalog.Ptr(parsed.Image.URL)
	}
	if parsed.ITunesExt != nil && parsed.ITunesExt.Image != "" {
		return catalog.Ptr(parsed.ITunesExt.Image)
	}
	return nil
}

// mediaGroup returns the media:group children of an item, or the media
// extensions themselves when the feed does not group them.
func mediaGroup(item *gofeed.Item) map[string][]ext.Extension {
	media := item.Extensions["media"]
	if media == nil {
		return nil
	}
	if groups := media["group"]; len(groups) > 0 {
		return groups[0].Children
	}
	return media
}

func itemThumbnail(item *gofeed.Item) *string {
	if thumbs := mediaGroup(item)["thumbnail"]; len(thumbs) > 0 && thumbs[0].Attrs["url"] != "" {
		return catalog.Ptr(thumbs[0].Attrs["url"])
	}
	if item.Image != nil && item.Image.URL != "" {
		return catalog.Ptr(item.Image.URL)
	}
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return catalog.Ptr(item.ITunesExt.Image)
	}
	return nil
}

func itemViews(item *gofeed.Item) *int64 {
	community := mediaGroup(item)["community"]
	if len(community) == 0 {
		return nil
	}
	stats := community[0].Children["statistics"]
	if len(stats) == 0 {
		return nil
	}
	views, err := strconv.ParseInt(stats[0].Attrs["views"], 10, 64)
	if err != nil {
		return nil
	}
	return &views
}

func isAudio(item *gofeed.Item) bool {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "audio/") {
			return true
		}
	}
	return false
}

// parseDuration reads itunes:duration values, which are either plain
// seconds or [HH:]MM:SS. Unparseable values give 0.
func parseDuration(v string) int64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	var total int64
	for _, part := range strings.Split(v, ":") {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
