package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItem() StreamInfoItem {
	return StreamInfoItem{
		ServiceID:         ServiceYouTube,
		URL:               "https://www.youtube.com/watch?v=abc",
		Name:              "Talk",
		Duration:          300,
		UploaderName:      "Uploader",
		UploaderURL:       Ptr("https://www.youtube.com/channel/UC1"),
		ThumbnailURL:      Ptr("https://i.ytimg.com/vi/abc/hqdefault.jpg"),
		ViewCount:         Ptr(int64(42)),
		TextualUploadDate: Ptr("2 days ago"),
		UploadDate: &DateWrapper{
			Time:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Approximation: true,
		},
	}
}

func TestNewStreamFromItem(t *testing.T) {
	item := sampleItem()
	s := NewStreamFromItem(item)

	assert.Zero(t, s.UID)
	assert.Equal(t, NaturalKey{ServiceID: ServiceYouTube, URL: item.URL}, s.Key())
	assert.Equal(t, "Talk", s.Title)
	assert.Equal(t, int64(42), *s.ViewCount)
	require.NotNil(t, s.UploadDate)
	assert.True(t, s.UploadDate.Equal(item.UploadDate.Time))
	require.NotNil(t, s.IsUploadDateApproximation)
	assert.True(t, *s.IsUploadDateApproximation)
}

func TestNewStreamFromInfoWithoutDate(t *testing.T) {
	s := NewStreamFromInfo(StreamInfo{
		ServiceID:    ServiceYouTube,
		URL:          "https://www.youtube.com/watch?v=xyz",
		Name:         "Live now",
		Live:         true,
		UploaderName: "Channel",
	})

	assert.True(t, s.Live)
	assert.Nil(t, s.UploadDate)
	assert.Nil(t, s.IsUploadDateApproximation)
	assert.Nil(t, s.ViewCount)
}

func TestNewStreamFromQueueItem(t *testing.T) {
	q := NewPlayQueueItemFromItem(StreamInfoItem{
		ServiceID:    ServiceYouTube,
		URL:          "https://www.youtube.com/watch?v=q",
		Name:         "Queued",
		Duration:     60,
		UploaderName: "Someone",
		ViewCount:    Ptr(int64(9)),
	})
	s := NewStreamFromQueueItem(q)

	assert.Equal(t, "Queued", s.Title)
	assert.Equal(t, int64(60), s.Duration)
	assert.Nil(t, s.ThumbnailURL, "empty queue thumbnail maps to NULL")
	assert.Nil(t, s.ViewCount)
	assert.Nil(t, s.UploadDate)
}

func TestStreamToStreamInfoItem(t *testing.T) {
	item := sampleItem()
	got := NewStreamFromItem(item).ToStreamInfoItem()

	assert.Equal(t, item.URL, got.URL)
	assert.Equal(t, item.Name, got.Name)
	assert.Equal(t, item.UploaderName, got.UploaderName)
	assert.Equal(t, item.ThumbnailURL, got.ThumbnailURL)
	assert.Equal(t, item.ViewCount, got.ViewCount)
	require.NotNil(t, got.UploadDate)
	assert.True(t, got.UploadDate.Approximation)
}

func TestStreamToStreamInfoItemDateApproximationUnknown(t *testing.T) {
	when := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	s := &Stream{URL: "u", Title: "t", UploadDate: &when}

	got := s.ToStreamInfoItem()
	require.NotNil(t, got.UploadDate)
	assert.False(t, got.UploadDate.Approximation)

	s.UploadDate = nil
	assert.Nil(t, s.ToStreamInfoItem().UploadDate)
}

func TestPlayQueueItemRecoveryPosition(t *testing.T) {
	q := NewPlayQueueItemFromInfo(StreamInfo{URL: "u", StartPosition: 12})
	assert.Equal(t, int64(12000), q.RecoveryPosition)

	q = NewPlayQueueItemFromInfo(StreamInfo{URL: "u"})
	assert.Equal(t, RecoveryUnset, q.RecoveryPosition)
}
