package catalog

import "math"

// RecoveryUnset marks a queue item without a saved playback position.
const RecoveryUnset int64 = math.MinInt64

// PlayQueueItem is the minimal stream data held by the playback queue.
// Missing text fields are stored as empty strings.
type PlayQueueItem struct {
	Title        string
	URL          string
	ServiceID    int
	Duration     int64
	ThumbnailURL string
	Uploader     string
	UploaderURL  *string
	Live         bool
	AudioOnly    bool
	AutoQueued   bool
	// RecoveryPosition is in milliseconds.
	RecoveryPosition int64
}

// NewPlayQueueItemFromInfo builds a queue item from full stream info and
// carries over its start position.
func NewPlayQueueItemFromInfo(info StreamInfo) PlayQueueItem {
	item := PlayQueueItem{
		Title:            info.Name,
		URL:              info.URL,
		ServiceID:        info.ServiceID,
		Duration:         info.Duration,
		ThumbnailURL:     Deref(info.ThumbnailURL),
		Uploader:         info.UploaderName,
		UploaderURL:      info.UploaderURL,
		Live:             info.Live,
		AudioOnly:        info.AudioOnly,
		RecoveryPosition: RecoveryUnset,
	}
	if info.StartPosition > 0 {
		item.RecoveryPosition = info.StartPosition * 1000
	}
	return item
}

// NewPlayQueueItemFromItem builds a queue item from a listing entry.
func NewPlayQueueItemFromItem(item StreamInfoItem) PlayQueueItem {
	return PlayQueueItem{
		Title:            item.Name,
		URL:              item.URL,
		ServiceID:        item.ServiceID,
		Duration:         item.Duration,
		ThumbnailURL:     Deref(item.ThumbnailURL),
		Uploader:         item.UploaderName,
		UploaderURL:      item.UploaderURL,
		Live:             item.Live,
		AudioOnly:        item.AudioOnly,
		RecoveryPosition: RecoveryUnset,
	}
}
