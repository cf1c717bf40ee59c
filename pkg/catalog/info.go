package catalog

import "time"

// ServiceYouTube is the service id used for YouTube urls.
const ServiceYouTube = 0

// DateWrapper is an upload date plus a flag for dates parsed from
// relative text such as "3 weeks ago".
type DateWrapper struct {
	Time          time.Time `json:"time"`
	Approximation bool      `json:"approximation"`
}

// StreamInfoItem is a stream as it appears in a listing. It is used both as
// the input from search and feed listings and as the display projection of a
// stored stream.
type StreamInfoItem struct {
	ServiceID         int          `json:"service_id"`
	URL               string       `json:"url"`
	Name              string       `json:"name"`
	Live              bool         `json:"live"`
	AudioOnly         bool         `json:"audio_only"`
	Duration          int64        `json:"duration"`
	UploaderName      string       `json:"uploader_name"`
	UploaderURL       *string      `json:"uploader_url,omitempty"`
	ThumbnailURL      *string      `json:"thumbnail_url,omitempty"`
	ViewCount         *int64       `json:"view_count,omitempty"`
	TextualUploadDate *string      `json:"textual_upload_date,omitempty"`
	UploadDate        *DateWrapper `json:"upload_date,omitempty"`
}

// StreamInfo is the full metadata of a single fetched stream.
type StreamInfo struct {
	ServiceID         int
	URL               string
	Name              string
	Live              bool
	AudioOnly         bool
	Duration          int64
	UploaderName      string
	UploaderURL       *string
	ThumbnailURL      *string
	ViewCount         *int64
	TextualUploadDate *string
	UploadDate        *DateWrapper
	Description       string
	// StartPosition is the offset in seconds playback should resume from.
	StartPosition int64
}

// PlaylistInfo is the metadata of a fetched remote playlist.
type PlaylistInfo struct {
	ServiceID         int
	URL               string
	Name              string
	ThumbnailURL      *string
	UploaderName      *string
	UploaderAvatarURL *string
	StreamCount       *int64
}

// ChannelInfo is the metadata of a fetched channel.
type ChannelInfo struct {
	ServiceID       int
	URL             string
	Name            string
	AvatarURL       *string
	Description     *string
	SubscriberCount *int64
}

// ChannelInfoItem is the display projection of a channel.
type ChannelInfoItem struct {
	ServiceID       int     `json:"service_id"`
	URL             string  `json:"url"`
	Name            string  `json:"name"`
	ThumbnailURL    *string `json:"thumbnail_url,omitempty"`
	Description     *string `json:"description,omitempty"`
	SubscriberCount int64   `json:"subscriber_count,omitempty"`
}
