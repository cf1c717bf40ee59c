package catalog

import "time"

// NaturalKey identifies a remote entity independently of its local uid.
type NaturalKey struct {
	ServiceID int
	URL       string
}

// Stream is a persisted remote media item, unique per (service, url).
type Stream struct {
	UID                       int64      `db:"uid" json:"uid"`
	ServiceID                 int        `db:"service_id" json:"service_id"`
	URL                       string     `db:"url" json:"url"`
	Title                     string     `db:"title" json:"title"`
	Live                      bool       `db:"live" json:"live"`
	AudioOnly                 bool       `db:"audio_only" json:"audio_only"`
	Duration                  int64      `db:"duration" json:"duration"`
	Uploader                  string     `db:"uploader" json:"uploader"`
	UploaderURL               *string    `db:"uploader_url" json:"uploader_url,omitempty"`
	ThumbnailURL              *string    `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	ViewCount                 *int64     `db:"view_count" json:"view_count,omitempty"`
	TextualUploadDate         *string    `db:"textual_upload_date" json:"textual_upload_date,omitempty"`
	UploadDate                *time.Time `db:"upload_date" json:"upload_date,omitempty"`
	IsUploadDateApproximation *bool      `db:"is_upload_date_approximation" json:"is_upload_date_approximation,omitempty"`
}

// NewStreamFromItem creates a stream from a listing entry.
func NewStreamFromItem(item StreamInfoItem) *Stream {
	s := &Stream{
		ServiceID:         item.ServiceID,
		URL:               item.URL,
		Title:             item.Name,
		Live:              item.Live,
		AudioOnly:         item.AudioOnly,
		Duration:          item.Duration,
		Uploader:          item.UploaderName,
		UploaderURL:       item.UploaderURL,
		ThumbnailURL:      item.ThumbnailURL,
		ViewCount:         item.ViewCount,
		TextualUploadDate: item.TextualUploadDate,
	}
	s.setUploadDate(item.UploadDate)
	return s
}

// NewStreamFromInfo creates a stream from fully fetched stream info.
func NewStreamFromInfo(info StreamInfo) *Stream {
	s := &Stream{
		ServiceID:         info.ServiceID,
		URL:               info.URL,
		Title:             info.Name,
		Live:              info.Live,
		AudioOnly:         info.AudioOnly,
		Duration:          info.Duration,
		Uploader:          info.UploaderName,
		UploaderURL:       info.UploaderURL,
		ThumbnailURL:      info.ThumbnailURL,
		ViewCount:         info.ViewCount,
		TextualUploadDate: info.TextualUploadDate,
	}
	s.setUploadDate(info.UploadDate)
	return s
}

// NewStreamFromQueueItem creates a stream from playback queue data. Queue items
// carry no view count or upload date, and their empty strings become NULL.
func NewStreamFromQueueItem(item PlayQueueItem) *Stream {
	var uploaderURL *string
	if item.UploaderURL != nil {
		uploaderURL = OptString(*item.UploaderURL)
	}
	return &Stream{
		ServiceID:    item.ServiceID,
		URL:          item.URL,
		Title:        item.Title,
		Live:         item.Live,
		AudioOnly:    item.AudioOnly,
		Duration:     item.Duration,
		Uploader:     item.Uploader,
		UploaderURL:  uploaderURL,
		ThumbnailURL: OptString(item.ThumbnailURL),
	}
}

func (s *Stream) setUploadDate(d *DateWrapper) {
	if d == nil {
		return
	}
	t := d.Time.UTC()
	s.UploadDate = &t
	s.IsUploadDateApproximation = Ptr(d.Approximation)
}

// Key returns the (service, url) natural key.
func (s *Stream) Key() NaturalKey {
	return NaturalKey{ServiceID: s.ServiceID, URL: s.URL}
}

// ToStreamInfoItem projects the stream into a listing entry for display.
func (s *Stream) ToStreamInfoItem() StreamInfoItem {
	item := StreamInfoItem{
		ServiceID:         s.ServiceID,
		URL:               s.URL,
		Name:              s.Title,
		Live:              s.Live,
		AudioOnly:         s.AudioOnly,
		Duration:          s.Duration,
		UploaderName:      s.Uploader,
		UploaderURL:       s.UploaderURL,
		ThumbnailURL:      s.ThumbnailURL,
		ViewCount:         s.ViewCount,
		TextualUploadDate: s.TextualUploadDate,
	}
	if s.UploadDate != nil {
		item.UploadDate = &DateWrapper{
			Time:          *s.UploadDate,
			Approximation: Deref(s.IsUploadDateApproximation),
		}
	}
	return item
}

func (s *Stream) LocalItemType() LocalItemType { return StreamItem }

func (s *Stream) OrderingName() *string { return &s.Title }
