package catalog

// RemotePlaylist is a local bookmark of a playlist hosted by a service. Its
// content fields are a snapshot taken at the last fetch.
type RemotePlaylist struct {
	UID          int64   `db:"uid" json:"uid"`
	ServiceID    int     `db:"service_id" json:"service_id"`
	Name         *string `db:"name" json:"name"`
	URL          *string `db:"url" json:"url"`
	ThumbnailURL *string `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	Uploader     *string `db:"uploader" json:"uploader,omitempty"`
	StreamCount  *int64  `db:"stream_count" json:"stream_count,omitempty"`
}

// NewRemotePlaylist creates an unsaved bookmark from fetched metadata.
func NewRemotePlaylist(info PlaylistInfo) *RemotePlaylist {
	rp := &RemotePlaylist{}
	rp.UpdateFrom(info)
	return rp
}

// UpdateFrom overwrites the snapshot with fetched metadata. The uid is kept.
func (rp *RemotePlaylist) UpdateFrom(info PlaylistInfo) {
	rp.ServiceID = info.ServiceID
	rp.Name = Ptr(info.Name)
	rp.URL = Ptr(info.URL)
	rp.ThumbnailURL = thumbnailOf(info)
	rp.Uploader = info.UploaderName
	rp.StreamCount = info.StreamCount
}

// IsIdenticalTo reports whether the snapshot still matches fetched metadata.
// A false result means the bookmark should be rewritten.
func (rp *RemotePlaylist) IsIdenticalTo(info PlaylistInfo) bool {
	return rp.ServiceID == info.ServiceID &&
		EqualPtr(rp.StreamCount, info.StreamCount) &&
		EqualPtr(rp.Name, &info.Name) &&
		EqualPtr(rp.URL, &info.URL) &&
		EqualPtr(rp.ThumbnailURL, thumbnailOf(info)) &&
		EqualPtr(rp.Uploader, info.UploaderName)
}

// Key returns the (service, url) natural key.
func (rp *RemotePlaylist) Key() NaturalKey {
	return NaturalKey{ServiceID: rp.ServiceID, URL: Deref(rp.URL)}
}

func (rp *RemotePlaylist) LocalItemType() LocalItemType { return RemotePlaylistItem }

func (rp *RemotePlaylist) OrderingName() *string { return rp.Name }

// thumbnailOf falls back to the uploader avatar when the playlist has no
// thumbnail of its own.
func thumbnailOf(info PlaylistInfo) *string {
	if info.ThumbnailURL == nil {
		return info.UploaderAvatarURL
	}
	return info.ThumbnailURL
}
