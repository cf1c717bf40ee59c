package catalog

// Playlist is a user-created, ordered collection of streams.
type Playlist struct {
	UID          int64   `db:"uid" json:"uid"`
	Name         *string `db:"name" json:"name"`
	ThumbnailURL *string `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
}

// NewPlaylist creates an unsaved playlist.
func NewPlaylist(name string, thumbnailURL *string) *Playlist {
	return &Playlist{Name: &name, ThumbnailURL: thumbnailURL}
}

// NewPlaylistFromStream creates an unsaved playlist using the stream's
// thumbnail as its own.
func NewPlaylistFromStream(name string, s *Stream) *Playlist {
	return NewPlaylist(name, s.ThumbnailURL)
}

func (p *Playlist) LocalItemType() LocalItemType { return PlaylistItem }

func (p *Playlist) OrderingName() *string { return p.Name }

// PlaylistMetadata is a playlist row joined with its membership count.
type PlaylistMetadata struct {
	UID          int64   `db:"uid" json:"uid"`
	Name         *string `db:"name" json:"name"`
	ThumbnailURL *string `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	StreamCount  int64   `db:"stream_count" json:"stream_count"`
}

func (m *PlaylistMetadata) LocalItemType() LocalItemType { return PlaylistItem }

func (m *PlaylistMetadata) OrderingName() *string { return m.Name }
