package catalog

import (
	"sort"
	"strings"
)

// LocalItemType discriminates the kinds of stored items shown in lists.
type LocalItemType int

const (
	StreamItem LocalItemType = iota
	PlaylistItem
	RemotePlaylistItem
	PlaylistMembershipItem
)

func (t LocalItemType) String() string {
	switch t {
	case StreamItem:
		return "stream"
	case PlaylistItem:
		return "playlist"
	case RemotePlaylistItem:
		return "remote_playlist"
	case PlaylistMembershipItem:
		return "playlist_stream"
	}
	return "unknown"
}

// LocalItem is implemented by every stored item that can appear in a list.
type LocalItem interface {
	LocalItemType() LocalItemType
	OrderingName() *string
}

// PlaylistLocalItem is a local or remote playlist.
type PlaylistLocalItem interface {
	LocalItem
	playlistItem()
}

func (*PlaylistMetadata) playlistItem() {}
func (*RemotePlaylist) playlistItem()   {}

// MergePlaylists returns local and remote playlists in one list ordered by
// name, case-insensitively. Unnamed playlists sort last; ties keep local
// playlists first.
func MergePlaylists(local []PlaylistMetadata, remote []RemotePlaylist) []PlaylistLocalItem {
	items := make([]PlaylistLocalItem, 0, len(local)+len(remote))
	for i := range local {
		items = append(items, &local[i])
	}
	for i := range remote {
		items = append(items, &remote[i])
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].OrderingName(), items[j].OrderingName()
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return strings.ToLower(*a) < strings.ToLower(*b)
	})
	return items
}
