package feed

import (
	"net/url"
	"strings"
)

const youtubeFeedBase = "https://www.youtube.com/feeds/videos.xml"

// FeedURL maps a channel or playlist page url to the url of its feed.
// YouTube channel and playlist pages are rewritten to their Atom feeds; any
// other url is assumed to be a feed already.
func FeedURL(page string) string {
	u, err := url.Parse(page)
	if err != nil || !isYouTubeHost(u.Host) {
		return page
	}

	switch {
	case strings.HasPrefix(u.Path, "/channel/"):
		id := strings.Trim(strings.TrimPrefix(u.Path, "/channel/"), "/")
		if id == "" {
			return page
		}
		return youtubeFeedBase + "?" + url.Values{"channel_id": {id}}.Encode()
	case u.Path == "/playlist":
		list := u.Query().Get("list")
		if list == "" {
			return page
		}
		return youtubeFeedBase + "?" + url.Values{"playlist_id": {list}}.Encode()
	}
	return page
}

func isYouTubeHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	host = strings.TrimPrefix(host, "m.")
	return host == "youtube.com"
}
