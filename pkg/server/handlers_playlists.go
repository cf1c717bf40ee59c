package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/elonfeng/mediavault/internal/metrics"
	"github.com/elonfeng/mediavault/pkg/catalog"
)

// playlistView is one row of the merged local and remote playlist list.
type playlistView struct {
	Type         string  `json:"type"`
	UID          int64   `json:"uid"`
	Name         *string `json:"name"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	StreamCount  *int64  `json:"stream_count,omitempty"`
	URL          *string `json:"url,omitempty"`
	Uploader     *string `json:"uploader,omitempty"`
}

func newPlaylistView(item catalog.PlaylistLocalItem) playlistView {
	v := playlistView{Type: item.LocalItemType().String()}
	switch p := item.(type) {
	case *catalog.PlaylistMetadata:
		v.UID = p.UID
		v.Name = p.Name
		v.ThumbnailURL = p.ThumbnailURL
		v.StreamCount = catalog.Ptr(p.StreamCount)
	case *catalog.RemotePlaylist:
		v.UID = p.UID
		v.Name = p.Name
		v.ThumbnailURL = p.ThumbnailURL
		v.StreamCount = p.StreamCount
		v.URL = p.URL
		v.Uploader = p.Uploader
	}
	return v
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	local, err := s.store.ListPlaylists(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	remote, err := s.store.ListRemotePlaylists(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	merged := catalog.MergePlaylists(local, remote)
	views := make([]playlistView, 0, len(merged))
	for _, item := range merged {
		views = append(views, newPlaylistView(item))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  views,
		"count": len(views),
	})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string  `json:"name"`
		ThumbnailURL *string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p := catalog.NewPlaylist(body.Name, body.ThumbnailURL)
	if err := s.store.CreatePlaylist(r.Context(), p); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.store.GetPlaylist(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	entries, err := s.store.PlaylistStreams(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": p,
		"streams":  nonNil(entries),
	})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeletePlaylist(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlaylistStreams(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetPlaylist(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	entries, err := s.store.PlaylistStreams(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  nonNil(entries),
		"count": len(entries),
	})
}

// handleAddStream appends a stream, or inserts it when a position is given.
func (s *Server) handleAddStream(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body struct {
		StreamID int64 `json:"stream_id"`
		Position *int  `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	op := "append"
	if body.Position != nil {
		op = "insert"
		err = s.store.InsertStream(r.Context(), id, body.StreamID, *body.Position)
	} else {
		err = s.store.AppendStreams(r.Context(), id, body.StreamID)
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	metrics.MembershipOpsTotal.WithLabelValues(op).Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveStream(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.RemoveAt(r.Context(), id, int(index)); err != nil {
		s.writeStoreError(w, err)
		return
	}
	metrics.MembershipOpsTotal.WithLabelValues("remove").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveStream(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	if err := s.store.MoveStream(r.Context(), id, body.From, body.To); err != nil {
		s.writeStoreError(w, err)
		return
	}
	metrics.MembershipOpsTotal.WithLabelValues("move").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRemotePlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.store.ListRemotePlaylists(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  nonNil(playlists),
		"count": len(playlists),
	})
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListSubscriptions(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	items := make([]catalog.ChannelInfoItem, 0, len(subs))
	for i := range subs {
		items = append(items, subs[i].ToChannelInfoItem())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  items,
		"count": len(items),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
