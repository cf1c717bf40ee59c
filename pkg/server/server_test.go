package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/elonfeng/mediavault/internal/scheduler"
	"github.com/elonfeng/mediavault/internal/store"
	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	report scheduler.Report
	err    error
}

func (f *fakeRefresher) RefreshAll(context.Context) (scheduler.Report, error) {
	return f.report, f.err
}

func newTestServer(t *testing.T, refresher Refresher) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(New(st, refresher, zerolog.Nop(), 0).Handler())
	t.Cleanup(srv.Close)
	return srv, st
}

func seed(t *testing.T, st *store.SQLiteStore, titles ...string) []int64 {
	t.Helper()
	var ids []int64
	for _, title := range titles {
		s := &catalog.Stream{ServiceID: 0, URL: "https://example.com/watch/" + title, Title: title}
		require.NoError(t, st.UpsertStream(context.Background(), s))
		ids = append(ids, s.UID)
	}
	return ids
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type streamsResponse struct {
	Data []struct {
		Title     string `json:"title"`
		JoinIndex int    `json:"join_index"`
	} `json:"data"`
	Count int `json:"count"`
}

func streamTitles(t *testing.T, base string, playlistID int64) []string {
	t.Helper()
	resp := do(t, http.MethodGet, base+"/api/v1/playlists/"+itoa(playlistID)+"/streams", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[streamsResponse](t, resp)

	titles := make([]string, 0, len(body.Data))
	for i, e := range body.Data {
		require.Equal(t, i, e.JoinIndex)
		titles = append(titles, e.Title)
	}
	return titles
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := do(t, http.MethodGet, srv.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPlaylistMembershipFlow(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ids := seed(t, st, "A", "B", "C", "D")

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/playlists", map[string]string{"name": "Mix"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[catalog.Playlist](t, resp)
	require.NotZero(t, created.UID)
	pid := itoa(created.UID)

	for _, id := range ids[:3] {
		resp = do(t, http.MethodPost, srv.URL+"/api/v1/playlists/"+pid+"/streams", map[string]int64{"stream_id": id})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	assert.Equal(t, []string{"A", "B", "C"}, streamTitles(t, srv.URL, created.UID))

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/playlists/"+pid+"/streams", map[string]any{"stream_id": ids[3], "position": 1})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"A", "D", "B", "C"}, streamTitles(t, srv.URL, created.UID))

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/playlists/"+pid+"/move", map[string]int{"from": 0, "to": 3})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"D", "B", "C", "A"}, streamTitles(t, srv.URL, created.UID))

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/playlists/"+pid+"/streams/1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"D", "C", "A"}, streamTitles(t, srv.URL, created.UID))

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/playlists/"+pid+"/streams/7", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/playlists/"+pid+"/streams", map[string]int64{"stream_id": 9999})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, []string{"D", "C", "A"}, streamTitles(t, srv.URL, created.UID))
}

func TestPlaylistNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/playlists/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/playlists/42/streams", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/playlists/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePlaylistRequiresName(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/playlists", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListPlaylistsMerged(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	require.NoError(t, st.CreatePlaylist(ctx, catalog.NewPlaylist("beta", nil)))
	_, err := st.BookmarkRemotePlaylist(ctx, catalog.PlaylistInfo{URL: "https://example.com/pl/1", Name: "Alpha"})
	require.NoError(t, err)
	require.NoError(t, st.CreatePlaylist(ctx, catalog.NewPlaylist("gamma", nil)))

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/playlists", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Data  []playlistView `json:"data"`
		Count int            `json:"count"`
	}](t, resp)

	require.Equal(t, 3, body.Count)
	var names, types []string
	for _, v := range body.Data {
		names = append(names, catalog.Deref(v.Name))
		types = append(types, v.Type)
	}
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, names)
	assert.Equal(t, []string{"remote_playlist", "playlist", "playlist"}, types)
	assert.Equal(t, int64(0), catalog.Deref(body.Data[1].StreamCount))
}

func TestListSubscriptions(t *testing.T) {
	srv, st := newTestServer(t, nil)
	_, err := st.Subscribe(context.Background(), catalog.ChannelInfo{
		URL: "https://example.com/c/1", Name: "Synth Lab", SubscriberCount: catalog.Ptr(int64(12)),
	})
	require.NoError(t, err)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/subscriptions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Data []catalog.ChannelInfoItem `json:"data"`
	}](t, resp)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Synth Lab", body.Data[0].Name)
	assert.Equal(t, int64(12), body.Data[0].SubscriberCount)
}

func TestRefresh(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv, _ = newTestServer(t, &fakeRefresher{
		report: scheduler.Report{Subscriptions: 2, Failed: 1},
		err:    errors.New("subscription 3: feed unavailable"),
	})
	resp = do(t, http.MethodPost, srv.URL+"/api/v1/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Report scheduler.Report `json:"report"`
		Errors string           `json:"errors"`
	}](t, resp)
	assert.Equal(t, 2, body.Report.Subscriptions)
	assert.Contains(t, body.Errors, "feed unavailable")
}
