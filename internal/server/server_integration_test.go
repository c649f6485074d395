package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/crate/internal/gallery"
	"github.com/ayusman/crate/internal/gesture"
	"github.com/ayusman/crate/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *gallery.Carousel) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	carousel := gallery.NewCarousel(0)
	ts := httptest.NewServer(New(Config{Store: s, Carousel: carousel}))
	t.Cleanup(ts.Close)

	return ts, carousel
}

func TestAPI_AlbumWorkflow(t *testing.T) {
	ts, carousel := newTestServer(t)
	client := ts.Client()

	// 1. Add two albums
	var ids []string
	for _, body := range []string{
		`{"title": "Blue", "artist": "Joni Mitchell"}`,
		`{"title": "Hejira", "artist": "Joni Mitchell"}`,
	} {
		resp, err := client.Post(ts.URL+"/api/albums", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("POST /api/albums error = %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		var created struct {
			ID string `json:"id"`
		}
		json.NewDecoder(resp.Body).Decode(&created)
		resp.Body.Close()
		ids = append(ids, created.ID)
	}

	if got := carousel.State().Total; got != 2 {
		t.Fatalf("carousel total = %d, want 2", got)
	}

	// 2. Navigate forward
	resp, err := client.Post(ts.URL+"/api/navigation", "application/json", bytes.NewBufferString(`{"command": "advance"}`))
	if err != nil {
		t.Fatalf("POST /api/navigation error = %v", err)
	}
	var nav gallery.State
	json.NewDecoder(resp.Body).Decode(&nav)
	resp.Body.Close()
	if nav.Selected != 1 {
		t.Errorf("selected = %d, want 1", nav.Selected)
	}

	// 3. Delete the selected album; selection is pulled back
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/albums/"+ids[1], nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if got := carousel.State(); got.Total != 1 || got.Selected != 0 {
		t.Errorf("carousel = %+v, want total 1 selected 0", got)
	}

	// 4. List reflects the deletion
	resp, _ = client.Get(ts.URL + "/api/albums")
	var list struct {
		Albums []struct {
			ID string `json:"id"`
		} `json:"albums"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list.Albums) != 1 || list.Albums[0].ID != ids[0] {
		t.Errorf("albums after delete = %+v", list.Albums)
	}
}

func TestNavigationFeed_PushesChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping websocket test")
	}

	ts, carousel := newTestServer(t)
	carousel.SetTotal(3)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/navigation/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var s gallery.State
	if err := conn.ReadJSON(&s); err != nil {
		t.Fatalf("initial read error = %v", err)
	}
	if s.Total != 3 || s.Selected != 0 {
		t.Errorf("initial state = %+v", s)
	}

	carousel.Navigate(gesture.Advance)

	if err := conn.ReadJSON(&s); err != nil {
		t.Fatalf("read error = %v", err)
	}
	if s.Selected != 1 {
		t.Errorf("pushed state = %+v, want selected 1", s)
	}
}
