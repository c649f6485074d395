// Package api provides HTTP API handlers for the Crate record browser.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/crate/internal/gallery"
	"github.com/ayusman/crate/internal/store"
)

// AlbumHandler handles HTTP requests for album resources.
type AlbumHandler struct {
	store    *store.Store
	carousel *gallery.Carousel
}

// NewAlbumHandler creates a new AlbumHandler. carousel may be nil; when set
// its total follows the catalog size.
func NewAlbumHandler(s *store.Store, carousel *gallery.Carousel) *AlbumHandler {
	return &AlbumHandler{store: s, carousel: carousel}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *AlbumHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/albums or /api/albums/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/albums")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createAlbumRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Year     string `json:"year"`
	Genre    string `json:"genre"`
	CoverURL string `json:"cover_url"`
}

type albumResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Year      string `json:"year"`
	Genre     string `json:"genre"`
	CoverURL  string `json:"cover_url"`
	CreatedAt string `json:"created_at"`
}

type listAlbumsResponse struct {
	Albums []albumResponse `json:"albums"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(a *store.Album) albumResponse {
	return albumResponse{
		ID:        a.ID,
		Title:     a.Title,
		Artist:    a.Artist,
		Year:      a.Year,
		Genre:     a.Genre,
		CoverURL:  a.CoverURL,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/albums and returns the catalog in carousel order.
func (h *AlbumHandler) list(w http.ResponseWriter, r *http.Request) {
	albums, err := h.store.Albums().List()
	if err != nil {
		log.Error().Err(err).Msg("list albums")
		writeError(w, http.StatusInternalServerError, "Failed to list albums")
		return
	}

	response := listAlbumsResponse{
		Albums: make([]albumResponse, 0, len(albums)),
	}
	for _, a := range albums {
		response.Albums = append(response.Albums, toResponse(a))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/albums/{id}.
func (h *AlbumHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	album, err := h.store.Albums().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Album not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get album")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(album))
}

// create handles POST /api/albums.
func (h *AlbumHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Title == "" || req.Artist == "" {
		writeError(w, http.StatusBadRequest, "Title and artist are required")
		return
	}

	album := &store.Album{
		ID:       uuid.New().String(),
		Title:    req.Title,
		Artist:   req.Artist,
		Year:     req.Year,
		Genre:    req.Genre,
		CoverURL: req.CoverURL,
	}

	if err := h.store.Albums().Create(album); err != nil {
		log.Error().Err(err).Msg("create album")
		writeError(w, http.StatusInternalServerError, "Failed to create album")
		return
	}
	h.syncTotal()

	writeJSON(w, http.StatusCreated, toResponse(album))
}

// delete handles DELETE /api/albums/{id}.
func (h *AlbumHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Albums().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Album not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete album")
		return
	}
	h.syncTotal()

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *AlbumHandler) syncTotal() {
	if h.carousel == nil {
		return
	}
	n, err := h.store.Albums().Count()
	if err != nil {
		log.Warn().Err(err).Msg("count albums")
		return
	}
	h.carousel.SetTotal(n)
}
