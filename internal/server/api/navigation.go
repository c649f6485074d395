package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/crate/internal/gallery"
	"github.com/ayusman/crate/internal/gesture"
)

// NavigationHandler exposes the carousel position for manual control.
type NavigationHandler struct {
	carousel *gallery.Carousel
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(c *gallery.Carousel) *NavigationHandler {
	return &NavigationHandler{carousel: c}
}

type navigationRequest struct {
	Command string `json:"command"`
	Index   *int   `json:"index"`
}

type navigationResponse struct {
	gallery.State
	Covers []gallery.Cover `json:"covers"`
}

func (h *NavigationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.respond(w)
	case http.MethodPost:
		h.navigate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *NavigationHandler) respond(w http.ResponseWriter) {
	s := h.carousel.State()
	writeJSON(w, http.StatusOK, navigationResponse{State: s, Covers: gallery.Covers(s)})
}

// navigate handles POST /api/navigation with either a command or an index.
func (h *NavigationHandler) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case req.Index != nil:
		if !h.carousel.Select(*req.Index) {
			writeError(w, http.StatusBadRequest, "Index out of range")
			return
		}
	case req.Command != "":
		cmd, err := gesture.ParseCommand(req.Command)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.carousel.Navigate(cmd)
	default:
		writeError(w, http.StatusBadRequest, "Command or index is required")
		return
	}

	h.respond(w)
}
