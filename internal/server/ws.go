package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/crate/internal/gallery"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = 5 * time.Second

// NavigationFeed pushes the carousel state to websocket clients after every change.
type NavigationFeed struct {
	carousel *gallery.Carousel
}

// NewNavigationFeed creates a feed over c.
func NewNavigationFeed(c *gallery.Carousel) *NavigationFeed {
	return &NavigationFeed{carousel: c}
}

// ServeHTTP handles WebSocket upgrade requests.
func (f *NavigationFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	states, cancel := f.carousel.Subscribe()
	defer cancel()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(s); err != nil {
				log.Debug().Err(err).Msg("navigation feed write failed")
				return
			}
		}
	}
}
