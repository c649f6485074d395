package server

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/crate/internal/capture"
)

const (
	defaultStreamFPS = 15
	maxStreamFPS     = 30
)

// StreamHandler serves the camera preview as MJPEG. The optional fps query
// parameter picks the rate, from 1 to maxStreamFPS.
type StreamHandler struct {
	camera capture.Camera
}

// NewStreamHandler creates a new StreamHandler with the given camera.
func NewStreamHandler(camera capture.Camera) *StreamHandler {
	return &StreamHandler{camera: camera}
}

// streamFPS parses the fps query value, falling back to the default.
func streamFPS(raw string) int {
	fps, err := strconv.Atoi(raw)
	if err != nil || fps <= 0 {
		return defaultStreamFPS
	}
	return min(fps, maxStreamFPS)
}

// ServeHTTP streams JPEG parts until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mw := multipart.NewWriter(w)
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mw.Boundary())
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fps := streamFPS(r.URL.Query().Get("fps"))
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	log.Debug().Int("fps", fps).Str("remote", r.RemoteAddr).Msg("preview stream opened")
	defer log.Debug().Str("remote", r.RemoteAddr).Msg("preview stream closed")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if !h.camera.Ready() {
			continue
		}
		if err := h.writeFrame(mw); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// writeFrame encodes the current frame as one part. Camera and encoder
// failures skip the frame; only write errors are returned.
func (h *StreamHandler) writeFrame(mw *multipart.Writer) error {
	frame, err := h.camera.ReadFrame()
	if err != nil {
		return nil
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	frame.Close()
	if err != nil {
		return nil
	}
	defer buf.Close()

	data := buf.GetBytes()
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":   {"image/jpeg"},
		"Content-Length": {strconv.Itoa(len(data))},
	})
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}
