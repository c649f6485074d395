package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

const scriptName = "gesture_service.py"

// frameHeader is the size of the per-frame request header: an int64
// timestamp in milliseconds followed by a uint32 JPEG length, both big-endian.
const frameHeader = 12

// MediaPipeDetector runs the MediaPipe GestureRecognizer in a Python
// subprocess in video mode. Once the model is loaded the service writes
// {"ready":true} (or {"ready":false,"error":...}). After that each request
// is a frameHeader plus JPEG bytes and each reply is one JSON line:
//
//	{"hands":[{"points":[{"x","y","z"}...],"gestures":[{"label","score"}...]}]}
type MediaPipeDetector struct {
	config Config
	python string
	script string

	mu    sync.Mutex
	proc  *exec.Cmd
	in    io.WriteCloser
	out   *bufio.Reader
	idle  *time.Timer
	drain sync.WaitGroup

	failed error
}

// NewMediaPipeDetector locates the interpreter and recognizer script. The
// process itself starts on the first Detect, or eagerly with Start.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = locate(searchPaths(filepath.Join("scripts", scriptName)))
	}
	if script == "" {
		return nil, fmt.Errorf("%s not found: %w", scriptName, ErrUnavailable)
	}

	python := config.Python
	if python == "" {
		python = locate(searchPaths(filepath.Join("venv", "bin", "python")))
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{config: config, python: python, script: script}, nil
}

// Start launches the recognizer process if it is not already running.
func (d *MediaPipeDetector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.start()
}

// Detect sends one frame and returns the first tracked hand.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat, timestampMs int64) (*Result, error) {
	if frame == nil || frame.Empty() {
		return &Result{}, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.start(); err != nil {
		return nil, err
	}

	if err := writeFrame(d.in, timestampMs, buf.GetBytes()); err != nil {
		d.stop()
		return nil, err
	}

	line, err := d.out.ReadBytes('\n')
	if err != nil {
		d.stop()
		return nil, fmt.Errorf("read response: %w", err)
	}

	d.touch()
	return parseResponse(line)
}

// Close stops the recognizer process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

// start must be called with mu held. A failed handshake is latched: later
// calls return the same error without spawning another process.
func (d *MediaPipeDetector) start() error {
	if d.proc != nil {
		return nil
	}
	if d.failed != nil {
		return d.failed
	}

	args := []string{d.script,
		"--num-hands", fmt.Sprint(d.config.MaxHands),
		"--min-detection-confidence", fmt.Sprint(d.config.MinConfidence),
		"--min-tracking-confidence", fmt.Sprint(d.config.MinTrackingConf),
	}
	if d.config.Model != "" {
		args = append(args, "--model", d.config.Model)
	}
	proc := exec.Command(d.python, args...)

	in, err := proc.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	out, err := proc.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := proc.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := proc.Start(); err != nil {
		d.failed = fmt.Errorf("start recognizer service: %v: %w", err, ErrUnavailable)
		return d.failed
	}

	d.drain.Add(1)
	go func() {
		defer d.drain.Done()
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			log.Debug().Str("source", "recognizer").Msg(sc.Text())
		}
	}()

	d.proc = proc
	d.in = in
	d.out = bufio.NewReader(out)

	if err := d.handshake(); err != nil {
		proc.Process.Kill()
		d.stop()
		d.failed = err
		return err
	}

	log.Info().Int("pid", proc.Process.Pid).Str("script", d.script).Msg("recognizer ready")
	d.touch()
	return nil
}

// readyLine is the first line the service writes once the model is loaded.
type readyLine struct {
	Ready bool   `json:"ready"`
	Error string `json:"error"`
}

// handshake waits for the service's ready line. A service that exits or
// reports an error is unavailable; one that is merely slow times out with a
// plain error so the caller may retry. Must be called with mu held.
func (d *MediaPipeDetector) handshake() error {
	type result struct {
		line []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := d.out.ReadBytes('\n')
		ch <- result{line, err}
	}()

	timeout := d.config.StartTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var r result
	select {
	case r = <-ch:
	case <-timer.C:
		d.proc.Process.Kill()
		<-ch
		return fmt.Errorf("recognizer not ready after %s", timeout)
	}

	if r.err != nil {
		return fmt.Errorf("recognizer exited during startup: %v: %w", r.err, ErrUnavailable)
	}
	var ready readyLine
	if err := json.Unmarshal(r.line, &ready); err != nil {
		return fmt.Errorf("recognizer handshake: %v: %w", err, ErrUnavailable)
	}
	if !ready.Ready {
		return fmt.Errorf("recognizer failed to load: %s: %w", ready.Error, ErrUnavailable)
	}
	return nil
}

// stop must be called with mu held.
func (d *MediaPipeDetector) stop() error {
	if d.proc == nil {
		return nil
	}

	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}

	// Closing stdin ends the service's read loop.
	d.in.Close()
	d.drain.Wait()
	err := d.proc.Wait()

	log.Debug().Msg("recognizer stopped")
	d.proc = nil
	d.in = nil
	d.out = nil
	return err
}

// touch restarts the idle countdown. Must be called with mu held.
func (d *MediaPipeDetector) touch() {
	if d.config.IdleTimeout <= 0 {
		return
	}
	if d.idle != nil {
		d.idle.Stop()
	}
	d.idle = time.AfterFunc(d.config.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
}

// writeFrame writes one request to the recognizer.
func writeFrame(w io.Writer, timestampMs int64, jpeg []byte) error {
	var header [frameHeader]byte
	binary.BigEndian.PutUint64(header[:8], uint64(timestampMs))
	binary.BigEndian.PutUint32(header[8:], uint32(len(jpeg)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(jpeg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// searchPaths lists where rel may live: the working directory and its
// parents, next to the executable, and under ~/.crate.
func searchPaths(rel string) []string {
	paths := []string{rel, filepath.Join("..", rel), filepath.Join("..", "..", rel)}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".crate", rel))
	}
	return paths
}

// locate returns the absolute form of the first existing path, or "".
func locate(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

type jsonHand struct {
	Points   []Point     `json:"points"`
	Gestures []Candidate `json:"gestures"`
}

type jsonResponse struct {
	Hands []jsonHand `json:"hands"`
}

// parseResponse decodes one response line. Only the first hand is kept.
// Point lists are copied as-is, so a truncated list stays truncated.
func parseResponse(line []byte) (*Result, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := &Result{}
	if len(resp.Hands) == 0 {
		return result, nil
	}

	hand := resp.Hands[0]
	if len(hand.Points) > 0 {
		result.Landmarks = make(Landmarks, len(hand.Points))
		copy(result.Landmarks, hand.Points)
	}
	result.Gestures = [][]Candidate{hand.Gestures}

	return result, nil
}
