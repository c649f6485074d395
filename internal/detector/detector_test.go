package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

const epsilon = 1e-9

func TestLandmarks_Complete(t *testing.T) {
	tests := []struct {
		name string
		lm   Landmarks
		want bool
	}{
		{"nil", nil, false},
		{"truncated", make(Landmarks, 9), false},
		{"full", make(Landmarks, NumLandmarks), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lm.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLandmarks_Has(t *testing.T) {
	lm := make(Landmarks, 9)

	if !lm.Has(IndexTip) {
		t.Error("expected index tip to be present in a 9 point set")
	}
	if lm.Has(MiddleTip) {
		t.Error("expected middle tip to be missing in a 9 point set")
	}
	if lm.Has(-1) {
		t.Error("expected negative index to be missing")
	}
}

func TestDistance2D(t *testing.T) {
	a := Point{X: 0.1, Y: 0.2, Z: 5}
	b := Point{X: 0.4, Y: 0.6, Z: -5}

	got := Distance2D(a, b)
	if math.Abs(got-0.5) > epsilon {
		t.Errorf("Distance2D() = %f, want 0.5 (Z must be ignored)", got)
	}
}

func TestResult_TopGesture(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		var r *Result
		if _, ok := r.TopGesture(); ok {
			t.Error("expected no top gesture for nil result")
		}
	})

	t.Run("empty first hand", func(t *testing.T) {
		r := &Result{Gestures: [][]Candidate{{}}}
		if _, ok := r.TopGesture(); ok {
			t.Error("expected no top gesture for empty candidate list")
		}
	})

	t.Run("returns first candidate of first hand", func(t *testing.T) {
		r := &Result{Gestures: [][]Candidate{
			{{Label: "Swipe_Left", Score: 0.93}, {Label: "None", Score: 0.05}},
			{{Label: "Swipe_Right", Score: 0.99}},
		}}

		top, ok := r.TopGesture()
		if !ok {
			t.Fatal("expected a top gesture")
		}
		if top.Label != "Swipe_Left" {
			t.Errorf("expected Swipe_Left, got %s", top.Label)
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("no hands", func(t *testing.T) {
		r, err := parseResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Landmarks != nil || r.Gestures != nil {
			t.Errorf("expected empty result, got %+v", r)
		}
	})

	t.Run("keeps first hand only", func(t *testing.T) {
		line := `{"hands":[
			{"points":[{"x":0.1,"y":0.2,"z":0}],"gestures":[{"label":"Swipe_Right","score":0.95}]},
			{"points":[{"x":0.9,"y":0.9,"z":0}],"gestures":[{"label":"Swipe_Left","score":0.99}]}
		]}`

		r, err := parseResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(r.Landmarks) != 1 || r.Landmarks[0].X != 0.1 {
			t.Errorf("unexpected landmarks: %+v", r.Landmarks)
		}
		top, ok := r.TopGesture()
		if !ok || top.Label != "Swipe_Right" {
			t.Errorf("expected Swipe_Right from first hand, got %+v", top)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"hands":`)); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty result by default", func(t *testing.T) {
		mock := NewMockDetector()

		r, err := mock.Detect(nil, 0)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if r == nil || r.Landmarks != nil {
			t.Errorf("expected empty result, got %+v", r)
		}
	})

	t.Run("plays script then fallback", func(t *testing.T) {
		mock := NewMockDetector()
		first := &Result{Landmarks: OpenPalmLandmarks()}
		fallback := &Result{Landmarks: ClosedFistLandmarks()}
		mock.Script(first)
		mock.SetResult(fallback)

		r1, _ := mock.Detect(nil, 10)
		r2, _ := mock.Detect(nil, 20)
		r3, _ := mock.Detect(nil, 30)

		if r1 != first {
			t.Error("expected scripted result first")
		}
		if r2 != fallback || r3 != fallback {
			t.Error("expected fallback result after script is exhausted")
		}

		ts := mock.Timestamps()
		if len(ts) != 3 || ts[0] != 10 || ts[2] != 30 {
			t.Errorf("unexpected timestamps: %v", ts)
		}
		if mock.Calls() != 3 {
			t.Errorf("expected 3 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		r, err := mock.Detect(nil, 0)
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if r != nil {
			t.Errorf("expected nil result on error, got %+v", r)
		}
	})

	t.Run("close is recorded", func(t *testing.T) {
		mock := NewMockDetector()
		if err := mock.Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() to be true")
		}
	})
}

func TestFixtures_AreComplete(t *testing.T) {
	fixtures := map[string]Landmarks{
		"pointing left":  PointingLandmarks(0.9, 0.5),
		"pointing right": PointingLandmarks(0.1, 0.5),
		"pointing up":    PointingUpLandmarks(),
		"closed fist":    ClosedFistLandmarks(),
		"open palm":      OpenPalmLandmarks(),
	}

	for name, lm := range fixtures {
		if !lm.Complete() {
			t.Errorf("%s: expected %d landmarks, got %d", name, NumLandmarks, len(lm))
		}
	}
}

func TestPointingLandmarks_Geometry(t *testing.T) {
	lm := PointingLandmarks(0.9, 0.5)

	if lm[Wrist].X != 0.9 || lm[IndexTip].X != 0.5 {
		t.Fatalf("unexpected wrist/tip: %+v %+v", lm[Wrist], lm[IndexTip])
	}

	extension := Distance2D(lm[IndexTip], lm[IndexPIP])
	if extension < 0.079 {
		t.Errorf("index extension %f below pointing threshold", extension)
	}

	lead := Distance2D(lm[IndexTip], lm[Wrist])
	for _, tip := range []int{MiddleTip, RingTip, PinkyTip} {
		if d := Distance2D(lm[tip], lm[Wrist]); d >= lead {
			t.Errorf("fingertip %d distance %f not below index distance %f", tip, d, lead)
		}
	}
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	jpeg := []byte{0xff, 0xd8, 0xff, 0xd9}

	if err := writeFrame(&buf, 1234567, jpeg); err != nil {
		t.Fatalf("writeFrame() error = %v", err)
	}

	out := buf.Bytes()
	if len(out) != frameHeader+len(jpeg) {
		t.Fatalf("wrote %d bytes, want %d", len(out), frameHeader+len(jpeg))
	}
	if ts := int64(binary.BigEndian.Uint64(out[:8])); ts != 1234567 {
		t.Errorf("timestamp = %d, want 1234567", ts)
	}
	if n := binary.BigEndian.Uint32(out[8:12]); n != uint32(len(jpeg)) {
		t.Errorf("length = %d, want %d", n, len(jpeg))
	}
	if !bytes.Equal(out[frameHeader:], jpeg) {
		t.Errorf("payload = %x, want %x", out[frameHeader:], jpeg)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "gesture_service.py")
	if err := os.WriteFile(present, []byte("#"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if got := locate([]string{filepath.Join(dir, "missing.py"), present}); got != present {
		t.Errorf("locate() = %q, want %q", got, present)
	}
	if got := locate([]string{filepath.Join(dir, "missing.py")}); got != "" {
		t.Errorf("locate() = %q, want empty", got)
	}
}

func TestNewMediaPipeDetector_Overrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Python = "/opt/py/bin/python"
	cfg.Script = "/opt/crate/gesture_service.py"

	d, err := NewMediaPipeDetector(cfg)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	if d.python != cfg.Python || d.script != cfg.Script {
		t.Errorf("python=%q script=%q, want overrides", d.python, d.script)
	}

	// Never started, so Close is a no-op.
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// fakeService writes a shell script standing in for the recognizer service.
func fakeService(t *testing.T, body string) Config {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := filepath.Join(t.TempDir(), "service.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Python = "/bin/sh"
	cfg.Script = script
	cfg.StartTimeout = 5 * time.Second
	return cfg
}

func TestMediaPipeDetector_StartHandshake(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		wantUnavailable bool
		wantMsg         string
	}{
		{
			name: "ready",
			body: "echo '{\"ready\":true}'\ncat > /dev/null\n",
		},
		{
			name:            "exits before ready",
			body:            "exit 1\n",
			wantUnavailable: true,
			wantMsg:         "exited during startup",
		},
		{
			name:            "reports load failure",
			body:            "echo '{\"ready\":false,\"error\":\"model missing\"}'\nexit 1\n",
			wantUnavailable: true,
			wantMsg:         "model missing",
		},
		{
			name:            "garbage handshake",
			body:            "echo 'Traceback (most recent call last):'\ncat > /dev/null\n",
			wantUnavailable: true,
			wantMsg:         "handshake",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewMediaPipeDetector(fakeService(t, tt.body))
			if err != nil {
				t.Fatalf("NewMediaPipeDetector() error = %v", err)
			}
			defer d.Close()

			err = d.Start()
			if !tt.wantUnavailable {
				if err != nil {
					t.Fatalf("Start() error = %v", err)
				}
				return
			}

			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("Start() error = %v, want ErrUnavailable", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestMediaPipeDetector_FailureIsLatched(t *testing.T) {
	counter := filepath.Join(t.TempDir(), "spawns")
	cfg := fakeService(t, "echo x >> "+counter+"\nexit 1\n")

	d, err := NewMediaPipeDetector(cfg)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	defer d.Close()

	for i := 0; i < 3; i++ {
		if err := d.Start(); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Start() #%d error = %v, want ErrUnavailable", i, err)
		}
	}

	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()
	if _, err := d.Detect(&frame, 1); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Detect() error = %v, want ErrUnavailable", err)
	}

	data, _ := os.ReadFile(counter)
	if n := strings.Count(string(data), "x"); n != 1 {
		t.Errorf("service spawned %d times, want 1", n)
	}
}

func TestMediaPipeDetector_StartTimeout(t *testing.T) {
	cfg := fakeService(t, "exec sleep 10\n")
	cfg.StartTimeout = 100 * time.Millisecond

	d, err := NewMediaPipeDetector(cfg)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	defer d.Close()

	start := time.Now()
	err = d.Start()
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Fatalf("Start() error = %v, want a retryable timeout", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout did not stop the service")
	}
}

func TestMediaPipeDetector_NotRunnable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := filepath.Join(t.TempDir(), "gesture_service.py")
	if err := os.WriteFile(script, []byte("print('unused')\n"), 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	for _, python := range []string{"/bin/false", filepath.Join(t.TempDir(), "no-such-python")} {
		t.Run(filepath.Base(python), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Python = python
			cfg.Script = script

			d, err := NewMediaPipeDetector(cfg)
			if err != nil {
				t.Fatalf("NewMediaPipeDetector() error = %v", err)
			}
			defer d.Close()

			if err := d.Start(); !errors.Is(err, ErrUnavailable) {
				t.Errorf("Start() error = %v, want ErrUnavailable", err)
			}
		})
	}
}
