package tracker

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

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/engine"
)

// FaceLandmarker implements Tracker using a Python MediaPipe FaceLandmarker
// subprocess that reports blendshape scores and face mesh landmarks.
type FaceLandmarker struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewFaceLandmarker creates a new MediaPipe face tracker.
// The Python process is started lazily on the first Track call.
func NewFaceLandmarker(config Config) (*FaceLandmarker, error) {
	if findLandmarkerScript() == "" {
		return nil, fmt.Errorf("face_landmarker_service.py not found")
	}

	return &FaceLandmarker{
		config: config,
	}, nil
}

// Track analyzes a frame and returns one measurement frame.
func (t *FaceLandmarker) Track(frame *gocv.Mat, timestampMs int64) (*engine.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureStarted(); err != nil {
		return nil, err
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := t.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := t.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	// Read JSON response
	line, err := t.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response jsonResult
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	t.lastUsed = time.Now()
	t.resetIdleTimer()

	return response.toFrame(timestampMs), nil
}

// Close shuts down the Python process.
func (t *FaceLandmarker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shutdown()
}

func (t *FaceLandmarker) ensureStarted() error {
	if t.started {
		return nil
	}

	scriptPath := findLandmarkerScript()
	if scriptPath == "" {
		return fmt.Errorf("face_landmarker_service.py not found")
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	t.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := t.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := t.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	t.cmd.Stderr = os.Stderr

	if err := t.cmd.Start(); err != nil {
		return fmt.Errorf("start face landmarker service: %w", err)
	}

	t.stdin = stdin
	t.stdout = bufio.NewReader(stdout)
	t.started = true
	t.lastUsed = time.Now()

	return nil
}

func (t *FaceLandmarker) shutdown() error {
	if !t.started {
		return nil
	}

	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}

	if t.stdin != nil {
		t.stdin.Close()
	}

	err := t.cmd.Wait()
	t.started = false
	t.cmd = nil
	t.stdin = nil
	t.stdout = nil

	return err
}

func (t *FaceLandmarker) resetIdleTimer() {
	if t.idleTimer != nil {
		t.idleTimer.Stop()
	}
	t.idleTimer = time.AfterFunc(30*time.Second, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.shutdown()
	})
}

func findLandmarkerScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/face_landmarker_service.py",
		"../scripts/face_landmarker_service.py",
		filepath.Join(execDir, "scripts/face_landmarker_service.py"),
		filepath.Join(os.Getenv("HOME"), ".abhinaya/scripts/face_landmarker_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".abhinaya/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonResult represents the JSON structure from the Python service.
type jsonResult struct {
	FaceDetected bool               `json:"face_detected"`
	Blendshapes  map[string]float64 `json:"blendshapes"`
	Landmarks    []jsonPoint        `json:"landmarks"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (r jsonResult) toFrame(timestampMs int64) *engine.Frame {
	f := &engine.Frame{
		TimestampMs:  timestampMs,
		FaceDetected: r.FaceDetected,
	}
	if !r.FaceDetected {
		return f
	}

	f.Blendshapes = r.Blendshapes
	f.Landmarks = make([]engine.Point3D, len(r.Landmarks))
	for i, p := range r.Landmarks {
		f.Landmarks[i] = engine.Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return f
}
