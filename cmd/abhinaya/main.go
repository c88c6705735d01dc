package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ayusman/abhinaya/internal/app"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/server"
	"github.com/ayusman/abhinaya/internal/store"
	"github.com/ayusman/abhinaya/internal/tray"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "camera device ID")
	useTray := flag.Bool("tray", false, "show the system tray menu")
	headless := flag.Bool("headless", false, "run without the camera pipeline (frames via /api/frames)")
	flag.Parse()

	fmt.Println("Abhinaya - Facial Gesture Interpretation")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".abhinaya")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "abhinaya.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:    st,
		CameraID: *cameraID,
	})

	if !*headless {
		if err := a.Start(); err != nil {
			log.Fatalf("Failed to start pipeline: %v", err)
		}
		defer a.Stop()
		a.SetEnabled(true)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure the server
	cfg := server.Config{
		StaticDir: webDir,
		Store:     st,
		Engine:    a.Engine(),
	}
	if !*headless {
		cfg.Camera = a.Camera()
	}

	srv := server.New(cfg)

	fmt.Printf("Starting server on %s\n", *addr)

	if *useTray {
		go func() {
			if err := srv.ListenAndServe(*addr); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		}()
		runTray(a)
		return
	}

	if err := srv.ListenAndServe(*addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runTray wires the system tray menu to the app and blocks until quit.
func runTray(a *app.App) {
	t := tray.New()

	a.Engine().OnStatus(func(s engine.Status) {
		t.SetStatus(string(s))
	})
	a.Engine().OnSignal(func(s engine.FinalSignal) {
		t.SetLastAnswer(fmt.Sprintf("%s (%s)", s.Value, s.Gesture))
	})

	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	t.OnQuit(func() {
		a.Stop()
	})

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.abhinaya/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".abhinaya", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
