package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/crate/internal/app"
	"github.com/ayusman/crate/internal/capture"
	"github.com/ayusman/crate/internal/config"
	"github.com/ayusman/crate/internal/gallery"
	"github.com/ayusman/crate/internal/gesture"
	"github.com/ayusman/crate/internal/hook"
	"github.com/ayusman/crate/internal/logging"
	"github.com/ayusman/crate/internal/server"
	"github.com/ayusman/crate/internal/store"
	"github.com/ayusman/crate/internal/tray"
)

var rootCmd = &cobra.Command{
	Use:   "crate",
	Short: "Browse a record collection hands-free",
	Long: `Crate serves a coverflow carousel of your album catalog and lets you
flip through it with hand gestures in front of the webcam. Point left or
right, or swipe, to move one record.

Settings come from CRATE_* environment variables.`,
	SilenceUsage: true,
	RunE:         runMain,
}

// Flags override the matching CRATE_* variables when set.
var (
	addrFlag     string
	dataDirFlag  string
	logLevelFlag string
	trayFlag     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (CRATE_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (CRATE_LOG_LEVEL)")
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "HTTP listen address (CRATE_ADDR)")
	rootCmd.Flags().BoolVar(&trayFlag, "tray", false, "Show the system tray menu (CRATE_TRAY)")

	rootCmd.AddCommand(albumsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, initializes logging and opens the store.
func setup(cmd *cobra.Command) (config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	applyFlags(cmd, &cfg)

	if cfg.LogFile != "" {
		// Left open for the life of the process.
		logging.InitWithFile(cfg.LogLevel, cfg.LogFile)
	} else {
		logging.Init(cfg.LogLevel)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return config.Config{}, nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, st, nil
}

func runMain(cmd *cobra.Command, args []string) error {
	cfg, st, err := setup(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := st.Albums().Count()
	if err != nil {
		return fmt.Errorf("count albums: %w", err)
	}
	carousel := gallery.NewCarousel(count)

	gestures := st.Settings().GetBool(store.SettingGesturesEnabled, cfg.Gestures)

	a := app.New(app.Config{
		CameraOptions: capture.Options{
			Device: cfg.CameraID,
			Width:  cfg.CameraWidth,
			Height: cfg.CameraHeight,
			FPS:    cfg.FPS,
		},
		Cooldown:        cfg.Cooldown,
		Sink:            carousel,
		DetectorRetries: cfg.DetectorRetries,
	})
	a.SetEnabled(gestures)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hooks := hook.NewManager(cfg.HooksDir())
	if err := hooks.Discover(); err != nil {
		log.Warn().Err(err).Str("dir", hooks.Dir()).Msg("hook discovery failed")
	}
	if n := len(hooks.List()); n > 0 {
		dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.HookTimeout))
		dispatcher.Run(ctx)
		defer func() {
			stop()
			dispatcher.Wait()
		}()

		a.OnCommand(func(d gesture.Decision) {
			s := carousel.State()
			dispatcher.Publish(hook.Event{
				Command:  string(d.Command),
				Source:   string(d.Source),
				Selected: s.Selected,
				Total:    s.Total,
			})
		})
		log.Info().Int("count", n).Msg("navigation hooks loaded")
	}

	// Navigation stays inert until the recognizer is up; a failure is logged
	// by LoadDetector and never stops the server.
	a.LoadDetector(ctx, app.MediaPipeFactory)

	if err := a.Start(); err != nil {
		log.Warn().Err(err).Int("camera", cfg.CameraID).Msg("camera unavailable, gesture navigation disabled")
	}
	defer a.Stop()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		log.Info().Str("dir", staticDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Carousel:  carousel,
		Camera:    a.Camera(),
	}).HTTPServer(cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Int("albums", count).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// The tray must own the main goroutine on some platforms.
	if cfg.Tray {
		runTray(gctx, stop, a, st, browserURL(cfg.Addr))
	}

	return g.Wait()
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}

	if changed("data-dir") {
		cfg.DataDir = dataDirFlag
	}
	if changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if changed("addr") {
		cfg.Addr = addrFlag
	}
	if changed("tray") {
		cfg.Tray = trayFlag
	}
}

// runTray blocks on the tray menu until it quits or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, st *store.Store, url string) {
	t := tray.New(a.IsEnabled())

	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		if err := st.Settings().SetBool(store.SettingGesturesEnabled, enabled); err != nil {
			log.Warn().Err(err).Msg("persist gesture setting")
		}
		log.Info().Bool("enabled", enabled).Msg("gesture navigation toggled")
	})
	t.OnOpenBrowser(func() { openBrowser(url) })
	t.OnQuit(stop)

	a.OnCommand(func(d gesture.Decision) { t.SetLastCommand(d.Command) })

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to open browser")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and <dataDir>/web, returning the
// first existing directory or "" if none is found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
