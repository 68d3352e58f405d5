// moongallery - a spinning moon in a field of stars, ringed by your pictures.
//
// Controls:
//
//	Mouse drag  - Orbit the moon
//	Scroll      - Zoom in/out
//	+/-         - Zoom in/out
//	Hover       - Highlight the picture under the pointer
//	R           - Reset camera
//	B           - Toggle bloom
//	X           - Toggle wireframe (x-ray)
//	P           - Save a PNG screenshot
//	?           - Toggle HUD overlay (FPS, hovered picture, item count)
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/moongallery/internal/config"
	"github.com/taigrr/moongallery/internal/scene"
	"github.com/taigrr/moongallery/pkg/render"
)

var (
	configPath = flag.String("config", "", "Path to a TOML config file")
	logPath    = flag.String("log", "", "Write logs to this file (the terminal is in use)")
	verbose    = flag.Bool("v", false, "Log at debug level")
	targetFPS  = flag.Int("fps", 0, "Target FPS (overrides render.fps)")
	assetsDir  = flag.String("assets", "", "Gallery image directory (overrides layout.assets)")
	bloom      = flag.Bool("bloom", false, "Start with bloom enabled")
	watch      = flag.Bool("watch", false, "Rebuild the scene when the config file changes")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "moongallery - Terminal Moon Gallery\n\n")
		fmt.Fprintf(os.Stderr, "Usage: moongallery [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit the moon\n")
		fmt.Fprintf(os.Stderr, "  Scroll, +/- - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset camera\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle bloom\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  P           - Save screenshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Error("exit", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	return applyFlags(cfg)
}

func applyFlags(cfg config.Config) (config.Config, error) {
	if *targetFPS > 0 {
		cfg.Render.FPS = *targetFPS
	}
	if *assetsDir != "" {
		cfg.Layout.Assets = *assetsDir
	}
	if *bloom {
		cfg.Features.Bloom = true
	}
	return cfg, cfg.Validate()
}

func newLogger() (*slog.Logger, func(), error) {
	if *logPath == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), func() { f.Close() }, nil
}

// HUD renders an overlay with frame rate, the hovered picture and toggles.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	status    string
	statusAt  time.Time
}

// NewHUD creates a new HUD
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Flash shows msg on the bottom line for a few seconds, HUD or not.
func (h *HUD) Flash(msg string) {
	h.status = msg
	h.statusAt = time.Now()
}

// Render draws the HUD overlay directly to the terminal
func (h *HUD) Render(width, height int, show bool, s *scene.Scene, wireframe bool) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if h.status != "" && time.Since(h.statusAt) < 3*time.Second {
		msg := fmt.Sprintf("%s%s%s %s %s", bgBlack, bold, fgYellow, h.status, reset)
		fmt.Print(moveTo(height, max((width-len(h.status))/2, 1)) + msg)
		return
	}
	if !show {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	if it := s.Hovered(); it != nil && it.Content != nil {
		title := it.Content.ID
		fmt.Print(moveTo(1, max((width-len(title)-2)/2, 1)) +
			fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, title, reset))
	}

	stats := s.Stats()
	items := fmt.Sprintf("%d/%d items", stats.ItemsDrawn, len(s.Items()))
	if n := len(s.Missing()); n > 0 {
		items = fmt.Sprintf("%s, %d missing", items, n)
	}
	fmt.Print(moveTo(1, max(width-len(items)-1, 1)) +
		fmt.Sprintf("%s%s%s %s %s", bgBlack, fgCyan, bold, items, reset))

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	f := s.Features()
	modes := fmt.Sprintf("%s%s %s Bloom  %s Hover  %s Cull  %s X-Ray %s",
		bgBlack, fgWhite, check(f.Bloom), check(f.Hover), check(f.Cull), check(wireframe), reset)
	fmt.Print(moveTo(height, 1) + modes)

	hint := fmt.Sprintf("%s%s%s P: screenshot %s", bgBlack, dim, fgYellow, reset)
	fmt.Print(moveTo(height, max(width-14, 1)) + hint)
}

func run(cfg config.Config, logger *slog.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()

	first, err := scene.New(cfg, fbWidth, fbHeight, scene.Deps{Logger: logger})
	if err != nil {
		return err
	}
	// Swapped by config reloads, read by the event goroutine
	var current atomic.Pointer[scene.Scene]
	current.Store(first)

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	hud := NewHUD()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads <-chan config.Config
	if *watch && *configPath != "" {
		if reloads, err = watchConfig(ctx, *configPath, logger); err != nil {
			logger.Warn("config watch disabled", "err", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// State shared with the event goroutine
	var showHUD, wireframe, screenshot atomic.Bool
	resizes := make(chan uv.WindowSizeEvent, 1)

	// Mouse state
	var mouseDown bool
	var lastMouseX, lastMouseY int

	// Event handler
	go func() {
		for ev := range term.Events() {
			gallery := current.Load()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case <-resizes:
				default:
				}
				resizes <- ev

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
					return
				case ev.MatchString("r"):
					gallery.Reset()
				case ev.MatchString("b"):
					on := gallery.ToggleBloom()
					logger.Debug("bloom", "on", on)
				case ev.MatchString("x"):
					wireframe.Store(gallery.ToggleWireframe())
				case ev.MatchString("p"):
					screenshot.Store(true)
				case ev.MatchString("+", "="):
					gallery.Zoom(1)
				case ev.MatchString("-", "_"):
					gallery.Zoom(-1)
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					showHUD.Store(!showHUD.Load())
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				// Half-block cells hold two pixel rows
				gallery.PointerMoved(ev.X, ev.Y*2)
				if mouseDown {
					gallery.Drag(float64(ev.X-lastMouseX), float64(ev.Y-lastMouseY))
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					gallery.Zoom(1)
				case uv.MouseWheelDown:
					gallery.Zoom(-1)
				}
			}
		}
	}()

	targetDuration := time.Second / time.Duration(cfg.Render.FPS)

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		case ev := <-resizes:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			fbWidth, fbHeight = termRenderer.FramebufferSize()
			current.Load().Resize(fbWidth, fbHeight)
			current.Load().PointerLeft()
			logger.Debug("resize", "cols", width, "rows", height)

		case next, ok := <-reloads:
			if !ok {
				reloads = nil
				break
			}
			if err := reload(&current, next, fbWidth, fbHeight, logger); err != nil {
				logger.Warn("reload failed", "err", err)
				hud.Flash("reload failed: " + err.Error())
			} else {
				wireframe.Store(false)
				hud.Flash("config reloaded")
			}
		default:
		}

		now := time.Now()
		gallery := current.Load()

		gallery.Frame()

		if screenshot.Swap(false) {
			path := fmt.Sprintf("moongallery-%s.png", now.Format("20060102-150405"))
			if err := gallery.Screenshot(path); err != nil {
				logger.Warn("screenshot failed", "err", err)
				hud.Flash("screenshot failed: " + err.Error())
			} else {
				logger.Info("screenshot saved", "path", path)
				hud.Flash("saved " + path)
			}
		}

		termRenderer.Render(gallery.Framebuffer())
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		// HUD overlay (always update FPS, render clears lines when HUD off)
		hud.UpdateFPS()
		hud.Render(width, height, showHUD.Load(), gallery, wireframe.Load())

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// reload builds a width x height pixel scene from cfg and swaps it in. The
// old scene keeps running if the new one cannot be built.
func reload(current *atomic.Pointer[scene.Scene], cfg config.Config, width, height int, logger *slog.Logger) error {
	cfg, err := applyFlags(cfg)
	if err != nil {
		return err
	}
	next, err := scene.New(cfg, width, height, scene.Deps{Logger: logger})
	if err != nil {
		return err
	}
	current.Store(next)
	return nil
}
