// Package osctl is the desktop control surface: volume, brightness,
// screenshots, trash, session lock, shutdown and application launch. Every
// action shells out to a standard Linux tool.
package osctl

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var ErrAppNotFound = errors.New("application not found")

// Runner executes external commands.
type Runner interface {
	// Run waits for the command and returns its stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start launches the command without waiting for it.
	Start(name string, args ...string) error
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

func (ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

type Config struct {
	ScreenshotDir string
	AppDirs       []string
	VolumeStep    int
	ShutdownDelay time.Duration
}

type Controller struct {
	cfg Config
	run Runner
	now func() time.Time
}

func New(cfg Config, run Runner) *Controller {
	if run == nil {
		run = ExecRunner{}
	}
	if cfg.VolumeStep <= 0 {
		cfg.VolumeStep = 10
	}
	if cfg.ScreenshotDir == "" {
		home, _ := os.UserHomeDir()
		cfg.ScreenshotDir = filepath.Join(home, "Pictures")
	}
	if len(cfg.AppDirs) == 0 {
		cfg.AppDirs = DefaultAppDirs()
	}
	return &Controller{cfg: cfg, run: run, now: time.Now}
}

func (c *Controller) exec(ctx context.Context, name string, args ...string) error {
	log.Debug("osctl", "cmd", name, "args", args)
	_, err := c.run.Run(ctx, name, args...)
	return err
}

func (c *Controller) SetVolume(ctx context.Context, percent int) error {
	return c.exec(ctx, "pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", clamp(percent)))
}

// StepVolume moves the default sink by the configured step; up is true for louder.
func (c *Controller) StepVolume(ctx context.Context, up bool) error {
	sign := "-"
	if up {
		sign = "+"
	}
	return c.exec(ctx, "pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%s%d%%", sign, c.cfg.VolumeStep))
}

func (c *Controller) ToggleMute(ctx context.Context) error {
	return c.exec(ctx, "pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle")
}

func (c *Controller) SetBrightness(ctx context.Context, percent int) error {
	return c.exec(ctx, "brightnessctl", "set", fmt.Sprintf("%d%%", clamp(percent)))
}

// Screenshot captures the screen to a timestamped file and returns its path.
func (c *Controller) Screenshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(c.cfg.ScreenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot dir: %w", err)
	}
	path := filepath.Join(c.cfg.ScreenshotDir, "screenshot_"+c.now().Format("20060102_150405")+".png")
	if err := c.exec(ctx, "grim", path); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Controller) EmptyTrash(ctx context.Context) error {
	return c.exec(ctx, "gio", "trash", "--empty")
}

func (c *Controller) Lock(ctx context.Context) error {
	return c.exec(ctx, "loginctl", "lock-session")
}

// Shutdown schedules a power-off after the configured delay, rounded up to
// whole minutes.
func (c *Controller) Shutdown(ctx context.Context) (time.Duration, error) {
	minutes := int((c.cfg.ShutdownDelay + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	if err := c.exec(ctx, "shutdown", "-h", "+"+strconv.Itoa(minutes)); err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// OpenApp launches the installed application whose name best matches name
// and returns the name it matched.
func (c *Controller) OpenApp(ctx context.Context, name string) (string, error) {
	apps, err := LoadApps(c.cfg.AppDirs)
	if err != nil {
		return "", err
	}

	app, ok := FindApp(apps, name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAppNotFound, name)
	}

	log.Info("Launching application", "query", name, "app", app.Name, "id", app.ID)
	if err := c.run.Start("gtk-launch", app.ID); err != nil {
		return "", err
	}
	return app.Name, nil
}

func (c *Controller) OpenURL(_ context.Context, link string) error {
	return c.run.Start("xdg-open", link)
}

func clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
