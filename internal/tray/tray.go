// Package tray provides the system tray menu for Crate.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/crate/internal/gesture"
)

const (
	titleEnabled  = "● Gestures on"
	titleDisabled = "○ Gestures off"
)

// Tray is the system tray menu: a gesture navigation toggle, the last
// emitted command, a browser shortcut and quit.
type Tray struct {
	onToggle  func(enabled bool)
	onBrowser func()
	onQuit    func()
	enabled   bool
	last      gesture.Command
	mu        sync.RWMutex

	menuToggle      *systray.MenuItem
	menuLastCommand *systray.MenuItem
}

// New creates a new Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback invoked with the new state when gesture
// navigation is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenBrowser sets the callback for the "Open Browser" item.
func (t *Tray) OnOpenBrowser(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onBrowser = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called or the quit item is clicked.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Crate")
	systray.SetTooltip("Crate record browser")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture navigation")
	systray.AddSeparator()

	t.menuLastCommand = systray.AddMenuItem(lastTitle(t.last), "Last navigation command")
	t.menuLastCommand.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuBrowser := systray.AddMenuItem("Open Browser", "Open the carousel in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Crate")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.Toggle()
			case <-menuBrowser.ClickedCh:
				t.handleBrowser()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// Toggle flips gesture navigation and reports the new state to the
// OnToggle callback.
func (t *Tray) Toggle() bool {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
	return enabled
}

func (t *Tray) handleBrowser() {
	t.mu.RLock()
	callback := t.onBrowser
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastCommand updates the last command display in the menu.
func (t *Tray) SetLastCommand(cmd gesture.Command) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = cmd
	if t.menuLastCommand != nil {
		t.menuLastCommand.SetTitle(lastTitle(cmd))
	}
}

// LastCommand returns the most recently displayed command.
func (t *Tray) LastCommand() gesture.Command {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return titleEnabled
	}
	return titleDisabled
}

func lastTitle(cmd gesture.Command) string {
	if cmd == "" {
		return "Last: none"
	}
	return "Last: " + string(cmd)
}
