package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnTogglePause func()
	OnLoadConfig  func()
	OnEditLabel   func(id string)
	OnSetImage    func(id string)
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	callbacks   Callbacks
	paused      bool
	statusLabel string
	editable    []string
	images      []string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "no config loaded",
	}
	manager.refreshMenu()
	return manager
}

// SetStatus updates the status line, typically the active config name.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshMenu()
}

// SetPaused updates the pause toggle label.
func (manager *Manager) SetPaused(paused bool) {
	manager.paused = paused
	manager.refreshMenu()
}

// SetEditableLabels replaces the label edit submenu entries; called on every
// config (re)load.
func (manager *Manager) SetEditableLabels(ids []string) {
	manager.editable = ids
	manager.refreshMenu()
}

// SetImageComponents replaces the image source submenu entries; called on
// every config (re)load.
func (manager *Manager) SetImageComponents(ids []string) {
	manager.images = ids
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	status := fyne.NewMenuItem(fmt.Sprintf("Status: %s", manager.statusText()), nil)
	status.Disabled = true

	loadConfig := fyne.NewMenuItem("Load config...", func() {
		if manager.callbacks.OnLoadConfig != nil {
			manager.callbacks.OnLoadConfig()
		}
	})

	pauseLabel := "Pause hotkeys"
	if manager.paused {
		pauseLabel = "Resume hotkeys"
	}
	pause := fyne.NewMenuItem(pauseLabel, func() {
		if manager.callbacks.OnTogglePause != nil {
			manager.callbacks.OnTogglePause()
		}
	})

	edit := fyne.NewMenuItem("Edit label", nil)
	edit.Disabled = len(manager.editable) == 0
	if len(manager.editable) > 0 {
		items := make([]*fyne.MenuItem, 0, len(manager.editable))
		for _, id := range manager.editable {
			labelID := id
			items = append(items, fyne.NewMenuItem(labelID, func() {
				if manager.callbacks.OnEditLabel != nil {
					manager.callbacks.OnEditLabel(labelID)
				}
			}))
		}
		edit.ChildMenu = fyne.NewMenu("", items...)
	}

	setImage := fyne.NewMenuItem("Set image source", nil)
	setImage.Disabled = len(manager.images) == 0
	if len(manager.images) > 0 {
		items := make([]*fyne.MenuItem, 0, len(manager.images))
		for _, id := range manager.images {
			imageID := id
			items = append(items, fyne.NewMenuItem(imageID, func() {
				if manager.callbacks.OnSetImage != nil {
					manager.callbacks.OnSetImage(imageID)
				}
			}))
		}
		setImage.ChildMenu = fyne.NewMenu("", items...)
	}

	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})

	manager.app.SetSystemTrayMenu(fyne.NewMenu("Courtside", status, loadConfig, pause, edit, setImage, quit))
}

func (manager *Manager) statusText() string {
	if manager.paused {
		return fmt.Sprintf("%s (hotkeys paused)", manager.statusLabel)
	}
	return manager.statusLabel
}
