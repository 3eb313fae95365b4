package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"courtside/internal/core/engine"
	"courtside/internal/core/model"
	"courtside/internal/input"
	"courtside/internal/platform"
	"courtside/internal/storage"
	"courtside/internal/ui/overlay"
	"courtside/internal/ui/tray"
	"courtside/internal/watch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fynestorage "fyne.io/fyne/v2/storage"
)

const (
	appName           = "Courtside"
	defaultConfigName = "basketball.toml"
)

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.courtside.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("settings: %v", err)
	}

	capture := platform.NewKeyboardCapture()
	eng := engine.New(engine.Options{
		TickInterval: settings.TickInterval,
		Capture:      capture,
	})
	dispatcher := input.NewDispatcher(eng)

	overlayWindow := overlay.New(fyneApp, overlay.Config{Fullscreen: settings.Fullscreen}, overlay.Callbacks{
		OnEditBegin: eng.BeginEdit,
		OnEditSubmit: func(id, text string) error {
			if err := eng.SetLabel(id, text); err != nil {
				eng.ReportError(err.Error())
				return err
			}
			return nil
		},
		OnEditEnd: func(string) { eng.EndEdit() },
	})

	var trayManager *tray.Manager
	var watcher *watch.Watcher

	applyDocument := func(path string, doc model.Document) {
		eng.ApplyDocument(doc)
		dispatcher.Rebind(input.Bindings(doc))

		var editable, images []string
		for _, component := range doc.Components {
			switch {
			case component.Kind == model.KindLabel && component.Label.Editable:
				editable = append(editable, component.ID)
			case component.Kind == model.KindImage:
				images = append(images, component.ID)
			}
		}
		fyne.Do(func() {
			trayManager.SetEditableLabels(editable)
			trayManager.SetImageComponents(images)
			trayManager.SetStatus(filepath.Base(path))
		})
	}

	// loadConfig synchronously loads path and rearms the file watcher on it.
	loadConfig := func(path string) error {
		doc, err := watch.Load(path)
		if err != nil {
			return err
		}

		if watcher != nil {
			watcher.Stop()
		}
		watcher = watch.New(watch.Config{
			Path:     path,
			Debounce: settings.ReloadDebounce,
			OnDocument: func(doc model.Document) {
				applyDocument(path, doc)
			},
			OnError: func(err error) {
				eng.ReportError(err.Error())
			},
		})
		if err := watcher.Start(); err != nil {
			eng.ReportError(err.Error())
		}

		applyDocument(path, doc)
		return nil
	}

	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnTogglePause: func() {
			paused := !eng.ManualPaused()
			if err := eng.SetManualPause(paused); err != nil {
				return
			}
			trayManager.SetPaused(paused)
		},
		OnLoadConfig: func() {
			fileOpen := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil || reader == nil {
					return
				}
				path := reader.URI().Path()
				_ = reader.Close()
				if err := loadConfig(path); err != nil {
					eng.ReportError(err.Error())
					return
				}
				settings.ConfigPath = path
				if err := storage.SaveSettings(appName, settings); err != nil {
					log.Printf("save settings: %v", err)
				}
			}, overlayWindow.Window())
			fileOpen.SetFilter(fynestorage.NewExtensionFileFilter([]string{".toml"}))
			fileOpen.Show()
		},
		OnEditLabel: func(id string) {
			for _, item := range eng.Snapshot().Items {
				if item.ID == id {
					overlayWindow.EditLabel(item)
					return
				}
			}
		},
		OnSetImage: func(id string) {
			fileOpen := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil || reader == nil {
					return
				}
				path := reader.URI().Path()
				_ = reader.Close()
				if err := eng.SetImageSource(id, path); err != nil {
					eng.ReportError(err.Error())
				}
			}, overlayWindow.Window())
			fileOpen.SetFilter(fynestorage.NewExtensionFileFilter(
				[]string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}))
			fileOpen.Show()
		},
		OnQuit: func() {
			if watcher != nil {
				watcher.Stop()
			}
			eng.Stop()
			fyneApp.Quit()
		},
	})

	// The engine is ready only after the startup config is loaded; a missing
	// file starts an empty board instead of failing.
	if path := startupConfigPath(settings); path != "" {
		if err := loadConfig(path); err != nil {
			eng.ReportError(err.Error())
			eng.ApplyDocument(model.Empty())
		}
	} else {
		eng.ApplyDocument(model.Empty())
	}

	events := eng.Subscribe(16)
	go func() {
		for event := range events {
			switch event.Type {
			case engine.EventSnapshot:
				overlayWindow.Apply(event.Snapshot)
			case engine.EventError:
				log.Printf("engine: %s", event.Message)
				fyneApp.SendNotification(fyne.NewNotification(appName, event.Message))
			}
		}
	}()

	if keyEvents, err := capture.Start(); err != nil {
		log.Printf("keyboard capture unavailable: %v", err)
		eng.ReportError("Keyboard capture unavailable: " + err.Error())
	} else {
		go dispatcher.Run(keyEvents)
		defer func() {
			_ = capture.Stop()
		}()
	}

	poller := input.NewPoller(platform.NewGamepad(), dispatcher, settings.GamepadPollInterval, throttledReporter(eng))
	poller.Start()
	defer poller.Stop()

	eng.Start()
	overlayWindow.Show()
	fyneApp.Run()
}

// startupConfigPath picks the remembered config when it still exists,
// otherwise the default name in the working directory or its parent.
func startupConfigPath(settings storage.Settings) string {
	if settings.ConfigPath != "" {
		if _, err := os.Stat(settings.ConfigPath); err == nil {
			return settings.ConfigPath
		}
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	local := filepath.Join(dir, defaultConfigName)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	parent := filepath.Join(filepath.Dir(dir), defaultConfigName)
	if _, err := os.Stat(parent); err == nil {
		return parent
	}
	return ""
}

// throttledReporter surfaces gamepad poll failures at most once per few
// seconds so a flaky pad cannot flood the error signal.
func throttledReporter(eng *engine.Engine) func(error) {
	var last time.Time
	return func(err error) {
		if time.Since(last) < 5*time.Second {
			return
		}
		last = time.Now()
		eng.ReportError("Gamepad input: " + err.Error())
	}
}
