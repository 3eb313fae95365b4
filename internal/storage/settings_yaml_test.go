package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// Redirects os.UserConfigDir into a temp dir. XDG_CONFIG_HOME only steers it
// on Linux, so the round-trip tests are skipped elsewhere.
func isolateConfigDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("config dir isolation relies on XDG_CONFIG_HOME")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadSettings_Defaults(t *testing.T) {
	isolateConfigDir(t)

	settings, err := LoadSettings("courtside-test")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	want := DefaultSettings()
	if settings != want {
		t.Errorf("settings = %+v, want defaults %+v", settings, want)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	isolateConfigDir(t)

	saved := Settings{
		ConfigPath:          "/configs/board.toml",
		TickInterval:        100 * time.Millisecond,
		GamepadPollInterval: 16 * time.Millisecond,
		ReloadDebounce:      500 * time.Millisecond,
		Fullscreen:          true,
	}
	if err := SaveSettings("courtside-test", saved); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	loaded, err := LoadSettings("courtside-test")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if loaded != saved {
		t.Errorf("loaded = %+v, want %+v", loaded, saved)
	}
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolateConfigDir(t)

	path := filepath.Join(dir, "courtside-test", settingsFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("config_path: /configs/board.toml\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	settings, err := LoadSettings("courtside-test")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.ConfigPath != "/configs/board.toml" {
		t.Errorf("config path = %q", settings.ConfigPath)
	}
	if settings.TickInterval != 50*time.Millisecond {
		t.Errorf("tick interval = %v, want default 50ms", settings.TickInterval)
	}
	if settings.ReloadDebounce != 200*time.Millisecond {
		t.Errorf("reload debounce = %v, want default 200ms", settings.ReloadDebounce)
	}
}

func TestLoadSettings_MalformedYAML(t *testing.T) {
	dir := isolateConfigDir(t)

	path := filepath.Join(dir, "courtside-test", settingsFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(":\n\t-bogus"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadSettings("courtside-test"); err == nil {
		t.Fatal("LoadSettings succeeded for malformed yaml")
	}
}
