package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type captureSettings struct {
	Device      string `toml:"device"`
	WaitTimeout int    `toml:"wait_timeout"`
}

func loadCaptureSettings(path string) (captureSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return captureSettings{}, err
	}
	var cfg captureSettings
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeSettings(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newSettingsFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "camgrab_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := newSettingsFile(t, "device = \"cam0\"\nwait_timeout = 5\n")

	received := make(chan captureSettings, 1)
	watcher := NewConfigWatcher(
		path,
		loadCaptureSettings,
		newTestLogger(),
		WithDebounce[captureSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(cfg captureSettings) {
		received <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	writeSettings(t, path, "device = \"cam1\"\nwait_timeout = 10\n")

	select {
	case cfg := <-received:
		if cfg.Device != "cam1" || cfg.WaitTimeout != 10 {
			t.Errorf("got %+v, want device=cam1, wait_timeout=10", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_MultipleHandlers(t *testing.T) {
	path := newSettingsFile(t, "device = \"cam0\"\n")

	var count atomic.Int32
	var configs []captureSettings
	var mu sync.Mutex

	watcher := NewConfigWatcher(
		path,
		loadCaptureSettings,
		newTestLogger(),
		WithDebounce[captureSettings](50*time.Millisecond),
	)

	// Register 3 handlers
	for range 3 {
		watcher.OnReload(func(cfg captureSettings) {
			count.Add(1)
			mu.Lock()
			configs = append(configs, cfg)
			mu.Unlock()
		})
	}

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	writeSettings(t, path, "device = \"cam2\"\n")

	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 3 {
		t.Errorf("expected 3 handlers called, got %d", got)
	}

	// Verify all handlers received the same config
	mu.Lock()
	defer mu.Unlock()
	for i, cfg := range configs {
		if cfg.Device != "cam2" {
			t.Errorf("handler %d got wrong config: %+v", i, cfg)
		}
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := newSettingsFile(t, "device = \"cam0\"\n")

	errorReceived := make(chan error, 1)
	configReceived := make(chan captureSettings, 1)

	watcher := NewConfigWatcher(
		path,
		loadCaptureSettings,
		newTestLogger(),
		WithDebounce[captureSettings](50*time.Millisecond),
		WithErrorHandler[captureSettings](func(err error) {
			errorReceived <- err
		}),
	)

	watcher.OnReload(func(cfg captureSettings) {
		configReceived <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	// Write invalid TOML
	time.Sleep(100 * time.Millisecond)
	writeSettings(t, path, "invalid toml [[[")

	select {
	case <-errorReceived:
		// Expected
	case <-configReceived:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := newSettingsFile(t, "wait_timeout = 0\n")

	var count atomic.Int32
	var lastValue atomic.Int32

	watcher := NewConfigWatcher(
		path,
		loadCaptureSettings,
		newTestLogger(),
		WithDebounce[captureSettings](200*time.Millisecond),
	)

	watcher.OnReload(func(cfg captureSettings) {
		count.Add(1)
		lastValue.Store(int32(cfg.WaitTimeout))
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	// Rapid changes within debounce window
	time.Sleep(100 * time.Millisecond)
	for i := 1; i <= 5; i++ {
		writeSettings(t, path, fmt.Sprintf("wait_timeout = %d\n", i))
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
	if got := lastValue.Load(); got != 5 {
		t.Errorf("expected final value 5, got %d", got)
	}
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := newSettingsFile(t, "wait_timeout = 1\n")

	var count atomic.Int32
	watcher := NewConfigWatcher(
		path,
		loadCaptureSettings,
		newTestLogger(),
		WithDebounce[captureSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(_ captureSettings) {
		count.Add(1)
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}

	time.Sleep(100 * time.Millisecond)

	// Stop watcher
	if stopErr := watcher.Stop(); stopErr != nil {
		t.Fatal(stopErr)
	}

	// Changes after stop should not trigger handler
	writeSettings(t, path, "wait_timeout = 99\n")
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}
