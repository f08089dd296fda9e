package am

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), DefaultFilePermissions))
}

func startWatcher(t *testing.T, path string) <-chan *Config {
	t.Helper()
	w, err := NewWatcher(path, WithDebounce(20*time.Millisecond), WithWatcherLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, err)

	reloaded := make(chan *Config, 4)
	w.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return reloaded
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	writeConfig(t, path, "[cache]\nbackend = \"memory\"\n")
	reloaded := startWatcher(t, path)

	writeConfig(t, path, "[cache]\nbackend = \"none\"\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, CacheNone, cfg.Cache.Backend)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config change")
	}
}

func TestWatcher_InvalidFileKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	writeConfig(t, path, "[cache]\nbackend = \"memory\"\n")
	reloaded := startWatcher(t, path)

	writeConfig(t, path, "[cache]\nbackend = \"redis\"\n")

	select {
	case cfg := <-reloaded:
		t.Fatalf("invalid config must not be delivered, got %+v", cfg.Cache)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "am.toml")
	writeConfig(t, path, "[cache]\nbackend = \"memory\"\n")
	reloaded := startWatcher(t, path)

	writeConfig(t, path+".back1", "[cache]\nbackend = \"none\"\n")
	writeConfig(t, filepath.Join(dir, "notes.txt"), "hello")

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestProjectConfigPath(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, DefaultDirPermissions))
	writeConfig(t, filepath.Join(dir, "am.toml"), "")
	t.Chdir(sub)

	got := ProjectConfigPath()
	assert.Equal(t, "am.toml", filepath.Base(got))
}

func TestWatcher_CloseStopsGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "am.toml")
	writeConfig(t, path, "[cache]\nbackend = \"memory\"\n")
	w, err := NewWatcher(path, WithDebounce(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	writeConfig(t, path, "[cache]\nbackend = \"none\"\n")
	require.NoError(t, w.Close())
	cancel()
	<-done
}
