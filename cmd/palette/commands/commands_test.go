package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/palette/am"
	"github.com/teranos/palette/errors"
)

// isolate points config discovery and the database at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("PALETTE_DATABASE_PATH", filepath.Join(dir, "palette.db"))
	am.Reset()
	t.Cleanup(am.Reset)
	pterm.DisableStyling()
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "parse", "#123")
	require.NoError(t, err)
	assert.Contains(t, out, "Intent:      GO")
	assert.Contains(t, out, "Shortcut:    yes")

	out, err = execute(t, "", "parse", "--json", "create", "invoice")
	require.NoError(t, err)
	assert.Contains(t, out, `"intent": "CREATE"`)
	assert.Contains(t, out, `"invoice"`)
}

func TestSeedRunAndResolve(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "db", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded")

	out, err = execute(t, "", "run", "$INV1002")
	require.NoError(t, err)
	assert.Contains(t, out, "Hardware refresh")

	out, err = execute(t, "", "resolve", "invoice", "INV-1001")
	require.NoError(t, err)
	assert.Contains(t, out, "March managed services")

	_, err = execute(t, "", "resolve", "invoice", "INV-9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	out, err = execute(t, "", "search", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Corporation")
}

func TestSearchRejectsUnknownType(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "search", "--type", "spaceship", "acme")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestRecordAndSuggestAcrossInvocations(t *testing.T) {
	isolate(t)
	// Learning state must outlive a single process
	t.Setenv("PALETTE_CACHE_BACKEND", "sqlite")

	for i := 0; i < 3; i++ {
		_, err := execute(t, "", "record", "success", "create invoice", "--user", "7")
		require.NoError(t, err)
	}

	out, err := execute(t, "", "suggest", "--user", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "create invoice")
	assert.Contains(t, out, "personal")

	out, err = execute(t, "", "learn", "insights", "--user", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "create invoice")
}

func TestRecordRequiresUser(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "record", "success", "create invoice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoIdentity))
}

func TestRepl(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "db", "seed")
	require.NoError(t, err)

	out, err := execute(t, "$INV1002\n\n:bogus\n:search 'laptop fleet' quote\n:quit\nnever reached\n", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "Hardware refresh")
	assert.Contains(t, out, "unknown command :bogus")
	assert.Contains(t, out, "Laptop fleet")
	assert.NotContains(t, out, "never reached")
}

func TestDbStatsNeedsSQLiteSink(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "db", "stats", "--since", "1h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite sink")
}

func TestAmShowFormats(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "am", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "backend: memory")

	out, err = execute(t, "", "am", "show", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[resolver]")

	_, err = execute(t, "", "am", "show", "--format", "ini")
	assert.Error(t, err)
}

func TestAmInitWritesProjectConfig(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "", "am", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "am.toml"))

	cfg, err := am.LoadFromFile(filepath.Join(dir, "am.toml"))
	require.NoError(t, err)
	assert.Equal(t, am.CacheMemory, cfg.Cache.Backend)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "palette")
}
