package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/contacts/internal/config"
	"github.com/aanand-mishra/contacts/internal/contactstore"
	"github.com/aanand-mishra/contacts/internal/validation"
)

// testEnv writes a config pointing at a fresh store under a temp dir.
func testEnv(t *testing.T, backend string, extra string) (configPath, storePath string) {
	t.Helper()
	dir := t.TempDir()
	storePath = filepath.Join(dir, "contacts."+backend)
	configPath = filepath.Join(dir, "config.yaml")
	body := "env: prod\nstorage_path: " + storePath + "\nstorage_backend: " + backend + "\n" + extra
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0o644))
	return configPath, storePath
}

func run(t *testing.T, configPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_Scenario(t *testing.T) {
	for _, backend := range []string{"json", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg, _ := testEnv(t, backend, "")

			_, err := run(t, cfg, "", "add", "Bob", "5551234", "bob@x.com")
			require.NoError(t, err)

			_, err = run(t, cfg, "", "add", "Amy", "000", "bad-email")
			require.ErrorIs(t, err, validation.ErrInvalidEmail)

			_, err = run(t, cfg, "", "add", "Amy", "000", "amy@x.com")
			require.NoError(t, err)

			out, err := run(t, cfg, "", "list")
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, 3)
			assert.Contains(t, lines[1], "Amy")
			assert.Contains(t, lines[2], "Bob")

			out, err = run(t, cfg, "", "search", "b")
			require.NoError(t, err)
			assert.Contains(t, out, "Bob")
			assert.NotContains(t, out, "Amy")

			_, err = run(t, cfg, "", "rm", "--yes", "1")
			require.NoError(t, err)

			out, err = run(t, cfg, "", "list")
			require.NoError(t, err)
			assert.NotContains(t, out, "Amy")
			assert.Contains(t, out, "Bob")
		})
	}
}

func TestCLI_Edit(t *testing.T) {
	cfg, _ := testEnv(t, "json", "")
	_, err := run(t, cfg, "", "add", "Bob", "1", "b@x.com")
	require.NoError(t, err)

	_, err = run(t, cfg, "", "edit", "1", "Robert", "2", "r@x.com")
	require.NoError(t, err)

	out, err := run(t, cfg, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Robert")

	_, err = run(t, cfg, "", "edit", "2", "X", "1", "x@y.z")
	assert.ErrorIs(t, err, contactstore.ErrIndexOutOfRange)

	_, err = run(t, cfg, "", "edit", "zero", "X", "1", "x@y.z")
	assert.ErrorContains(t, err, "invalid row")
}

func TestCLI_RemoveConfirmation(t *testing.T) {
	cfg, _ := testEnv(t, "json", "")
	_, err := run(t, cfg, "", "add", "Bob", "1", "b@x.com")
	require.NoError(t, err)

	out, err := run(t, cfg, "n\n", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")

	out, err = run(t, cfg, "y\n", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted Bob")

	_, err = run(t, cfg, "", "rm", "--yes", "1")
	assert.ErrorIs(t, err, contactstore.ErrIndexOutOfRange)
}

func TestCLI_UnreadableStore(t *testing.T) {
	cfg, storePath := testEnv(t, "json", "")
	require.NoError(t, os.WriteFile(storePath, []byte("{broken"), 0o644))

	_, err := run(t, cfg, "", "list")
	assert.Error(t, err)

	// The bad file is untouched when the reset policy is off.
	data, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestCLI_ResetUnreadable(t *testing.T) {
	cfg, storePath := testEnv(t, "json", "reset_unreadable: true\n")
	require.NoError(t, os.WriteFile(storePath, []byte("{broken"), 0o644))

	out, err := run(t, cfg, "", "list")
	require.NoError(t, err)
	assert.Equal(t, 1, len(strings.Split(strings.TrimSpace(out), "\n")))

	data, err := os.ReadFile(storePath + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfgPath, storePath := testEnv(t, "json", "http_server:\n  address: 127.0.0.1:0\n")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	a := &app{cfg: cfg, log: setupLogger(cfg.Env, io.Discard)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.serve(ctx))

	// Shutdown writes the (empty) book back.
	data, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCLI_ResetKeepsLockedDatabase(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "contacts.sqlite")
	cfg := filepath.Join(dir, "config.yaml")
	body := "env: prod\nstorage_backend: sqlite\nreset_unreadable: true\n" +
		"storage_path: " + storePath + "?_busy_timeout=50\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))

	_, err := run(t, cfg, "", "add", "Bob", "5551234", "bob@x.com")
	require.NoError(t, err)

	ctx := context.Background()
	locker, err := sql.Open("sqlite3", storePath)
	require.NoError(t, err)
	defer locker.Close()
	conn, err := locker.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "BEGIN EXCLUSIVE")
	require.NoError(t, err)

	_, err = run(t, cfg, "", "list")
	assert.Error(t, err)

	_, err = conn.ExecContext(ctx, "ROLLBACK")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = os.Stat(storePath + ".corrupt")
	assert.True(t, os.IsNotExist(err), "healthy database was moved aside")

	out, err := run(t, cfg, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob")
}

func TestCLI_ResetUnreadableSQLite(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "contacts.sqlite")
	cfg := filepath.Join(dir, "config.yaml")
	body := "env: prod\nstorage_backend: sqlite\nreset_unreadable: true\n" +
		"storage_path: " + storePath + "?_busy_timeout=50\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	garbage := "this is definitely not sqlite, padded to exceed a header ................................................"
	require.NoError(t, os.WriteFile(storePath, []byte(garbage), 0o644))

	_, err := run(t, cfg, "", "list")
	require.NoError(t, err)

	data, err := os.ReadFile(storePath + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, garbage, string(data))
}
