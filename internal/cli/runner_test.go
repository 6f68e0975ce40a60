package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"TADA_CONFIG", "TADA_STORAGE", "TADA_DATA", "TADA_KEY", "TADA_LOG_LEVEL", "TADA_LOG_FORMAT", "TADA_THEME"} {
		t.Setenv(k, "")
	}
	return filepath.Join(t.TempDir(), "todos.json")
}

func run(args ...string) result {
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestRun_NoArgsPrintsHelp(t *testing.T) {
	isolate(t)
	r := run()
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stdout, "todo add")
}

func TestRun_Help(t *testing.T) {
	isolate(t)
	r := run("--help")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "toggle-all")
}

func TestRun_UnknownSubcommand(t *testing.T) {
	isolate(t)
	r := run("frobnicate")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "unknown command")
}

func TestRun_AddListToggleRemove(t *testing.T) {
	data := isolate(t)

	r := run("--data", data, "add", "Buy", "bread")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "added #4")

	r = run("--data", data, "ls")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Buy bread")
	assert.Contains(t, r.stdout, "Learn Vue 3 Composition API")

	r = run("--data", data, "done", "4")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "toggled")

	r = run("--data", data, "ls", "--filter", "completed")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Buy bread")
	assert.Contains(t, r.stdout, "#4")
	assert.NotContains(t, r.stdout, "Understand Data Store Pattern")

	r = run("--data", data, "rm", "4")
	require.Equal(t, 0, r.code, r.stderr)

	r = run("--data", data, "ls")
	require.Equal(t, 0, r.code, r.stderr)
	assert.NotContains(t, r.stdout, "Buy bread")

	r = run("--data", data, "ls", "--filter", "active")
	require.Equal(t, 0, r.code, r.stderr)
	assert.NotContains(t, r.stdout, "Buy bread")
	assert.Contains(t, r.stdout, "Understand Data Store Pattern")
}

func TestRun_PersistedFormat(t *testing.T) {
	data := isolate(t)
	require.Equal(t, 0, run("--data", data, "add", "x").code)

	b, err := os.ReadFile(data)
	require.NoError(t, err)
	var file map[string]string
	require.NoError(t, json.Unmarshal(b, &file))

	var payload struct {
		Todos []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
			Done  bool   `json:"done"`
		} `json:"todos"`
		NextID int `json:"nextId"`
	}
	require.NoError(t, json.Unmarshal([]byte(file["tada_todo_data"]), &payload))
	assert.Len(t, payload.Todos, 4)
	assert.Equal(t, "x", payload.Todos[3].Title)
	assert.Equal(t, 5, payload.NextID)
}

func TestRun_RejectedOperations(t *testing.T) {
	data := isolate(t)

	r := run("--data", data, "add", "   ")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "add: empty title")
	assert.Contains(t, r.stderr, "cannot add empty todo")

	r = run("--data", data, "add")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "usage: todo add")

	r = run("--data", data, "done", "abc")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "done: not a number: abc")

	r = run("--data", data, "rm", "99")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "no item with id 99")
	assert.Contains(t, r.stderr, "Hint")

	r = run("--data", data, "ls", "--filter", "someday")
	assert.Equal(t, 2, r.code)

	assert.NoFileExists(t, data, "nothing was mutated, nothing was written")
}

func TestRun_BulkCommands(t *testing.T) {
	data := isolate(t)

	r := run("--data", data, "toggle-all")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "all done")

	r = run("--data", data, "stats")
	require.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "completed: 3")
	assert.Contains(t, r.stdout, "all completed: true")

	r = run("--data", data, "clear")
	require.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "cleared 3 completed")

	r = run("--data", data, "stats")
	assert.Contains(t, r.stdout, "total: 0")
	assert.Contains(t, r.stdout, "all completed: false")

	r = run("--data", data, "reset")
	require.Equal(t, 0, r.code)
	r = run("--data", data, "stats")
	assert.Contains(t, r.stdout, "total: 3")
	assert.Contains(t, r.stdout, "active: 2")
}

func TestRun_GroupedList(t *testing.T) {
	data := isolate(t)
	r := run("--data", data, "--group", "ls")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Pending")
	assert.Contains(t, r.stdout, "Done")
}

func TestRun_SQLiteBackend(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "todos.sqlite")

	r := run("--storage", "sqlite", "--data", db, "add", "from sqlite")
	require.Equal(t, 0, r.code, r.stderr)

	r = run("--storage", "sqlite", "--data", db, "ls")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "from sqlite")
}

func TestRun_NoStorageBackend(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.Equal(t, 0, run("--storage", "none", "add", "ephemeral").code)

	r := run("--storage", "none", "ls")
	assert.NotContains(t, r.stdout, "ephemeral")
	assert.NoFileExists(t, filepath.Join(dir, "todos.json"))
}

func TestRun_UnknownBackend(t *testing.T) {
	isolate(t)
	r := run("--storage", "redis", "ls")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "unknown storage backend")
}

func TestRun_ConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	data := filepath.Join(dir, "from-config.json")
	cfg := filepath.Join(dir, "tada.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("storage:\n  path: "+data+"\n  key: custom\n"), 0o644))

	require.Equal(t, 0, run("--config", cfg, "add", "configured").code)

	b, err := os.ReadFile(data)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"custom"`)
}

func TestRun_CorruptDataFile(t *testing.T) {
	data := isolate(t)
	require.NoError(t, os.WriteFile(data, []byte(`{"tada_todo_data":"{broken"}`), 0o644))

	r := run("--data", data, "stats")
	require.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "total: 3", "falls back to defaults")
	assert.Contains(t, r.stderr, "failed to parse saved state")
}

func TestRun_UnreadableDataFileFailsLoudly(t *testing.T) {
	data := isolate(t)
	legacy := `[{"title":"old","done":false}]`
	require.NoError(t, os.WriteFile(data, []byte(legacy), 0o644))

	r := run("--data", data, "add", "new")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "storage:")
	assert.NotContains(t, r.stdout, "added")

	b, err := os.ReadFile(data)
	require.NoError(t, err)
	assert.Equal(t, legacy, string(b), "file left untouched")

	r = run("--data", data, "ls")
	assert.Equal(t, 1, r.code)
}
