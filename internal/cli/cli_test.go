package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dwitlit/internal/jsonl"
	"github.com/mesh-intelligence/dwitlit/internal/paths"
	"github.com/mesh-intelligence/dwitlit/internal/sqlite"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// env is an isolated pair of config and data directories.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvDataDir, "")
	t.Setenv("DWITLIT_BACKEND", "")
	root := t.TempDir()
	return env{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

func (e env) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := Execute(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := e.run(t, args...)
	require.Equal(t, exitSuccess, code, "dwitlit %s: %s", strings.Join(args, " "), errOut)
	return out
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"version"}, &stdout, &stderr)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout.String(), "dwitlit v")
	assert.Contains(t, stdout.String(), modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "init")
	assert.Contains(t, out, "dwitlit initialized")

	data, err := os.ReadFile(filepath.Join(e.configDir, paths.ConfigFileName))
	require.NoError(t, err)
	var cfg fileConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, defaultFileConfig(), cfg)

	_, err = os.Stat(filepath.Join(e.dataDir, sqlite.DatabaseFile))
	assert.NoError(t, err)

	// Idempotent, and an existing config.yaml is left alone.
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, paths.ConfigFileName), []byte("backend: sqlite\n"), 0o644))
	e.mustRun(t, "init")
	data, err = os.ReadFile(filepath.Join(e.configDir, paths.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "backend: sqlite\n", string(data))
}

func TestRecordLifecycle(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, "0\n", e.mustRun(t, "create", "person", "--payload", "alice", "--confirmed", "true"))
	assert.Equal(t, "1\n", e.mustRun(t, "create", "person", "--payload", "bob"))
	assert.Equal(t, "0\n", e.mustRun(t, "create", "person", "--payload", "alice"), "identical record is reused")
	assert.Equal(t, "2\n", e.mustRun(t, "create", "knows", "--link", "person=0", "--link", "person=1", "--link", "friend"))

	out := e.mustRun(t, "get", "2")
	assert.Contains(t, out, "label:     knows")
	assert.Contains(t, out, "links:     person=0 person=1 friend")
	assert.Contains(t, out, "confirmed: false")

	assert.Equal(t, "0\n1\n2\n", e.mustRun(t, "list"))
	assert.Equal(t, "0\n1\n", e.mustRun(t, "list", "--label", "person"))
	assert.Equal(t, "0 person=0\n1 person=1\n2 friend\n", e.mustRun(t, "links", "2"))
	assert.Equal(t, "2 0\n", e.mustRun(t, "backlinks", "--id", "0"))
	assert.Equal(t, "2 2\n", e.mustRun(t, "backlinks", "--label", "friend"))

	e.mustRun(t, "confirm", "2", "true")
	assert.Contains(t, e.mustRun(t, "get", "2"), "confirmed: true")

	_, errOut, code := e.run(t, "remove", "0")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, types.ErrHasBacklinks.Error())

	e.mustRun(t, "remove", "2")
	e.mustRun(t, "remove", "0")
	assert.Equal(t, "1\n", e.mustRun(t, "list"))
	assert.Equal(t, "3\n", e.mustRun(t, "create", "person", "--payload", "alice"), "IDs are never reused")
}

func TestJSONOutput(t *testing.T) {
	e := newEnv(t)

	var created map[string]types.RecordID
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "create", "a", "--payload", "x")), &created))
	assert.Equal(t, types.RecordID(0), created["id"])
	e.mustRun(t, "create", "b", "--link", "a=0")

	var rec jsonl.Line
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "get", "1")), &rec))
	assert.Equal(t, "b", rec.Label)
	assert.Equal(t, []types.Link{types.SpecificLink("a", 0)}, rec.Links)

	var ids []types.RecordID
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "list")), &ids))
	assert.Equal(t, []types.RecordID{0, 1}, ids)

	var backs []types.Backlink
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "backlinks", "--id", "0")), &backs))
	assert.Equal(t, []types.Backlink{{Source: 1, Position: 0}}, backs)
}

func TestExportImport(t *testing.T) {
	src := newEnv(t)
	src.mustRun(t, "create", "a", "--payload", "one")
	src.mustRun(t, "create", "b", "--link", "a=0", "--confirmed", "true")

	stdout := src.mustRun(t, "export")
	assert.Equal(t, 2, strings.Count(stdout, "\n"))

	file := filepath.Join(t.TempDir(), "dump.jsonl")
	assert.Contains(t, src.mustRun(t, "export", file), "exported 2 records")

	dst := newEnv(t)
	dst.mustRun(t, "create", "existing")
	assert.Contains(t, dst.mustRun(t, "import", file), "imported 2 records")
	assert.Equal(t, "0 a=1\n", dst.mustRun(t, "links", "2"))
	assert.Contains(t, dst.mustRun(t, "get", "2"), "confirmed: true")
}

func TestExitCodes(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "create", "a")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown command", []string{"frobnicate"}, exitUserError},
		{"missing argument", []string{"get"}, exitUserError},
		{"unknown flag", []string{"list", "--nope"}, exitUserError},
		{"bad id", []string{"get", "abc"}, exitUserError},
		{"missing record", []string{"get", "42"}, exitUserError},
		{"invalid label", []string{"create", "not valid"}, exitUserError},
		{"missing target", []string{"create", "b", "--link", "a=9"}, exitUserError},
		{"bad confirmed", []string{"create", "b", "--confirmed", "maybe"}, exitUserError},
		{"backlinks needs a flag", []string{"backlinks"}, exitUserError},
		{"backlinks flags exclusive", []string{"backlinks", "--id", "0", "--label", "a"}, exitUserError},
		{"unknown backend", []string{"--backend", "badger", "list"}, exitUserError},
		{"missing import file", []string{"import", filepath.Join(t.TempDir(), "none.jsonl")}, exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := e.run(t, tt.args...)
			assert.Equal(t, tt.want, code, errOut)
			assert.Contains(t, errOut, "error:")
		})
	}
}

func TestBacklinks_FlagGroupErrorsAreUserErrors(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run(t, "backlinks")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "[label id]")

	_, errOut, code = e.run(t, "backlinks", "--label", "a", "--id", "0")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "none of the others can be")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitSuccess},
		{fmt.Errorf("get: %w", types.ErrNotFound), exitUserError},
		{fmt.Errorf("x: %w", types.ErrCycle), exitUserError},
		{usageError("bad"), exitUserError},
		{fmt.Errorf("import: %w", jsonl.ErrMalformedLine), exitUserError},
		{errors.New("disk on fire"), exitSysError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestBackendFromConfigFile(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, paths.ConfigFileName), []byte("backend: memory\n"), 0o644))

	_, errOut, code := e.run(t, "create", "a")
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, errOut, "memory backend does not persist")
	assert.Equal(t, "", e.mustRun(t, "list"))

	// The flag wins over config.yaml.
	e.mustRun(t, "--backend", "sqlite", "create", "a")
	assert.Equal(t, "0\n", e.mustRun(t, "--backend", "sqlite", "list"))
}

func TestDataDirFromConfigFile(t *testing.T) {
	t.Setenv(paths.EnvDataDir, "")
	configDir := t.TempDir()
	dataDir := filepath.Join(t.TempDir(), "from-config")
	require.NoError(t, os.WriteFile(filepath.Join(configDir, paths.ConfigFileName),
		[]byte("backend: sqlite\ndata_dir: "+dataDir+"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--config-dir", configDir, "init"}, &stdout, &stderr)
	require.Equal(t, exitSuccess, code, stderr.String())

	_, err := os.Stat(filepath.Join(dataDir, sqlite.DatabaseFile))
	assert.NoError(t, err)
}
