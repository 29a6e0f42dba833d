package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Links []struct {
		Label  string `json:"label"`
		Target *int64 `json:"target"`
	} `json:"links"`
	Payload   []byte `json:"payload"`
	Confirmed bool   `json:"confirmed"`
}

func TestCLI_GraphAcrossInvocations(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("init")

	_, err := os.Stat(filepath.Join(env.DataDir, "dwitlit.db"))
	require.NoError(t, err, "data_dir from config.yaml is used")

	n1 := ParseJSON[map[string]int64](t, env.MustRun("--json", "create", "n1", "--payload", "one", "--confirmed", "true").Stdout)["id"]
	n2 := ParseJSON[map[string]int64](t, env.MustRun("--json", "create", "n2", "--link", "n1=0", "--payload", "two").Stdout)["id"]
	assert.Equal(t, int64(0), n1)
	assert.Equal(t, int64(1), n2)

	rec := ParseJSON[record](t, env.MustRun("--json", "get", "1").Stdout)
	assert.Equal(t, "n2", rec.Label)
	require.Len(t, rec.Links, 1)
	require.NotNil(t, rec.Links[0].Target)
	assert.Equal(t, n1, *rec.Links[0].Target)
	assert.Equal(t, []byte("two"), rec.Payload)

	backs := ParseJSON[[]map[string]int64](t, env.MustRun("--json", "backlinks", "--id", "0").Stdout)
	assert.Equal(t, []map[string]int64{{"source": 1, "position": 0}}, backs)

	res := env.Run("remove", "0")
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "record is the target of specific links")

	env.MustRun("remove", "1")
	env.MustRun("remove", "0")
	assert.Empty(t, strings.TrimSpace(env.MustRun("list").Stdout))
}

func TestCLI_ExportImportRoundTrip(t *testing.T) {
	src := NewTestEnv(t)
	src.MustRun("create", "a", "--payload", "x")
	src.MustRun("create", "b", "--link", "a=0", "--link", "general")
	file := filepath.Join(t.TempDir(), "dump.jsonl")
	src.MustRun("export", file)

	dst := NewTestEnv(t)
	dst.MustRun("import", file)
	assert.Equal(t, src.MustRun("export").Stdout, dst.MustRun("export").Stdout)
}

func TestCLI_ExitCodes(t *testing.T) {
	env := NewTestEnv(t)

	assert.Equal(t, 0, env.Run("version").ExitCode)
	assert.Equal(t, 1, env.Run("get", "7").ExitCode)
	assert.Equal(t, 1, env.Run("no-such-command").ExitCode)
	assert.Equal(t, 2, env.Run("import", filepath.Join(t.TempDir(), "missing.jsonl")).ExitCode)
}
