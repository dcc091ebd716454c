package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestRun_MatchesGolden(t *testing.T) {
	out, err := execute(t, "run", "../scenario/testdata/basic.yaml")
	require.NoError(t, err)

	expected, err := os.ReadFile("../scenario/testdata/golden/basic.golden")
	require.NoError(t, err)

	require.Equal(t, string(expected), out)
}

func TestRun_CpuProfile(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "run", "--profile", "cpu", "--profile-dir", dir, "../scenario/testdata/basic.yaml")
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(dir, "cpu.pprof"))
}

func TestRun_InvalidProfile(t *testing.T) {
	_, err := execute(t, "run", "--profile", "disk", "../scenario/testdata/basic.yaml")
	require.ErrorContains(t, err, "invalid profile")
}

func TestRun_MissingFile(t *testing.T) {
	_, err := execute(t, "run", "does-not-exist.yaml")
	require.Error(t, err)
}

func TestRun_RequiresScenario(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "../scenario/testdata/basic.yaml")
	require.NoError(t, err)
	require.Equal(t, "scenario valid: 2 components, 2 entities, 2 peers, 13 steps\n", out)
}

func TestValidate_InvalidScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("components: [{name: a, kind: 1}]\n"), 0o644))

	_, err := execute(t, "validate", path)
	require.ErrorContains(t, err, "invalid scenario")
}
