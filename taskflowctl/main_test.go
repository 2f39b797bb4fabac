package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	asJSON, configPath = false, ""
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const diamond = `
- {id: a, type: build, status: success, dependencies: []}
- {id: b, type: test, status: running, dependencies: [a]}
- {id: c, type: test, status: pending, dependencies: [a]}
- {id: d, type: deploy, status: pending, dependencies: [b, c]}
`

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "-f", writeFile(t, "ok.yaml", diamond))
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 4 tasks")

	cyclic := `[{"id":"a","type":"build","status":"pending","dependencies":["b"]},{"id":"b","type":"build","status":"pending","dependencies":["a"]}]`
	_, err = run(t, "validate", "-f", writeFile(t, "cyclic.json", cyclic))
	assert.ErrorContains(t, err, "cycle")
}

func TestLevels(t *testing.T) {
	out, err := run(t, "levels", "-f", writeFile(t, "wf.yaml", diamond))
	require.NoError(t, err)
	assert.Contains(t, out, "0: [a]")
	assert.Contains(t, out, "1: [b c]")
	assert.Contains(t, out, "2: [d]")
}

func TestLayout(t *testing.T) {
	out, err := run(t, "layout", "-f", writeFile(t, "wf.yaml", diamond))
	require.NoError(t, err)
	assert.Contains(t, out, "mode: dag")
	assert.Contains(t, out, "x=640 y=150")
	assert.Contains(t, out, "ea-b")

	chain := "- {id: a, type: build, status: pending}\n- {id: b, type: deploy, status: pending}\n"
	out, err = run(t, "layout", "-f", writeFile(t, "chain.yaml", chain))
	require.NoError(t, err)
	assert.Contains(t, out, "mode: chain")
	assert.Contains(t, out, "x=250 y=150")
}
