package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestNormalizeCommand(t *testing.T) {
	out := execute(t, "", "normalize", "CEMENTO", "Portland")
	assert.Equal(t, strings.ToLower(strings.TrimSpace(out)), strings.TrimSpace(out))
	assert.Contains(t, out, "cemento")
}

func TestSegmentCommandReadsStdin(t *testing.T) {
	out := execute(t, "2 cemento\n3 arena\n", "segment")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "qty=2")
	assert.Contains(t, lines[2], "qty=3")
}

func TestMatchCommandPrintsDecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	catalogJSON := `[{"id":"1","title":"Cal Hidratada 25kg","variants":[{"id":"v1","title":"Default Title","priceCents":500000}]}]`
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o600))

	out := execute(t, "", "match", "--catalog", path, "--explain=false", "ladrillo hueco del 18")
	assert.Contains(t, out, "not found")
}

func TestHashPasswordCommand(t *testing.T) {
	out := execute(t, "hunter22\n", "hash-password")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "$2"), out)
}
