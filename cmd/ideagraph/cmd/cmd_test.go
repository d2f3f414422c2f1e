package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_JSON(t *testing.T) {
	path := writeFile(t, "ideas.txt", "A\n  B\nC\n")

	out, err := run(t, "", "parse", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Document","children":[{"name":"A","children":[{"name":"B"}]},{"name":"C"}]}`, out)
}

func TestParse_StdinOutline(t *testing.T) {
	out, err := run(t, "# Plan\n## Build\n## Ship\n", "parse", "-", "--name", "plan.md", "--format", "outline")
	require.NoError(t, err)
	assert.Equal(t, "Plan\n  Build\n  Ship\n", out)
}

func TestParse_TabWidth(t *testing.T) {
	path := writeFile(t, "tabs.txt", "A\n\tB\n  C\n")

	// A tab is one column by default, so two spaces nest deeper.
	out, err := run(t, "", "parse", path, "--format", "outline")
	require.NoError(t, err)
	assert.Equal(t, "A\n  B\n    C\n", out)

	out, err = run(t, "", "parse", path, "--format", "outline", "--tab-width", "4")
	require.NoError(t, err)
	assert.Equal(t, "A\n  B\n  C\n", out)
}

func TestParse_Errors(t *testing.T) {
	_, err := run(t, "", "parse", writeFile(t, "x.png", "data"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = run(t, "", "parse", writeFile(t, "x.txt", "A"), "--format", "svg")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "", "parse", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = run(t, "", "parse")
	assert.Error(t, err)
}

func TestRevisions_Summary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/doc1/revisions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"revisions":[{"id":"1","modifiedTime":"2024-01-01T00:00:00.000Z"}]}`))
	}))
	t.Cleanup(srv.Close)

	out, err := run(t, "", "revisions", "doc1", "--token", "tok", "--endpoint", srv.URL+"/", "--summary")
	require.NoError(t, err)
	assert.Equal(t, "1\t2024-01-01T00:00:00.000Z\t32 chars\n", out)
}

func TestRevisions_MissingToken(t *testing.T) {
	t.Setenv("DRIVE_ACCESS_TOKEN", "")
	_, err := run(t, "", "revisions", "doc1")
	assert.ErrorContains(t, err, "missing access token")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ideagraph v"+Version)
}
