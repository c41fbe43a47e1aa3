package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWebRoot(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, "login.html"), []byte("<html>login page</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "404.html"), []byte("<html>not found page</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "hall.html"), []byte("<html>hall page</html>"), 0o644))
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStaticServesDefaultIndex(t *testing.T) {
	e := newTestEnv(t)
	writeWebRoot(t, e.srv.WebRoot)

	status, body := getBody(t, e.ts.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "login page")
}

func TestStaticServesNamedPage(t *testing.T) {
	e := newTestEnv(t)
	writeWebRoot(t, e.srv.WebRoot)

	status, body := getBody(t, e.ts.URL+"/hall.html")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "hall page")
}

func TestStaticFallsBackTo404Page(t *testing.T) {
	e := newTestEnv(t)
	writeWebRoot(t, e.srv.WebRoot)

	status, body := getBody(t, e.ts.URL+"/no-such-page.html")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "not found page")
}

func TestStaticMissing404PageStillRepliesNotFound(t *testing.T) {
	e := newTestEnv(t)
	// empty web root: no pages at all

	status, _ := getBody(t, e.ts.URL+"/no-such-page.html")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStaticDoesNotEscapeWebRoot(t *testing.T) {
	e := newTestEnv(t)
	writeWebRoot(t, e.srv.WebRoot)

	// plant a file one level above the web root
	outside := filepath.Join(e.srv.WebRoot, "..", "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	status, body := getBody(t, e.ts.URL+"/../secret.txt")
	assert.NotEqual(t, http.StatusOK, status)
	assert.NotContains(t, body, "secret")
}
