package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wenv/internal/model"
	"wenv/internal/repair"
	"wenv/internal/store"
)

func newTestServer(t *testing.T, dryRun bool) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(map[string]string{
		"Path":   `C:\a;C:\gone`,
		"EDITOR": "vim",
	})
	exists := func(p string) bool { return p == `C:\a` }
	svc := repair.NewService(mem, exists, repair.Options{Delimiter: ";"})
	srv := httptest.NewServer(NewServer(mem, svc, "Path", dryRun).Handler())
	t.Cleanup(srv.Close)
	return srv, mem
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestVars(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var vars []model.Variable
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/vars", &vars))
	require.Len(t, vars, 2)
	assert.Equal(t, "EDITOR", vars[0].Name)

	var v model.Variable
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/var?name=EDITOR", &v))
	assert.Equal(t, "vim", v.Value)

	var e map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/var?name=NOPE", &e))
	assert.Equal(t, "KEY_NOT_FOUND", e["code"])
}

func TestPath(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var report map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/path", &report))
	assert.Equal(t, "report", report["Mode"])
	assert.Equal(t, float64(1), report["InvalidCount"])

	report = nil
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/path?name=Path&mode=filter", &report))
	assert.Equal(t, `C:\a`, report["Filtered"])

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/path?mode=bogus", nil))
}

func TestFix(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		srv, mem := newTestServer(t, true)
		resp, err := http.Post(srv.URL+"/api/path/fix", "", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		v, _ := mem.Get("Path")
		assert.Equal(t, `C:\a;C:\gone`, v)
	})

	t.Run("write", func(t *testing.T) {
		srv, mem := newTestServer(t, false)
		resp, err := http.Post(srv.URL+"/api/path/fix?name=Path", "", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		var res struct{ Committed bool }
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.True(t, res.Committed)

		v, _ := mem.Get("Path")
		assert.Equal(t, `C:\a`, v)
	})

	t.Run("permission denied", func(t *testing.T) {
		srv, mem := newTestServer(t, false)
		mem.DenyWrites = true
		resp, err := http.Post(srv.URL+"/api/path/fix", "", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var body struct {
			Code   string
			Result *repair.Result
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "PERMISSION_DENIED", body.Code)
		require.NotNil(t, body.Result)
		assert.False(t, body.Result.Committed)
		assert.Equal(t, `C:\a`, body.Result.Report.Filtered)
		assert.Equal(t, 1, body.Result.Report.InvalidCount)
	})
}

func TestFixRejectsForeignRequests(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		origin string
		want   int
	}{
		{"cross-origin form post", "", "https://evil.example", http.StatusForbidden},
		{"null origin", "", "null", http.StatusForbidden},
		{"rebound host name", "evil.example:8080", "", http.StatusForbidden},
		{"same origin", "", "same", http.StatusOK},
		{"no origin", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, mem := newTestServer(t, false)

			req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/path/fix", strings.NewReader("x=1"))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "text/plain")
			if tt.host != "" {
				req.Host = tt.host
			}
			switch tt.origin {
			case "same":
				req.Header.Set("Origin", srv.URL)
			case "":
			default:
				req.Header.Set("Origin", tt.origin)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)

			v, _ := mem.Get("Path")
			if tt.want == http.StatusForbidden {
				assert.Equal(t, `C:\a;C:\gone`, v)
			} else {
				assert.Equal(t, `C:\a`, v)
			}
		})
	}
}

func TestLoopbackHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost:8080", true},
		{"LOCALHOST", true},
		{"127.0.0.1:9000", true},
		{"[::1]:8080", true},
		{"::1", true},
		{"192.168.1.4:8080", false},
		{"evil.example", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLoopbackHost(tt.host), tt.host)
	}
}

func newBrowseServer(t *testing.T) *httptest.Server {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/opt/tools/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/opt/tools/gitk", []byte("x"), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/git", []byte("xx"), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/gitk", []byte("x"), 0o755))

	mem := store.NewMemory(map[string]string{
		"PATH": "/opt/tools:/gone:/usr/bin:/opt/tools",
	})
	exists := func(p string) bool {
		_, err := fs.Stat(p)
		return err == nil
	}
	svc := repair.NewService(mem, exists, repair.Options{Delimiter: ":"})
	srv := httptest.NewServer(NewServer(mem, svc, "PATH", true).WithFS(fs).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestLs(t *testing.T) {
	srv := newBrowseServer(t)

	var entries []LsEntry
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ls?path=/opt/tools", &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "gitk", entries[0].Name)
	assert.False(t, entries[0].IsDir)
	assert.Equal(t, "sub", entries[1].Name)
	assert.True(t, entries[1].IsDir)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/ls?path=/gone", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/ls", nil))
}

func TestWhich(t *testing.T) {
	srv := newBrowseServer(t)

	var matches []WhichMatch
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/which?query=git", &matches))
	require.Len(t, matches, 2)
	assert.Equal(t, WhichMatch{Index: 0, Entry: "/opt/tools", MatchedFile: "gitk"}, matches[0])
	assert.Equal(t, WhichMatch{Index: 2, Entry: "/usr/bin", MatchedFile: "git"}, matches[1])

	matches = nil
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/which?name=PATH&query=nothing", &matches))
	assert.Empty(t, matches)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/which", nil))
}

func TestHelp(t *testing.T) {
	srv, _ := newTestServer(t, true)
	resp, err := http.Get(srv.URL + "/api/help")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/markdown", resp.Header.Get("Content-Type"))
}
