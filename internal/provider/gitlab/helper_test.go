package gitlab

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	testMRURL  = "https://gitlab.example.com/group/repo/-/merge_requests/1"
	mrPath     = "/api/v4/projects/group%2Frepo/merge_requests/1"
	filesPath  = "/api/v4/projects/group%2Frepo/repository/files/"
	diffsPath  = "/api/v4/projects/group%2Frepo/merge_requests/1/diffs"
	notesPath  = "/api/v4/projects/group%2Frepo/merge_requests/1/notes"
	testMRJSON = `{
		"id": 999,
		"iid": 1,
		"title": "Update dependencies",
		"state": "opened",
		"source_branch": "feature",
		"target_branch": "main",
		"author": {"username": "reviewer"},
		"web_url": "https://gitlab.example.com/group/repo/-/merge_requests/1"
	}`
)

// newTestProvider starts a fake GitLab API that serves the merge request
// fetched at construction and delegates everything else to handler.
func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.EscapedPath() == mrPath {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(testMRJSON))
			return
		}
		if handler == nil {
			writeNotFound(w)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	p, err := New("test-token", testMRURL, WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func writeNotFound(w http.ResponseWriter) {
	http.Error(w, `{"message":"404 Not Found"}`, http.StatusNotFound)
}

func writeForbidden(w http.ResponseWriter) {
	http.Error(w, `{"message":"403 Forbidden"}`, http.StatusForbidden)
}

// fileJSON builds the repository-file payload the API returns, with content
// carried in its base64 transport encoding.
func fileJSON(path, ref, content string) map[string]interface{} {
	return map[string]interface{}{
		"file_path": path,
		"ref":       ref,
		"encoding":  "base64",
		"content":   base64.StdEncoding.EncodeToString([]byte(content)),
	}
}
