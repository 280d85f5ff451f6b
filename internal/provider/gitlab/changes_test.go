package gitlab

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestChangedFiles(t *testing.T) {
	gitlinkDiff := "@@ -1 +1 @@\n" +
		"-Subproject commit 1111111111111111111111111111111111111111\n" +
		"+Subproject commit 2222222222222222222222222222222222222222\n"

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.EscapedPath() == diffsPath:
			writeJSON(t, w, []interface{}{
				map[string]interface{}{
					"old_path": "main.go",
					"new_path": "main.go",
					"diff":     "@@ -10,2 +10,3 @@",
				},
				map[string]interface{}{
					"old_path": "libs/a",
					"new_path": "libs/a",
					"diff":     gitlinkDiff,
				},
				map[string]interface{}{
					"old_path": "README.md",
					"new_path": "README.md",
					"new_file": true,
					"diff":     "@@ -0,0 +1 @@",
				},
			})
		case strings.HasPrefix(r.URL.EscapedPath(), filesPath):
			writeJSON(t, w, fileJSON(".gitmodules", "main",
				"[submodule \"libs/a\"]\n    path = libs/a\n    url = https://gitlab.example.com/deps/a.git\n"))
		case r.URL.EscapedPath() == "/api/v4/projects/deps%2Fa":
			writeJSON(t, w, map[string]interface{}{"id": 12, "path_with_namespace": "deps/a"})
		case r.URL.EscapedPath() == "/api/v4/projects/12/repository/compare":
			if from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to"); !strings.HasPrefix(from, "1111") || !strings.HasPrefix(to, "2222") {
				t.Errorf("compare from %q to %q", from, to)
			}
			writeJSON(t, w, map[string]interface{}{
				"diffs": []interface{}{
					map[string]interface{}{"old_path": "lib.go", "new_path": "lib.go", "diff": "@@ -3 +3 @@"},
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.EscapedPath())
			writeNotFound(w)
		}
	})

	files, err := p.ChangedFiles(context.Background())
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("ChangedFiles() returned %d files, want 3", len(files))
	}

	if files[0].Path != "main.go" || files[0].Status != "modified" {
		t.Errorf("files[0] = %+v, want modified main.go", files[0])
	}
	if files[0].SubmoduleDiffs != nil {
		t.Errorf("files[0].SubmoduleDiffs = %+v, want none", files[0].SubmoduleDiffs)
	}

	if files[1].Path != "libs/a" {
		t.Errorf("files[1].Path = %q, want %q", files[1].Path, "libs/a")
	}
	if len(files[1].SubmoduleDiffs) != 1 || files[1].SubmoduleDiffs[0].NewPath != "lib.go" {
		t.Errorf("files[1].SubmoduleDiffs = %+v, want lib.go diff", files[1].SubmoduleDiffs)
	}

	if files[2].Status != "added" {
		t.Errorf("files[2].Status = %q, want %q", files[2].Status, "added")
	}
}

func TestChangedFiles_UnmappedSubmodule(t *testing.T) {
	gitlinkDiff := "@@ -1 +1 @@\n" +
		"-Subproject commit 1111111\n" +
		"+Subproject commit 2222222\n"

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.EscapedPath() == diffsPath:
			writeJSON(t, w, []interface{}{
				map[string]interface{}{"old_path": "vendor/x", "new_path": "vendor/x", "diff": gitlinkDiff},
			})
		case strings.HasPrefix(r.URL.EscapedPath(), filesPath):
			// No .gitmodules on the target branch.
			writeNotFound(w)
		default:
			t.Errorf("unexpected path: %s", r.URL.EscapedPath())
			writeNotFound(w)
		}
	})

	files, err := p.ChangedFiles(context.Background())
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("ChangedFiles() returned %d files, want 1", len(files))
	}
	if files[0].SubmoduleDiffs != nil {
		t.Errorf("SubmoduleDiffs = %+v, want none for unmapped submodule", files[0].SubmoduleDiffs)
	}
}

func TestSubprojectUpdate(t *testing.T) {
	tests := []struct {
		name   string
		diff   string
		oldRev string
		newRev string
		want   bool
	}{
		{
			name:   "pointer update",
			diff:   "@@ -1 +1 @@\n-Subproject commit abc1234\n+Subproject commit def5678\n",
			oldRev: "abc1234",
			newRev: "def5678",
			want:   true,
		},
		{
			name: "submodule added",
			diff: "@@ -0,0 +1 @@\n+Subproject commit def5678\n",
			want: false,
		},
		{
			name: "submodule removed",
			diff: "@@ -1 +0,0 @@\n-Subproject commit abc1234\n",
			want: false,
		},
		{
			name: "regular file diff",
			diff: "@@ -1,3 +1,4 @@\n context\n-old line\n+new line\n",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldRev, newRev, ok := subprojectUpdate(tt.diff)
			if ok != tt.want {
				t.Fatalf("subprojectUpdate() ok = %v, want %v", ok, tt.want)
			}
			if ok && (oldRev != tt.oldRev || newRev != tt.newRev) {
				t.Errorf("subprojectUpdate() = %q, %q, want %q, %q", oldRev, newRev, tt.oldRev, tt.newRev)
			}
		})
	}
}

func TestProjectPathFromURL(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"https://gitlab.com/group/repo.git", "group/repo"},
		{"https://gitlab.example.com/group/sub/repo.git", "group/sub/repo"},
		{"https://gitlab.com/group/repo", "group/repo"},
		{"git@gitlab.com:group/repo.git", "group/repo"},
		{"ssh://git@gitlab.com/group/repo.git", "group/repo"},
		{"group/repo", "group/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			if got := projectPathFromURL(tt.remote); got != tt.want {
				t.Errorf("projectPathFromURL(%q) = %q, want %q", tt.remote, got, tt.want)
			}
		})
	}
}
