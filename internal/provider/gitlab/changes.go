package gitlab

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/augurbot/augur/internal/provider"
	"github.com/xanzy/go-gitlab"
)

// subprojectPattern matches the gitlink lines of a submodule pointer update.
var subprojectPattern = regexp.MustCompile(`(?m)^([-+])Subproject commit ([0-9a-f]{7,40})`)

// ChangedFiles returns the files changed in the merge request. Changes that
// are submodule pointer updates are expanded with the remote project's own
// diffs, resolved through .gitmodules; expansion is best effort and a change
// whose remote cannot be resolved is returned unexpanded.
func (p *Provider) ChangedFiles(ctx context.Context) ([]provider.ChangedFile, error) {
	diffs, _, err := p.client.MergeRequests.ListMergeRequestDiffs(p.project, p.mrIID, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing merge request diffs: %w", err)
	}

	// .gitmodules is only fetched once a gitlink actually shows up.
	var modules map[string]string

	files := make([]provider.ChangedFile, 0, len(diffs))
	for _, d := range diffs {
		file := provider.ChangedFile{
			Path:    d.NewPath,
			OldPath: d.OldPath,
			Status:  changeStatus(d),
			Diff:    d.Diff,
		}

		if oldRev, newRev, ok := subprojectUpdate(d.Diff); ok {
			if modules == nil {
				modules = p.SubmoduleMap(ctx)
			}
			if remote, found := modules[d.NewPath]; found {
				expanded, err := p.CompareSubmodule(ctx, projectPathFromURL(remote), oldRev, newRev)
				if err == nil {
					file.SubmoduleDiffs = expanded
				}
			}
		}

		files = append(files, file)
	}
	return files, nil
}

func changeStatus(d *gitlab.MergeRequestDiff) string {
	switch {
	case d.NewFile:
		return "added"
	case d.DeletedFile:
		return "deleted"
	case d.RenamedFile:
		return "renamed"
	default:
		return "modified"
	}
}

// subprojectUpdate extracts the old and new revisions from a gitlink diff
// hunk. Both sides must be present; additions or removals of a whole
// submodule have nothing to compare against.
func subprojectUpdate(diff string) (oldRev, newRev string, ok bool) {
	for _, match := range subprojectPattern.FindAllStringSubmatch(diff, -1) {
		switch match[1] {
		case "-":
			oldRev = match[2]
		case "+":
			newRev = match[2]
		}
	}
	return oldRev, newRev, oldRev != "" && newRev != ""
}

// projectPathFromURL derives a project's path with namespace from its remote
// URL, covering both HTTP(S) and SSH remotes.
func projectPathFromURL(remote string) string {
	path := remote
	switch {
	case strings.Contains(path, "://"):
		// https://gitlab.example.com/group/repo.git
		_, after, _ := strings.Cut(path, "://")
		_, path, _ = strings.Cut(after, "/")
	case strings.Contains(path, ":"):
		// git@gitlab.example.com:group/repo.git
		_, path, _ = strings.Cut(path, ":")
	}
	path = strings.Trim(path, "/")
	return strings.TrimSuffix(path, ".git")
}
