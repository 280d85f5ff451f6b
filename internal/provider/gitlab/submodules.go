package gitlab

import (
	"context"
	"fmt"
	"strings"

	"github.com/augurbot/augur/internal/provider"
	"github.com/xanzy/go-gitlab"
)

// SubmoduleMap maps submodule paths to remote URLs, parsed from .gitmodules
// on the merge request's target branch. A missing or unreadable file yields
// an empty map.
func (p *Provider) SubmoduleMap(ctx context.Context) map[string]string {
	return parseGitmodules(p.FileContent(ctx, ".gitmodules", p.mr.TargetBranch))
}

// parseGitmodules parses .gitmodules-formatted text into a path -> url map.
// Each [submodule "name"] header starts a new pair; the pair is committed at
// the next header or end of input once both a path and a url line have been
// seen. Malformed lines are skipped, unmatched pairs dropped.
func parseGitmodules(content string) map[string]string {
	modules := make(map[string]string)

	var path, remote string
	commit := func() {
		if path != "" && remote != "" {
			modules[path] = remote
		}
		path, remote = "", ""
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "[submodule"):
			commit()
		case strings.HasPrefix(line, "path"):
			if value, ok := assignmentValue(line, "path"); ok {
				path = value
			}
		case strings.HasPrefix(line, "url"):
			if value, ok := assignmentValue(line, "url"); ok {
				remote = value
			}
		}
	}
	commit()

	return modules
}

// assignmentValue extracts the value of a "key = value" line, stripping
// surrounding whitespace and a single pair of double quotes if present.
func assignmentValue(line, key string) (string, bool) {
	k, v, ok := strings.Cut(line, "=")
	if !ok || strings.TrimSpace(k) != key {
		return "", false
	}
	v = strings.TrimSpace(v)
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	return v, true
}

// projectByPath resolves a project by its full namespaced path. A direct get
// is attempted exactly once; on not-found, a search is attempted exactly
// once and scanned for an exact path match. No match is a normal nil result.
// Other direct-lookup failures propagate rather than masking real errors.
func (p *Provider) projectByPath(ctx context.Context, pathWithNamespace string) (*gitlab.Project, error) {
	project, _, err := p.client.Projects.GetProject(pathWithNamespace, nil, gitlab.WithContext(ctx))
	if err == nil {
		return project, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("looking up project %s: %w", pathWithNamespace, err)
	}

	// Search matches substrings, so candidates need an exact-path check.
	name := pathWithNamespace[strings.LastIndex(pathWithNamespace, "/")+1:]
	candidates, _, err := p.client.Projects.ListProjects(&gitlab.ListProjectsOptions{
		Search: gitlab.Ptr(name),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("searching for project %s: %w", pathWithNamespace, err)
	}

	for _, candidate := range candidates {
		if candidate.PathWithNamespace == pathWithNamespace {
			return candidate, nil
		}
	}
	return nil, nil
}

// CompareSubmodule diffs a submodule's remote project between two revisions.
// An unresolvable project yields an empty result. For a fixed key the
// resolver and the compare call each run at most once per cache lifetime.
func (p *Provider) CompareSubmodule(ctx context.Context, pathWithNamespace, oldRev, newRev string) ([]provider.Diff, error) {
	key := CompareKey{Path: pathWithNamespace, From: oldRev, To: newRev}
	if diffs, ok := p.compares.Get(key); ok {
		return diffs, nil
	}

	project, err := p.projectByPath(ctx, pathWithNamespace)
	if err != nil {
		return nil, err
	}
	if project == nil {
		p.compares.Put(key, []provider.Diff{})
		return []provider.Diff{}, nil
	}

	compare, _, err := p.client.Repositories.Compare(project.ID, &gitlab.CompareOptions{
		From: gitlab.Ptr(oldRev),
		To:   gitlab.Ptr(newRev),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("comparing %s %s..%s: %w", pathWithNamespace, oldRev, newRev, err)
	}

	diffs := make([]provider.Diff, len(compare.Diffs))
	for i, d := range compare.Diffs {
		diffs[i] = provider.Diff{
			OldPath:     d.OldPath,
			NewPath:     d.NewPath,
			Diff:        d.Diff,
			NewFile:     d.NewFile,
			DeletedFile: d.DeletedFile,
			RenamedFile: d.RenamedFile,
		}
	}
	p.compares.Put(key, diffs)

	return diffs, nil
}
