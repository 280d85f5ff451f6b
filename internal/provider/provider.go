package provider

import "context"

// Provider defines the interface for merge-request provider operations.
// A Provider is scoped to a single merge request, resolved from its web URL.
type Provider interface {
	// Name returns the provider name (gitlab).
	Name() string

	// MergeRequest returns the merge request this provider is scoped to.
	MergeRequest() *MergeRequest

	// FileContent returns the text of a file at the given ref. Absence and
	// fetch failures both read as the empty string.
	FileContent(ctx context.Context, path, ref string) string

	// CreateOrUpdateFile writes a file on a branch, creating it if missing.
	CreateOrUpdateFile(ctx context.Context, path, branch, contents, message string) error

	// SubmoduleMap maps submodule paths to remote URLs, parsed from
	// .gitmodules on the merge request's target branch.
	SubmoduleMap(ctx context.Context) map[string]string

	// CompareSubmodule diffs a submodule's remote project between two
	// revisions. Results are cached per (path, oldRev, newRev).
	CompareSubmodule(ctx context.Context, pathWithNamespace, oldRev, newRev string) ([]Diff, error)

	// ChangedFiles returns files changed in the merge request, with
	// submodule pointer updates expanded to the remote project's diffs.
	ChangedFiles(ctx context.Context) ([]ChangedFile, error)

	// PostComment posts a comment on the merge request.
	PostComment(ctx context.Context, body string) error

	// Comments fetches comments on the merge request.
	Comments(ctx context.Context) ([]Comment, error)
}
