package provider

import "time"

// MergeRequest represents a merge request under review.
type MergeRequest struct {
	ID           int
	Number       int // MR IID
	Title        string
	Description  string
	SourceBranch string
	TargetBranch string
	State        string // opened, closed, merged
	Author       string
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment represents a comment on a merge request.
type Comment struct {
	ID        int
	Body      string
	Author    string
	CreatedAt time.Time
}

// Diff is a single diff hunk record from a repository compare.
type Diff struct {
	OldPath     string
	NewPath     string
	Diff        string
	NewFile     bool
	DeletedFile bool
	RenamedFile bool
}

// ChangedFile represents a file changed in a merge request.
type ChangedFile struct {
	Path    string
	OldPath string
	Status  string // added, modified, deleted, renamed
	Diff    string

	// SubmoduleDiffs holds the remote project's diffs when this change is a
	// submodule pointer update resolved through .gitmodules.
	SubmoduleDiffs []Diff
}
