package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/augurbot/augur/internal/provider"
	"github.com/xanzy/go-gitlab"
)

// Provider implements provider.Provider for GitLab, scoped to a single
// merge request resolved from its web URL.
type Provider struct {
	client   *gitlab.Client
	token    string
	project  string // path with namespace of the MR's project
	mrIID    int
	mr       *provider.MergeRequest
	compares *CompareCache
}

var _ provider.Provider = (*Provider)(nil)

// Option configures the GitLab provider.
type Option func(*Provider)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.client, _ = gitlab.NewClient(p.token, gitlab.WithBaseURL(baseURL+"/api/v4"))
	}
}

// WithCompareCache sets the cache used for submodule compares. The default
// is a fresh unbounded cache owned by the provider.
func WithCompareCache(cache *CompareCache) Option {
	return func(p *Provider) {
		p.compares = cache
	}
}

// MergeRequestRef identifies a merge request resolved from its web URL.
type MergeRequestRef struct {
	BaseURL     string // scheme://host of the GitLab instance
	ProjectPath string // full path with namespace
	IID         int
}

// ParseMergeRequestURL resolves a merge request web URL into its GitLab
// instance, project path, and MR IID. Both the modern
// /group/repo/-/merge_requests/N form and the legacy form without /-/ are
// accepted.
func ParseMergeRequestURL(mrURL string) (*MergeRequestRef, error) {
	u, err := url.Parse(mrURL)
	if err != nil {
		return nil, fmt.Errorf("parsing merge request URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing merge request URL %q: missing scheme or host", mrURL)
	}

	path := strings.Trim(u.Path, "/")
	projectPath, rest, found := strings.Cut(path, "/-/merge_requests/")
	if !found {
		projectPath, rest, found = strings.Cut(path, "/merge_requests/")
	}
	if !found || projectPath == "" {
		return nil, fmt.Errorf("parsing merge request URL %q: not a merge request URL", mrURL)
	}

	// The IID is the first segment after merge_requests; trailing segments
	// like /diffs are part of the web UI, not the identifier.
	iidPart, _, _ := strings.Cut(rest, "/")
	iid, err := strconv.Atoi(iidPart)
	if err != nil || iid <= 0 {
		return nil, fmt.Errorf("parsing merge request URL %q: invalid merge request number", mrURL)
	}

	return &MergeRequestRef{
		BaseURL:     u.Scheme + "://" + u.Host,
		ProjectPath: projectPath,
		IID:         iid,
	}, nil
}

// New creates a GitLab provider for the merge request at mrURL. The merge
// request is fetched eagerly so its branches are available to every
// operation.
func New(token, mrURL string, opts ...Option) (*Provider, error) {
	ref, err := ParseMergeRequestURL(mrURL)
	if err != nil {
		return nil, err
	}

	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(ref.BaseURL+"/api/v4"))
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	p := &Provider{
		client:   client,
		token:    token,
		project:  ref.ProjectPath,
		mrIID:    ref.IID,
		compares: NewCompareCache(),
	}

	for _, opt := range opts {
		opt(p)
	}

	mr, _, err := p.client.MergeRequests.GetMergeRequest(p.project, p.mrIID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching merge request: %w", err)
	}
	p.mr = convertMergeRequest(mr)

	return p, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gitlab"
}

// MergeRequest returns the merge request this provider is scoped to.
func (p *Provider) MergeRequest() *provider.MergeRequest {
	return p.mr
}

func convertMergeRequest(mr *gitlab.MergeRequest) *provider.MergeRequest {
	result := &provider.MergeRequest{
		ID:           mr.ID,
		Number:       mr.IID,
		Title:        mr.Title,
		Description:  mr.Description,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		State:        mr.State,
		URL:          mr.WebURL,
	}

	if mr.Author != nil {
		result.Author = mr.Author.Username
	}
	if mr.CreatedAt != nil {
		result.CreatedAt = *mr.CreatedAt
	}
	if mr.UpdatedAt != nil {
		result.UpdatedAt = *mr.UpdatedAt
	}

	return result
}

// PostComment posts a comment on the merge request.
func (p *Provider) PostComment(ctx context.Context, body string) error {
	_, _, err := p.client.Notes.CreateMergeRequestNote(p.project, p.mrIID, &gitlab.CreateMergeRequestNoteOptions{
		Body: &body,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	return nil
}

// Comments fetches comments on the merge request.
func (p *Provider) Comments(ctx context.Context) ([]provider.Comment, error) {
	notes, _, err := p.client.Notes.ListMergeRequestNotes(p.project, p.mrIID, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	result := make([]provider.Comment, len(notes))
	for i, n := range notes {
		result[i] = provider.Comment{
			ID:     n.ID,
			Body:   n.Body,
			Author: n.Author.Username,
		}
		if n.CreatedAt != nil {
			result[i].CreatedAt = *n.CreatedAt
		}
	}
	return result, nil
}

// isNotFound reports whether err is the hosting API's not-found error kind,
// as opposed to a transient or permission failure.
func isNotFound(err error) bool {
	var apiErr *gitlab.ErrorResponse
	return errors.As(err, &apiErr) && apiErr.Response != nil &&
		apiErr.Response.StatusCode == http.StatusNotFound
}
