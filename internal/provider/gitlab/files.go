package gitlab

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/xanzy/go-gitlab"
)

// FileContent returns the text of a file at the given ref. Absence and fetch
// failures both read as the empty string; callers cannot distinguish an
// empty file from a failed fetch.
func (p *Provider) FileContent(ctx context.Context, path, ref string) string {
	file, _, err := p.client.RepositoryFiles.GetFile(p.project, path, &gitlab.GetFileOptions{
		Ref: gitlab.Ptr(ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return ""
	}

	content, err := decodeFileContent(file)
	if err != nil {
		return ""
	}
	return content
}

// decodeFileContent returns the file's content as text, decoding the
// transport encoding when the API used one.
func decodeFileContent(file *gitlab.File) (string, error) {
	if file.Encoding == "base64" {
		raw, err := base64.StdEncoding.DecodeString(file.Content)
		if err != nil {
			return "", fmt.Errorf("decoding file content: %w", err)
		}
		return string(raw), nil
	}
	return file.Content, nil
}

// CreateOrUpdateFile writes a file on a branch. A missing file is created;
// an existing one is updated. Lookup failures other than not-found
// propagate to the caller.
func (p *Provider) CreateOrUpdateFile(ctx context.Context, path, branch, contents, message string) error {
	_, _, err := p.client.RepositoryFiles.GetFile(p.project, path, &gitlab.GetFileOptions{
		Ref: gitlab.Ptr(branch),
	}, gitlab.WithContext(ctx))

	switch {
	case isNotFound(err):
		_, _, err = p.client.RepositoryFiles.CreateFile(p.project, path, &gitlab.CreateFileOptions{
			Branch:        gitlab.Ptr(branch),
			Content:       gitlab.Ptr(contents),
			CommitMessage: gitlab.Ptr(message),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("creating %s on %s: %w", path, branch, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("checking %s on %s: %w", path, branch, err)
	}

	_, _, err = p.client.RepositoryFiles.UpdateFile(p.project, path, &gitlab.UpdateFileOptions{
		Branch:        gitlab.Ptr(branch),
		Content:       gitlab.Ptr(contents),
		CommitMessage: gitlab.Ptr(message),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("updating %s on %s: %w", path, branch, err)
	}
	return nil
}
