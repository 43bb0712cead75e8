// Package github imports project documentation from GitHub repositories.
package github

import (
	"context"
	"fmt"
	"path"
	"strings"

	gogh "github.com/google/go-github/v68/github"

	"rampup/model"
)

// Importer fetches documentation files from a repository so they can be
// attached to a project as onboarding source material.
type Importer struct {
	gh *gogh.Client
}

// NewImporter creates an Importer. An empty token gives an unauthenticated
// client, which works for public repositories at reduced rate limits.
func NewImporter(token string) *Importer {
	client := gogh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Importer{gh: client}
}

// ImportDocs fetches the repository README plus any markdown files under
// docs/ and returns them as documents ready to store. The project and
// uploader fields are filled in by the caller's store insert.
func (im *Importer) ImportDocs(ctx context.Context, projectID int64, repoFullName, uploadedBy string) ([]*model.Document, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	var docs []*model.Document

	readme, _, err := im.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err == nil {
		content, cerr := readme.GetContent()
		if cerr == nil && content != "" {
			docs = append(docs, &model.Document{
				ProjectID:  projectID,
				Title:      readme.GetName(),
				DocType:    docTypeFor(readme.GetName()),
				Content:    content,
				Status:     model.DocStatusUploaded,
				UploadedBy: uploadedBy,
			})
		}
	}

	_, entries, _, err := im.gh.Repositories.GetContents(ctx, owner, repo, "docs", nil)
	if err != nil {
		// No docs/ directory is fine when the README was found.
		if len(docs) == 0 {
			return nil, fmt.Errorf("importing docs from %s: %w", repoFullName, err)
		}
		return docs, nil
	}

	for _, entry := range entries {
		if entry.GetType() != "file" {
			continue
		}
		name := entry.GetName()
		if !strings.EqualFold(path.Ext(name), ".md") {
			continue
		}
		file, _, _, err := im.gh.Repositories.GetContents(ctx, owner, repo, entry.GetPath(), nil)
		if err != nil || file == nil {
			continue
		}
		content, err := file.GetContent()
		if err != nil || content == "" {
			continue
		}
		docs = append(docs, &model.Document{
			ProjectID:  projectID,
			Title:      name,
			DocType:    "md",
			Content:    content,
			Status:     model.DocStatusUploaded,
			UploadedBy: uploadedBy,
		})
	}

	return docs, nil
}

func docTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return "md"
	case ".html", ".htm":
		return "html"
	default:
		return "txt"
	}
}

func splitRepo(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format %q, expected \"owner/repo\"", fullName)
	}
	return parts[0], parts[1], nil
}
