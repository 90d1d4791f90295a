package github

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// fetchable lists the file extensions worth downloading; everything else in
// the repository directory is ignored.
var fetchable = map[string]bool{
	".md":  true,
	".txt": true,
	".csv": true,
	".pdf": true,
}

// Fetcher downloads the ingestible files of one repository directory.
type Fetcher struct {
	client   *Client
	owner    string
	repo     string
	basePath string
	logger   *slog.Logger
}

// NewFetcher creates a fetcher for the directory basePath of owner/repo.
func NewFetcher(client *Client, owner, repo, basePath string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
		logger:   logger,
	}
}

// Download lists the repository directory recursively and writes every
// ingestible file into destDir. Nested repository paths are flattened with
// "__" so the ingestion pipeline sees a plain folder of files. Returns the
// number of files written.
func (f *Fetcher) Download(ctx context.Context, destDir string) (int, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create docs folder: %w", err)
	}

	paths, err := f.list(ctx, f.basePath, "")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, relPath := range paths {
		content, err := f.fetchFile(ctx, relPath)
		if err != nil {
			return count, fmt.Errorf("fetch %s: %w", relPath, err)
		}
		name := strings.ReplaceAll(relPath, "/", "__")
		if err := os.WriteFile(filepath.Join(destDir, name), content, 0o644); err != nil {
			return count, fmt.Errorf("write %s: %w", name, err)
		}
		f.logger.Info("downloaded document", "path", relPath, "bytes", len(content))
		count++
	}
	return count, nil
}

// list recursively collects ingestible file paths relative to basePath.
func (f *Fetcher) list(ctx context.Context, fullPath, relPath string) ([]string, error) {
	_, dirContents, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", fullPath, err)
	}

	var files []string
	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}
		itemRel := path.Join(relPath, *item.Name)
		switch *item.Type {
		case "file":
			if fetchable[strings.ToLower(path.Ext(*item.Name))] {
				files = append(files, itemRel)
			}
		case "dir":
			sub, err := f.list(ctx, path.Join(fullPath, *item.Name), itemRel)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		}
	}
	return files, nil
}

// fetchFile downloads one file's content, decoded from the API's base64 form.
func (f *Fetcher) fetchFile(ctx context.Context, relPath string) ([]byte, error) {
	fullPath := path.Join(f.basePath, relPath)
	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, err
	}
	if fileContent == nil {
		return nil, fmt.Errorf("no content returned")
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return []byte(content), nil
}
