package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gltr-farm/deployer/internal/logger"
)

// Repository is a git repository checked out at a branch or tag.
type Repository struct {
	Name string
	URL  string
	Ref  string
}

type Cloner struct {
	logger *slog.Logger
}

func NewCloner() *Cloner {
	return &Cloner{logger: logger.Named("git_cloner")}
}

// Clone makes a shallow clone of repo under destDir and returns its path.
// An existing checkout is reused as is.
func (c *Cloner) Clone(ctx context.Context, destDir string, repo Repository) (string, error) {
	repoPath := filepath.Join(destDir, repo.Name)
	log := c.logger.With("name", repo.Name).With("path", repoPath)

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		log.Info("repository already cloned, skipping")
		return repoPath, nil
	}

	log.With("url", repo.URL).With("ref", repo.Ref).Info("cloning repository")

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", "--recurse-submodules", "--branch", repo.Ref, repo.URL, repoPath)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git clone of %s failed: %w", repo.URL, err)
	}

	log.Info("repository cloned successfully")
	return repoPath, nil
}
