package farm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gltr-farm/deployer/internal/infra/filesystem"
)

const (
	progressFileName = "deployment.json"
	archiveLayout    = "20060102T150405Z"
)

// ErrIncompleteDeployment is returned when an earlier run aborted and its record would be replaced.
var ErrIncompleteDeployment = errors.New("previous deployment did not finish")

// FileRecorder persists Progress as JSON under <output-dir>/<network>/deployment.json.
type FileRecorder struct {
	path   string
	writer filesystem.Writer
}

func NewFileRecorder(outputDir, network string, writer filesystem.Writer) *FileRecorder {
	return &FileRecorder{
		path:   ProgressPath(outputDir, network),
		writer: writer,
	}
}

func (r *FileRecorder) Record(progress Progress) error {
	if err := r.writer.WriteJSON(r.path, progress); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	return nil
}

func (r *FileRecorder) Path() string {
	return r.path
}

// Prepare must run before a new deployment writes its first record. An existing record is moved
// to deployment-<utc timestamp>.json and its new path returned. A record of an unfinished run is
// only moved when force is set, otherwise ErrIncompleteDeployment is returned and nothing changes.
func (r *FileRecorder) Prepare(reader filesystem.Reader, force bool, now time.Time) (string, error) {
	var previous Progress
	if err := reader.ReadJSON(r.path, &previous); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		if !force {
			return "", fmt.Errorf("unreadable deployment record %s, rerun with force to archive it: %w", r.path, err)
		}
	} else if previous.StepsCompleted < previous.StepsTotal && !force {
		return "", fmt.Errorf("%w: %s stopped after %d/%d steps (failed step '%s'), rerun with force to archive it",
			ErrIncompleteDeployment, r.path, previous.StepsCompleted, previous.StepsTotal, previous.FailedStep)
	}

	archived := ArchivePath(r.path, now)
	if err := os.Rename(r.path, archived); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", r.path, err)
	}

	return archived, nil
}

// ProgressPath is where the deploy command records progress for a network.
func ProgressPath(outputDir, network string) string {
	return filepath.Join(outputDir, network, progressFileName)
}

// ArchivePath is the name an existing record is moved to at time now.
func ArchivePath(path string, now time.Time) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%s%s", strings.TrimSuffix(path, ext), now.UTC().Format(archiveLayout), ext)
}

// LoadProgress reads a previously recorded progress file.
func LoadProgress(reader filesystem.Reader, outputDir, network string) (Progress, error) {
	var progress Progress
	path := ProgressPath(outputDir, network)
	if err := reader.ReadJSON(path, &progress); err != nil {
		return Progress{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return progress, nil
}
