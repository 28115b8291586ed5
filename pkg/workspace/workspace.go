package workspace

import (
	"os"
	"path/filepath"
	"time"

	"wifiphoto/pkg/errors"
	"wifiphoto/pkg/logger"
)

// NameFormat derives the run directory name from the run's start time, to
// minute precision
const NameFormat = "20060102T1504"

// rollingZipName is the fixed name the per-chunk download is written to; each
// chunk overwrites the previous one's file
const rollingZipName = "images.zip"

// Workspace is the transient directory accumulating extracted files across
// chunks for one run. It ends its life exactly one of two ways: folded into a
// compressed archive (success) or deleted with nothing left behind (failure).
type Workspace struct {
	dir     string
	name    string
	zipPath string
	logger  logger.Logger
}

// Create makes a fresh run directory under baseDir, named after now. An
// already existing directory of the same name is an unrecoverable collision:
// merging into leftovers from an interrupted run would make the output
// unpredictable.
func Create(baseDir string, now time.Time, log logger.Logger) (*Workspace, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	name := now.Format(NameFormat)
	dir := filepath.Join(baseDir, name)

	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, errors.New(errors.ErrorTypeWorkspace,
				"working directory %s already exists; remove it or wait until the next minute", dir)
		}
		return nil, errors.New(errors.ErrorTypeWorkspace, "could not create working directory %s: %v", dir, err)
	}

	log.DebugWithFields("workspace created", map[string]interface{}{
		"dir": dir,
	})

	return &Workspace{
		dir:     dir,
		name:    name,
		zipPath: filepath.Join(dir, rollingZipName),
		logger:  log,
	}, nil
}

// Dir returns the workspace directory path
func (w *Workspace) Dir() string {
	return w.dir
}

// Name returns the workspace's timestamp-derived base name
func (w *Workspace) Name() string {
	return w.name
}

// ExtractChunk writes a downloaded zip into the workspace, replacing any
// previous chunk's file, and unpacks its contents alongside the files already
// extracted. The vendor server's exports do not collide in naming across
// chunks; this method does not verify that.
func (w *Workspace) ExtractChunk(data []byte) error {
	if err := os.WriteFile(w.zipPath, data, 0644); err != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not save downloaded archive: %v", err)
	}

	count, err := extractZip(w.zipPath, w.dir)
	if err != nil {
		return err
	}

	w.logger.DebugWithFields("chunk extracted", map[string]interface{}{
		"dir":   w.dir,
		"files": count,
	})
	return nil
}

// Finalize converts the workspace into a single gzip-compressed tar archive
// next to it and removes the directory. Returns the archive path.
func (w *Workspace) Finalize() (string, error) {
	// The rolling zip is transfer plumbing, not content
	if err := os.Remove(w.zipPath); err != nil && !os.IsNotExist(err) {
		return "", errors.New(errors.ErrorTypeWorkspace, "could not remove downloaded archive: %v", err)
	}

	archivePath := w.dir + ".tar.gz"
	if err := archiveDir(w.dir, w.name, archivePath); err != nil {
		return "", err
	}

	if err := os.RemoveAll(w.dir); err != nil {
		return "", errors.New(errors.ErrorTypeWorkspace, "could not remove working directory: %v", err)
	}

	w.logger.InfoWithFields("workspace archived", map[string]interface{}{
		"archive": archivePath,
	})
	return archivePath, nil
}

// Discard deletes the workspace and everything it accumulated. Used on every
// failure path; a failed run leaves no partial output.
func (w *Workspace) Discard() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not remove working directory: %v", err)
	}

	w.logger.DebugWithFields("workspace discarded", map[string]interface{}{
		"dir": w.dir,
	})
	return nil
}
