package workspace

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wifiphoto/pkg/errors"
)

// extractZip unpacks a zip file into destDir and returns the number of
// entries written. Entries escaping destDir are rejected.
func extractZip(zipPath, destDir string) (int, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, errors.New(errors.ErrorTypeWorkspace, "could not open downloaded archive: %v", err)
	}
	defer reader.Close()

	count := 0
	for _, entry := range reader.File {
		if err := extractZipEntry(entry, destDir); err != nil {
			return count, err
		}
		if !entry.FileInfo().IsDir() {
			count++
		}
	}
	return count, nil
}

func extractZipEntry(entry *zip.File, destDir string) error {
	name := filepath.Clean(entry.Name)
	if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
		return errors.New(errors.ErrorTypeWorkspace, "archive entry %q escapes the working directory", entry.Name)
	}
	target := filepath.Join(destDir, name)

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0755); err != nil {
			return errors.New(errors.ErrorTypeWorkspace, "could not create directory %s: %v", target, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not create directory for %s: %v", target, err)
	}

	src, err := entry.Open()
	if err != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not read archive entry %q: %v", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not create %s: %v", target, err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not extract %s: %v", target, copyErr)
	}
	if closeErr != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not extract %s: %v", target, closeErr)
	}
	return nil
}

// archiveDir streams the contents of dir into a gzip-compressed tar archive
// at archivePath, with entries rooted under prefix so the archive unpacks
// into a directory of the run's name.
func archiveDir(dir, prefix, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return errors.New(errors.ErrorTypeWorkspace, "could not create archive %s: %v", archivePath, err)
	}

	gzWriter := gzip.NewWriter(out)
	tarWriter := tar.NewWriter(gzWriter)

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		entryName := prefix
		if rel != "." {
			entryName = filepath.Join(prefix, rel)
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(entryName)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(tarWriter, file)
		return err
	})

	// Close order matters: tar before gzip before the file
	if err := tarWriter.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := gzWriter.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := out.Close(); err != nil && walkErr == nil {
		walkErr = err
	}

	if walkErr != nil {
		os.Remove(archivePath)
		return errors.New(errors.ErrorTypeWorkspace, "could not archive %s: %v", dir, walkErr)
	}
	return nil
}
