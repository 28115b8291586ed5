package workspace

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wifiphoto/pkg/errors"
	"wifiphoto/pkg/logger"
)

var testTime = time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

// makeZip builds an in-memory zip with the given file contents
func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestCreateNamesDirectoryAfterStartTime(t *testing.T) {
	base := t.TempDir()

	ws, err := Create(base, testTime, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "20240601T1430", ws.Name())
	info, err := os.Stat(filepath.Join(base, "20240601T1430"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateCollisionIsFatal(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, testTime.Format(NameFormat)), 0755))

	_, err := Create(base, testTime, logger.NewNop())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeWorkspace))
}

func TestExtractChunkAccumulatesFiles(t *testing.T) {
	ws, err := Create(t.TempDir(), testTime, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, ws.ExtractChunk(makeZip(t, map[string]string{
		"IMG_0001.jpg": "first",
		"IMG_0002.jpg": "second",
	})))
	require.NoError(t, ws.ExtractChunk(makeZip(t, map[string]string{
		"IMG_0003.jpg": "third",
	})))

	// Files from both chunks sit side by side
	for name, content := range map[string]string{
		"IMG_0001.jpg": "first",
		"IMG_0002.jpg": "second",
		"IMG_0003.jpg": "third",
	} {
		data, err := os.ReadFile(filepath.Join(ws.Dir(), name))
		require.NoError(t, err, name)
		assert.Equal(t, content, string(data))
	}
}

func TestExtractChunkOverwritesRollingZip(t *testing.T) {
	ws, err := Create(t.TempDir(), testTime, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, ws.ExtractChunk(makeZip(t, map[string]string{"a.jpg": "a"})))
	require.NoError(t, ws.ExtractChunk(makeZip(t, map[string]string{"b.jpg": "b"})))

	// Only one rolling zip remains regardless of chunk count
	entries, err := os.ReadDir(ws.Dir())
	require.NoError(t, err)
	zips := 0
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".zip" {
			zips++
		}
	}
	assert.Equal(t, 1, zips)
}

func TestExtractChunkRejectsEscapingEntries(t *testing.T) {
	ws, err := Create(t.TempDir(), testTime, logger.NewNop())
	require.NoError(t, err)

	err = ws.ExtractChunk(makeZip(t, map[string]string{"../escape.jpg": "nope"}))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeWorkspace))
}

func TestFinalizeProducesArchiveAndRemovesDirectory(t *testing.T) {
	base := t.TempDir()
	ws, err := Create(base, testTime, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, ws.ExtractChunk(makeZip(t, map[string]string{"IMG_0001.jpg": "first"})))

	archivePath, err := ws.Finalize()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "20240601T1430.tar.gz"), archivePath)

	// The directory is gone, only the archive remains
	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))

	names := readTarGz(t, archivePath)
	assert.Contains(t, names, "20240601T1430/IMG_0001.jpg")
	assert.NotContains(t, names, "20240601T1430/images.zip", "rolling zip is not content")
}

func TestFinalizeEmptyWorkspaceStillProducesArchive(t *testing.T) {
	base := t.TempDir()
	ws, err := Create(base, testTime, logger.NewNop())
	require.NoError(t, err)

	archivePath, err := ws.Finalize()
	require.NoError(t, err)

	_, err = os.Stat(archivePath)
	require.NoError(t, err)
}

func TestDiscardRemovesEverything(t *testing.T) {
	ws, err := Create(t.TempDir(), testTime, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, ws.ExtractChunk(makeZip(t, map[string]string{"a.jpg": "a"})))

	require.NoError(t, ws.Discard())

	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))
}

// readTarGz returns the entry names inside a gzip-compressed tar archive
func readTarGz(t *testing.T, path string) []string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return names
		}
		require.NoError(t, err)
		names = append(names, header.Name)
	}
}
