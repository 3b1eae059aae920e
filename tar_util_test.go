package blocksci

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchbaselabs/go.assert"
	"github.com/couchbaselabs/logg"
)

func TestUntarGzWithToc(t *testing.T) {

	// Create a test tar archive
	buf := new(bytes.Buffer)

	var files = []tarFile{
		{"foo/1.txt", "."},
		{"foo/2.txt", "."},
		{"bar/1.txt", "."},
		{"bar/2.txt", "."},
	}
	createArchive(buf, files)
	reader := bytes.NewReader(buf.Bytes())

	tempDir, err := os.MkdirTemp("", "untar")
	assert.True(t, err == nil)
	logg.LogTo("TEST", "tempDir: %v", tempDir)

	toc, err := untarWithToc(reader, tempDir)
	assert.True(t, err == nil)
	assert.Equals(t, len(toc), 4)

	_, err = os.Stat(filepath.Join(tempDir, "foo", "1.txt"))
	assert.True(t, err == nil)

}

func TestTarGzDirectoryRoundtrip(t *testing.T) {

	sourceDir, err := os.MkdirTemp("", "bundle-src")
	assert.True(t, err == nil)

	err = Mkdir(filepath.Join(sourceDir, "logs"))
	assert.True(t, err == nil)
	err = os.WriteFile(filepath.Join(sourceDir, "tests.stdout"), []byte("ok"), 0644)
	assert.True(t, err == nil)
	err = os.WriteFile(filepath.Join(sourceDir, "logs", "viz.log"), []byte("served"), 0644)
	assert.True(t, err == nil)

	buf := new(bytes.Buffer)
	err = tarGzDirectory(sourceDir, buf)
	assert.True(t, err == nil)

	destDir, err := os.MkdirTemp("", "bundle-dest")
	assert.True(t, err == nil)

	toc, err := untarGzWithToc(bytes.NewReader(buf.Bytes()), destDir)
	assert.True(t, err == nil)
	assert.Equals(t, len(toc), 2)

	data, err := os.ReadFile(filepath.Join(destDir, "logs", "viz.log"))
	assert.True(t, err == nil)
	assert.Equals(t, string(data), "served")

}
