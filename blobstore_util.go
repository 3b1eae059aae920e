package blocksci

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchbaselabs/logg"
)

func saveFileToBlobStore(sourcePath, destPath, contentType string, blobStore BlobStore) error {

	options := BlobPutOptions{}
	options.ContentType = contentType

	f, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	if err := blobStore.Put("", destPath, r, options); err != nil {
		return fmt.Errorf("Error writing %v to blob store: %v", destPath, err)
	}

	logg.LogTo("BLOBSTORE", "Wrote %v to blob store: %v", sourcePath, destPath)

	return nil

}

// Get the content from the blob store at the given source path
func getContentFromBlobStore(blobStore BlobStore, sourcePath string) ([]byte, error) {

	reader, err := blobStore.Get(sourcePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	bytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return bytes, nil

}

// Download the content at sourceUri (blobstore://foo/bar.txt) to destPath (/path/to/bar.txt)
func downloadFromBlobStore(blobStore BlobStore, sourceUri, destPath string) (err error) {

	if !strings.HasPrefix(sourceUri, BLOB_URI_PREFIX) {
		return fmt.Errorf("Invalid blob store uri: %v", sourceUri)
	}

	// open a file at destPath
	out, err := os.Create(destPath)
	if err != nil {
		return
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	// chop off blobstore:// to get a source path on the blob store
	sourcePath := strings.TrimPrefix(sourceUri, BLOB_URI_PREFIX)

	reader, err := blobStore.Get(sourcePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	// copy blob store -> dest
	_, err = io.Copy(out, reader)

	return

}

func blobUri(path string) string {
	return fmt.Sprintf("%v%v", BLOB_URI_PREFIX, path)
}
