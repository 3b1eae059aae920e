package blocksci

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// BlobStore provides a blob store interface.  Artifacts produced by
// pipeline runs (step output, coverage fragments, checkpoints, the
// converted dataset) are written through this interface so workers can
// run against cbfs, a local filesystem, or a mock in tests.
type BlobStore interface {
	Get(path string) (io.ReadCloser, error)
	Put(srcname, dest string, r io.Reader, opts BlobPutOptions) error
	Rm(fn string) error
	OpenFile(path string) (BlobHandle, error)
}

type BlobPutOptions struct {
	ContentType string
}

type BlobHandle interface {
	Nodes() map[string]time.Time
}

func NewBlobStore(uri string) (BlobStore, error) {
	switch {
	case strings.HasSuffix(uri, "8484"):
		return NewCbfsBlobStore(uri)
	case strings.HasPrefix(uri, "file://"):
		return NewFileSystemBlobStore(strings.TrimPrefix(uri, "file://"))
	case strings.Contains(uri, "mock"):
		return NewMockBlobStore(), nil
	default:
		msg := "Unrecognized blob store URI: %v.  If you are trying " +
			"to use cbfs, make sure it ends with port 8484, " +
			"otherwise use a file:// url"
		return nil, fmt.Errorf(msg, uri)
	}

}
