package blocksci

import (
	"io"
	"time"

	"github.com/couchbaselabs/cbfs/client"
)

// Blob store backed by a cbfs cluster.  Thin adapter over the cbfs
// client so the rest of the code only sees the BlobStore interface.
type CbfsBlobStore struct {
	cbfs *cbfsclient.Client
}

type CbfsBlobHandle struct {
	handle *cbfsclient.FileHandle
}

func (h CbfsBlobHandle) Nodes() map[string]time.Time {
	return h.handle.Nodes()
}

func NewCbfsBlobStore(uri string) (*CbfsBlobStore, error) {

	cbfsClient, err := cbfsclient.New(uri)
	if err != nil {
		return nil, err
	}

	return &CbfsBlobStore{
		cbfs: cbfsClient,
	}, nil

}

func (c CbfsBlobStore) Get(path string) (io.ReadCloser, error) {
	return c.cbfs.Get(path)
}

func (c CbfsBlobStore) Put(srcname, dest string, r io.Reader, opts BlobPutOptions) error {

	cbfsOptions := cbfsclient.PutOptions{
		ContentType: opts.ContentType,
	}
	return c.cbfs.Put(srcname, dest, r, cbfsOptions)

}

func (c CbfsBlobStore) Rm(path string) error {
	return c.cbfs.Rm(path)
}

func (c CbfsBlobStore) OpenFile(path string) (BlobHandle, error) {

	handle, err := c.cbfs.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return CbfsBlobHandle{handle: handle}, nil

}
