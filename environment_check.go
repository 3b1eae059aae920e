package blocksci

import (
	"bytes"
	"fmt"
	"time"

	"github.com/couchbaselabs/logg"
)

// Sanity check the node before it starts serving or taking jobs:
// the blob store must be reachable and read/write/delete must round
// trip.  Transient failures are retried with a growing sleep, cbfs
// nodes can take a while to come up after deploy.
func EnvironmentSanityCheck(config Configuration) error {

	if err := BlobStoreSanityCheck(config); err != nil {
		return err
	}
	logg.LogTo("CLI", "Blob store sanity check passed")

	return nil

}

func blobStoreReadWriteFile(blobStore BlobStore, destPath, content string) error {

	options := BlobPutOptions{
		ContentType: "text/plain",
	}

	buffer := bytes.NewBuffer([]byte(content))

	if err := blobStore.Put("", destPath, buffer, options); err != nil {
		return fmt.Errorf("Error writing %v to blob store: %v", destPath, err)
	}

	// read contents back
	readBytes, err := getContentFromBlobStore(blobStore, destPath)
	if err != nil {
		return err
	}

	if string(readBytes) != content {
		return fmt.Errorf("Content did not match expected")
	}

	// delete the probe file
	if err := blobStore.Rm(destPath); err != nil {
		return err
	}
	return nil

}

func BlobStoreSanityCheck(config Configuration) error {

	blobStore, err := config.NewBlobStoreClient()
	if err != nil {
		return err
	}

	uuid := NewUuid() // use uuid so other nodes on cluster don't conflict
	numAttempts := 20
	for i := 0; i < numAttempts; i++ {
		filename := fmt.Sprintf("env_check_%v_%v", uuid, i)
		content := fmt.Sprintf("Hello %v_%v", uuid, i)
		err := blobStoreReadWriteFile(blobStore, filename, content)
		if err == nil {
			logg.LogTo("CLI", "Blob store sanity ok: %v", filename)
			return nil
		}
		logg.LogTo("CLI", "Blob store sanity failed # %v: %v", i, filename)
		if i >= (numAttempts - 1) {
			logg.LogTo("CLI", "Blob store sanity check giving up")
			return err
		}
		time.Sleep(time.Duration(i) * time.Second)
	}
	return fmt.Errorf("Exhausted attempts")

}
