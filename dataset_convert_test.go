package blocksci

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

// build a valid idx byte stream: magic, big endian dims, then payload
func idxFixture(dims []uint32, payload []byte) []byte {

	buf := new(bytes.Buffer)
	buf.Write([]byte{0, 0, idxDtypeUbyte, byte(len(dims))})
	for _, dim := range dims {
		binary.Write(buf, binary.BigEndian, dim)
	}
	buf.Write(payload)
	return buf.Bytes()

}

func TestReadIdx(t *testing.T) {

	payload := []byte{9, 8, 7, 6, 5, 4}
	raw := idxFixture([]uint32{2, 3}, payload)

	idx, err := readIdx(bytes.NewReader(raw))
	assert.True(t, err == nil)
	assert.Equals(t, len(idx.Dims), 2)
	assert.Equals(t, idx.Dims[0], uint32(2))
	assert.Equals(t, idx.Dims[1], uint32(3))
	assert.Equals(t, idx.numElements(), 6)
	assert.DeepEquals(t, idx.Data, payload)

}

func TestReadIdxBadMagic(t *testing.T) {

	raw := idxFixture([]uint32{2}, []byte{1, 2})
	raw[2] = 0x0D // not the ubyte dtype

	_, err := readIdx(bytes.NewReader(raw))
	assert.True(t, err != nil)

}

func TestReadIdxTruncated(t *testing.T) {

	raw := idxFixture([]uint32{4}, []byte{1, 2}) // payload too short

	_, err := readIdx(bytes.NewReader(raw))
	assert.True(t, err != nil)

}

func TestPackedDatasetRoundtrip(t *testing.T) {

	tempDir := TempDir()

	sections := map[string]*idxData{
		"train-images": {Dims: []uint32{2, 2, 2}, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		"train-labels": {Dims: []uint32{2}, Data: []byte{3, 7}},
	}
	roleOrder := []string{"train-images", "train-labels"}

	datasetPath := filepath.Join(tempDir, DATASET_FILENAME)

	err := writePackedDataset(datasetPath, sections, roleOrder)
	assert.True(t, err == nil)

	sections2, err := readPackedDataset(datasetPath)
	assert.True(t, err == nil)
	assert.Equals(t, len(sections2), 2)
	assert.DeepEquals(t, sections2["train-images"].Dims, []uint32{2, 2, 2})
	assert.DeepEquals(t, sections2["train-images"].Data, sections["train-images"].Data)
	assert.DeepEquals(t, sections2["train-labels"].Data, []byte{3, 7})

	described, err := DescribePackedDataset(datasetPath)
	assert.True(t, err == nil)
	assert.DeepEquals(t, described["train-labels"], []uint32{2})

}

func TestWritePackedDatasetMissingSection(t *testing.T) {

	tempDir := TempDir()

	sections := map[string]*idxData{
		"train-images": {Dims: []uint32{1}, Data: []byte{1}},
	}

	datasetPath := filepath.Join(tempDir, "packed-missing-section")
	err := writePackedDataset(datasetPath, sections, []string{"train-images", "train-labels"})
	assert.True(t, err != nil)

}
