package blocksci

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// The mnist archives are idx files: a 4 byte magic (two zero bytes, a
// dtype byte, a dimension count), big endian uint32 dimensions, then
// the raw payload.  Only the ubyte dtype is used by mnist.
const idxDtypeUbyte = 0x08

type idxData struct {
	Dims []uint32
	Data []byte
}

func (d idxData) numElements() int {
	n := 1
	for _, dim := range d.Dims {
		n *= int(dim)
	}
	return n
}

func readIdx(r io.Reader) (*idxData, error) {

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("Error reading idx magic: %v", err)
	}

	if magic[0] != 0 || magic[1] != 0 {
		return nil, fmt.Errorf("Bad idx magic: %v", magic)
	}
	if magic[2] != idxDtypeUbyte {
		return nil, fmt.Errorf("Unsupported idx dtype: %v", magic[2])
	}

	numDims := int(magic[3])
	if numDims == 0 || numDims > 4 {
		return nil, fmt.Errorf("Unsupported idx dimension count: %v", numDims)
	}

	idx := &idxData{
		Dims: make([]uint32, numDims),
	}
	for i := 0; i < numDims; i++ {
		if err := binary.Read(r, binary.BigEndian, &idx.Dims[i]); err != nil {
			return nil, fmt.Errorf("Error reading idx dims: %v", err)
		}
	}

	idx.Data = make([]byte, idx.numElements())
	if _, err := io.ReadFull(r, idx.Data); err != nil {
		return nil, fmt.Errorf("Error reading idx payload: %v", err)
	}

	return idx, nil

}

// The converted dataset container.  A small header, then one section
// per source role.  Written atomically: callers write to a temp path
// and rename into place, so a half finished conversion never shows up
// as a warm cache.
var packedDatasetMagic = [4]byte{'B', 'C', 'D', 'S'}

func writePackedDataset(path string, sections map[string]*idxData, roleOrder []string) error {

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if _, err := w.Write(packedDatasetMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(roleOrder))); err != nil {
		return err
	}

	for _, role := range roleOrder {
		idx, ok := sections[role]
		if !ok {
			return fmt.Errorf("Missing dataset section: %v", role)
		}

		if err := binary.Write(w, binary.BigEndian, uint16(len(role))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(role)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint8(len(idx.Dims))); err != nil {
			return err
		}
		for _, dim := range idx.Dims {
			if err := binary.Write(w, binary.BigEndian, dim); err != nil {
				return err
			}
		}
		if _, err := w.Write(idx.Data); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()

}

func readPackedDataset(path string) (map[string]*idxData, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("Error reading dataset magic: %v", err)
	}
	if magic != packedDatasetMagic {
		return nil, fmt.Errorf("Bad dataset magic: %v", magic)
	}

	var numSections uint32
	if err := binary.Read(r, binary.BigEndian, &numSections); err != nil {
		return nil, err
	}

	sections := map[string]*idxData{}

	for i := uint32(0); i < numSections; i++ {

		var roleLen uint16
		if err := binary.Read(r, binary.BigEndian, &roleLen); err != nil {
			return nil, err
		}
		roleBytes := make([]byte, roleLen)
		if _, err := io.ReadFull(r, roleBytes); err != nil {
			return nil, err
		}

		var numDims uint8
		if err := binary.Read(r, binary.BigEndian, &numDims); err != nil {
			return nil, err
		}

		idx := &idxData{
			Dims: make([]uint32, numDims),
		}
		for j := uint8(0); j < numDims; j++ {
			if err := binary.Read(r, binary.BigEndian, &idx.Dims[j]); err != nil {
				return nil, err
			}
		}

		idx.Data = make([]byte, idx.numElements())
		if _, err := io.ReadFull(r, idx.Data); err != nil {
			return nil, err
		}

		sections[string(roleBytes)] = idx

	}

	return sections, nil

}

// Return the dimensions of each section in a packed dataset file,
// keyed by role.  Used by the inspection tool.
func DescribePackedDataset(path string) (map[string][]uint32, error) {

	sections, err := readPackedDataset(path)
	if err != nil {
		return nil, err
	}

	dims := map[string][]uint32{}
	for role, idx := range sections {
		dims[role] = idx.Dims
	}
	return dims, nil

}
