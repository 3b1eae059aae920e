package blocksci

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

type MockBlobStore struct {
	mu sync.Mutex

	// Queued responses for blob Get requests.  The key is a
	// substring that should match the path in the Get request.
	GetResponses map[string]ResponseQueue

	// Everything written via Put, keyed by dest path, so tests can
	// assert on stored artifacts.
	Puts map[string][]byte
}

type ResponseQueue []io.Reader

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		GetResponses: map[string]ResponseQueue{},
		Puts:         map[string][]byte{},
	}
}

func (m *MockBlobStore) Get(path string) (io.ReadCloser, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	// anything previously Put is directly readable
	if data, ok := m.Puts[path]; ok {
		return nopCloser{bytes.NewReader(data)}, nil
	}

	matchingKey, queue := m.responseQueueForPath(path)
	if len(queue) == 0 {
		return nil, fmt.Errorf("No more items in mock blob store for %v", path)
	}
	firstItem := queue[0]
	m.GetResponses[matchingKey] = queue[1:]

	return nopCloser{firstItem}, nil
}

func (m *MockBlobStore) Put(srcname, dest string, r io.Reader, opts BlobPutOptions) error {

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts[dest] = data
	return nil
}

func (m *MockBlobStore) Rm(fn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Puts, fn)
	return nil
}

func (m *MockBlobStore) OpenFile(path string) (BlobHandle, error) {
	return FileSystemBlobHandle{}, nil
}

type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error {
	return nil
}

func (m *MockBlobStore) responseQueueForPath(path string) (string, ResponseQueue) {
	// loop over all keys in GetResponses map until we find a match
	for k, v := range m.GetResponses {
		if path == "*" {
			return k, v
		}
		if strings.Contains(k, path) || strings.Contains(path, k) {
			return k, v
		}
	}
	return "", nil
}

// Queue up a response to a Get request
func (m *MockBlobStore) QueueGetResponse(pathSubstring string, response io.Reader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue, ok := m.GetResponses[pathSubstring]
	if !ok {
		queue = ResponseQueue{}
	}
	queue = append(queue, response)
	m.GetResponses[pathSubstring] = queue
}
