package blocksci

import (
	"fmt"
	"time"

	"github.com/couchbaselabs/logg"
	"github.com/tleyden/go-etcd/etcd"
)

const (
	stagingLockKey = "/blocks-ci/dataset-staging-lock"
	stagingLockTtl = 600 // seconds
)

// Coordinates dataset staging across workers that share a data path, so
// only one of them downloads and converts.  Backed by an etcd key with
// a ttl; when no etcd servers are configured the lock degrades to a
// no-op for single node deployments.
type StagingLock struct {
	Configuration Configuration
	holderId      string
}

func NewStagingLock(c Configuration) *StagingLock {
	return &StagingLock{
		Configuration: c,
		holderId:      NewUuid(),
	}
}

// Try to take the lock once.  Returns false without error when another
// worker holds it.
func (l *StagingLock) TryAcquire() (bool, error) {

	if len(l.Configuration.EtcdServers) == 0 {
		return true, nil
	}

	client := etcd.NewClient(l.Configuration.EtcdServers)
	client.SetConsistency(etcd.STRONG_CONSISTENCY)

	_, err := client.Create(stagingLockKey, l.holderId, stagingLockTtl)
	if err != nil {
		// assume the key exists: someone else is staging
		logg.LogTo("DATASET_STAGER", "Staging lock held elsewhere: %v", err)
		return false, nil
	}

	return true, nil

}

func (l *StagingLock) Release() {

	if len(l.Configuration.EtcdServers) == 0 {
		return
	}

	client := etcd.NewClient(l.Configuration.EtcdServers)

	if _, err := client.CompareAndDelete(stagingLockKey, l.holderId, 0); err != nil {
		logg.LogTo("DATASET_STAGER", "Error releasing staging lock: %v", err)
	}

}

// Block until the lock is acquired or until waitDone returns true
// (eg, another worker finished staging while we waited).
func (l *StagingLock) Acquire(waitDone func() bool) (bool, error) {

	numAttempts := 60
	for i := 0; i < numAttempts; i++ {

		acquired, err := l.TryAcquire()
		if err != nil {
			return false, err
		}
		if acquired {
			return true, nil
		}

		if waitDone() {
			return false, nil
		}

		time.Sleep(time.Duration(2) * time.Second)

	}

	return false, fmt.Errorf("Gave up waiting for dataset staging lock")

}
