package blocksci

import (
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestStagingLockNoEtcd(t *testing.T) {

	configuration := NewDefaultConfiguration()
	configuration.EtcdServers = []string{}

	// without etcd the lock is a no-op, single node deployments don't
	// need coordination
	lock := NewStagingLock(*configuration)

	acquired, err := lock.TryAcquire()
	assert.True(t, err == nil)
	assert.True(t, acquired)

	acquired, err = lock.Acquire(func() bool { return false })
	assert.True(t, err == nil)
	assert.True(t, acquired)

	// releasing without etcd is also a no-op
	lock.Release()

}
