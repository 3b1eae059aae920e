package blocksci

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/couchbaselabs/logg"
	"github.com/tleyden/go-couch"
)

type QueueType int

const (
	Nsq QueueType = iota
	Goroutine
)

// Holds configuration values that are used throughout the application
type Configuration struct {
	DbUrl         string
	BlobStoreUrl  string
	NsqLookupdUrl string
	NsqdUrl       string
	NsqdTopic     string
	NsqdChannel   string
	QueueType     QueueType

	// Servers used for the dataset staging lock.  Empty means no
	// cross-worker locking (single node deployment).
	EtcdServers []string

	// Root of per-run scratch directories (the build dir).
	WorkDirectory string

	// Directory holding the converted benchmark dataset, shared
	// across runs (the warm cache).
	DataPath string

	// Base url that the mnist archives are downloaded from.
	DatasetMirrorUrl string

	// Coverage reporting service.
	CoverageServiceUrl string
	CoverageRepoToken  string

	// Address the status/metrics sidecar listens on.
	StatusListenAddr string
}

func NewDefaultConfiguration() *Configuration {

	config := &Configuration{
		DbUrl:              "http://localhost:4985/blocks-ci",
		BlobStoreUrl:       "file:///var/lib/blocks-ci/blobs",
		NsqLookupdUrl:      "127.0.0.1:4161",
		NsqdUrl:            "127.0.0.1:4150",
		NsqdTopic:          "blocks-ci",
		NsqdChannel:        "worker",
		QueueType:          Goroutine,
		WorkDirectory:      "/var/lib/blocks-ci/work",
		DataPath:           "/var/lib/blocks-ci/data",
		DatasetMirrorUrl:   "http://yann.lecun.com/exdb/mnist",
		CoverageServiceUrl: "https://coveralls.io/api/v1/jobs",
		StatusListenAddr:   ":9100",
	}
	return config

}

// Merge command line args (from docopt) into the configuration.  Only
// recognized keys are looked at, and only non-nil values override.
func (c Configuration) Merge(args map[string]interface{}) (Configuration, error) {

	stringArg := func(key string, target *string) {
		if val, ok := args[key]; ok && val != nil {
			str, ok := val.(string)
			if !ok {
				logg.LogTo("CLI", "Ignoring non-string arg: %v", key)
				return
			}
			*target = str
		}
	}

	stringArg("--sync-gw-url", &c.DbUrl)
	stringArg("--blob-store-url", &c.BlobStoreUrl)
	stringArg("--nsq-lookupd-url", &c.NsqLookupdUrl)
	stringArg("--nsqd-url", &c.NsqdUrl)
	stringArg("--nsqd-topic", &c.NsqdTopic)
	stringArg("--work-dir", &c.WorkDirectory)
	stringArg("--data-path", &c.DataPath)
	stringArg("--dataset-mirror", &c.DatasetMirrorUrl)
	stringArg("--coverage-service-url", &c.CoverageServiceUrl)
	stringArg("--coverage-repo-token", &c.CoverageRepoToken)
	stringArg("--status-listen", &c.StatusListenAddr)

	etcdServers := ""
	stringArg("--etcd-servers", &etcdServers)
	if etcdServers != "" {
		c.EtcdServers = strings.Split(etcdServers, ",")
	}

	queueType := ""
	stringArg("--queue", &queueType)
	switch queueType {
	case "":
	case "nsq":
		c.QueueType = Nsq
	case "goroutine":
		c.QueueType = Goroutine
	default:
		return c, fmt.Errorf("Invalid queue type: %v.  Must be nsq or goroutine", queueType)
	}

	if strings.HasSuffix(c.DbUrl, "/") {
		return c, errors.New("Sync gateway db url must not have a trailing slash")
	}

	return c, nil

}

// Connect to db based on url stored in config, or panic if not able to connect
func (c Configuration) DbConnection() couch.Database {
	db, err := couch.Connect(c.DbUrl)
	if err != nil {
		err = errors.New(fmt.Sprintf("Error %v | dbUrl: %v", err, c.DbUrl))
		logg.LogPanic("%v", err)
	}
	return db
}

// Create a blob store client based on the url stored in config
func (c Configuration) NewBlobStoreClient() (BlobStore, error) {
	return NewBlobStore(c.BlobStoreUrl)
}

// The scratch directory for a single pipeline run
func (c Configuration) RunWorkDirectory(runId string) string {
	return filepath.Join(c.WorkDirectory, runId)
}
