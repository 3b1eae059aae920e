package blocksci

import "github.com/couchbaselabs/logg"

// The logging keys available in blocks ci
var LogKeys []string

func init() {
	LogKeys = []string{
		"CLI",
		"REST",
		"CHANGES",
		"JOB_SCHEDULER",
		"NSQ_WORKER",
		"PIPELINE",
		"PROVISIONER",
		"DEP_INSTALLER",
		"DATASET_STAGER",
		"TEST_EXECUTOR",
		"COVERAGE",
		"CHECKPOINT",
		"BLOBSTORE",
	}
}

// Enable logging for all logging keys
func EnableAllLogKeys() {
	for _, logKey := range LogKeys {
		logg.LogKeys[logKey] = true
	}

}
