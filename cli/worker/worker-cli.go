// Command line utility to launch a Blocks CI pipeline worker
package main

import (
	"github.com/couchbaselabs/logg"
	bc "github.com/cosmoharrigan/blocks"
)

func init() {
	bc.EnableAllLogKeys()
}

func main() {

	config := *(bc.NewDefaultConfiguration()) // TODO: get these vals from cmd line args

	if err := bc.EnvironmentSanityCheck(config); err != nil {
		logg.LogFatal("Failed environment sanity check: %v", err)
		return
	}

	worker := bc.NewNsqWorker(config)

	stopChan := make(chan struct{})
	if err := worker.HandleEvents(stopChan); err != nil {
		logg.LogFatal("Worker stopped: %v", err)
	}

}
