package main

import (
	"os"

	"github.com/couchbaselabs/logg"
	bc "github.com/cosmoharrigan/blocks"
)

func init() {
	bc.EnableAllLogKeys()
}

func main() {

	config := *(bc.NewDefaultConfiguration())

	if len(os.Args) > 1 {
		config.BlobStoreUrl = os.Args[1]
	}

	if err := bc.EnvironmentSanityCheck(config); err != nil {
		logg.LogFatal("Failed environment sanity check: %v", err)
		return
	}

	logg.LogTo("CLI", "Environment sanity check passed")

}
