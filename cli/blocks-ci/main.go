// Command line utility to launch the Blocks CI REST API server.
package main

import (
	"fmt"

	"github.com/couchbaselabs/logg"
	bc "github.com/cosmoharrigan/blocks"
	"github.com/docopt/docopt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func init() {
	bc.EnableAllLogKeys()
}

func main() {

	usage := `Blocks CI REST API server.

Usage:
  blocks-ci [--sync-gw-url=<sgu>] [--blob-store-url=<bsu>] [--queue=<q>] [--etcd-servers=<es>] [--status-listen=<sl>]

Options:
  -h --help     Show this screen.
  --sync-gw-url=<sgu>  Sync Gateway DB URL [default: http://localhost:4985/blocks-ci].
  --blob-store-url=<bsu>  Blob store URL [default: file:///var/lib/blocks-ci/blobs].
  --queue=<q>  Job queue type, either nsq or goroutine [default: goroutine].
  --etcd-servers=<es>  Comma separated list of etcd machine urls.
  --status-listen=<sl>  Listen address for the status/metrics sidecar [default: :9100].`

	parsedDocOptArgs, _ := docopt.Parse(usage, nil, true, "Blocks CI alpha", false)
	fmt.Println(parsedDocOptArgs)

	config := *(bc.NewDefaultConfiguration())

	config, err := config.Merge(parsedDocOptArgs)
	if err != nil {
		logg.LogFatal("Error processing cmd line args: %v", err)
		return
	}

	if err := bc.EnvironmentSanityCheck(config); err != nil {
		logg.LogFatal("Failed environment sanity check: %v", err)
		return
	}

	var jobScheduler bc.JobScheduler

	switch config.QueueType {
	case bc.Nsq:
		jobScheduler = bc.NewNsqJobScheduler(config)
	case bc.Goroutine:
		jobScheduler = bc.NewInProcessJobScheduler(config)
	default:
		logg.LogFatal("Unexpected queue type: %v", config.QueueType)
	}

	context := &bc.EndpointContext{
		Configuration: config,
	}

	changesListener, err := bc.NewChangesListener(config, jobScheduler)
	if err != nil {
		logg.LogPanic("Error creating changes listener: %v", err)
	}
	go changesListener.FollowChangesFeed()

	ginEngine := gin.Default()

	// all requests wrapped in database connection middleware
	ginEngine.Use(bc.DbConnector(config.DbUrl))

	// endpoint to create a new user (db auth not required)
	ginEngine.POST("/users", context.CreateUserEndpoint)

	// all endpoints in the authorized group require Basic Auth credentials
	// which is enforced by the DbAuthRequired middleware.
	authorized := ginEngine.Group("/")
	authorized.Use(bc.DbAuthRequired())
	{
		authorized.POST("/pipeline-specs", context.CreatePipelineSpecEndpoint)
		authorized.POST("/pipeline-runs", context.CreatePipelineRunsEndpoint)
		authorized.GET("/pipeline-runs/:run-id", context.GetPipelineRunEndpoint)
	}

	// run the REST API and the status/metrics sidecar together; if
	// either one dies the process exits
	statusServer := bc.NewStatusApiServer(config)

	g := new(errgroup.Group)
	g.Go(func() error {
		// Listen and serve on 0.0.0.0:8080
		return ginEngine.Run(":8080")
	})
	g.Go(statusServer.ListenAndServe)

	if err := g.Wait(); err != nil {
		logg.LogFatal("Server stopped: %v", err)
	}

}
