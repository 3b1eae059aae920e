package blocksci

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// A container to hold settings associated with the status/metrics
// sidecar that runs alongside the REST API and the workers.
type StatusApiServer struct {
	Configuration Configuration
}

func NewStatusApiServer(c Configuration) *StatusApiServer {
	return &StatusApiServer{
		Configuration: c,
	}
}

// Get the status router.  This is de-coupled from the webserver startup
// in case you want to embed the status endpoints into another webserver.
func (s StatusApiServer) StatusApiRouter() *mux.Router {

	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	r.Handle("/metrics", promhttp.Handler())

	return r

}

// Listen and serve on the configured status address.  Blocks.
func (s StatusApiServer) ListenAndServe() error {
	return http.ListenAndServe(s.Configuration.StatusListenAddr, s.StatusApiRouter())
}
