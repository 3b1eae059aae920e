package blocksci

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/couchbaselabs/logg"
	"github.com/tleyden/go-couch"
)

// A changes listener listens for changes on the _changes feed and reacts to
// them.  The changes listener currently runs as a goroutine in the httpd
// process, and so the system only currently supports having a single httpd
// process, because otherwise there would be multiple changes listeners on
// the same changes feed, which will cause duplicate jobs to get kicked off.
type ChangesListener struct {
	Configuration Configuration
	Database      couch.Database
	JobScheduler  JobScheduler
}

// Create a new ChangesListener
func NewChangesListener(c Configuration, jobScheduler JobScheduler) (*ChangesListener, error) {

	db := c.DbConnection()

	return &ChangesListener{
		Configuration: c,
		Database:      db,
		JobScheduler:  jobScheduler,
	}, nil
}

// Follow changes feed.  This will typically be run in its own goroutine.
func (c ChangesListener) FollowChangesFeed() {

	logg.LogTo("CHANGES", "going to follow changes feed")

	var since interface{}

	handleChange := func(reader io.Reader) interface{} {
		changes, err := decodeChanges(reader)
		if err != nil {
			// it's very common for this to timeout while waiting for new changes.
			// since we want to follow the changes feed forever, just log an error
			logg.LogTo("CHANGES", "%T decoding changes: %v.", err, err)
			return since
		}
		c.processChanges(changes)

		since = changes.LastSequence
		return since

	}

	options := map[string]interface{}{}
	options["feed"] = "longpoll"

	logg.LogTo("CHANGES", "Following changes feed: %+v.", options)

	// this will block until the handleChange callback returns nil
	c.Database.Changes(handleChange, options)

	logg.LogPanic("Changes listener died -- this should never happen")

}

func (c ChangesListener) processChanges(changes couch.Changes) {

	for _, change := range changes.Results {

		if change.Deleted {
			continue
		}

		// ignore certain docs, like "_user/*"
		if strings.HasPrefix(change.Id, "_user") {
			continue
		}

		doc := BlocksCiDoc{}
		err := c.Database.Retrieve(change.Id, &doc)

		if err != nil {
			errMsg := fmt.Errorf("Didn't retrieve: %v - %v", change.Id, err)
			logg.LogError(errMsg)
			continue
		}

		switch doc.Type {
		case DOC_TYPE_PIPELINE_RUN:
			c.handlePipelineRunChange(change, doc)
		}

	}

}

func (c ChangesListener) handlePipelineRunChange(change couch.Change, doc BlocksCiDoc) {

	logg.LogTo("CHANGES", "got a pipeline run doc: %+v", doc)

	run := NewPipelineRun(c.Configuration)
	if err := run.Find(change.Id); err != nil {
		errMsg := fmt.Errorf("Could not find: %v - %v", change.Id, err)
		logg.LogError(errMsg)
		return
	}

	// check the state, only schedule if state == pending
	if run.ProcessingState != Pending {
		logg.LogTo("CHANGES", "State != pending: %v", run.Id)
		return
	}

	job := NewJobDescriptor(doc.Id)
	if err := c.JobScheduler.ScheduleJob(*job); err != nil {
		logg.LogError(fmt.Errorf("Error scheduling job for %v: %v", doc.Id, err))
	}

}

func decodeChanges(reader io.Reader) (couch.Changes, error) {

	changes := couch.Changes{}
	decoder := json.NewDecoder(reader)
	err := decoder.Decode(&changes)
	if err != nil {
		logg.LogTo("CHANGES", "Err decoding changes: %v", err)
	}
	return changes, err

}
