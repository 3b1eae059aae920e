package blocksci

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/couchbaselabs/go.assert"
	"github.com/tleyden/fakehttp"
)

// starting port to use for fakehttp servers
var port = 4444

// since I'm not sure if NextPort() can be called by multiple threads,
// protect it with a mutex
var portMutex = &sync.Mutex{}

// the fakehttp library doesn't provide an easy way to shutdown an http
// server, so as a workaround, run each fake http server on a unique port
// for each test.
func NextPort() int {
	portMutex.Lock()
	defer portMutex.Unlock()
	port2use := port
	port += 1
	return port2use
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func TestPipelineRunJsonDecode(t *testing.T) {

	jsonString := `
	    {
	       "_id":"run",
	       "_rev":"rev",
	       "type":"pipeline-run",
	       "spec-id":"spec",
	       "python-version":"2.7",
	       "precision":"float64",
	       "processing-state":"processing",
	       "step-records":[
	          {"name":"provision","status":"completed"}
	       ]
	    }`

	run := PipelineRun{}
	err := json.Unmarshal([]byte(jsonString), &run)

	assert.True(t, err == nil)
	assert.Equals(t, run.ProcessingState, Processing)
	assert.Equals(t, run.Precision, PRECISION_FLOAT64)
	assert.Equals(t, len(run.StepRecords), 1)
	assert.Equals(t, run.StepRecords[0].Status, StepCompleted)

}

func TestPipelineRunJsonEncode(t *testing.T) {

	configuration := NewDefaultConfiguration()

	run := NewPipelineRun(*configuration)
	run.Id = "run"
	run.SpecId = "spec"
	run.PythonVersion = "3.4"
	run.Precision = PRECISION_FLOAT32
	run.ProcessingState = FinishedSuccessfully

	data, err := json.Marshal(run)
	assert.True(t, err == nil)

	run2 := PipelineRun{}
	err = json.Unmarshal(data, &run2)
	assert.True(t, err == nil)

	assert.Equals(t, run2.ProcessingState, FinishedSuccessfully)
	assert.Equals(t, run2.SpecId, "spec")
	assert.Equals(t, run2.PythonVersion, "3.4")

}

func TestUpdatePipelineRunProcessingState(t *testing.T) {

	testServer := fakehttp.NewHTTPServerWithPort(NextPort())
	testServer.Start()

	// response when go-couch tries to see that the server is up
	testServer.Response(200, jsonHeaders(), `{"version": "fake"}`)

	// response when go-couch check is db exists
	testServer.Response(200, jsonHeaders(), `{"db_name": "db"}`)

	// first update returns 409
	testServer.Response(409, jsonHeaders(), "")

	// response to GET to refresh
	testServer.Response(200, jsonHeaders(), `{"_id": "run", "_rev": "rev2", "processing-state": "pending"}`)

	// second update succeeds
	testServer.Response(200, jsonHeaders(), `{"id": "run", "rev": "rev3"}`)

	// response to GET to refresh after the successful save
	testServer.Response(200, jsonHeaders(), `{"_id": "run", "_rev": "rev3", "processing-state": "processing"}`)

	configuration := NewDefaultConfiguration()
	configuration.DbUrl = fmt.Sprintf("%v/db", testServer.URL)

	run := NewPipelineRun(*configuration)
	run.Id = "run"
	run.Revision = "rev1"
	run.SpecId = "spec"
	run.ProcessingState = Pending

	updated, err := run.UpdateProcessingState(Processing)
	assert.True(t, updated)
	assert.True(t, err == nil)
	assert.Equals(t, run.ProcessingState, Processing)

}

// A record for a step that already has an entry in the run log must
// still be saved when it corrects the SavedTo or Message fields, eg
// after the checkpoint write failed.
func TestAppendStepRecordCorrection(t *testing.T) {

	testServer := fakehttp.NewHTTPServerWithPort(NextPort())
	testServer.Start()

	// response when go-couch tries to see that the server is up
	testServer.Response(200, jsonHeaders(), `{"version": "fake"}`)

	// response when go-couch check is db exists
	testServer.Response(200, jsonHeaders(), `{"db_name": "db"}`)

	// update succeeds
	testServer.Response(200, jsonHeaders(), `{"id": "run", "rev": "rev2"}`)

	// response to GET to refresh after the successful save
	testServer.Response(200, jsonHeaders(), `
	    {
	       "_id":"run",
	       "_rev":"rev2",
	       "processing-state":"processing",
	       "step-records":[
	          {"name":"stage-dataset","status":"completed","saved-to":"/tmp/run/checkpoint.json"},
	          {"name":"stage-dataset","status":"completed","message":"Checkpoint failed: disk full"}
	       ]
	    }`)

	configuration := NewDefaultConfiguration()
	configuration.DbUrl = fmt.Sprintf("%v/db", testServer.URL)

	finishedAt := time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC)

	run := NewPipelineRun(*configuration)
	run.Id = "run"
	run.Revision = "rev1"
	run.SpecId = "spec"
	run.ProcessingState = Processing
	run.StepRecords = []StepRecord{
		{
			Name:       STEP_STAGE_DATASET,
			Status:     StepCompleted,
			FinishedAt: finishedAt,
			SavedTo:    "/tmp/run/checkpoint.json",
		},
	}

	correction := StepRecord{
		Name:       STEP_STAGE_DATASET,
		Status:     StepCompleted,
		FinishedAt: finishedAt,
		Message:    "Checkpoint failed: disk full",
	}

	err := run.AppendStepRecord(correction)
	assert.True(t, err == nil)

	latest := findStepRecord(run.StepRecords, STEP_STAGE_DATASET)
	assert.True(t, latest != nil)
	assert.Equals(t, latest.SavedTo, "")
	assert.Equals(t, latest.Message, "Checkpoint failed: disk full")

}

// Appending a record identical to the latest one for that step is a
// no-op and must not write to the db.
func TestAppendStepRecordDuplicate(t *testing.T) {

	testServer := fakehttp.NewHTTPServerWithPort(NextPort())
	testServer.Start()

	// response when go-couch tries to see that the server is up
	testServer.Response(200, jsonHeaders(), `{"version": "fake"}`)

	// response when go-couch check is db exists
	testServer.Response(200, jsonHeaders(), `{"db_name": "db"}`)

	configuration := NewDefaultConfiguration()
	configuration.DbUrl = fmt.Sprintf("%v/db", testServer.URL)

	finishedAt := time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC)

	record := StepRecord{
		Name:       STEP_PROVISION,
		Status:     StepCompleted,
		FinishedAt: finishedAt,
		SavedTo:    "/tmp/run/checkpoint.json",
	}

	run := NewPipelineRun(*configuration)
	run.Id = "run"
	run.Revision = "rev1"
	run.SpecId = "spec"
	run.StepRecords = []StepRecord{record}

	err := run.AppendStepRecord(record)
	assert.True(t, err == nil)
	assert.Equals(t, len(run.StepRecords), 1)

}

func TestInsertPipelineRun(t *testing.T) {

	testServer := fakehttp.NewHTTPServerWithPort(NextPort())
	testServer.Start()

	// response when go-couch tries to see that the server is up
	testServer.Response(200, jsonHeaders(), `{"version": "fake"}`)

	// response when go-couch check is db exists
	testServer.Response(200, jsonHeaders(), `{"db_name": "db"}`)

	// insert succeeds
	testServer.Response(200, jsonHeaders(), `{"id": "run", "rev": "bar", "ok": true}`)

	configuration := NewDefaultConfiguration()
	configuration.DbUrl = fmt.Sprintf("%v/db", testServer.URL)

	run := NewPipelineRun(*configuration)
	run.SpecId = "spec"
	run.PythonVersion = "2.7"
	run.Precision = PRECISION_FLOAT32

	err := run.Insert()

	assert.True(t, err == nil)
	assert.Equals(t, "run", run.Id)
	assert.Equals(t, "bar", run.Revision)

}
