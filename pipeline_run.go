package blocksci

import (
	"fmt"

	"github.com/couchbaselabs/logg"
	"github.com/dustin/httputil"
	"github.com/tleyden/go-couch"
)

// A pipeline run is one leg of the test matrix for a pipeline spec: a
// single (python version, precision) combination going through the
// provision / install / stage-dataset / test / coverage sequence.
type PipelineRun struct {
	BlocksCiDoc
	ProcessingState   ProcessingState `json:"processing-state"`
	ProcessingLog     string          `json:"processing-log"`
	SpecId            string          `json:"spec-id" binding:"required"`
	PythonVersion     string          `json:"python-version"`
	Precision         string          `json:"precision"`
	StepRecords       []StepRecord    `json:"step-records"`
	LoadedFrom        string          `json:"loaded-from,omitempty"`
	CoverageReportUrl string          `json:"coverage-report-url,omitempty"`
	ArtifactsUrl      string          `json:"artifacts-url,omitempty"`

	Configuration Configuration `json:"-"`
}

// Create a new pipeline run.  If you don't use this, you must set the
// embedded BlocksCiDoc Type field.
func NewPipelineRun(c Configuration) *PipelineRun {
	return &PipelineRun{
		BlocksCiDoc:   BlocksCiDoc{Type: DOC_TYPE_PIPELINE_RUN},
		Configuration: c,
	}
}

func (r *PipelineRun) GetProcessingState() ProcessingState {
	return r.ProcessingState
}

func (r *PipelineRun) SetProcessingState(newState ProcessingState) {
	r.ProcessingState = newState
}

func (r *PipelineRun) RefreshFromDB(db couch.Database) error {
	run := PipelineRun{}
	err := db.Retrieve(r.Id, &run)
	if err != nil {
		logg.LogTo("PIPELINE", "Error getting latest: %v", err)
		return err
	}
	run.Configuration = r.Configuration
	*r = run
	return nil
}

// Insert into database (only call this if you know it doesn't already exist,
// or else you'll end up w/ unwanted dupes)
func (r *PipelineRun) Insert() error {

	db := r.Configuration.DbConnection()

	id, rev, err := db.Insert(r)
	if err != nil {
		return fmt.Errorf("Error inserting pipeline run: %+v.  Err: %v", r, err)
	}

	r.Id = id
	r.Revision = rev

	return nil

}

// Find a pipeline run in the db with the given id, or error if not found
func (r *PipelineRun) Find(id string) error {
	db := r.Configuration.DbConnection()
	r.Id = id
	if err := r.RefreshFromDB(db); err != nil {
		return err
	}
	return nil
}

// Update the processing state to new state.  The first return value will
// be true when it was updated due to calling this method, or false if it
// was already in that state or put there by someone else.
func (r *PipelineRun) UpdateProcessingState(newState ProcessingState) (bool, error) {

	db := r.Configuration.DbConnection()
	return CasUpdateProcessingState(r, newState, db)

}

// Append a step record to the run log
func (r *PipelineRun) AppendStepRecord(record StepRecord) error {

	updater := func(run *PipelineRun) {
		run.StepRecords = append(run.StepRecords, record)
	}

	// match on the full record: a correction that only changes SavedTo
	// or Message must still be written
	doneMetric := func(run PipelineRun) bool {
		existing := findStepRecord(run.StepRecords, record.Name)
		return existing != nil && existing.Status == record.Status &&
			existing.FinishedAt.Equal(record.FinishedAt) &&
			existing.SavedTo == record.SavedTo &&
			existing.Message == record.Message
	}

	_, err := r.casUpdate(updater, doneMetric)
	return err

}

// Record where the run state was reloaded from when resuming
func (r *PipelineRun) SetLoadedFrom(loadedFrom string) error {

	updater := func(run *PipelineRun) {
		run.LoadedFrom = loadedFrom
	}

	doneMetric := func(run PipelineRun) bool {
		return run.LoadedFrom == loadedFrom
	}

	_, err := r.casUpdate(updater, doneMetric)
	return err

}

func (r *PipelineRun) SetCoverageReportUrl(url string) error {

	updater := func(run *PipelineRun) {
		run.CoverageReportUrl = url
	}

	doneMetric := func(run PipelineRun) bool {
		return run.CoverageReportUrl == url
	}

	_, err := r.casUpdate(updater, doneMetric)
	return err

}

func (r *PipelineRun) SetArtifactsUrl(url string) error {

	updater := func(run *PipelineRun) {
		run.ArtifactsUrl = url
	}

	doneMetric := func(run PipelineRun) bool {
		return run.ArtifactsUrl == url
	}

	_, err := r.casUpdate(updater, doneMetric)
	return err

}

// Update the state to record that it failed, with the failure message
// in the processing log
func (r *PipelineRun) Failed(processingErr error) error {

	updater := func(run *PipelineRun) {
		run.ProcessingState = Failed
		run.ProcessingLog = fmt.Sprintf("%v", processingErr)
	}

	doneMetric := func(run PipelineRun) bool {
		return run.ProcessingState == Failed
	}

	_, err := r.casUpdate(updater, doneMetric)
	return err

}

// Update the state to record that it succeeded
func (r *PipelineRun) FinishedSuccessfully() error {

	updater := func(run *PipelineRun) {
		run.ProcessingState = FinishedSuccessfully
	}

	doneMetric := func(run PipelineRun) bool {
		return run.ProcessingState == FinishedSuccessfully
	}

	_, err := r.casUpdate(updater, doneMetric)
	return err

}

// Retry-on-conflict save loop.  Applies updater and tries to save; on a
// 409 the latest revision is fetched, doneMetric decides whether someone
// else already got there, otherwise the update is reapplied and saved
// again.
func (r *PipelineRun) casUpdate(updater func(*PipelineRun), doneMetric func(PipelineRun) bool) (bool, error) {

	db := r.Configuration.DbConnection()

	if doneMetric(*r) == true {
		logg.LogTo("PIPELINE", "No update needed: %+v, ignoring", r.Id)
		return false, nil
	}

	for {
		updater(r)

		_, err := db.Edit(r)

		if err != nil {

			// if it failed with any other error than 409, return an error
			if !httputil.IsHTTPStatus(err, 409) {
				logg.LogTo("PIPELINE", "Update failed with non-409 error: %v", err)
				return false, err
			}

			// get the latest version of the document
			if err := r.RefreshFromDB(db); err != nil {
				return false, err
			}

			// does it already satisfy the update (eg, someone else did it)?
			if doneMetric(*r) == true {
				logg.LogTo("PIPELINE", "No update needed: %+v, done", r.Id)
				return false, nil
			}

			// no, so try updating and saving again
			continue

		}

		// make sure we have the saved revision before returning
		if err := r.RefreshFromDB(db); err != nil {
			return false, err
		}

		return true, nil

	}

}
