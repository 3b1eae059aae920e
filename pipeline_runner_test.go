package blocksci

import (
	"os"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func localRunConfiguration(t *testing.T) Configuration {

	baseDir, err := os.MkdirTemp("", "local-run")
	assert.True(t, err == nil)

	configuration := *(NewDefaultConfiguration())
	configuration.WorkDirectory = baseDir + "/work"
	configuration.DataPath = baseDir + "/data"
	configuration.BlobStoreUrl = "file://" + baseDir + "/blobs"
	configuration.CoverageServiceUrl = ""
	configuration.EtcdServers = []string{}

	// pre-stage the dataset so the run never touches the network
	err = Mkdir(configuration.DataPath)
	assert.True(t, err == nil)
	err = os.WriteFile(configuration.DataPath+"/"+DATASET_FILENAME, []byte("staged"), 0644)
	assert.True(t, err == nil)

	return configuration

}

func localRunSpec() PipelineSpec {

	spec := *(NewPipelineSpec())
	spec.Name = "blocks"
	spec.PythonVersions = []string{"2.7"}
	spec.RequiredTools = []string{"sh"}
	spec.DoctestCommand = fragmentWritingCommand(TEST_PASS_DOCTESTS)
	spec.UnitTestCommand = fragmentWritingCommand(TEST_PASS_TESTS)
	return spec

}

func TestRunPipelineOnce(t *testing.T) {

	configuration := localRunConfiguration(t)
	spec := localRunSpec()

	leg := MatrixLeg{PythonVersion: "2.7", Precision: PRECISION_FLOAT64}

	run, err := RunPipelineOnce(configuration, spec, leg, "")
	assert.True(t, err == nil)
	assert.Equals(t, run.ProcessingState, FinishedSuccessfully)
	assert.Equals(t, run.Precision, PRECISION_FLOAT64)

	// every step left a run log record
	assert.Equals(t, len(run.StepRecords), 5)
	assert.Equals(t, run.StepRecords[0].Name, STEP_PROVISION)
	assert.Equals(t, run.StepRecords[0].Status, StepCompleted)

	// the dataset was pre-staged, so that step was a cache hit
	datasetRecord := findStepRecord(run.StepRecords, STEP_STAGE_DATASET)
	assert.Equals(t, datasetRecord.Status, StepSkipped)

	// completed steps record where the run state was saved
	assert.True(t, run.StepRecords[0].SavedTo != "")

	assert.Equals(t, run.ArtifactsUrl, blobUri(run.Id+"/"+ARTIFACT_BUNDLE))
	assert.Equals(t, run.CoverageReportUrl, blobUri(run.Id+"/"+COVERAGE_REPORT))

	// the checkpoint dump is on disk for a later resume
	_, err = os.Stat(run.StepRecords[0].SavedTo)
	assert.True(t, err == nil)

}

func TestRunPipelineOnceFailFast(t *testing.T) {

	configuration := localRunConfiguration(t)

	spec := localRunSpec()
	spec.DoctestCommand = []string{"sh", "-c", "exit 2"}

	leg := MatrixLeg{PythonVersion: "2.7", Precision: PRECISION_FLOAT32}

	run, err := RunPipelineOnce(configuration, spec, leg, "")
	assert.True(t, err != nil)
	assert.Equals(t, run.ProcessingState, Failed)
	assert.True(t, run.ProcessingLog != "")

	// the run stopped at the test step, coverage never ran
	testsRecord := findStepRecord(run.StepRecords, STEP_RUN_TESTS)
	assert.Equals(t, testsRecord.Status, StepFailed)
	assert.True(t, findStepRecord(run.StepRecords, STEP_REPORT_COVERAGE) == nil)

}

func TestRunPipelineOnceResume(t *testing.T) {

	configuration := localRunConfiguration(t)

	// first attempt fails in the unit test pass
	spec := localRunSpec()
	spec.UnitTestCommand = []string{"sh", "-c", "exit 1"}

	leg := MatrixLeg{PythonVersion: "2.7", Precision: PRECISION_FLOAT32}

	run, err := RunPipelineOnce(configuration, spec, leg, "resumable")
	assert.True(t, err != nil)
	assert.Equals(t, run.ProcessingState, Failed)

	// second attempt with the tests fixed picks up from the checkpoint
	spec.UnitTestCommand = fragmentWritingCommand(TEST_PASS_TESTS)

	run2, err := RunPipelineOnce(configuration, spec, leg, "resumable")
	assert.True(t, err == nil)
	assert.Equals(t, run2.ProcessingState, FinishedSuccessfully)

	// the resume was recorded
	assert.Equals(t, run2.LoadedFrom, NewCheckpointManager(configuration, nil).Destination("resumable"))

	// steps done in the first attempt were not repeated: no duplicate
	// install record was appended after the resume
	installRecords := 0
	for _, record := range run2.StepRecords {
		if record.Name == STEP_INSTALL_DEPS {
			installRecords++
		}
	}
	assert.Equals(t, installRecords, 1)

}
