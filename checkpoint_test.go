package blocksci

import (
	"os"
	"testing"
	"time"

	"github.com/couchbaselabs/go.assert"
)

func checkpointTestManager(t *testing.T, runId string) (*CheckpointManager, Configuration) {

	workDir, err := os.MkdirTemp("", "checkpoint-work")
	assert.True(t, err == nil)

	configuration := NewDefaultConfiguration()
	configuration.WorkDirectory = workDir

	err = Mkdir(configuration.RunWorkDirectory(runId))
	assert.True(t, err == nil)

	return NewCheckpointManager(*configuration, NewMockBlobStore()), *configuration

}

func TestCheckpointSaveAndLoad(t *testing.T) {

	manager, configuration := checkpointTestManager(t, "run")

	run := NewPipelineRun(configuration)
	run.Id = "run"
	run.StepRecords = []StepRecord{
		{Name: STEP_PROVISION, Status: StepCompleted, FinishedAt: time.Now()},
		{Name: STEP_INSTALL_DEPS, Status: StepCompleted, FinishedAt: time.Now()},
	}
	run.ArtifactsUrl = blobUri("run/" + ARTIFACT_BUNDLE)

	err := manager.Save(run)
	assert.True(t, err == nil)

	// the dump is mirrored to the blob store
	mockStore := manager.BlobStore.(*MockBlobStore)
	_, ok := mockStore.Puts["run/"+CHECKPOINT_FILENAME]
	assert.True(t, ok)

	// a fresh run instance picks the state back up
	run2 := NewPipelineRun(configuration)
	run2.Id = "run"

	loadedFrom, err := manager.Load(run2)
	assert.True(t, err == nil)
	assert.Equals(t, loadedFrom, manager.Destination("run"))
	assert.Equals(t, len(run2.StepRecords), 2)
	assert.Equals(t, run2.ArtifactsUrl, run.ArtifactsUrl)

	assert.True(t, stepAlreadyDone(run2.StepRecords, STEP_INSTALL_DEPS))
	assert.False(t, stepAlreadyDone(run2.StepRecords, STEP_RUN_TESTS))

}

// A run rescheduled onto a worker with an empty work directory still
// resumes, from the blob store mirror.
func TestCheckpointLoadFromBlobMirror(t *testing.T) {

	manager, configuration := checkpointTestManager(t, "run")

	run := NewPipelineRun(configuration)
	run.Id = "run"
	run.StepRecords = []StepRecord{
		{Name: STEP_PROVISION, Status: StepCompleted, FinishedAt: time.Now()},
		{Name: STEP_STAGE_DATASET, Status: StepSkipped, FinishedAt: time.Now()},
	}

	err := manager.Save(run)
	assert.True(t, err == nil)

	// a different worker shares the blob store but not the work dir
	otherWorkDir, err := os.MkdirTemp("", "checkpoint-other-work")
	assert.True(t, err == nil)

	otherConfiguration := configuration
	otherConfiguration.WorkDirectory = otherWorkDir
	err = Mkdir(otherConfiguration.RunWorkDirectory("run"))
	assert.True(t, err == nil)

	otherManager := NewCheckpointManager(otherConfiguration, manager.BlobStore)

	run2 := NewPipelineRun(otherConfiguration)
	run2.Id = "run"

	loadedFrom, err := otherManager.Load(run2)
	assert.True(t, err == nil)
	assert.Equals(t, loadedFrom, blobUri("run/"+CHECKPOINT_FILENAME))
	assert.Equals(t, len(run2.StepRecords), 2)
	assert.True(t, stepAlreadyDone(run2.StepRecords, STEP_STAGE_DATASET))

}

func TestCheckpointLoadNoDump(t *testing.T) {

	manager, configuration := checkpointTestManager(t, "run")

	run := NewPipelineRun(configuration)
	run.Id = "run"

	loadedFrom, err := manager.Load(run)
	assert.True(t, err == nil)
	assert.Equals(t, loadedFrom, "")

}

func TestCheckpointLoadWrongRun(t *testing.T) {

	manager, configuration := checkpointTestManager(t, "run")

	run := NewPipelineRun(configuration)
	run.Id = "run"
	run.StepRecords = []StepRecord{{Name: STEP_PROVISION, Status: StepCompleted}}

	err := manager.Save(run)
	assert.True(t, err == nil)

	// move the dump under another run's id
	otherDir := configuration.RunWorkDirectory("other")
	err = Mkdir(otherDir)
	assert.True(t, err == nil)
	err = os.Rename(manager.Destination("run"), manager.Destination("other"))
	assert.True(t, err == nil)

	other := NewPipelineRun(configuration)
	other.Id = "other"

	_, err = manager.Load(other)
	assert.True(t, err != nil)

}
