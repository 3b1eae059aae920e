package blocksci

import (
	"fmt"
	"sync"
	"time"

	"github.com/couchbaselabs/logg"
)

// Worker job that takes a pending pipeline run through the full step
// sequence.  The heavy lifting happens in the steps; this ties them to
// the run document: state transitions, run log records, checkpoints and
// artifact urls.
type PipelineRunner struct {
	Configuration Configuration
	PipelineRun   *PipelineRun
}

func NewPipelineRunner(c Configuration, run *PipelineRun) *PipelineRunner {
	return &PipelineRunner{
		Configuration: c,
		PipelineRun:   run,
	}
}

// Run this job
func (p PipelineRunner) Run(wg *sync.WaitGroup) {

	defer wg.Done()

	run := p.PipelineRun

	logg.LogTo("PIPELINE", "Run() called for: %v", run.Id)

	updatedState, err := run.UpdateProcessingState(Processing)
	if err != nil {
		p.recordProcessingError(err)
		return
	}

	if !updatedState {
		logg.LogTo("PIPELINE", "%v already processed.  Ignoring.", run.Id)
		return
	}

	runsStarted.Inc()

	blobStore, err := p.Configuration.NewBlobStoreClient()
	if err != nil {
		p.recordProcessingError(fmt.Errorf("Error creating blob store client: %v", err))
		return
	}

	spec, err := p.getSpec()
	if err != nil {
		p.recordProcessingError(err)
		return
	}

	ctx := &StepContext{
		Configuration: p.Configuration,
		Spec:          *spec,
		Run:           run,
		BlobStore:     blobStore,
		WorkDir:       p.Configuration.RunWorkDirectory(run.Id),
	}

	checkpoints := NewCheckpointManager(p.Configuration, blobStore)

	loadedFrom, err := checkpoints.Load(run)
	if err != nil {
		p.recordProcessingError(fmt.Errorf("Failed to load run state: %v", err))
		return
	}
	if loadedFrom != "" {
		if err := run.SetLoadedFrom(loadedFrom); err != nil {
			p.recordProcessingError(err)
			return
		}
	}

	onRecord := func(record StepRecord) error {
		return run.AppendStepRecord(record)
	}

	stepsErr := executeSteps(ctx, checkpoints, onRecord)

	// persist whatever artifact urls the steps produced, even for a
	// failed run
	if ctx.ArtifactsUrl != "" && ctx.ArtifactsUrl != run.ArtifactsUrl {
		if err := run.SetArtifactsUrl(ctx.ArtifactsUrl); err != nil {
			logg.LogError(err)
		}
	}
	if ctx.CoverageReportUrl != "" && ctx.CoverageReportUrl != run.CoverageReportUrl {
		if err := run.SetCoverageReportUrl(ctx.CoverageReportUrl); err != nil {
			logg.LogError(err)
		}
	}

	if stepsErr != nil {
		runsFailed.Inc()
		p.recordProcessingError(stepsErr)
		return
	}

	if err := run.FinishedSuccessfully(); err != nil {
		p.recordProcessingError(err)
		return
	}

	runsCompleted.Inc()

}

func (p PipelineRunner) getSpec() (*PipelineSpec, error) {
	db := p.Configuration.DbConnection()
	spec := &PipelineSpec{}
	err := db.Retrieve(p.PipelineRun.SpecId, spec)
	if err != nil {
		return nil, fmt.Errorf("Didn't retrieve: %v - %v", p.PipelineRun.SpecId, err)
	}
	return spec, nil
}

func (p PipelineRunner) recordProcessingError(err error) {
	logg.LogError(err)
	if err := p.PipelineRun.Failed(err); err != nil {
		errMsg := fmt.Errorf("Error setting pipeline run as failed: %v", err)
		logg.LogError(errMsg)
	}
}

// Run the steps in order, appending a run log record after each one and
// checkpointing the run state after every completed step.  Steps that
// already completed in an earlier attempt are skipped, except the
// provision step which is re-executed on resume since later steps need
// the environment it assembles.
func executeSteps(ctx *StepContext, checkpoints *CheckpointManager, onRecord func(StepRecord) error) error {

	for _, step := range pipelineSteps() {

		if stepAlreadyDone(ctx.Run.StepRecords, step.Name()) {
			if step.Name() == STEP_PROVISION {
				logg.LogTo("PIPELINE", "Re-running %v on resume", step.Name())
				if _, err := step.Run(ctx); err != nil {
					return fmt.Errorf("Step %v failed on resume: %v", step.Name(), err)
				}
				continue
			}
			logg.LogTo("PIPELINE", "Step already done, skipping: %v", step.Name())
			continue
		}

		record := StepRecord{
			Name:      step.Name(),
			StartedAt: time.Now(),
		}

		status, err := step.Run(ctx)
		record.FinishedAt = time.Now()

		stepDuration.WithLabelValues(step.Name()).Observe(
			record.FinishedAt.Sub(record.StartedAt).Seconds())

		if err != nil {
			record.Status = StepFailed
			record.Message = err.Error()
			if recordErr := onRecord(record); recordErr != nil {
				logg.LogError(recordErr)
			}
			return fmt.Errorf("Step %v failed: %v", step.Name(), err)
		}

		record.Status = status
		record.SavedTo = checkpoints.Destination(ctx.Run.Id)

		if err := onRecord(record); err != nil {
			return fmt.Errorf("Error recording step %v: %v", step.Name(), err)
		}

		if err := checkpoints.Save(ctx.Run); err != nil {
			// correct the run log: the last record for this step must
			// not claim a dump that was never written
			record.SavedTo = ""
			record.Message = fmt.Sprintf("Checkpoint failed: %v", err)
			if recordErr := onRecord(record); recordErr != nil {
				logg.LogError(recordErr)
			}
			return fmt.Errorf("Failed to save run state after %v: %v", step.Name(), err)
		}

	}

	return nil

}

// Run a single matrix leg start to finish without any db or queue
// coordination.  Used by the one-shot runner cli on development boxes.
// Passing the runId of an earlier attempt resumes it from its last
// checkpoint.
func RunPipelineOnce(config Configuration, spec PipelineSpec, leg MatrixLeg, runId string) (*PipelineRun, error) {

	run := NewPipelineRun(config)
	if runId == "" {
		runId = fmt.Sprintf("local-%v", NewUuid())
	}
	run.Id = runId
	run.SpecId = spec.Id
	run.PythonVersion = leg.PythonVersion
	run.Precision = leg.Precision
	run.ProcessingState = Processing

	blobStore, err := config.NewBlobStoreClient()
	if err != nil {
		return nil, fmt.Errorf("Error creating blob store client: %v", err)
	}

	ctx := &StepContext{
		Configuration: config,
		Spec:          spec,
		Run:           run,
		BlobStore:     blobStore,
		WorkDir:       config.RunWorkDirectory(run.Id),
	}

	checkpoints := NewCheckpointManager(config, blobStore)

	loadedFrom, err := checkpoints.Load(run)
	if err != nil {
		return nil, fmt.Errorf("Failed to load run state: %v", err)
	}
	run.LoadedFrom = loadedFrom

	onRecord := func(record StepRecord) error {
		run.StepRecords = append(run.StepRecords, record)
		return nil
	}

	stepsErr := executeSteps(ctx, checkpoints, onRecord)

	run.ArtifactsUrl = ctx.ArtifactsUrl
	run.CoverageReportUrl = ctx.CoverageReportUrl

	if stepsErr != nil {
		run.ProcessingState = Failed
		run.ProcessingLog = fmt.Sprintf("%v", stepsErr)
		return run, stepsErr
	}

	run.ProcessingState = FinishedSuccessfully
	return run, nil

}
