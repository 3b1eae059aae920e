package blocksci

// Everything a pipeline step needs to do its work.  The context is
// built once per run attempt by the runner and threaded through the
// steps in order; the provision step fills in Env, later steps add the
// artifact urls they produced.
type StepContext struct {
	Configuration Configuration
	Spec          PipelineSpec
	Run           *PipelineRun
	BlobStore     BlobStore

	// per-run scratch directory, created by the provision step
	WorkDir string

	// child process environment for this matrix leg, set by the
	// provision step
	Env []string

	// artifact urls produced by steps, persisted by the runner
	ArtifactsUrl      string
	CoverageReportUrl string
}

// A single step of the pipeline.  Steps run sequentially and the first
// error aborts the run (fail-fast, no retries).  A step may report
// StepSkipped when its work was already done (warm dataset cache).
type PipelineStep interface {
	Name() string
	Run(ctx *StepContext) (StepStatus, error)
}

const (
	STEP_PROVISION       = "provision"
	STEP_INSTALL_DEPS    = "install-deps"
	STEP_STAGE_DATASET   = "stage-dataset"
	STEP_RUN_TESTS       = "run-tests"
	STEP_REPORT_COVERAGE = "report-coverage"
)

// The pipeline, in execution order.
func pipelineSteps() []PipelineStep {
	return []PipelineStep{
		EnvProvisioner{},
		DependencyInstaller{},
		DatasetStager{},
		TestExecutor{},
		CoverageReporter{},
	}
}
