package blocksci

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/couchbaselabs/logg"
)

// First pipeline step: make sure the node can actually run this matrix
// leg.  Creates the scratch and data directories, checks the required
// executables are on the PATH and assembles the child process
// environment for the leg.
type EnvProvisioner struct{}

func (p EnvProvisioner) Name() string {
	return STEP_PROVISION
}

func (p EnvProvisioner) Run(ctx *StepContext) (StepStatus, error) {

	logg.LogTo("PROVISIONER", "Provisioning leg python=%v precision=%v",
		ctx.Run.PythonVersion, ctx.Run.Precision)

	if err := Mkdir(ctx.WorkDir); err != nil {
		return StepFailed, fmt.Errorf("Error creating work dir: %v.  Err: %v", ctx.WorkDir, err)
	}

	if err := Mkdir(ctx.Configuration.DataPath); err != nil {
		return StepFailed, fmt.Errorf("Error creating data path: %v.  Err: %v", ctx.Configuration.DataPath, err)
	}

	for _, tool := range ctx.Spec.RequiredTools {
		toolPath, err := exec.LookPath(tool)
		if err != nil {
			return StepFailed, fmt.Errorf("Required tool not found on path: %v.  Err: %v", tool, err)
		}
		logg.LogTo("PROVISIONER", "%v found on path: %v", tool, toolPath)
	}

	ctx.Env = legEnvironment(ctx.Configuration, *ctx.Run)

	return StepCompleted, nil

}

// The environment exported to every child process of a matrix leg.  The
// precision axis drives both the data pipeline (FUEL_FLOATX) and the
// compilation flags (THEANO_FLAGS), which is what makes the float32 and
// float64 legs genuinely different runs.
func legEnvironment(config Configuration, run PipelineRun) []string {

	theanoFlags := fmt.Sprintf("floatX=%v,blas.ldflags=-lblas -llapack,optimizer=fast_compile",
		run.Precision)

	env := os.Environ()
	env = append(env,
		fmt.Sprintf("%v=%v", ENV_DATA_PATH, config.DataPath),
		fmt.Sprintf("%v=%v", ENV_FLOATX, run.Precision),
		fmt.Sprintf("%v=%v", ENV_THEANO_FLAGS, theanoFlags),
		fmt.Sprintf("%v=%v", ENV_BLOCKS_PROFILE, "true"),
		fmt.Sprintf("%v=%v", ENV_TESTS, run.Precision),
	)
	return env

}
