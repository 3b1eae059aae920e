package blocksci

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"

	"github.com/couchbaselabs/logg"
)

// Fourth pipeline step: launch the visualization server in the
// background, then run the two test passes (doctests, then unit tests)
// under coverage instrumentation.  Each pass must leave a coverage
// fragment behind; any nonzero exit fails the run.
type TestExecutor struct{}

func (t TestExecutor) Name() string {
	return STEP_RUN_TESTS
}

func (t TestExecutor) Run(ctx *StepContext) (StepStatus, error) {

	vizServer, err := t.startVizServer(ctx)
	if err != nil {
		return StepFailed, err
	}
	if vizServer != nil {
		// the server is never awaited, just reaped at leg teardown
		defer t.stopVizServer(vizServer)
	}

	passes := []struct {
		name string
		argv []string
	}{
		{TEST_PASS_DOCTESTS, ctx.Spec.DoctestCommand},
		{TEST_PASS_TESTS, ctx.Spec.UnitTestCommand},
	}

	for _, pass := range passes {

		fragmentPath := filepath.Join(ctx.WorkDir, fmt.Sprintf(COVERAGE_FRAGMENT_FMT, pass.name))

		extraEnv := []string{
			fmt.Sprintf("%v=%v", ENV_COVERAGE_FILE, fragmentPath),
		}

		logg.LogTo("TEST_EXECUTOR", "Starting %v pass (%v)", pass.name, ctx.Run.Precision)

		_, err := runLoggedCommand(ctx, pass.name, pass.argv, extraEnv)
		if err != nil {
			return StepFailed, fmt.Errorf("Test pass %v failed: %v", pass.name, err)
		}

		if err := validatePathExists(fragmentPath); err != nil {
			return StepFailed, fmt.Errorf("Test pass %v produced no coverage fragment: %v", pass.name, err)
		}

	}

	if err := t.bundleArtifacts(ctx); err != nil {
		return StepFailed, err
	}

	return StepCompleted, nil

}

// Spawn the visualization server detached, with its output discarded.
// Returns nil when the spec doesn't configure one.
func (t TestExecutor) startVizServer(ctx *StepContext) (*exec.Cmd, error) {

	argv := ctx.Spec.VizServerCommand
	if len(argv) == 0 {
		return nil, nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = ctx.WorkDir
	cmd.Env = ctx.Env

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	defer devNull.Close()
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("Error starting viz server %v: %v", argv, err)
	}

	logg.LogTo("TEST_EXECUTOR", "Started viz server, pid: %v", cmd.Process.Pid)

	return cmd, nil

}

func (t TestExecutor) stopVizServer(cmd *exec.Cmd) {

	if err := cmd.Process.Kill(); err != nil {
		logg.LogTo("TEST_EXECUTOR", "Error killing viz server: %v", err)
	}

	// reap so the process doesn't linger as a zombie
	cmd.Wait()

}

// Bundle the run's scratch directory into a single tar.gz artifact and
// store it in the blob store.
func (t TestExecutor) bundleArtifacts(ctx *StepContext) error {

	buf := new(bytes.Buffer)
	if err := tarGzDirectory(ctx.WorkDir, buf); err != nil {
		return fmt.Errorf("Error bundling artifacts: %v", err)
	}

	destPath := path.Join(ctx.Run.Id, ARTIFACT_BUNDLE)
	options := BlobPutOptions{ContentType: "application/x-gzip"}

	if err := ctx.BlobStore.Put("", destPath, buf, options); err != nil {
		return fmt.Errorf("Error writing %v to blob store: %v", destPath, err)
	}

	ctx.ArtifactsUrl = blobUri(destPath)

	return nil

}
