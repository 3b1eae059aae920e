package blocksci

import (
	"fmt"
	"os/exec"
	"path"

	"github.com/couchbaselabs/logg"
)

type commandResult struct {
	StdOutUrl string
	StdErrUrl string
}

// Run a child command with the leg environment, teeing stdout/stderr to
// files in the work directory and then uploading both to the blob store
// under <run-id>/<label>.std{out,err}.  Returns the command's error (a
// nonzero exit surfaces here) after the output has been persisted.
func runLoggedCommand(ctx *StepContext, label string, argv []string, extraEnv []string) (commandResult, error) {

	result := commandResult{}

	if len(argv) == 0 {
		return result, fmt.Errorf("Empty command for: %v", label)
	}

	logg.LogTo("PIPELINE", "Running %v: %v", label, argv)

	cmd := exec.Command(argv[0], argv[1:]...)

	// run in the work directory, relative paths in commands depend on it
	cmd.Dir = ctx.WorkDir
	cmd.Env = append(append([]string{}, ctx.Env...), extraEnv...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, fmt.Errorf("Error running %v: StdoutPipe(). Err: %v", label, err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return result, fmt.Errorf("Error running %v: StderrPipe(). Err: %v", label, err)
	}

	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("Error running %v: cmd.Start(). Err: %v", label, err)
	}

	stdOutPath := path.Join(ctx.WorkDir, fmt.Sprintf("%v.stdout", label))
	stdErrPath := path.Join(ctx.WorkDir, fmt.Sprintf("%v.stderr", label))

	if err := saveCmdOutputToFiles(stdout, stderr, stdOutPath, stdErrPath); err != nil {
		return result, fmt.Errorf("Error running %v: saveCmdOutput. Err: %v", label, err)
	}

	// wait for the command to complete
	runCommandErr := cmd.Wait()

	// persist the captured output whether the command succeeded or not,
	// a failing run with no logs is undebuggable
	destStdOut := path.Join(ctx.Run.Id, path.Base(stdOutPath))
	destStdErr := path.Join(ctx.Run.Id, path.Base(stdErrPath))

	if err := saveFileToBlobStore(stdOutPath, destStdOut, "text/plain", ctx.BlobStore); err != nil {
		return result, fmt.Errorf("Error saving %v output: %v", label, err)
	}
	if err := saveFileToBlobStore(stdErrPath, destStdErr, "text/plain", ctx.BlobStore); err != nil {
		return result, fmt.Errorf("Error saving %v output: %v", label, err)
	}

	result.StdOutUrl = blobUri(destStdOut)
	result.StdErrUrl = blobUri(destStdErr)

	return result, runCommandErr

}
