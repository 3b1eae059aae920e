package blocksci

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/couchbaselabs/logg"
	"github.com/nu7hatch/gouuid"
)

func Mkdir(directory string) error {
	if err := os.MkdirAll(directory, 0777); err != nil {
		return err
	}
	return nil
}

func streamToFile(r io.Reader, path string) error {

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	defer f.Close()
	defer w.Flush()
	_, err = io.Copy(w, r)
	if err != nil {
		return err
	}
	return nil

}

func NewUuid() string {
	u4, err := uuid.NewV4()
	if err != nil {
		logg.LogPanic("Error generating uuid: %v", err)
	}
	return fmt.Sprintf("%s", u4)
}

// Read from the stdout/stderr pipes of a running command and write them to
// the given file paths.  Everything is also teed to this process' own
// stdout/stderr so the run output shows up in the node logs.
func saveCmdOutputToFiles(cmdStdout, cmdStderr io.ReadCloser, stdOutPath, stdErrPath string) error {

	stdOutDoneChan := make(chan error, 1)
	stdErrDoneChan := make(chan error, 1)

	cmdStderrTee := io.TeeReader(cmdStderr, os.Stderr)
	cmdStdoutTee := io.TeeReader(cmdStdout, os.Stdout)

	go func() {
		stdOutDoneChan <- streamToFile(cmdStdoutTee, stdOutPath)
	}()

	go func() {
		stdErrDoneChan <- streamToFile(cmdStderrTee, stdErrPath)
	}()

	// wait for goroutines
	stdOutResult := <-stdOutDoneChan
	stdErrResult := <-stdErrDoneChan

	// check for errors
	results := []error{stdOutResult, stdErrResult}
	for _, result := range results {
		if result != nil {
			return fmt.Errorf("Saving cmd output failed: %v", result)
		}
	}

	return nil
}

func validatePathExists(path string) error {
	_, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %v", path)
	}
	return nil
}

// TempDir returns the default directory to use for temporary files.
func TempDir() string {

	dir := os.Getenv("TMPDIR")
	if dir == "" {
		dir = "/tmp"
	}
	return dir
}
