package blocksci

import (
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestInstallCommands(t *testing.T) {

	spec := *(NewPipelineSpec())
	spec.CondaPackages = []string{"numpy", "scipy", "coverage==3.7.1"}
	spec.PipPackages = []string{"nose2[coverage_plugin]"}
	spec.InstallCommand = []string{"pip", "install", "-e", "."}

	installer := DependencyInstaller{}
	commands := installer.installCommands(spec)

	assert.Equals(t, len(commands), 3)

	assert.Equals(t, commands[0].label, "conda-install")
	assert.DeepEquals(t, commands[0].argv,
		[]string{"conda", "install", "--yes", "--quiet", "numpy", "scipy", "coverage==3.7.1"})

	assert.Equals(t, commands[1].label, "pip-install")
	assert.DeepEquals(t, commands[1].argv,
		[]string{"pip", "install", "--quiet", "nose2[coverage_plugin]"})

	assert.Equals(t, commands[2].label, "project-install")

}

func TestInstallCommandsEmptySpec(t *testing.T) {

	spec := *(NewPipelineSpec())

	installer := DependencyInstaller{}
	commands := installer.installCommands(spec)
	assert.Equals(t, len(commands), 0)

}

func TestInstallerRunsCommands(t *testing.T) {

	ctx := executorTestContext(t)
	ctx.Spec.InstallCommand = []string{"sh", "-c", "echo installed"}

	installer := DependencyInstaller{}
	status, err := installer.Run(ctx)
	assert.True(t, err == nil)
	assert.Equals(t, status, StepCompleted)

	// install output is captured like any other pipeline command
	mockStore := ctx.BlobStore.(*MockBlobStore)
	stdout, ok := mockStore.Puts["run/project-install.stdout"]
	assert.True(t, ok)
	assert.Equals(t, string(stdout), "installed\n")

}

func TestInstallerFailFast(t *testing.T) {

	ctx := executorTestContext(t)
	ctx.Spec.CondaPackages = []string{"numpy"}

	// conda isn't on the path in the test environment, so the first
	// install fails and the step aborts
	installer := DependencyInstaller{}
	status, err := installer.Run(ctx)
	assert.True(t, err != nil)
	assert.Equals(t, status, StepFailed)

}
