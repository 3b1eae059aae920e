package blocksci

import (
	"fmt"

	"github.com/couchbaselabs/logg"
)

// Second pipeline step: install the pinned conda and pip dependency
// lists, then the project package itself.  Each install is a child
// command with captured output; the first nonzero exit fails the run.
type DependencyInstaller struct{}

func (d DependencyInstaller) Name() string {
	return STEP_INSTALL_DEPS
}

func (d DependencyInstaller) Run(ctx *StepContext) (StepStatus, error) {

	commands := d.installCommands(ctx.Spec)

	for _, install := range commands {

		logg.LogTo("DEP_INSTALLER", "Installing: %v", install.label)

		_, err := runLoggedCommand(ctx, install.label, install.argv, nil)
		if err != nil {
			return StepFailed, fmt.Errorf("Install failed (%v): %v", install.label, err)
		}

	}

	return StepCompleted, nil

}

type installCommand struct {
	label string
	argv  []string
}

func (d DependencyInstaller) installCommands(spec PipelineSpec) []installCommand {

	commands := []installCommand{}

	if len(spec.CondaPackages) > 0 {
		argv := append([]string{"conda", "install", "--yes", "--quiet"}, spec.CondaPackages...)
		commands = append(commands, installCommand{label: "conda-install", argv: argv})
	}

	if len(spec.PipPackages) > 0 {
		argv := append([]string{"pip", "install", "--quiet"}, spec.PipPackages...)
		commands = append(commands, installCommand{label: "pip-install", argv: argv})
	}

	// install the project itself together with its declared requirements
	if len(spec.InstallCommand) > 0 {
		commands = append(commands, installCommand{label: "project-install", argv: spec.InstallCommand})
	}

	return commands

}
