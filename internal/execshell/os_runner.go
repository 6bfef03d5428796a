package execshell

import (
	"context"

	"github.com/tabrun/tabrun/internal/utils"
)

type osCommandRunner struct {
	processRunner utils.ExternalProcessRunner
}

// NewOSCommandRunner builds a CommandRunner that launches real operating system processes.
func NewOSCommandRunner() CommandRunner {
	return osCommandRunner{processRunner: utils.NewOSExternalProcessRunner()}
}

func (runner osCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	result, runError := runner.processRunner.Run(executionContext, utils.ExecutableCommand{
		ToolName:             utils.ExternalToolName(command.Name),
		Arguments:            command.Details.Arguments,
		WorkingDirectory:     command.Details.WorkingDirectory,
		EnvironmentVariables: command.Details.EnvironmentVariables,
		StandardInput:        command.Details.StandardInput,
	})
	if runError != nil {
		return ExecutionResult{}, runError
	}
	return ExecutionResult{
		StandardOutput: result.StandardOutput,
		StandardError:  result.StandardError,
		ExitCode:       result.ExitCode,
	}, nil
}
