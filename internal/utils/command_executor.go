package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const (
	processRunnerMissingMessageConstant = "external process runner not configured"
	commandNameMissingMessageConstant   = "executable command name not provided"
	environmentEntryTemplateConstant    = "%s=%s"
)

// ExternalToolName identifies an external executable invoked by the application.
type ExternalToolName string

// Frequently used external tools.
const (
	ExternalToolShell ExternalToolName = "sh"
	ExternalToolGit   ExternalToolName = "git"
)

// ExecutableCommand describes one external process invocation.
type ExecutableCommand struct {
	ToolName             ExternalToolName
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// CommandResult captures the observable outcome of an external process.
type CommandResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandOptions carries invocation details shared by the tool-specific wrappers.
type CommandOptions struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ExternalProcessRunner executes external commands.
type ExternalProcessRunner interface {
	Run(executionContext context.Context, command ExecutableCommand) (CommandResult, error)
}

// CommandExecutor provides typed wrappers around an external process runner.
type CommandExecutor struct {
	processRunner ExternalProcessRunner
}

// NewCommandExecutor constructs a CommandExecutor backed by the provided runner.
func NewCommandExecutor(processRunner ExternalProcessRunner) *CommandExecutor {
	return &CommandExecutor{processRunner: processRunner}
}

// Execute runs the provided command through the configured process runner.
func (executor *CommandExecutor) Execute(executionContext context.Context, command ExecutableCommand) (CommandResult, error) {
	if executor.processRunner == nil {
		return CommandResult{}, errors.New(processRunnerMissingMessageConstant)
	}
	if len(strings.TrimSpace(string(command.ToolName))) == 0 {
		return CommandResult{}, errors.New(commandNameMissingMessageConstant)
	}
	return executor.processRunner.Run(executionContext, command)
}

// ExecuteShellCommand runs the POSIX shell with the provided details.
func (executor *CommandExecutor) ExecuteShellCommand(executionContext context.Context, options CommandOptions) (CommandResult, error) {
	return executor.Execute(executionContext, newExecutableCommand(ExternalToolShell, options))
}

// ExecuteGitCommand runs the git executable with the provided details.
func (executor *CommandExecutor) ExecuteGitCommand(executionContext context.Context, options CommandOptions) (CommandResult, error) {
	return executor.Execute(executionContext, newExecutableCommand(ExternalToolGit, options))
}

func newExecutableCommand(toolName ExternalToolName, options CommandOptions) ExecutableCommand {
	return ExecutableCommand{
		ToolName:             toolName,
		Arguments:            options.Arguments,
		WorkingDirectory:     options.WorkingDirectory,
		EnvironmentVariables: options.EnvironmentVariables,
		StandardInput:        options.StandardInput,
	}
}

// OSExternalProcessRunner executes commands through os/exec.
type OSExternalProcessRunner struct{}

// NewOSExternalProcessRunner constructs an operating-system process runner.
func NewOSExternalProcessRunner() *OSExternalProcessRunner {
	return &OSExternalProcessRunner{}
}

// Run executes the command, capturing output streams and the exit code.
func (runner *OSExternalProcessRunner) Run(executionContext context.Context, command ExecutableCommand) (CommandResult, error) {
	executable := exec.CommandContext(executionContext, string(command.ToolName), command.Arguments...)
	executable.Dir = command.WorkingDirectory
	executable.Env = mergedEnvironment(command.EnvironmentVariables)
	if len(command.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.StandardInput)
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	executable.Stdout = &standardOutput
	executable.Stderr = &standardError

	runError := executable.Run()
	result := CommandResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}

	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			result.ExitCode = exitError.ExitCode()
			return result, nil
		}
		return result, runError
	}

	result.ExitCode = 0
	return result, nil
}

func mergedEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}

	environment := os.Environ()
	overrideKeys := make([]string, 0, len(overrides))
	for overrideKey := range overrides {
		overrideKeys = append(overrideKeys, overrideKey)
	}
	sort.Strings(overrideKeys)
	for _, overrideKey := range overrideKeys {
		environment = append(environment, fmt.Sprintf(environmentEntryTemplateConstant, overrideKey, overrides[overrideKey]))
	}
	return environment
}
