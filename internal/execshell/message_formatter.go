package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	successMessageTemplateConstant          = "Completed %s"
	failureMessageTemplateConstant          = "%s failed (exit code %d%s)"
	executionFailureMessageTemplateConstant = "%s failed: %v"
	workingDirectorySuffixTemplateConstant  = "%s (in %s)"
	failureDetailSeparatorConstant          = ": "
)

// CommandMessageFormatter renders human-readable command lifecycle messages.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command that is about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.describeCommand(command))
}

// BuildSuccessMessage describes a command that completed with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(successMessageTemplateConstant, formatter.describeCommand(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	detail := strings.TrimSpace(result.StandardError)
	if len(detail) > 0 {
		detail = failureDetailSeparatorConstant + detail
	}
	return fmt.Sprintf(failureMessageTemplateConstant, formatter.describeCommand(command), result.ExitCode, detail)
}

// BuildExecutionFailureMessage describes a command the runner could not execute.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, cause error) string {
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.describeCommand(command), cause)
}

func (formatter CommandMessageFormatter) describeCommand(command ShellCommand) string {
	description := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		description = fmt.Sprintf("%s %s", description, strings.Join(command.Details.Arguments, " "))
	}
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) > 0 {
		description = fmt.Sprintf(workingDirectorySuffixTemplateConstant, description, workingDirectory)
	}
	return description
}
