package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	taskFilePathContextKeyConstant          = commandContextKey("taskFilePath")
	executionFlagsContextKeyConstant        = commandContextKey("executionFlags")
	logLevelContextKeyConstant              = commandContextKey("logLevel")
)

type commandContextKey string

// ExecutionFlags captures standardized execution modifiers derived from CLI flags.
type ExecutionFlags struct {
	DryRun             bool
	DryRunSet          bool
	StalenessPolicy    string
	StalenessPolicySet bool
}

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// WithTaskFilePath attaches the task file path to the provided context when a value is present.
func (accessor CommandContextAccessor) WithTaskFilePath(parentContext context.Context, taskFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedTaskFilePath := strings.TrimSpace(taskFilePath)
	if len(trimmedTaskFilePath) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, taskFilePathContextKeyConstant, trimmedTaskFilePath)
}

// WithExecutionFlags attaches execution flag values to the provided context.
func (accessor CommandContextAccessor) WithExecutionFlags(parentContext context.Context, flags ExecutionFlags) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, executionFlagsContextKeyConstant, flags)
}

// WithLogLevel attaches the effective log level to the provided context.
func (accessor CommandContextAccessor) WithLogLevel(parentContext context.Context, logLevel string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedLogLevel := strings.TrimSpace(logLevel)
	if len(trimmedLogLevel) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, logLevelContextKeyConstant, trimmedLogLevel)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// TaskFilePath extracts the task file path from the provided context.
func (accessor CommandContextAccessor) TaskFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, valueAvailable := executionContext.Value(taskFilePathContextKeyConstant).(string)
	if !valueAvailable {
		return "", false
	}
	return value, true
}

// ExecutionFlags extracts execution flag values from the provided context.
func (accessor CommandContextAccessor) ExecutionFlags(executionContext context.Context) (ExecutionFlags, bool) {
	if executionContext == nil {
		return ExecutionFlags{}, false
	}
	value, valueAvailable := executionContext.Value(executionFlagsContextKeyConstant).(ExecutionFlags)
	if !valueAvailable {
		return ExecutionFlags{}, false
	}
	return value, true
}

// LogLevel extracts the effective log level from the provided context.
func (accessor CommandContextAccessor) LogLevel(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, valueAvailable := executionContext.Value(logLevelContextKeyConstant).(string)
	if !valueAvailable {
		return "", false
	}
	return value, true
}
