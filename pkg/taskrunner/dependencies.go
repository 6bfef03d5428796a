package taskrunner

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tabrun/tabrun/internal/execshell"
	"github.com/tabrun/tabrun/internal/runner"
)

// DependenciesConfig captures providers required to build runner dependencies.
type DependenciesConfig struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	ShellExecutor                *execshell.ShellExecutor
}

// DependenciesOptions allows per-command overrides when resolving runner dependencies.
type DependenciesOptions struct {
	Command          *cobra.Command
	Output           io.Writer
	Errors           io.Writer
	WorkingDirectory string
}

// BuildDependencies resolves the shell executor and writers for task execution.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) (runner.Dependencies, error) {
	logger := resolveLogger(config.LoggerProvider)
	humanReadable := false
	if config.HumanReadableLoggingProvider != nil {
		humanReadable = config.HumanReadableLoggingProvider()
	}

	shellExecutor := config.ShellExecutor
	if shellExecutor == nil {
		constructedExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadable)
		if executorError != nil {
			return runner.Dependencies{}, fmt.Errorf("taskrunner.dependencies.shell_executor: %w", executorError)
		}
		shellExecutor = constructedExecutor
	}

	outputWriter := resolveWriter(options.Output, options.Command, true)
	errorWriter := resolveWriter(options.Errors, options.Command, false)

	return runner.Dependencies{
		Logger:               logger,
		ShellExecutor:        shellExecutor,
		Output:               outputWriter,
		Errors:               errorWriter,
		WorkingDirectory:     options.WorkingDirectory,
		HumanReadableLogging: humanReadable,
	}, nil
}

func resolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command != nil {
		if useStdout {
			if writer := command.OutOrStdout(); writer != nil && writer != io.Discard {
				return writer
			}
		} else {
			if writer := command.ErrOrStderr(); writer != nil && writer != io.Discard {
				return writer
			}
		}
	}
	if useStdout {
		return os.Stdout
	}
	return os.Stderr
}
