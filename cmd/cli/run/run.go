package run

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabrun/tabrun/internal/runner"
	"github.com/tabrun/tabrun/internal/utils"
	flagutils "github.com/tabrun/tabrun/internal/utils/flags"
	"github.com/tabrun/tabrun/pkg/taskrunner"
)

const (
	commandUseConstant              = "run <target> [NAME=value ...]"
	commandShortDescriptionConstant = "Run a task file target and its dependencies"
	commandLongDescriptionConstant  = "run parses the task file, resolves the requested target into a dependency-ordered plan, and executes each stale target's actions sequentially, stopping at the first failure."
	commandExampleConstant          = "tabrun run all\n  tabrun run process RAW_DATA=data/latest.csv --staleness content-hash"
	variableFlagNameConstant        = "var"
	variableFlagDescriptionConstant = "Set task file variable (key=value). Repeatable."
	targetRequiredMessageConstant   = "target name required; provide a positional argument"
)

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	RunnerFactory                taskrunner.Factory
	WorkingDirectory             string
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().StringP(flagutils.TaskFileFlagName, flagutils.TaskFileFlagShorthand, "", flagutils.TaskFileFlagUsage)
	command.Flags().StringArray(variableFlagNameConstant, nil, variableFlagDescriptionConstant)
	command.Flags().StringArray(flagutils.VarsFileFlagName, nil, flagutils.VarsFileFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	targetName := ""
	assignmentArguments := []string{}
	if len(arguments) > 0 {
		targetName = strings.TrimSpace(arguments[0])
		assignmentArguments = append(assignmentArguments, arguments[1:]...)
	}
	if len(targetName) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(targetRequiredMessageConstant)
	}

	commandConfiguration := builder.resolveConfiguration()
	overrides, overridesError := builder.resolveOverrides(command, commandConfiguration, assignmentArguments)
	if overridesError != nil {
		return overridesError
	}

	taskFilePath, taskFileError := builder.resolveTaskFilePath(command, commandConfiguration)
	if taskFileError != nil {
		return taskFileError
	}

	executionFlags, executionFlagsAvailable := flagutils.ResolveExecutionFlags(command)
	dryRun := false
	stalenessPolicyName := commandConfiguration.Staleness
	if executionFlagsAvailable {
		if executionFlags.DryRunSet {
			dryRun = executionFlags.DryRun
		}
		if executionFlags.StalenessPolicySet {
			stalenessPolicyName = executionFlags.StalenessPolicy
		}
	}

	dependencyOptions := taskrunner.DependenciesOptions{
		Command:          command,
		WorkingDirectory: builder.WorkingDirectory,
	}
	if command != nil {
		dependencyOptions.Output = utils.NewFlushingWriter(command.OutOrStdout())
		dependencyOptions.Errors = utils.NewFlushingWriter(command.ErrOrStderr())
	}

	dependencies, dependenciesError := taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{
			LoggerProvider:               builder.LoggerProvider,
			HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		},
		dependencyOptions,
	)
	if dependenciesError != nil {
		return dependenciesError
	}

	taskRunner := taskrunner.Resolve(builder.RunnerFactory, dependencies)
	_, runError := taskRunner.Run(command.Context(), runner.Request{
		TaskFilePath:        taskFilePath,
		TargetName:          targetName,
		Overrides:           overrides,
		StalenessPolicyName: stalenessPolicyName,
		DryRun:              dryRun,
	})
	return runError
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

func (builder *CommandBuilder) resolveTaskFilePath(command *cobra.Command, configuration CommandConfiguration) (string, error) {
	if command != nil {
		flagValue, flagChanged, flagError := flagutils.StringFlag(command, flagutils.TaskFileFlagName)
		if flagError != nil && !errors.Is(flagError, flagutils.ErrFlagNotDefined) {
			return "", flagError
		}
		if flagChanged && len(strings.TrimSpace(flagValue)) > 0 {
			return strings.TrimSpace(flagValue), nil
		}

		contextAccessor := utils.NewCommandContextAccessor()
		contextPath, contextPathAvailable := contextAccessor.TaskFilePath(command.Context())
		if contextPathAvailable {
			return contextPath, nil
		}
	}

	if len(strings.TrimSpace(configuration.File)) > 0 {
		return strings.TrimSpace(configuration.File), nil
	}
	return DefaultCommandConfiguration().File, nil
}

func (builder *CommandBuilder) resolveOverrides(command *cobra.Command, configuration CommandConfiguration, assignmentArguments []string) (map[string]string, error) {
	overrides := make(map[string]string)
	for key, value := range configuration.Variables {
		normalizedKey, normalizeError := normalizeVariableName(key)
		if normalizeError != nil {
			return nil, normalizeError
		}
		overrides[normalizedKey] = value
	}

	varsFilePaths := append([]string{}, configuration.VarsFiles...)
	if command != nil {
		flaggedPaths, flagError := command.Flags().GetStringArray(flagutils.VarsFileFlagName)
		if flagError != nil {
			return nil, flagError
		}
		varsFilePaths = append(varsFilePaths, flaggedPaths...)
	}
	fileVariables, fileError := loadVariablesFromFiles(varsFilePaths)
	if fileError != nil {
		return nil, fileError
	}
	for key, value := range fileVariables {
		overrides[key] = value
	}

	if command != nil {
		flaggedAssignments, flagError := command.Flags().GetStringArray(variableFlagNameConstant)
		if flagError != nil {
			return nil, flagError
		}
		parsedFlagAssignments, parseError := parseVariableAssignments(flaggedAssignments)
		if parseError != nil {
			return nil, parseError
		}
		for key, value := range parsedFlagAssignments {
			overrides[key] = value
		}
	}

	positionalAssignments, positionalError := parseVariableAssignments(assignmentArguments)
	if positionalError != nil {
		return nil, positionalError
	}
	for key, value := range positionalAssignments {
		overrides[key] = value
	}

	if len(overrides) == 0 {
		return nil, nil
	}
	return overrides, nil
}
