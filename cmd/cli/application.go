// Package cli wires the tabrun command hierarchy, configuration loading, and logging.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	listcmd "github.com/tabrun/tabrun/cmd/cli/list"
	runcmd "github.com/tabrun/tabrun/cmd/cli/run"
	"github.com/tabrun/tabrun/internal/utils"
	flagutils "github.com/tabrun/tabrun/internal/utils/flags"
	"github.com/tabrun/tabrun/internal/version"
)

const (
	applicationNameConstant                                          = "tabrun"
	applicationShortDescriptionConstant                              = "tabrun runs task file targets in dependency order"
	applicationLongDescriptionConstant                               = "tabrun parses a declarative task file, resolves the requested target into a dependency-ordered plan, and executes each stale target's actions."
	configurationNameConstant                                        = "config"
	configurationTypeConstant                                        = "yaml"
	configurationFileNameConstant                                    = "config.yaml"
	environmentPrefixConstant                                        = "TABRUN"
	configurationSearchPathEnvironmentVariableConstant               = "TABRUN_CONFIG_SEARCH_PATH"
	xdgConfigHomeEnvironmentVariableConstant                         = "XDG_CONFIG_HOME"
	defaultConfigurationSearchPathConstant                           = "."
	userConfigurationDirectoryNameConstant                           = ".tabrun"
	configFileFlagNameConstant                                       = "config"
	configFileFlagUsageConstant                                      = "Path to a configuration file"
	logLevelFlagNameConstant                                         = "log-level"
	logLevelFlagUsageConstant                                        = "Log verbosity (debug, info, warn, error)"
	logFormatFlagNameConstant                                        = "log-format"
	logFormatFlagUsageConstant                                       = "Log output format (structured, console)"
	versionFlagNameConstant                                          = "version"
	versionFlagUsageConstant                                         = "Print the application version and exit"
	versionCommandUseNameConstant                                    = "version"
	versionCommandShortDescriptionConstant                           = "Print the application version"
	versionCommandLongDescriptionConstant                            = "version prints the detected application version."
	versionOutputTemplateConstant                                    = "tabrun version: %s\n"
	commonLogLevelConfigKeyConstant                                  = "common.log_level"
	commonLogFormatConfigKeyConstant                                 = "common.log_format"
	commonDryRunConfigKeyConstant                                    = "common.dry_run"
	runFileConfigKeyConstant                                         = "run.file"
	runStalenessConfigKeyConstant                                    = "run.staleness"
	listFormatConfigKeyConstant                                      = "list.format"
	configurationLoadErrorTemplateConstant                           = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                              = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                                  = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant                              = "logger not initialized"
	configurationInitializedMessageConstant                          = "configuration initialized"
	configurationInitializedConsoleTemplateConstant                  = "%s (level=%s, format=%s, file=%s)"
	configurationLogLevelFieldConstant                               = "log_level"
	configurationLogFormatFieldConstant                              = "log_format"
	configurationFileFieldConstant                                   = "config_file"
	rootCommandInfoMessageConstant                                   = "root command invoked"
	rootCommandDebugMessageConstant                                  = "root command arguments"
	logFieldCommandNameConstant                                      = "command"
	logFieldArgumentCountConstant                                    = "argument_count"
	logFieldArgumentsConstant                                        = "arguments"
	stalenessPolicyExistsChoiceConstant                              = "exists"
	stalenessPolicyNewerThanChoiceConstant                           = "newer-than"
	stalenessPolicyContentHashChoiceConstant                         = "content-hash"
	configurationInitializationFlagNameConstant                      = "init"
	configurationInitializationFlagUsageConstant                     = "Write the default configuration file"
	configurationInitializationDefaultScopeConstant                  = "local"
	configurationInitializationScopeLocalConstant                    = "local"
	configurationInitializationScopeUserConstant                     = "user"
	configurationInitializationForceFlagNameConstant                 = "force"
	configurationInitializationForceFlagUsageConstant                = "Overwrite an existing configuration file during --init"
	configurationInitializationSuccessMessageConstant                = "configuration file written"
	configurationInitializationContentUnavailableErrorConstant       = "embedded default configuration unavailable"
	configurationInitializationUnsupportedScopeTemplateConstant      = "unsupported --init scope %q (supported: local, user)"
	configurationInitializationWorkingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
	configurationInitializationWorkingDirectoryEmptyErrorConstant    = "working directory path is empty"
	configurationInitializationHomeDirectoryErrorTemplateConstant    = "unable to resolve home directory: %w"
	configurationInitializationHomeDirectoryEmptyErrorConstant       = "home directory path is empty"
	configurationInitializationDirectoryErrorTemplateConstant        = "unable to prepare configuration directory %q: %w"
	configurationInitializationDirectoryConflictTemplateConstant     = "configuration directory path %q exists and is not a directory"
	configurationInitializationExistingDirectoryTemplateConstant     = "configuration file path %q is a directory"
	configurationInitializationExistingFileTemplateConstant          = "configuration file %q already exists; use --force to overwrite"
	configurationInitializationWriteErrorTemplateConstant            = "unable to write configuration file %q: %w"
	configurationDirectoryPermissionConstant                         = 0o755
	configurationFilePermissionConstant                              = 0o644
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(requestedLogLevel utils.LogLevel, requestedLogFormat utils.LogFormat) (utils.LoggerOutputs, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                       *cobra.Command
	configurationLoader               *utils.ConfigurationLoader
	loggerFactory                     loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	commandContextAccessor            utils.CommandContextAccessor
	configurationInitializationScope  string
	configurationInitializationForced bool
	versionFlag                       bool
	versionResolver                   func(context.Context) string
	exitFunction                      func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(command); initializationError != nil {
				return initializationError
			}

			versionRequested := application.versionFlag
			if command != nil {
				if flagValue, flagChanged, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && flagChanged {
					versionRequested = flagValue
				}
			}

			if versionRequested {
				application.printVersion(command.Context())
				application.exitFunction(0)
			}

			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.configurationInitializationScope,
		configurationInitializationFlagNameConstant,
		configurationInitializationDefaultScopeConstant,
		flagutils.FormatChoiceUsage(
			configurationInitializationFlagUsageConstant,
			[]string{configurationInitializationScopeLocalConstant, configurationInitializationScopeUserConstant},
		),
	)
	cobraCommand.PersistentFlags().BoolVar(
		&application.configurationInitializationForced,
		configurationInitializationForceFlagNameConstant,
		false,
		configurationInitializationForceFlagUsageConstant,
	)

	flagutils.BindExecutionFlags(
		cobraCommand,
		flagutils.ExecutionDefaults{},
		flagutils.ExecutionFlagDefinitions{
			DryRun: flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Enabled: true},
			Staleness: flagutils.ExecutionFlagDefinition{
				Name: flagutils.StalenessFlagName,
				Usage: flagutils.FormatChoiceUsage(
					flagutils.StalenessFlagUsage,
					[]string{stalenessPolicyExistsChoiceConstant, stalenessPolicyNewerThanChoiceConstant, stalenessPolicyContentHashChoiceConstant},
				),
				Enabled: true,
			},
		},
	)

	cobraCommand.PersistentFlags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	versionCommand := &cobra.Command{
		Use:           versionCommandUseNameConstant,
		Short:         versionCommandShortDescriptionConstant,
		Long:          versionCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command.Context())
			return nil
		},
	}
	cobraCommand.AddCommand(versionCommand)

	runBuilder := runcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.runCommandConfiguration,
	}
	if runCommand, runBuildError := runBuilder.Build(); runBuildError == nil {
		cobraCommand.AddCommand(runCommand)
	}

	listBuilder := listcmd.CommandBuilder{
		ConfigurationProvider: application.listCommandConfiguration,
	}
	if listCommand, listBuildError := listBuilder.Build(); listBuildError == nil {
		cobraCommand.AddCommand(listCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	normalizedArguments := flagutils.NormalizeToggleArguments(os.Args[1:])
	normalizedArguments = normalizeInitializationScopeArguments(normalizedArguments)
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func normalizeInitializationScopeArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalizedArguments := make([]string, 0, len(arguments))
	flagPrefix := "--" + configurationInitializationFlagNameConstant

	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]

		if strings.HasPrefix(currentArgument, flagPrefix+"=") {
			value := strings.TrimSpace(strings.TrimPrefix(currentArgument, flagPrefix+"="))
			if len(value) == 0 {
				normalizedArguments = append(
					normalizedArguments,
					fmt.Sprintf("%s=%s", flagPrefix, configurationInitializationDefaultScopeConstant),
				)
				continue
			}
			normalizedArguments = append(normalizedArguments, currentArgument)
			continue
		}

		if currentArgument == flagPrefix {
			nextIndex := index + 1
			if nextIndex >= len(arguments) || strings.HasPrefix(arguments[nextIndex], "-") {
				normalizedArguments = append(
					normalizedArguments,
					fmt.Sprintf("%s=%s", flagPrefix, configurationInitializationDefaultScopeConstant),
				)
				continue
			}
		}

		normalizedArguments = append(normalizedArguments, currentArgument)
	}

	return normalizedArguments
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		defaultSearchPaths := []string{defaultConfigurationSearchPathConstant}
		userConfigurationDirectoryPaths := application.resolveUserConfigurationDirectoryPaths()
		if len(userConfigurationDirectoryPaths) > 0 {
			defaultSearchPaths = append(defaultSearchPaths, userConfigurationDirectoryPaths...)
		}

		return defaultSearchPaths
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(baseDirectoryPath string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}

		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, userConfigurationDirectoryNameConstant)
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}

		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant))

	userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir()
	if userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath)
	}

	userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir()
	if userHomeDirectoryError == nil {
		appendConfigurationDirectory(userHomeDirectoryPath)
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		commonDryRunConfigKeyConstant:    false,
		runFileConfigKeyConstant:         runcmd.DefaultCommandConfiguration().File,
		runStalenessConfigKeyConstant:    stalenessPolicyExistsChoiceConstant,
		listFormatConfigKeyConstant:      listcmd.DefaultCommandConfiguration().Format,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)

		executionFlags := application.collectExecutionFlags(command)
		updatedContext = application.commandContextAccessor.WithExecutionFlags(updatedContext, executionFlags)
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)
		updatedContext = application.commandContextAccessor.WithTaskFilePath(updatedContext, application.configuration.Run.File)

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// InitializeForCommand prepares application state for the provided command name without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	return application.initializeConfiguration(command)
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Debug(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

func (application *Application) collectExecutionFlags(command *cobra.Command) utils.ExecutionFlags {
	executionFlags := flagutils.CollectExecutionFlags(command)

	if !executionFlags.DryRunSet && application.configuration.Common.DryRun {
		executionFlags.DryRun = true
		executionFlags.DryRunSet = true
	}

	if !executionFlags.StalenessPolicySet {
		configuredPolicy := strings.TrimSpace(application.configuration.Run.Staleness)
		if len(configuredPolicy) > 0 {
			executionFlags.StalenessPolicy = configuredPolicy
			executionFlags.StalenessPolicySet = true
		}
	}

	return executionFlags
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	return version.Detect(executionContext, version.Dependencies{})
}

func (application *Application) printVersion(executionContext context.Context) {
	resolvedVersion := application.versionResolver(executionContext)
	fmt.Fprintf(application.rootCommand.OutOrStdout(), versionOutputTemplateConstant, resolvedVersion)
}

func (application *Application) handleConfigurationInitialization(command *cobra.Command) (bool, error) {
	if !application.persistentFlagChanged(command, configurationInitializationFlagNameConstant) {
		return false, nil
	}

	initializationScope := strings.TrimSpace(application.configurationInitializationScope)
	if len(initializationScope) == 0 {
		initializationScope = configurationInitializationDefaultScopeConstant
	}

	initializationPlan, planError := application.resolveConfigurationInitializationPlan(initializationScope)
	if planError != nil {
		return true, planError
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if len(configurationContent) == 0 {
		return true, errors.New(configurationInitializationContentUnavailableErrorConstant)
	}

	if writeError := application.writeConfigurationFile(initializationPlan, configurationContent); writeError != nil {
		return true, writeError
	}

	application.logger.Info(
		configurationInitializationSuccessMessageConstant,
		zap.String(configurationFileFieldConstant, initializationPlan.FilePath),
	)

	return true, nil
}

func (application *Application) resolveConfigurationInitializationPlan(initializationScope string) (configurationInitializationPlan, error) {
	normalizedScope := strings.ToLower(strings.TrimSpace(initializationScope))
	switch normalizedScope {
	case "", configurationInitializationScopeLocalConstant:
		workingDirectoryPath, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationWorkingDirectoryErrorTemplateConstant, workingDirectoryError)
		}

		trimmedWorkingDirectoryPath := strings.TrimSpace(workingDirectoryPath)
		if len(trimmedWorkingDirectoryPath) == 0 {
			return configurationInitializationPlan{}, fmt.Errorf(
				configurationInitializationWorkingDirectoryErrorTemplateConstant,
				errors.New(configurationInitializationWorkingDirectoryEmptyErrorConstant),
			)
		}

		return configurationInitializationPlan{
			DirectoryPath: trimmedWorkingDirectoryPath,
			FilePath:      filepath.Join(trimmedWorkingDirectoryPath, configurationFileNameConstant),
		}, nil
	case configurationInitializationScopeUserConstant:
		userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir()
		if userHomeDirectoryError != nil {
			return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationHomeDirectoryErrorTemplateConstant, userHomeDirectoryError)
		}

		trimmedHomeDirectoryPath := strings.TrimSpace(userHomeDirectoryPath)
		if len(trimmedHomeDirectoryPath) == 0 {
			return configurationInitializationPlan{}, fmt.Errorf(
				configurationInitializationHomeDirectoryErrorTemplateConstant,
				errors.New(configurationInitializationHomeDirectoryEmptyErrorConstant),
			)
		}

		configurationDirectoryPath := filepath.Join(trimmedHomeDirectoryPath, userConfigurationDirectoryNameConstant)

		return configurationInitializationPlan{
			DirectoryPath: configurationDirectoryPath,
			FilePath:      filepath.Join(configurationDirectoryPath, configurationFileNameConstant),
		}, nil
	default:
		trimmedScope := strings.TrimSpace(initializationScope)
		if len(trimmedScope) == 0 {
			trimmedScope = initializationScope
		}
		return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationUnsupportedScopeTemplateConstant, trimmedScope)
	}
}

func (application *Application) writeConfigurationFile(initializationPlan configurationInitializationPlan, configurationContent []byte) error {
	if len(configurationContent) == 0 {
		return errors.New(configurationInitializationContentUnavailableErrorConstant)
	}

	directoryPath := strings.TrimSpace(initializationPlan.DirectoryPath)
	if len(directoryPath) == 0 {
		return fmt.Errorf(
			configurationInitializationDirectoryErrorTemplateConstant,
			initializationPlan.DirectoryPath,
			errors.New(configurationInitializationWorkingDirectoryEmptyErrorConstant),
		)
	}

	directoryInfo, directoryStatError := os.Stat(directoryPath)
	switch {
	case directoryStatError == nil:
		if !directoryInfo.IsDir() {
			return fmt.Errorf(configurationInitializationDirectoryConflictTemplateConstant, directoryPath)
		}
	case errors.Is(directoryStatError, os.ErrNotExist):
		if createError := os.MkdirAll(directoryPath, configurationDirectoryPermissionConstant); createError != nil {
			return fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, directoryPath, createError)
		}
	default:
		return fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, directoryPath, directoryStatError)
	}

	fileInfo, fileStatError := os.Stat(initializationPlan.FilePath)
	switch {
	case fileStatError == nil:
		if fileInfo.IsDir() {
			return fmt.Errorf(configurationInitializationExistingDirectoryTemplateConstant, initializationPlan.FilePath)
		}
		if !application.configurationInitializationForced {
			return fmt.Errorf(configurationInitializationExistingFileTemplateConstant, initializationPlan.FilePath)
		}
	case errors.Is(fileStatError, os.ErrNotExist):
	default:
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, fileStatError)
	}

	writeError := os.WriteFile(initializationPlan.FilePath, configurationContent, configurationFilePermissionConstant)
	if writeError != nil {
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, writeError)
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	initializationHandled, initializationError := application.handleConfigurationInitialization(command)
	if initializationError != nil {
		return initializationError
	}
	if initializationHandled {
		return nil
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}

	if syncError := application.syncLoggerInstance(application.consoleLogger); syncError != nil {
		return syncError
	}

	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
