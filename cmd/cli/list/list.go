package list

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabrun/tabrun/internal/taskfile"
	"github.com/tabrun/tabrun/internal/utils"
	flagutils "github.com/tabrun/tabrun/internal/utils/flags"
)

const (
	commandUseConstant              = "list"
	commandShortDescriptionConstant = "List targets defined in the task file"
	commandLongDescriptionConstant  = "list parses the task file and prints every target with its dependencies, without executing anything."
	commandExampleConstant          = "tabrun list\n  tabrun list --format yaml --file build/tabfile"
	formatFlagNameConstant          = "format"
	formatFlagUsageConstant         = "Output format"
	formatTableConstant             = "table"
	formatYAMLConstant              = "yaml"
	unsupportedFormatTemplate       = "unsupported list format %q (supported: %s, %s)"
	tableRowTemplateConstant        = "%s:%s\n"
	defaultTaskFileNameConstant     = "tabfile"
)

// CommandBuilder assembles the list command.
type CommandBuilder struct {
	ConfigurationProvider func() CommandConfiguration
}

// CommandConfiguration captures configuration values for list.
type CommandConfiguration struct {
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

// DefaultCommandConfiguration provides default list command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		File:   defaultTaskFileNameConstant,
		Format: formatTableConstant,
	}
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.File = strings.TrimSpace(configuration.File)
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	return sanitized
}

type targetListing struct {
	Name         string   `yaml:"name"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Actions      []string `yaml:"actions,omitempty"`
}

// Build constructs the list command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().StringP(flagutils.TaskFileFlagName, flagutils.TaskFileFlagShorthand, "", flagutils.TaskFileFlagUsage)
	command.Flags().String(
		formatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(formatFlagUsageConstant, []string{formatTableConstant, formatYAMLConstant}),
	)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	taskFilePath, taskFileError := resolveTaskFilePath(command, configuration)
	if taskFileError != nil {
		return taskFileError
	}
	outputFormat, formatError := resolveOutputFormat(command, configuration)
	if formatError != nil {
		return formatError
	}

	document, parseError := taskfile.ParseFile(taskFilePath)
	if parseError != nil {
		return parseError
	}

	listings := collectTargetListings(document)
	output := utils.NewFlushingWriter(command.OutOrStdout())
	switch outputFormat {
	case formatTableConstant:
		for _, listing := range listings {
			dependencySuffix := ""
			if len(listing.Dependencies) > 0 {
				dependencySuffix = " " + strings.Join(listing.Dependencies, " ")
			}
			fmt.Fprintf(output, tableRowTemplateConstant, listing.Name, dependencySuffix)
		}
		return nil
	case formatYAMLConstant:
		encoded, encodeError := yaml.Marshal(listings)
		if encodeError != nil {
			return encodeError
		}
		_, writeError := output.Write(encoded)
		return writeError
	default:
		return fmt.Errorf(unsupportedFormatTemplate, outputFormat, formatTableConstant, formatYAMLConstant)
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

func resolveTaskFilePath(command *cobra.Command, configuration CommandConfiguration) (string, error) {
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

	if len(configuration.File) > 0 {
		return configuration.File, nil
	}
	return defaultTaskFileNameConstant, nil
}

func resolveOutputFormat(command *cobra.Command, configuration CommandConfiguration) (string, error) {
	if command != nil {
		flagValue, flagChanged, flagError := flagutils.StringFlag(command, formatFlagNameConstant)
		if flagError != nil && !errors.Is(flagError, flagutils.ErrFlagNotDefined) {
			return "", flagError
		}
		if flagChanged {
			return strings.ToLower(strings.TrimSpace(flagValue)), nil
		}
	}

	if len(configuration.Format) > 0 {
		return configuration.Format, nil
	}
	return formatTableConstant, nil
}

func collectTargetListings(document *taskfile.Document) []targetListing {
	targetNames := document.TargetNames()
	listings := make([]targetListing, 0, len(targetNames))
	for _, targetName := range targetNames {
		target, exists := document.Target(targetName)
		if !exists {
			continue
		}
		listings = append(listings, targetListing{
			Name:         target.Name,
			Dependencies: append([]string{}, target.Dependencies...),
			Actions:      append([]string{}, target.Actions...),
		})
	}
	return listings
}
