package run

import "strings"

const defaultTaskFileNameConstant = "tabfile"

// CommandConfiguration captures configuration values for run.
type CommandConfiguration struct {
	File      string            `mapstructure:"file"`
	Staleness string            `mapstructure:"staleness"`
	VarsFiles []string          `mapstructure:"vars_files"`
	Variables map[string]string `mapstructure:"variables"`
}

// DefaultCommandConfiguration provides default run command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		File: defaultTaskFileNameConstant,
	}
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.File = strings.TrimSpace(configuration.File)
	sanitized.Staleness = strings.ToLower(strings.TrimSpace(configuration.Staleness))
	sanitized.VarsFiles = nil
	for _, varsFilePath := range configuration.VarsFiles {
		trimmedPath := strings.TrimSpace(varsFilePath)
		if len(trimmedPath) == 0 {
			continue
		}
		sanitized.VarsFiles = append(sanitized.VarsFiles, trimmedPath)
	}
	return sanitized
}
