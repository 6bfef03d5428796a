// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun          bool
	StalenessPolicy string
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun    ExecutionFlagDefinition
	Staleness ExecutionFlagDefinition
}

// BindExecutionFlags attaches standardized execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()

	bindToggleFlag(persistentFlagSet, definitions.DryRun, defaults.DryRun)
	bindChoiceFlag(persistentFlagSet, definitions.Staleness, defaults.StalenessPolicy)
}

func bindToggleFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled {
		return
	}
	if len(definition.Name) == 0 {
		return
	}

	AddToggleFlag(flagSet, nil, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}

func bindChoiceFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue string) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled {
		return
	}
	if len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}

	flagSet.StringP(definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}
