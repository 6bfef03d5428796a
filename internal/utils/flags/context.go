package flags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// TaskFileFlagName exposes the shared task file flag name.
	TaskFileFlagName = "file"
	// TaskFileFlagShorthand provides the shorthand for the task file flag.
	TaskFileFlagShorthand = "f"
	// TaskFileFlagUsage describes the shared task file flag purpose.
	TaskFileFlagUsage = "Path to the task file"
	// VarsFileFlagName exposes the shared variable overrides file flag name.
	VarsFileFlagName = "vars-file"
	// VarsFileFlagUsage describes the shared variable overrides file flag purpose.
	VarsFileFlagUsage = "YAML file with variable overrides (repeatable; later files win)"
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print the execution plan without running actions"
	// StalenessFlagName exposes the shared staleness policy flag name.
	StalenessFlagName = "staleness"
	// StalenessFlagUsage describes the shared staleness policy flag purpose.
	StalenessFlagUsage = "Staleness policy for file dependencies"
)

const toggleValueParseErrorTemplate = "unrecognized toggle value %q"

// AddToggleFlag registers a boolean flag, binding it to the target when one is provided.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil {
		return
	}
	if flagSet.Lookup(name) != nil {
		return
	}
	registerToggleFlagName(name)
	registerToggleFlagName(shorthand)
	if target != nil {
		flagSet.BoolVarP(target, name, shorthand, defaultValue, usage)
		return
	}
	flagSet.BoolP(name, shorthand, defaultValue, usage)
}

func parseToggleValue(rawValue string) (bool, error) {
	parsedValue, parseError := strconv.ParseBool(strings.TrimSpace(rawValue))
	if parseError != nil {
		return false, fmt.Errorf(toggleValueParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

// FormatChoiceUsage renders a flag usage string listing the accepted values.
func FormatChoiceUsage(baseUsage string, choices []string) string {
	if len(choices) == 0 {
		return baseUsage
	}
	return fmt.Sprintf("%s (%s)", baseUsage, strings.Join(choices, "|"))
}
