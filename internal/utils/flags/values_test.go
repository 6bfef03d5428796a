package flags_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabrun/internal/utils/flags"
)

func buildCommandWithExecutionFlags() *cobra.Command {
	command := &cobra.Command{Use: "run"}
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{StalenessPolicy: "exists"}, flags.ExecutionFlagDefinitions{
		DryRun:    flags.ExecutionFlagDefinition{Name: flags.DryRunFlagName, Usage: flags.DryRunFlagUsage, Enabled: true},
		Staleness: flags.ExecutionFlagDefinition{Name: flags.StalenessFlagName, Usage: flags.StalenessFlagUsage, Enabled: true},
	})
	return command
}

func TestBoolFlagReportsChangedState(t *testing.T) {
	command := buildCommandWithExecutionFlags()

	value, changed, flagError := flags.BoolFlag(command, flags.DryRunFlagName)
	require.NoError(t, flagError)
	require.False(t, value)
	require.False(t, changed)

	require.NoError(t, command.PersistentFlags().Set(flags.DryRunFlagName, "true"))
	value, changed, flagError = flags.BoolFlag(command, flags.DryRunFlagName)
	require.NoError(t, flagError)
	require.True(t, value)
	require.True(t, changed)
}

func TestBoolFlagRejectsUndefinedFlag(t *testing.T) {
	command := &cobra.Command{Use: "run"}

	_, _, flagError := flags.BoolFlag(command, flags.DryRunFlagName)
	require.ErrorIs(t, flagError, flags.ErrFlagNotDefined)
}

func TestCollectExecutionFlags(t *testing.T) {
	command := buildCommandWithExecutionFlags()
	require.NoError(t, command.PersistentFlags().Set(flags.DryRunFlagName, "true"))
	require.NoError(t, command.PersistentFlags().Set(flags.StalenessFlagName, " content-hash "))

	executionFlags := flags.CollectExecutionFlags(command)
	require.True(t, executionFlags.DryRun)
	require.True(t, executionFlags.DryRunSet)
	require.Equal(t, "content-hash", executionFlags.StalenessPolicy)
	require.True(t, executionFlags.StalenessPolicySet)
}

func TestFormatChoiceUsage(t *testing.T) {
	require.Equal(t, "Staleness policy for file dependencies (exists|newer-than|content-hash)",
		flags.FormatChoiceUsage(flags.StalenessFlagUsage, []string{"exists", "newer-than", "content-hash"}))
	require.Equal(t, "plain usage", flags.FormatChoiceUsage("plain usage", nil))
}
