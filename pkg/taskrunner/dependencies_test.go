package taskrunner

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildDependenciesConstructsDefaultShellExecutor(t *testing.T) {
	dependencies, buildError := BuildDependencies(DependenciesConfig{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
	}, DependenciesOptions{})
	require.NoError(t, buildError)
	require.NotNil(t, dependencies.ShellExecutor)
	require.NotNil(t, dependencies.Logger)
	require.NotNil(t, dependencies.Output)
	require.NotNil(t, dependencies.Errors)
}

func TestBuildDependenciesPrefersExplicitWriters(t *testing.T) {
	output := &bytes.Buffer{}
	errorsWriter := &bytes.Buffer{}

	dependencies, buildError := BuildDependencies(DependenciesConfig{}, DependenciesOptions{
		Output: output,
		Errors: errorsWriter,
	})
	require.NoError(t, buildError)
	require.Same(t, output, dependencies.Output.(*bytes.Buffer))
	require.Same(t, errorsWriter, dependencies.Errors.(*bytes.Buffer))
}

func TestBuildDependenciesFallsBackToCommandWriters(t *testing.T) {
	command := &cobra.Command{Use: "run"}
	output := &bytes.Buffer{}
	errorsWriter := &bytes.Buffer{}
	command.SetOut(output)
	command.SetErr(errorsWriter)

	dependencies, buildError := BuildDependencies(DependenciesConfig{}, DependenciesOptions{Command: command})
	require.NoError(t, buildError)
	require.Same(t, output, dependencies.Output.(*bytes.Buffer))
	require.Same(t, errorsWriter, dependencies.Errors.(*bytes.Buffer))
}

func TestBuildDependenciesHonorsHumanReadableProvider(t *testing.T) {
	dependencies, buildError := BuildDependencies(DependenciesConfig{
		HumanReadableLoggingProvider: func() bool { return true },
	}, DependenciesOptions{})
	require.NoError(t, buildError)
	require.True(t, dependencies.HumanReadableLogging)
}
