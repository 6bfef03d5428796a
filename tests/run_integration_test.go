package tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabrun/cmd/cli"
)

const (
	integrationSearchPathEnvironmentName = "TABRUN_CONFIG_SEARCH_PATH"
	integrationApplicationNameConstant   = "tabrun"
	integrationTaskFileNameConstant      = "tabfile"
	integrationStateFileNameConstant     = ".tabrun.state.json"
	integrationPipelineContentConstant   = "RAW_DATA = input.csv\nPROCESSED = processed.csv\n\nformat:\n\ttouch formatted.txt\n\nprocess: format $RAW_DATA\n\tcp $RAW_DATA $PROCESSED\n\nall: process\n\ttouch pipeline-done.txt\n"
)

func runApplication(testInstance *testing.T, arguments ...string) error {
	testInstance.Helper()

	originalArguments := os.Args
	testInstance.Cleanup(func() {
		os.Args = originalArguments
	})
	os.Args = append([]string{integrationApplicationNameConstant}, arguments...)

	return cli.NewApplication().Execute()
}

func preparePipelineWorkspace(testInstance *testing.T) string {
	testInstance.Helper()

	workspaceDirectory := testInstance.TempDir()
	taskFilePath := filepath.Join(workspaceDirectory, integrationTaskFileNameConstant)
	require.NoError(testInstance, os.WriteFile(taskFilePath, []byte(integrationPipelineContentConstant), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(workspaceDirectory, "input.csv"), []byte("region,score\nnorth,7\n"), 0o644))

	originalWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(workspaceDirectory))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(originalWorkingDirectory))
	})

	testInstance.Setenv(integrationSearchPathEnvironmentName, testInstance.TempDir())
	return workspaceDirectory
}

func TestRunPipelineEndToEnd(testInstance *testing.T) {
	workspaceDirectory := preparePipelineWorkspace(testInstance)

	require.NoError(testInstance, runApplication(testInstance, "run", "all"))

	require.FileExists(testInstance, filepath.Join(workspaceDirectory, "formatted.txt"))
	require.FileExists(testInstance, filepath.Join(workspaceDirectory, "processed.csv"))
	require.FileExists(testInstance, filepath.Join(workspaceDirectory, "pipeline-done.txt"))
	require.FileExists(testInstance, filepath.Join(workspaceDirectory, integrationStateFileNameConstant))

	processedContent, readError := os.ReadFile(filepath.Join(workspaceDirectory, "processed.csv"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "region,score\nnorth,7\n", string(processedContent))
}

func TestRunPipelineSkipsFreshTargetsUnderContentHash(testInstance *testing.T) {
	workspaceDirectory := preparePipelineWorkspace(testInstance)

	require.NoError(testInstance, runApplication(testInstance, "run", "process", "--staleness", "content-hash"))
	require.FileExists(testInstance, filepath.Join(workspaceDirectory, "processed.csv"))

	require.NoError(testInstance, os.Remove(filepath.Join(workspaceDirectory, "processed.csv")))
	require.NoError(testInstance, runApplication(testInstance, "run", "process", "--staleness", "content-hash"))

	// The dependency content is unchanged, so the step is skipped and the output stays absent.
	require.NoFileExists(testInstance, filepath.Join(workspaceDirectory, "processed.csv"))
}

func TestRunPipelineFailsOnMissingDependency(testInstance *testing.T) {
	workspaceDirectory := preparePipelineWorkspace(testInstance)
	require.NoError(testInstance, os.Remove(filepath.Join(workspaceDirectory, "input.csv")))

	executionError := runApplication(testInstance, "run", "all")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "input.csv")
	require.NoFileExists(testInstance, filepath.Join(workspaceDirectory, integrationStateFileNameConstant))
}

func TestRunPipelineVariableOverrides(testInstance *testing.T) {
	workspaceDirectory := preparePipelineWorkspace(testInstance)

	require.NoError(testInstance, runApplication(testInstance, "run", "process", "PROCESSED=custom.csv"))
	require.FileExists(testInstance, filepath.Join(workspaceDirectory, "custom.csv"))
	require.NoFileExists(testInstance, filepath.Join(workspaceDirectory, "processed.csv"))
}
