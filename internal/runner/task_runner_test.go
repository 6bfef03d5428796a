package runner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabrun/internal/runner"
	"github.com/tabrun/tabrun/internal/taskfile"
)

func writeTaskFileOnDisk(testInstance *testing.T) string {
	testInstance.Helper()

	temporaryDirectory := testInstance.TempDir()
	rawDataPath := filepath.Join(temporaryDirectory, "WHR2023.csv")
	processedDataPath := filepath.Join(temporaryDirectory, "WHR2023_processed.csv")
	requirementsPath := filepath.Join(temporaryDirectory, "requirements.txt")
	require.NoError(testInstance, os.WriteFile(rawDataPath, []byte("country,score\n"), 0o644))
	require.NoError(testInstance, os.WriteFile(requirementsPath, []byte("pandas\n"), 0o644))

	taskFilePath := filepath.Join(temporaryDirectory, "tabfile")
	documentText := fmt.Sprintf(pipelineDocumentTemplateConstant, rawDataPath, processedDataPath, requirementsPath)
	require.NoError(testInstance, os.WriteFile(taskFilePath, []byte(documentText), 0o644))
	return taskFilePath
}

func TestTaskRunnerRunsFullPipeline(testInstance *testing.T) {
	taskFilePath := writeTaskFileOnDisk(testInstance)
	shellExecutor := &recordingShellExecutor{}
	taskRunner := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: shellExecutor})

	outcome, runError := taskRunner.Run(context.Background(), runner.Request{
		TaskFilePath: taskFilePath,
		TargetName:   "all",
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, runner.InvocationSucceeded, outcome.State)
	require.Equal(testInstance, []string{"install", "format", "process", "analyze", "all"}, outcome.Plan.TargetOrder())
	require.Equal(testInstance, 5, outcome.SummaryData.TargetsRun)
	require.Equal(testInstance, 5, outcome.SummaryData.ActionsExecuted)
	require.False(testInstance, outcome.SummaryData.Failed)

	commandLines := shellExecutor.commandLines()
	require.Len(testInstance, commandLines, 5)
	require.Equal(testInstance, "black src", commandLines[1])
	require.Equal(testInstance, "echo pipeline complete", commandLines[4])
}

func TestTaskRunnerAppliesOverrides(testInstance *testing.T) {
	taskFilePath := writeTaskFileOnDisk(testInstance)
	overridePath := filepath.Join(filepath.Dir(taskFilePath), "override.csv")
	require.NoError(testInstance, os.WriteFile(overridePath, []byte("country,score\n"), 0o644))

	shellExecutor := &recordingShellExecutor{}
	taskRunner := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: shellExecutor})

	_, runError := taskRunner.Run(context.Background(), runner.Request{
		TaskFilePath: taskFilePath,
		TargetName:   "process",
		Overrides:    map[string]string{"RAW_DATA": overridePath},
	})
	require.NoError(testInstance, runError)

	commandLines := shellExecutor.commandLines()
	require.Contains(testInstance, commandLines, fmt.Sprintf("python src/process.py %s", overridePath))
}

func TestTaskRunnerAnchorsExecutionToTaskFileDirectory(testInstance *testing.T) {
	taskFilePath := writeTaskFileOnDisk(testInstance)
	shellExecutor := &recordingShellExecutor{}
	taskRunner := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: shellExecutor})

	_, runError := taskRunner.Run(context.Background(), runner.Request{
		TaskFilePath: taskFilePath,
		TargetName:   "all",
	})
	require.NoError(testInstance, runError)
	require.NotEmpty(testInstance, shellExecutor.executedCommands)
	for _, executedCommand := range shellExecutor.executedCommands {
		require.Equal(testInstance, filepath.Dir(taskFilePath), executedCommand.Details.WorkingDirectory)
	}
}

func TestTaskRunnerReportsFailureTaxonomy(testInstance *testing.T) {
	taskFilePath := writeTaskFileOnDisk(testInstance)
	malformedTaskFilePath := filepath.Join(testInstance.TempDir(), "tabfile")
	require.NoError(testInstance, os.WriteFile(malformedTaskFilePath, []byte("\techo orphan action\n"), 0o644))

	testCases := []struct {
		name          string
		request       runner.Request
		classifyError func(testInstance *testing.T, runError error)
	}{
		{
			name:    "unknown_target",
			request: runner.Request{TaskFilePath: taskFilePath, TargetName: "deploy"},
			classifyError: func(testInstance *testing.T, runError error) {
				var unknownError runner.UnknownTargetError
				require.True(testInstance, errors.As(runError, &unknownError))
			},
		},
		{
			name:    "unreadable_task_file",
			request: runner.Request{TaskFilePath: filepath.Join(testInstance.TempDir(), "absent"), TargetName: "all"},
			classifyError: func(testInstance *testing.T, runError error) {
				require.Error(testInstance, runError)
			},
		},
		{
			name:    "malformed_task_file",
			request: runner.Request{TaskFilePath: malformedTaskFilePath, TargetName: "all"},
			classifyError: func(testInstance *testing.T, runError error) {
				var parseError taskfile.ParseError
				require.True(testInstance, errors.As(runError, &parseError))
			},
		},
		{
			name:    "unknown_staleness_policy",
			request: runner.Request{TaskFilePath: taskFilePath, TargetName: "all", StalenessPolicyName: "mtime"},
			classifyError: func(testInstance *testing.T, runError error) {
				require.Error(testInstance, runError)
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(variablesSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			taskRunner := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: &recordingShellExecutor{}})
			outcome, runError := taskRunner.Run(context.Background(), testCase.request)
			testCase.classifyError(testInstance, runError)
			require.Equal(testInstance, runner.InvocationFailed, outcome.State)
			require.True(testInstance, outcome.SummaryData.Failed)
		})
	}
}

func TestTaskRunnerDryRunExecutesNothing(testInstance *testing.T) {
	taskFilePath := writeTaskFileOnDisk(testInstance)
	shellExecutor := &recordingShellExecutor{}
	var planOutput bytes.Buffer
	taskRunner := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: shellExecutor, Output: &planOutput})

	outcome, runError := taskRunner.Run(context.Background(), runner.Request{
		TaskFilePath: taskFilePath,
		TargetName:   "all",
		DryRun:       true,
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, runner.InvocationSucceeded, outcome.State)
	require.Empty(testInstance, shellExecutor.executedCommands)
	require.Contains(testInstance, planOutput.String(), "all:\n\techo pipeline complete\n")

	_, stateStatError := os.Stat(filepath.Join(filepath.Dir(taskFilePath), ".tabrun.state.json"))
	require.True(testInstance, errors.Is(stateStatError, os.ErrNotExist))
}

func TestTaskRunnerSkipsFreshTargetsOnSecondRun(testInstance *testing.T) {
	taskFilePath := writeTaskFileOnDisk(testInstance)
	request := runner.Request{
		TaskFilePath:        taskFilePath,
		TargetName:          "process",
		StalenessPolicyName: "content-hash",
	}

	firstRunExecutor := &recordingShellExecutor{}
	firstOutcome, firstRunError := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: firstRunExecutor}).Run(context.Background(), request)
	require.NoError(testInstance, firstRunError)
	require.Equal(testInstance, 2, firstOutcome.SummaryData.TargetsRun)
	require.Zero(testInstance, firstOutcome.SummaryData.TargetsSkipped)

	secondRunExecutor := &recordingShellExecutor{}
	secondOutcome, secondRunError := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: secondRunExecutor}).Run(context.Background(), request)
	require.NoError(testInstance, secondRunError)
	require.Equal(testInstance, 2, secondOutcome.SummaryData.TargetsSkipped)
	require.Empty(testInstance, secondRunExecutor.executedCommands)
}

func TestTaskRunnerDoesNotRecordStateAfterFailure(testInstance *testing.T) {
	taskFilePath := writeTaskFileOnDisk(testInstance)
	shellExecutor := &recordingShellExecutor{failingCommand: "pip", failureExitCode: 1}
	taskRunner := runner.NewTaskRunner(runner.Dependencies{ShellExecutor: shellExecutor})

	outcome, runError := taskRunner.Run(context.Background(), runner.Request{
		TaskFilePath: taskFilePath,
		TargetName:   "all",
	})
	var actionFailure runner.ActionFailureError
	require.True(testInstance, errors.As(runError, &actionFailure))
	require.Equal(testInstance, "install", actionFailure.TargetName)
	require.Equal(testInstance, runner.InvocationFailed, outcome.State)

	_, stateStatError := os.Stat(filepath.Join(filepath.Dir(taskFilePath), ".tabrun.state.json"))
	require.True(testInstance, errors.Is(stateStatError, os.ErrNotExist))
}
