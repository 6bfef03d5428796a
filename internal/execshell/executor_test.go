package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tabrun/tabrun/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testStandardErrorOutputConstant              = "failure"
	testRunnerFailureMessageConstant             = "runner failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
	executorSubtestNameTemplateConstant          = "%d_%s"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner, false)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name            string
		runnerResult    execshell.ExecutionResult
		runnerError     error
		expectFailed    bool
		expectExecution bool
		expectedLevels  []zapcore.Level
	}{
		{
			name:           testExecutionSuccessCaseNameConstant,
			runnerResult:   execshell.ExecutionResult{ExitCode: 0},
			expectedLevels: []zapcore.Level{zapcore.InfoLevel, zapcore.InfoLevel},
		},
		{
			name:           testExecutionFailureCaseNameConstant,
			runnerResult:   execshell.ExecutionResult{ExitCode: 2, StandardError: testStandardErrorOutputConstant},
			expectFailed:   true,
			expectedLevels: []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel},
		},
		{
			name:            testExecutionRunnerErrorCaseNameConstant,
			runnerError:     errors.New(testRunnerFailureMessageConstant),
			expectExecution: true,
			expectedLevels:  []zapcore.Level{zapcore.InfoLevel, zapcore.ErrorLevel},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(executorSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.InfoLevel)
			logger := zap.New(observedCore)
			commandRunner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}
			executor, creationError := execshell.NewShellExecutor(logger, commandRunner, false)
			require.NoError(testInstance, creationError)

			_, executionError := executor.ExecuteShell(context.Background(), execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}})

			switch {
			case testCase.expectFailed:
				var failedError execshell.CommandFailedError
				require.True(testInstance, errors.As(executionError, &failedError))
				require.Equal(testInstance, testCase.runnerResult.ExitCode, failedError.Result.ExitCode)
			case testCase.expectExecution:
				var executionFailure execshell.CommandExecutionError
				require.True(testInstance, errors.As(executionError, &executionFailure))
				require.ErrorContains(testInstance, executionFailure.Cause, testRunnerFailureMessageConstant)
			default:
				require.NoError(testInstance, executionError)
			}

			require.Len(testInstance, commandRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandShell, commandRunner.recordedCommands[0].Name)

			loggedLevels := make([]zapcore.Level, 0, observedLogs.Len())
			for _, loggedEntry := range observedLogs.All() {
				loggedLevels = append(loggedLevels, loggedEntry.Level)
			}
			require.Equal(testInstance, testCase.expectedLevels, loggedLevels)
		})
	}
}

func TestShellExecutorRejectsMissingCommandName(testInstance *testing.T) {
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{}, false)
	require.NoError(testInstance, creationError)

	_, executionError := executor.Execute(context.Background(), execshell.ShellCommand{})
	require.ErrorIs(testInstance, executionError, execshell.ErrCommandNameMissing)
}
