package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tabrun/tabrun/internal/execshell"
)

const (
	targetStartMessageConstant          = "target execution starting"
	targetSkippedMessageConstant        = "target up to date"
	targetCompletedMessageConstant      = "target execution completed"
	targetFieldNameConstant             = "target"
	skippedConsoleTemplateConstant      = "%s: up to date\n"
	dryRunStepTemplateConstant          = "%s:\n"
	dryRunActionTemplateConstant        = "\t%s\n"
	shellExecutorMissingMessageConstant = "runner shell executor not configured"
)

type shellCommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Dependencies captures the collaborators required for plan execution.
type Dependencies struct {
	Logger               *zap.Logger
	ShellExecutor        shellCommandExecutor
	Output               io.Writer
	Errors               io.Writer
	WorkingDirectory     string
	HumanReadableLogging bool
}

// StepOutcome reports the execution status for a single plan step.
type StepOutcome struct {
	TargetName string
	Skipped    bool
	Duration   time.Duration
	Failed     bool
	Error      error
}

// SummaryData aggregates counters for the post-run summary line.
type SummaryData struct {
	TargetsPlanned       int
	TargetsRun           int
	TargetsSkipped       int
	ActionsExecuted      int
	Failed               bool
	DurationHuman        string
	DurationMilliseconds int64
}

// ExecutionOutcome captures aggregated execution metrics for one invocation.
type ExecutionOutcome struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Plan         ExecutionPlan
	StepOutcomes []StepOutcome
	State        InvocationState
	SummaryData  SummaryData
}

// Executor runs resolved execution plans sequentially and fail-fast.
type Executor struct {
	dependencies Dependencies
}

// NewExecutor constructs an Executor with the provided dependencies.
func NewExecutor(dependencies Dependencies) (*Executor, error) {
	if dependencies.ShellExecutor == nil {
		return nil, errors.New(shellExecutorMissingMessageConstant)
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Executor{dependencies: dependencies}, nil
}

// Execute runs every plan step in order, one action at a time. The first
// failing action aborts the remaining actions of its step and the whole run;
// partial outputs of the failed step stay in place.
func (executor *Executor) Execute(executionContext context.Context, plan ExecutionPlan) ([]StepOutcome, error) {
	outcomes := make([]StepOutcome, 0, len(plan.Steps))

	for stepIndex := range plan.Steps {
		step := plan.Steps[stepIndex]
		stepStart := time.Now()

		if step.Fresh {
			executor.logTargetSkipped(step)
			outcomes = append(outcomes, StepOutcome{TargetName: step.TargetName, Skipped: true, Duration: time.Since(stepStart)})
			continue
		}

		executor.dependencies.Logger.Info(targetStartMessageConstant, zap.String(targetFieldNameConstant, step.TargetName))

		if stepError := executor.executeStep(executionContext, step); stepError != nil {
			outcomes = append(outcomes, StepOutcome{TargetName: step.TargetName, Duration: time.Since(stepStart), Failed: true, Error: stepError})
			return outcomes, stepError
		}

		executor.dependencies.Logger.Info(targetCompletedMessageConstant, zap.String(targetFieldNameConstant, step.TargetName))
		outcomes = append(outcomes, StepOutcome{TargetName: step.TargetName, Duration: time.Since(stepStart)})
	}

	return outcomes, nil
}

func (executor *Executor) executeStep(executionContext context.Context, step PlanStep) error {
	for actionIndex := range step.Actions {
		action := step.Actions[actionIndex]
		command := execshell.ShellCommand{
			Name: execshell.CommandName(action.Command),
			Details: execshell.CommandDetails{
				Arguments:        action.Arguments,
				WorkingDirectory: executor.dependencies.WorkingDirectory,
			},
		}

		result, executionError := executor.dependencies.ShellExecutor.Execute(executionContext, command)
		executor.echoActionOutput(result, executionError)
		if executionError != nil {
			return ActionFailureError{
				TargetName: step.TargetName,
				ActionLine: action.Line,
				ExitCode:   resolveExitCode(executionError),
				Cause:      executionError,
			}
		}
	}
	return nil
}

// echoActionOutput relays the captured streams of an action to the run's
// writers so collaborator script output reaches the user. A failed action's
// streams travel inside the execution error.
func (executor *Executor) echoActionOutput(result execshell.ExecutionResult, executionError error) {
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			result = failedError.Result
		}
	}
	if executor.dependencies.Output != nil && len(result.StandardOutput) > 0 {
		fmt.Fprint(executor.dependencies.Output, result.StandardOutput)
	}
	if executor.dependencies.Errors != nil && len(result.StandardError) > 0 {
		fmt.Fprint(executor.dependencies.Errors, result.StandardError)
	}
}

func (executor *Executor) logTargetSkipped(step PlanStep) {
	if executor.dependencies.HumanReadableLogging && executor.dependencies.Output != nil {
		fmt.Fprintf(executor.dependencies.Output, skippedConsoleTemplateConstant, step.TargetName)
	}
	executor.dependencies.Logger.Info(targetSkippedMessageConstant, zap.String(targetFieldNameConstant, step.TargetName))
}

// PrintPlan renders the plan without executing it, for dry runs.
func (executor *Executor) PrintPlan(plan ExecutionPlan) {
	if executor.dependencies.Output == nil {
		return
	}
	for stepIndex := range plan.Steps {
		step := plan.Steps[stepIndex]
		fmt.Fprintf(executor.dependencies.Output, dryRunStepTemplateConstant, step.TargetName)
		for actionIndex := range step.Actions {
			fmt.Fprintf(executor.dependencies.Output, dryRunActionTemplateConstant, step.Actions[actionIndex].Line)
		}
	}
}

func resolveExitCode(executionError error) int {
	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return failedError.Result.ExitCode
	}
	return -1
}
