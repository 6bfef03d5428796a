package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tabrun/tabrun/internal/taskfile"
)

const (
	invocationFailedMessageConstant   = "invocation failed"
	invocationFinishedMessageConstant = "invocation finished"
	invocationStateFieldNameConstant  = "state"
	taskFileFieldNameConstant         = "task_file"
	requestedTargetFieldNameConstant  = "requested_target"
	stateSaveErrorTemplateConstant    = "unable to persist run state: %w"
	summaryDurationRoundingConstant   = time.Millisecond
)

// Request describes one user-initiated run of a task file target.
type Request struct {
	TaskFilePath        string
	TargetName          string
	Overrides           map[string]string
	StalenessPolicyName string
	DryRun              bool
}

// TaskRunner drives the full invocation lifecycle: parse the task file,
// resolve the requested target into a plan, execute the plan, and record
// dependency observations after success.
type TaskRunner struct {
	dependencies Dependencies
}

// NewTaskRunner constructs a TaskRunner with the provided dependencies.
func NewTaskRunner(dependencies Dependencies) TaskRunner {
	return TaskRunner{dependencies: dependencies}
}

// Run executes the requested target and reports the aggregated outcome. The
// returned outcome always carries the terminal invocation state; the error is
// the first failure encountered, already fully contextualized.
func (runner TaskRunner) Run(executionContext context.Context, request Request) (ExecutionOutcome, error) {
	invocation := NewInvocation(request.TargetName, request.Overrides)
	outcome := ExecutionOutcome{StartTime: time.Now()}

	finish := func(runError error) (ExecutionOutcome, error) {
		outcome.EndTime = time.Now()
		outcome.Duration = outcome.EndTime.Sub(outcome.StartTime)
		if runError != nil {
			_ = invocation.Fail(runError)
		}
		outcome.State = invocation.State()
		outcome.SummaryData = runner.buildSummaryData(outcome, runError)
		runner.logCompletion(request, outcome, runError)
		return outcome, runError
	}

	if transitionError := invocation.Transition(InvocationParsing); transitionError != nil {
		return finish(transitionError)
	}
	document, parseError := taskfile.ParseFile(request.TaskFilePath)
	if parseError != nil {
		return finish(parseError)
	}

	if transitionError := invocation.Transition(InvocationResolving); transitionError != nil {
		return finish(transitionError)
	}
	policy, policyError := ResolveStalenessPolicy(request.StalenessPolicyName)
	if policyError != nil {
		return finish(policyError)
	}
	stateStore, stateError := NewStateStore(request.TaskFilePath)
	if stateError != nil {
		return finish(stateError)
	}
	workingDirectory := runner.resolveWorkingDirectory(request)
	resolver, resolverError := NewResolver(document, request.Overrides, policy, stateStore, workingDirectory)
	if resolverError != nil {
		return finish(resolverError)
	}
	plan, planError := resolver.Resolve(request.TargetName)
	if planError != nil {
		return finish(planError)
	}
	outcome.Plan = plan

	executionDependencies := runner.dependencies
	executionDependencies.WorkingDirectory = workingDirectory
	executor, executorError := NewExecutor(executionDependencies)
	if executorError != nil {
		return finish(executorError)
	}

	if request.DryRun {
		if transitionError := invocation.Transition(InvocationExecuting); transitionError != nil {
			return finish(transitionError)
		}
		executor.PrintPlan(plan)
		if transitionError := invocation.Transition(InvocationSucceeded); transitionError != nil {
			return finish(transitionError)
		}
		return finish(nil)
	}

	if transitionError := invocation.Transition(InvocationExecuting); transitionError != nil {
		return finish(transitionError)
	}
	stepOutcomes, executionError := executor.Execute(executionContext, plan)
	outcome.StepOutcomes = stepOutcomes
	if executionError != nil {
		return finish(executionError)
	}

	if recordError := runner.recordRunState(resolver, plan, stateStore); recordError != nil {
		return finish(recordError)
	}

	if transitionError := invocation.Transition(InvocationSucceeded); transitionError != nil {
		return finish(transitionError)
	}
	return finish(nil)
}

// resolveWorkingDirectory anchors action execution and relative dependency
// paths to the task file's directory unless a directory was configured
// explicitly. The state file lives beside the task file, so both must agree.
func (runner TaskRunner) resolveWorkingDirectory(request Request) string {
	configuredDirectory := strings.TrimSpace(runner.dependencies.WorkingDirectory)
	if len(configuredDirectory) > 0 {
		return configuredDirectory
	}
	return filepath.Dir(request.TaskFilePath)
}

func (runner TaskRunner) recordRunState(resolver *Resolver, plan ExecutionPlan, stateStore *StateStore) error {
	for stepIndex := range plan.Steps {
		step := plan.Steps[stepIndex]
		observations, observationError := resolver.ObserveDependencies(step)
		if observationError != nil {
			return fmt.Errorf(stateSaveErrorTemplateConstant, observationError)
		}
		stateStore.Update(step.TargetName, observations)
	}
	if saveError := stateStore.Save(); saveError != nil {
		return fmt.Errorf(stateSaveErrorTemplateConstant, saveError)
	}
	return nil
}

func (runner TaskRunner) buildSummaryData(outcome ExecutionOutcome, runError error) SummaryData {
	summary := SummaryData{
		TargetsPlanned:       len(outcome.Plan.Steps),
		Failed:               runError != nil,
		DurationHuman:        outcome.Duration.Round(summaryDurationRoundingConstant).String(),
		DurationMilliseconds: outcome.Duration.Milliseconds(),
	}
	for outcomeIndex := range outcome.StepOutcomes {
		stepOutcome := outcome.StepOutcomes[outcomeIndex]
		if stepOutcome.Skipped {
			summary.TargetsSkipped++
			continue
		}
		if stepOutcome.Failed {
			continue
		}
		summary.TargetsRun++
		if outcomeIndex < len(outcome.Plan.Steps) {
			summary.ActionsExecuted += len(outcome.Plan.Steps[outcomeIndex].Actions)
		}
	}
	return summary
}

func (runner TaskRunner) logCompletion(request Request, outcome ExecutionOutcome, runError error) {
	logger := runner.dependencies.Logger
	if logger == nil {
		return
	}
	if runError != nil {
		logger.Error(invocationFailedMessageConstant,
			zap.String(taskFileFieldNameConstant, request.TaskFilePath),
			zap.String(requestedTargetFieldNameConstant, request.TargetName),
			zap.String(invocationStateFieldNameConstant, string(outcome.State)),
			zap.Error(runError),
		)
		return
	}
	logger.Info(invocationFinishedMessageConstant,
		zap.String(taskFileFieldNameConstant, request.TaskFilePath),
		zap.String(requestedTargetFieldNameConstant, request.TargetName),
		zap.String(invocationStateFieldNameConstant, string(outcome.State)),
	)
}
