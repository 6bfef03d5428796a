package taskrunner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tabrun/tabrun/internal/runner"
)

// Runner executes task file targets.
type Runner interface {
	Run(executionContext context.Context, request runner.Request) (runner.ExecutionOutcome, error)
}

// Factory constructs a Runner given runner dependencies.
type Factory func(runner.Dependencies) Runner

// Resolve returns either the provided factory result or a default task runner,
// wrapped so every run prints a post-run summary line.
func Resolve(factory Factory, dependencies runner.Dependencies) Runner {
	var base Runner
	if factory != nil {
		base = factory(dependencies)
	}
	if base == nil {
		base = runner.NewTaskRunner(dependencies)
	}
	return summaryRunner{
		delegate:     base,
		dependencies: dependencies,
	}
}

type summaryRunner struct {
	delegate     Runner
	dependencies runner.Dependencies
}

func (wrapper summaryRunner) Run(executionContext context.Context, request runner.Request) (runner.ExecutionOutcome, error) {
	outcome, runError := wrapper.delegate.Run(executionContext, request)
	if !request.DryRun {
		wrapper.printSummary(outcome)
	}
	return outcome, runError
}

func (wrapper summaryRunner) printSummary(outcome runner.ExecutionOutcome) {
	writer := wrapper.summaryWriter()
	if writer == nil {
		return
	}

	summary := RenderSummaryLine(outcome.SummaryData)
	if len(strings.TrimSpace(summary)) == 0 {
		return
	}
	fmt.Fprintln(writer, summary)
}

func (wrapper summaryRunner) summaryWriter() io.Writer {
	if wrapper.dependencies.Errors != nil {
		return wrapper.dependencies.Errors
	}
	if wrapper.dependencies.Output != nil {
		return wrapper.dependencies.Output
	}
	return nil
}
