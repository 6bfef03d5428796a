package runner

import "fmt"

// InvocationState identifies one phase of a run lifecycle.
type InvocationState string

// Invocation lifecycle states.
const (
	InvocationPending   InvocationState = "pending"
	InvocationParsing   InvocationState = "parsing"
	InvocationResolving InvocationState = "resolving"
	InvocationExecuting InvocationState = "executing"
	InvocationSucceeded InvocationState = "succeeded"
	InvocationFailed    InvocationState = "failed"
)

const invalidTransitionTemplateConstant = "invalid invocation transition %s -> %s"

var invocationTransitions = map[InvocationState][]InvocationState{
	InvocationPending:   {InvocationParsing},
	InvocationParsing:   {InvocationResolving, InvocationFailed},
	InvocationResolving: {InvocationExecuting, InvocationFailed},
	InvocationExecuting: {InvocationSucceeded, InvocationFailed},
}

// Invocation tracks the lifecycle of one run request. Terminal states are
// succeeded and failed; no automatic retries occur.
type Invocation struct {
	TargetName string
	Overrides  map[string]string
	state      InvocationState
	failure    error
}

// NewInvocation constructs a pending invocation for the requested target.
func NewInvocation(targetName string, overrides map[string]string) *Invocation {
	return &Invocation{TargetName: targetName, Overrides: overrides, state: InvocationPending}
}

// State returns the current lifecycle state.
func (invocation *Invocation) State() InvocationState {
	return invocation.state
}

// Failure returns the error recorded when the invocation failed.
func (invocation *Invocation) Failure() error {
	return invocation.failure
}

// Transition advances the invocation to the requested state.
func (invocation *Invocation) Transition(next InvocationState) error {
	for _, allowed := range invocationTransitions[invocation.state] {
		if allowed == next {
			invocation.state = next
			return nil
		}
	}
	return fmt.Errorf(invalidTransitionTemplateConstant, invocation.state, next)
}

// Fail moves the invocation to the failed state, recording the cause.
func (invocation *Invocation) Fail(cause error) error {
	if transitionError := invocation.Transition(InvocationFailed); transitionError != nil {
		return transitionError
	}
	invocation.failure = cause
	return nil
}
