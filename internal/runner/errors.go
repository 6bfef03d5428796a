package runner

import (
	"fmt"
	"strings"
)

const (
	unknownTargetMessageTemplateConstant     = "unknown target %q"
	missingDependencyMessageTemplateConstant = "target %q requires missing file dependency %q"
	staleDependencyMessageTemplateConstant   = "target %q dependency %q failed staleness check: %s"
	cyclicDependencyMessageTemplateConstant  = "dependency cycle detected: %s"
	undefinedVariableMessageTemplateConstant = "undefined variable %q referenced by target %q"
	actionFailureMessageTemplateConstant     = "target %q action %q exited with code %d"
	cyclicDependencyPathSeparatorConstant    = " -> "
)

// UnknownTargetError indicates that the requested target is not defined.
type UnknownTargetError struct {
	TargetName string
}

// Error implements the error interface.
func (errorDetails UnknownTargetError) Error() string {
	return fmt.Sprintf(unknownTargetMessageTemplateConstant, errorDetails.TargetName)
}

// MissingDependencyError indicates that a file dependency does not exist.
type MissingDependencyError struct {
	TargetName     string
	DependencyPath string
	Cause          error
}

// Error implements the error interface.
func (errorDetails MissingDependencyError) Error() string {
	if errorDetails.Cause != nil {
		return fmt.Sprintf(staleDependencyMessageTemplateConstant, errorDetails.TargetName, errorDetails.DependencyPath, errorDetails.Cause)
	}
	return fmt.Sprintf(missingDependencyMessageTemplateConstant, errorDetails.TargetName, errorDetails.DependencyPath)
}

// Unwrap exposes the underlying staleness failure when one exists.
func (errorDetails MissingDependencyError) Unwrap() error {
	return errorDetails.Cause
}

// CyclicDependencyError indicates that the dependency graph contains a cycle.
type CyclicDependencyError struct {
	CyclePath []string
}

// Error implements the error interface.
func (errorDetails CyclicDependencyError) Error() string {
	return fmt.Sprintf(cyclicDependencyMessageTemplateConstant, strings.Join(errorDetails.CyclePath, cyclicDependencyPathSeparatorConstant))
}

// UndefinedVariableError indicates that an action or dependency references a variable with no value.
type UndefinedVariableError struct {
	VariableName string
	TargetName   string
}

// Error implements the error interface.
func (errorDetails UndefinedVariableError) Error() string {
	return fmt.Sprintf(undefinedVariableMessageTemplateConstant, errorDetails.VariableName, errorDetails.TargetName)
}

// ActionFailureError indicates that an external action exited with a non-zero status.
type ActionFailureError struct {
	TargetName string
	ActionLine string
	ExitCode   int
	Cause      error
}

// Error implements the error interface.
func (errorDetails ActionFailureError) Error() string {
	return fmt.Sprintf(actionFailureMessageTemplateConstant, errorDetails.TargetName, errorDetails.ActionLine, errorDetails.ExitCode)
}

// Unwrap exposes the underlying execution failure.
func (errorDetails ActionFailureError) Unwrap() error {
	return errorDetails.Cause
}
