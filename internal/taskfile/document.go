package taskfile

import (
	"fmt"
	"strings"
)

// Target describes a named task block parsed from a task file.
type Target struct {
	Name         string
	Dependencies []string
	Actions      []string
	Line         int
}

// Document captures the parsed contents of a task file.
type Document struct {
	Variables     map[string]string
	targets       map[string]Target
	targetOrder   []string
	variableOrder []string
}

// NewDocument constructs an empty document.
func NewDocument() *Document {
	return &Document{
		Variables: map[string]string{},
		targets:   map[string]Target{},
	}
}

// Target returns the target registered under the provided name.
func (document *Document) Target(name string) (Target, bool) {
	target, exists := document.targets[strings.TrimSpace(name)]
	return target, exists
}

// HasTarget reports whether the provided name identifies a known target.
func (document *Document) HasTarget(name string) bool {
	_, exists := document.targets[strings.TrimSpace(name)]
	return exists
}

// TargetNames returns target names in document order.
func (document *Document) TargetNames() []string {
	names := make([]string, len(document.targetOrder))
	copy(names, document.targetOrder)
	return names
}

// VariableNames returns variable names in document order.
func (document *Document) VariableNames() []string {
	names := make([]string, len(document.variableOrder))
	copy(names, document.variableOrder)
	return names
}

func (document *Document) addTarget(target Target) error {
	if _, exists := document.targets[target.Name]; exists {
		return fmt.Errorf("target %q defined multiple times", target.Name)
	}
	document.targets[target.Name] = target
	document.targetOrder = append(document.targetOrder, target.Name)
	return nil
}

func (document *Document) setVariable(name string, value string) {
	if _, exists := document.Variables[name]; !exists {
		document.variableOrder = append(document.variableOrder, name)
	}
	document.Variables[name] = value
}
