package runner

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var variableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var variableReferencePattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}|\$([A-Za-z0-9_.-]+)`)

// VariableName identifies a stored runner variable.
type VariableName string

// NewVariableName normalizes and validates variable identifiers.
func NewVariableName(raw string) (VariableName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("variable name cannot be empty")
	}
	if !variableNamePattern.MatchString(trimmed) {
		return "", fmt.Errorf("variable name %q must match %s", trimmed, variableNamePattern.String())
	}
	return VariableName(trimmed), nil
}

// VariableStore stores runner variables with concurrent access safety.
// Seeded values come from invocation overrides and always win over
// document defaults assigned through Set.
type VariableStore struct {
	mutex  sync.RWMutex
	values map[VariableName]variableEntry
}

type variableEntry struct {
	value  string
	locked bool
}

// NewVariableStore constructs an empty variable store.
func NewVariableStore() *VariableStore {
	return &VariableStore{values: make(map[VariableName]variableEntry)}
}

// Seed assigns an immutable caller-provided override value.
func (store *VariableStore) Seed(name VariableName, value string) {
	store.set(name, value, true)
}

// Set assigns a document-default value unless an override is already present.
func (store *VariableStore) Set(name VariableName, value string) {
	store.set(name, value, false)
}

func (store *VariableStore) set(name VariableName, value string, locked bool) {
	if store == nil {
		return
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	entry, exists := store.values[name]
	switch {
	case exists && entry.locked && !locked:
		return
	default:
		store.values[name] = variableEntry{value: strings.TrimSpace(value), locked: locked}
	}
}

// Get looks up the value for the provided variable name.
func (store *VariableStore) Get(name VariableName) (string, bool) {
	if store == nil {
		return "", false
	}
	store.mutex.RLock()
	entry, exists := store.values[name]
	store.mutex.RUnlock()
	return entry.value, exists
}

// Snapshot returns a copy of the stored variables keyed by string names.
func (store *VariableStore) Snapshot() map[string]string {
	if store == nil {
		return nil
	}
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	snapshot := make(map[string]string, len(store.values))
	for name, entry := range store.values {
		snapshot[string(name)] = entry.value
	}
	return snapshot
}

// NewSeededVariableStore builds a store holding document defaults overlaid with overrides.
func NewSeededVariableStore(defaults map[string]string, overrides map[string]string) (*VariableStore, error) {
	store := NewVariableStore()
	for rawName, value := range defaults {
		name, nameError := NewVariableName(rawName)
		if nameError != nil {
			return nil, nameError
		}
		store.Set(name, value)
	}
	for rawName, value := range overrides {
		name, nameError := NewVariableName(rawName)
		if nameError != nil {
			return nil, nameError
		}
		store.Seed(name, value)
	}
	return store, nil
}

// Substitute renders every `$name` and `${name}` reference in the provided
// text from the store. Substitution is textual and single-pass; values are
// never re-expanded. A reference without a stored value yields an
// UndefinedVariableError naming the owning target.
func Substitute(text string, store *VariableStore, targetName string) (string, error) {
	var substitutionError error
	rendered := variableReferencePattern.ReplaceAllStringFunc(text, func(match string) string {
		submatches := variableReferencePattern.FindStringSubmatch(match)
		referenceName := submatches[1]
		if len(referenceName) == 0 {
			referenceName = submatches[2]
		}
		value, exists := store.Get(VariableName(referenceName))
		if !exists {
			if substitutionError == nil {
				substitutionError = UndefinedVariableError{VariableName: referenceName, TargetName: targetName}
			}
			return match
		}
		return value
	})
	if substitutionError != nil {
		return "", substitutionError
	}
	return rendered, nil
}
