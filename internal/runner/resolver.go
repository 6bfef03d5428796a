package runner

import (
	"path/filepath"

	"github.com/tabrun/tabrun/internal/taskfile"
)

type targetVisitState int

const (
	targetUnvisited targetVisitState = iota
	targetVisiting
	targetVisited
)

// Resolver turns a parsed task file document into ordered execution plans.
type Resolver struct {
	document      *taskfile.Document
	variables     *VariableStore
	policy        StalenessPolicy
	state         *StateStore
	baseDirectory string
}

// NewResolver constructs a resolver over the provided document. Overrides take
// precedence over the document's variable defaults. The state store may be nil
// when no prior run information is available. Relative file dependency paths
// are anchored to baseDirectory; an empty baseDirectory leaves them relative
// to the process working directory.
func NewResolver(document *taskfile.Document, overrides map[string]string, policy StalenessPolicy, state *StateStore, baseDirectory string) (*Resolver, error) {
	variables, variablesError := NewSeededVariableStore(document.Variables, overrides)
	if variablesError != nil {
		return nil, variablesError
	}
	if policy == nil {
		policy = ExistencePolicy{}
	}
	return &Resolver{document: document, variables: variables, policy: policy, state: state, baseDirectory: baseDirectory}, nil
}

// Variables exposes the seeded variable store backing substitution.
func (resolver *Resolver) Variables() *VariableStore {
	return resolver.variables
}

// Resolve produces the topologically ordered execution plan for the requested
// target: dependencies strictly before dependents, each target planned at most
// once, every action fully substituted before the plan is returned.
func (resolver *Resolver) Resolve(targetName string) (ExecutionPlan, error) {
	if !resolver.document.HasTarget(targetName) {
		return ExecutionPlan{}, UnknownTargetError{TargetName: targetName}
	}

	visitStates := map[string]targetVisitState{}
	plan := ExecutionPlan{RequestedTarget: targetName}

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch visitStates[name] {
		case targetVisited:
			return nil
		case targetVisiting:
			return CyclicDependencyError{CyclePath: append(append([]string{}, path...), name)}
		}
		visitStates[name] = targetVisiting
		currentPath := append(append([]string{}, path...), name)

		target, _ := resolver.document.Target(name)
		step := PlanStep{TargetName: name}
		freshnessKnown := false
		allDependenciesFresh := true

		for dependencyIndex := range target.Dependencies {
			dependency := target.Dependencies[dependencyIndex]
			if resolver.document.HasTarget(dependency) {
				if dependencyError := visit(dependency, currentPath); dependencyError != nil {
					return dependencyError
				}
				continue
			}

			dependencyPath, substitutionError := Substitute(dependency, resolver.variables, name)
			if substitutionError != nil {
				return substitutionError
			}
			dependencyPath = resolver.anchorDependencyPath(dependencyPath)

			record, recordAvailable := resolver.state.Record(name, dependencyPath)
			verdict, evaluationError := resolver.policy.Evaluate(dependencyPath, record, recordAvailable)
			if evaluationError != nil {
				return MissingDependencyError{TargetName: name, DependencyPath: dependencyPath, Cause: evaluationError}
			}

			step.FileDependencies = append(step.FileDependencies, dependencyPath)
			freshnessKnown = true
			if verdict != VerdictFresh {
				allDependenciesFresh = false
			}
		}

		for actionIndex := range target.Actions {
			renderedLine, substitutionError := Substitute(target.Actions[actionIndex], resolver.variables, name)
			if substitutionError != nil {
				return substitutionError
			}
			if action, nonEmpty := NewAction(renderedLine); nonEmpty {
				step.Actions = append(step.Actions, action)
			}
		}

		step.Fresh = freshnessKnown && allDependenciesFresh && resolver.state.HasCompleted(name)

		visitStates[name] = targetVisited
		plan.Steps = append(plan.Steps, step)
		return nil
	}

	if visitError := visit(targetName, nil); visitError != nil {
		return ExecutionPlan{}, visitError
	}
	return plan, nil
}

func (resolver *Resolver) anchorDependencyPath(dependencyPath string) string {
	if len(resolver.baseDirectory) == 0 || filepath.IsAbs(dependencyPath) {
		return dependencyPath
	}
	return filepath.Join(resolver.baseDirectory, dependencyPath)
}

// ObserveDependencies records the current state of a step's file dependencies
// through the active policy, for persistence after a successful run.
func (resolver *Resolver) ObserveDependencies(step PlanStep) (map[string]DependencyRecord, error) {
	if len(step.FileDependencies) == 0 {
		return nil, nil
	}
	observations := make(map[string]DependencyRecord, len(step.FileDependencies))
	for dependencyIndex := range step.FileDependencies {
		dependencyPath := step.FileDependencies[dependencyIndex]
		record, observeError := resolver.policy.Observe(dependencyPath)
		if observeError != nil {
			return nil, observeError
		}
		observations[dependencyPath] = record
	}
	return observations, nil
}
