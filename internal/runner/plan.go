package runner

import "strings"

// Action describes one fully substituted external command invocation.
type Action struct {
	Command   string
	Arguments []string
	Line      string
}

// NewAction splits a rendered action line into a typed command invocation.
func NewAction(renderedLine string) (Action, bool) {
	fields := strings.Fields(renderedLine)
	if len(fields) == 0 {
		return Action{}, false
	}
	return Action{Command: fields[0], Arguments: fields[1:], Line: renderedLine}, true
}

// PlanStep carries one target's ordered actions within an execution plan.
// Fresh marks steps whose file dependencies are unchanged since the last
// recorded successful run under the active staleness policy.
type PlanStep struct {
	TargetName       string
	Actions          []Action
	FileDependencies []string
	Fresh            bool
}

// ExecutionPlan lists plan steps in dependency order: every step's
// dependencies appear strictly before the step itself.
type ExecutionPlan struct {
	RequestedTarget string
	Steps           []PlanStep
}

// TargetOrder returns the planned target names in execution order.
func (plan ExecutionPlan) TargetOrder() []string {
	order := make([]string, 0, len(plan.Steps))
	for stepIndex := range plan.Steps {
		order = append(order, plan.Steps[stepIndex].TargetName)
	}
	return order
}

// ActionCount returns the total number of planned actions.
func (plan ExecutionPlan) ActionCount() int {
	total := 0
	for stepIndex := range plan.Steps {
		total += len(plan.Steps[stepIndex].Actions)
	}
	return total
}
