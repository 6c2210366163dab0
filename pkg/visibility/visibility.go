package visibility

// Evaluator decides whether a field is visible given its visibleWhen rule and
// the values of its sibling fields. Rules are scoped to the group the field
// lives in: "rol" in a party group's rule means that group's rol, never a
// sibling group's.
type Evaluator interface {
	Visible(rule string, scope Scope) (bool, error)
}

// Scope provides the inputs a rule can reference. Siblings holds the values
// of the fields sharing the field's group prefix, keyed by bare field name.
type Scope struct {
	Siblings map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule string, scope Scope) (bool, error)

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(rule string, scope Scope) (bool, error) {
	return fn(rule, scope)
}
