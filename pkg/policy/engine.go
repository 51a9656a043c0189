package policy

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// Result is the outcome of one policyCheck invocation.
type Result struct {
	Warnings []string
	Errors   []string
}

// Success reports whether the check passed (possibly with warnings).
func (r Result) Success() bool {
	return len(r.Errors) == 0
}

// PolicyEngine evaluates organization-configured rules against a composed
// schema. It is a pluggable external collaborator; LocalEngine is the
// in-process default.
type PolicyEngine interface {
	Evaluate(ctx context.Context, composed schemadoc.Service) (Result, error)
}

// Rule inspects one parsed schema document and returns violation messages.
type Rule interface {
	Name() string
	Check(doc *ast.SchemaDocument) (warnings, errors []string)
}

// Registry holds the enabled rule set for LocalEngine.
type Registry struct {
	rules []Rule
}

// NewRegistry returns a Registry pre-populated with the default rule set.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(TypeNamingRule{})
	r.Register(DeprecationReasonRule{})
	return r
}

// Register adds a rule to the registry.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns the currently registered rules.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// LocalEngine is the in-process default PolicyEngine, evaluating a fixed
// local rule registry against the composed schema.
type LocalEngine struct {
	registry *Registry
}

// NewLocalEngine wires a LocalEngine against the default rule registry.
func NewLocalEngine() *LocalEngine {
	return &LocalEngine{registry: NewRegistry()}
}

// NewLocalEngineWithRegistry wires a LocalEngine against a caller-supplied registry.
func NewLocalEngineWithRegistry(registry *Registry) *LocalEngine {
	return &LocalEngine{registry: registry}
}

func (e *LocalEngine) Evaluate(ctx context.Context, composed schemadoc.Service) (Result, error) {
	doc, err := schemadoc.Parse(composed.Name, composed.SDL)
	if err != nil {
		return Result{Errors: []string{err.Error()}}, nil
	}

	var result Result
	for _, rule := range e.registry.Rules() {
		warnings, errs := rule.Check(doc)
		result.Warnings = append(result.Warnings, warnings...)
		result.Errors = append(result.Errors, errs...)
	}
	return result, nil
}
