package policy

import (
	"fmt"
	"unicode"

	"github.com/vektah/gqlparser/v2/ast"
)

// TypeNamingRule warns when a type name does not start with an uppercase
// letter, the conventional GraphQL naming style.
type TypeNamingRule struct{}

func (TypeNamingRule) Name() string { return "type-naming" }

func (TypeNamingRule) Check(doc *ast.SchemaDocument) (warnings, errors []string) {
	for _, def := range doc.Definitions {
		if def.BuiltIn {
			continue
		}
		r := []rune(def.Name)
		if len(r) == 0 || !unicode.IsUpper(r[0]) {
			warnings = append(warnings, fmt.Sprintf("type %q should start with an uppercase letter", def.Name))
		}
	}
	return
}

// DeprecationReasonRule errors when a @deprecated directive is present
// without a reason argument, since an unexplained deprecation gives
// consumers nothing to act on.
type DeprecationReasonRule struct{}

func (DeprecationReasonRule) Name() string { return "deprecation-reason" }

func (DeprecationReasonRule) Check(doc *ast.SchemaDocument) (warnings, errors []string) {
	for _, def := range doc.Definitions {
		for _, f := range def.Fields {
			for _, d := range f.Directives {
				if d.Name != "deprecated" {
					continue
				}
				if d.Arguments.ForName("reason") == nil {
					errors = append(errors, fmt.Sprintf("%s.%s is @deprecated without a reason", def.Name, f.Name))
				}
			}
		}
	}
	return
}
