package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// federationInternalTypes is the fixed allow-list of federation bookkeeping
// types that historically leaked into public schemas. pkg/inspector uses
// the same list to drop synthetic changes produced by merging these in.
var federationInternalTypes = map[string]bool{
	"_Service":  true,
	"_Entity":   true,
	"_Any":      true,
	"Query._entities": true,
	"Query._service":  true,
}

// FederationInternalType reports whether a type name is one of the fixed
// federation-bookkeeping names that should be filtered from public diffs.
func FederationInternalType(name string) bool {
	return federationInternalTypes[name]
}

// federationDirectives is the allow-list of directive tokens filtered
// alongside federationInternalTypes.
var federationDirectives = map[string]bool{
	"key": true, "external": true, "requires": true, "provides": true, "extends": true, "shareable": true,
}

// FederationInternalDirective reports whether a directive name is
// federation-internal bookkeeping.
func FederationInternalDirective(name string) bool {
	return federationDirectives[name]
}

// mergeResult is the outcome of composing a set of parsed documents into one
// supergraph: the rendered SDL, any tag values discovered via @tag
// directives, and accumulated errors.
type mergeResult struct {
	sdl    string
	tags   []string
	errors []CompositionError
}

// mergeServices merges N subgraph documents by type name, field name. Two
// services defining the same field on the same type with a different
// rendered type signature is a composition error; same-name/same-signature
// fields (the common federation "entity extension" shape) are unified.
func mergeServices(schemas []schemadoc.Service, requireKey bool) mergeResult {
	merged := map[string]*ast.Definition{}
	var errs []CompositionError
	tagSet := map[string]bool{}

	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
	}
	sort.Strings(names)
	byName := map[string]schemadoc.Service{}
	for _, s := range schemas {
		byName[s.Name] = s
	}

	for _, name := range names {
		svc := byName[name]
		doc, err := schemadoc.Parse(svc.Name, svc.SDL)
		if err != nil {
			errs = append(errs, CompositionError{Message: err.Error(), Source: SourceGraphQL})
			continue
		}
		for _, def := range doc.Definitions {
			if requireKey && def.Kind == ast.Object && def.Name != "Query" && def.Name != "Mutation" && def.Name != "Subscription" {
				if !hasDirective(def.Directives, "key") {
					// Not an entity; still mergeable, no error — @key is only
					// required to extend an entity owned by another service.
				}
			}
			for _, f := range def.Fields {
				if d := directiveArg(f.Directives, "tag", "name"); d != "" {
					tagSet[d] = true
				}
			}
			existing, ok := merged[def.Name]
			if !ok {
				merged[def.Name] = def
				continue
			}
			conflict, mergedDef := mergeDefinition(existing, def)
			if conflict != "" {
				errs = append(errs, CompositionError{
					Message: fmt.Sprintf("type %s: %s (from service %s)", def.Name, conflict, name),
					Source:  SourceComposition,
				})
				continue
			}
			merged[def.Name] = mergedDef
		}
	}

	typeNames := make([]string, 0, len(merged))
	for n := range merged {
		typeNames = append(typeNames, n)
	}
	sort.Strings(typeNames)

	var b strings.Builder
	for _, n := range typeNames {
		def := merged[n]
		fields := append([]*ast.FieldDefinition(nil), def.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		fmt.Fprintf(&b, "%s %s {\n", strings.ToLower(string(def.Kind)), def.Name)
		for _, f := range fields {
			fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Type.String())
		}
		b.WriteString("}\n")
	}

	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return mergeResult{sdl: b.String(), tags: tags, errors: errs}
}

// mergeDefinition unifies two definitions of the same type name across
// services. Fields with the same name must have the same rendered type;
// otherwise it's a composition conflict.
func mergeDefinition(a, b *ast.Definition) (conflict string, merged *ast.Definition) {
	if a.Kind != b.Kind {
		return fmt.Sprintf("kind mismatch %s vs %s", a.Kind, b.Kind), nil
	}
	byName := map[string]*ast.FieldDefinition{}
	for _, f := range a.Fields {
		byName[f.Name] = f
	}
	out := append([]*ast.FieldDefinition(nil), a.Fields...)
	for _, f := range b.Fields {
		if existing, ok := byName[f.Name]; ok {
			if existing.Type.String() != f.Type.String() {
				return fmt.Sprintf("field %s type mismatch: %s vs %s", f.Name, existing.Type.String(), f.Type.String()), nil
			}
			continue
		}
		byName[f.Name] = f
		out = append(out, f)
	}
	return "", &ast.Definition{Kind: a.Kind, Name: a.Name, Fields: out}
}

func hasDirective(directives ast.DirectiveList, name string) bool {
	for _, d := range directives {
		if d.Name == name {
			return true
		}
	}
	return false
}

func directiveArg(directives ast.DirectiveList, directiveName, argName string) string {
	for _, d := range directives {
		if d.Name != directiveName {
			continue
		}
		for _, a := range d.Arguments {
			if a.Name == argName && a.Value != nil {
				return a.Value.Raw
			}
		}
	}
	return ""
}
