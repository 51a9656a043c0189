package schemadoc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Service is one named subgraph SDL document, the unit the orchestrator
// composes and the registry checks operate on.
type Service struct {
	Name string
	SDL  string
	URL  string
}

// Parse parses a single SDL document, returning a parse error wrapped with
// the service name for diagnostics.
func Parse(name, sdl string) (*ast.SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("schemadoc: parse %q: %w", name, err)
	}
	return doc, nil
}

// Canonicalize produces a stable textual form of a set of services:
// services are sorted by name, each document's type and field definitions
// are sorted alphabetically, whitespace is normalized, and an optional
// baseSchema is prepended verbatim. Two calls with the same logical
// services in different order produce byte-identical output.
func Canonicalize(baseSchema string, services []Service) (string, error) {
	sorted := make([]Service, len(services))
	copy(sorted, services)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	if baseSchema != "" {
		b.WriteString(normalizeWhitespace(baseSchema))
		b.WriteString("\n")
	}
	for _, svc := range sorted {
		doc, err := Parse(svc.Name, svc.SDL)
		if err != nil {
			return "", err
		}
		b.WriteString(canonicalizeDocument(doc))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// canonicalizeDocument renders a parsed document with its definitions
// sorted by name and each definition's fields sorted by name, so member
// ordering in the source SDL never affects the output.
func canonicalizeDocument(doc *ast.SchemaDocument) string {
	defs := make([]*ast.Definition, len(doc.Definitions))
	copy(defs, doc.Definitions)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	var b strings.Builder
	for _, def := range defs {
		b.WriteString(canonicalizeDefinition(def))
		b.WriteString("\n")
	}
	return b.String()
}

func canonicalizeDefinition(def *ast.Definition) string {
	fields := make([]*ast.FieldDefinition, len(def.Fields))
	copy(fields, def.Fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	values := make([]*ast.EnumValueDefinition, len(def.EnumValues))
	copy(values, def.EnumValues)
	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s {\n", strings.ToLower(string(def.Kind)), def.Name)
	for _, f := range fields {
		args := make([]*ast.ArgumentDefinition, len(f.Arguments))
		copy(args, f.Arguments)
		sort.Slice(args, func(i, j int) bool { return args[i].Name < args[j].Name })
		argStrs := make([]string, len(args))
		for i, a := range args {
			argStrs[i] = fmt.Sprintf("%s: %s", a.Name, a.Type.String())
		}
		argPart := ""
		if len(argStrs) > 0 {
			argPart = "(" + strings.Join(argStrs, ", ") + ")"
		}
		fmt.Fprintf(&b, "  %s%s: %s\n", f.Name, argPart, f.Type.String())
	}
	for _, v := range values {
		fmt.Fprintf(&b, "  %s\n", v.Name)
	}
	b.WriteString("}\n")
	return b.String()
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

// Checksum returns a hex SHA-256 digest of the canonical form. Identical
// logical schema sets produce equal checksums regardless of input ordering.
func Checksum(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
