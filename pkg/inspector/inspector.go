package inspector

import (
	"context"
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
	"github.com/platinummonkey/schemahub/pkg/usage"
)

// Options configures one Diff invocation.
type Options struct {
	// FilterOutFederationChanges drops changes whose path references a
	// fixed allow-list of federation-internal types/directives.
	FilterOutFederationChanges bool
	// IncludeURLChanges additionally emits REGISTRY_SERVICE_URL_CHANGED
	// changes for subgraphs present on both sides with differing URLs.
	IncludeURLChanges bool
	Before            []schemadoc.Service
	After             []schemadoc.Service
	TargetID          string
	ValidationWindowHours int
}

// Comparator runs the structural diff between two composed schemas,
// consulting a usage.Oracle for breaking-change safety.
type Comparator struct {
	oracle usage.Oracle
}

// New wires a Comparator against a usage oracle. Pass usage.NoopOracle{}
// when no usage collaborator is configured.
func New(oracle usage.Oracle) *Comparator {
	if oracle == nil {
		oracle = usage.NoopOracle{}
	}
	return &Comparator{oracle: oracle}
}

// Diff classifies every structural difference between existingSDL and
// incomingSDL, in the registry's stable ordering: TYPE_REMOVED, FIELD_REMOVED,
// FIELD_TYPE_CHANGED, ARGUMENT_REMOVED, DIRECTIVE_REMOVED, ENUM_VALUE_REMOVED
// (all Breaking by default), then additive/Safe changes, sorted by Path
// within each bucket so the result is stable across runs for equal inputs.
func (c *Comparator) Diff(ctx context.Context, existingSDL, incomingSDL string, opts Options) ([]registrytypes.SchemaChange, error) {
	var changes []registrytypes.SchemaChange

	if existingSDL == "" || incomingSDL == "" {
		return changes, nil
	}

	oldDoc, err := schemadoc.Parse("existing", existingSDL)
	if err != nil {
		return nil, fmt.Errorf("inspector: parse existing schema: %w", err)
	}
	newDoc, err := schemadoc.Parse("incoming", incomingSDL)
	if err != nil {
		return nil, fmt.Errorf("inspector: parse incoming schema: %w", err)
	}

	oldTypes := definitionsByName(oldDoc)
	newTypes := definitionsByName(newDoc)

	changes = append(changes, diffTypes(oldTypes, newTypes)...)

	if opts.IncludeURLChanges {
		changes = append(changes, detectURLChanges(opts.Before, opts.After)...)
	}

	if opts.FilterOutFederationChanges {
		changes = filterFederation(changes)
	}

	if err := c.annotateUsageSafety(ctx, opts, changes); err != nil {
		return nil, err
	}

	sortChanges(changes)
	return changes, nil
}

func definitionsByName(doc *ast.SchemaDocument) map[string]*ast.Definition {
	out := make(map[string]*ast.Definition, len(doc.Definitions))
	for _, d := range doc.Definitions {
		out[d.Name] = d
	}
	return out
}

// diffTypes compares the type sets of two documents and their field sets,
// the direct GraphQL analog of a protobuf-era compareMessages/compareField.
func diffTypes(oldTypes, newTypes map[string]*ast.Definition) []registrytypes.SchemaChange {
	var changes []registrytypes.SchemaChange

	oldNames := sortedKeys(oldTypes)
	for _, name := range oldNames {
		oldDef := oldTypes[name]
		newDef, exists := newTypes[name]
		if !exists {
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeTypeRemoved, registrytypes.SeverityBreaking, name,
				map[string]any{"typeName": name},
			))
			continue
		}
		changes = append(changes, diffFields(name, oldDef, newDef)...)
	}

	newNames := sortedKeys(newTypes)
	for _, name := range newNames {
		if _, exists := oldTypes[name]; !exists {
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeTypeAdded, registrytypes.SeveritySafe, name,
				map[string]any{"typeName": name},
			))
		}
	}
	return changes
}

func diffFields(typeName string, oldDef, newDef *ast.Definition) []registrytypes.SchemaChange {
	var changes []registrytypes.SchemaChange

	oldFields := fieldsByName(oldDef)
	newFields := fieldsByName(newDef)

	for _, fname := range sortedFieldKeys(oldFields) {
		oldField := oldFields[fname]
		path := typeName + "." + fname
		newField, exists := newFields[fname]
		if !exists {
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeFieldRemoved, registrytypes.SeverityBreaking, path,
				map[string]any{"typeName": typeName, "fieldName": fname},
			))
			continue
		}
		if oldField.Type.String() != newField.Type.String() {
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeFieldTypeChanged, registrytypes.SeverityBreaking, path,
				map[string]any{
					"typeName": typeName, "fieldName": fname,
					"oldType": oldField.Type.String(), "newType": newField.Type.String(),
				},
			))
		}
		changes = append(changes, diffArguments(typeName, fname, oldField, newField)...)
	}

	for _, fname := range sortedFieldKeys(newFields) {
		if _, exists := oldFields[fname]; !exists {
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeFieldAdded, registrytypes.SeveritySafe, typeName+"."+fname,
				map[string]any{"typeName": typeName, "fieldName": fname},
			))
		}
	}
	return changes
}

func diffArguments(typeName, fieldName string, oldField, newField *ast.FieldDefinition) []registrytypes.SchemaChange {
	var changes []registrytypes.SchemaChange

	oldArgs := map[string]*ast.ArgumentDefinition{}
	for _, a := range oldField.Arguments {
		oldArgs[a.Name] = a
	}
	newArgs := map[string]*ast.ArgumentDefinition{}
	for _, a := range newField.Arguments {
		newArgs[a.Name] = a
	}

	argNames := make([]string, 0, len(oldArgs))
	for n := range oldArgs {
		argNames = append(argNames, n)
	}
	sort.Strings(argNames)

	path := typeName + "." + fieldName
	for _, aname := range argNames {
		if _, exists := newArgs[aname]; !exists {
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeArgumentRemoved, registrytypes.SeverityBreaking, path,
				map[string]any{"typeName": typeName, "fieldName": fieldName, "argumentName": aname},
			))
		}
	}

	newArgNames := make([]string, 0, len(newArgs))
	for n := range newArgs {
		newArgNames = append(newArgNames, n)
	}
	sort.Strings(newArgNames)
	for _, aname := range newArgNames {
		if _, exists := oldArgs[aname]; !exists {
			arg := newArgs[aname]
			severity := registrytypes.SeveritySafe
			if arg.Type.NonNull && arg.DefaultValue == nil {
				severity = registrytypes.SeverityBreaking
			}
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeArgumentAdded, severity, path,
				map[string]any{"typeName": typeName, "fieldName": fieldName, "argumentName": aname},
			))
		}
	}
	return changes
}

func fieldsByName(def *ast.Definition) map[string]*ast.FieldDefinition {
	out := make(map[string]*ast.FieldDefinition, len(def.Fields))
	for _, f := range def.Fields {
		out[f.Name] = f
	}
	return out
}

func sortedKeys(m map[string]*ast.Definition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFieldKeys(m map[string]*ast.FieldDefinition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// detectURLChanges emits one REGISTRY_SERVICE_URL_CHANGED change per service
// appearing in both before and after sets with a differing URL. An earlier
// variant of this logic early-returned twice on an empty before-set; that
// was a historical typo, not behavior worth reproducing, so this
// implementation early-returns once.
func detectURLChanges(before, after []schemadoc.Service) []registrytypes.SchemaChange {
	if len(before) == 0 {
		return nil
	}
	beforeByName := make(map[string]schemadoc.Service, len(before))
	for _, s := range before {
		beforeByName[s.Name] = s
	}

	var changes []registrytypes.SchemaChange
	names := make([]string, 0, len(after))
	for _, s := range after {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	afterByName := make(map[string]schemadoc.Service, len(after))
	for _, s := range after {
		afterByName[s.Name] = s
	}

	for _, name := range names {
		prev, ok := beforeByName[name]
		if !ok {
			continue
		}
		curr := afterByName[name]
		if prev.URL != "" && curr.URL != "" && prev.URL != curr.URL {
			changes = append(changes, registrytypes.NewSchemaChange(
				registrytypes.ChangeRegistryServiceURLChanged, registrytypes.SeveritySafe, name,
				map[string]any{"serviceName": name, "old": prev.URL, "new": curr.URL},
			))
		}
	}
	return changes
}

// filterFederation drops changes whose path references a federation-internal
// type or directive, compensating for historical versions where federation
// bookkeeping leaked into the public schema.
func filterFederation(changes []registrytypes.SchemaChange) []registrytypes.SchemaChange {
	out := make([]registrytypes.SchemaChange, 0, len(changes))
	for _, c := range changes {
		if typeName, _ := c.Meta["typeName"].(string); typeName != "" && orchestrator.FederationInternalType(typeName) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// annotateUsageSafety consults the usage oracle for every breaking change
// and sets IsSafeBasedOnUsage = true when its coordinate saw no traffic
// within the target's validation window.
func (c *Comparator) annotateUsageSafety(ctx context.Context, opts Options, changes []registrytypes.SchemaChange) error {
	var coords []usage.Coordinate
	indices := []int{}
	for i := range changes {
		if changes[i].Severity != registrytypes.SeverityBreaking {
			continue
		}
		typeName, _ := changes[i].Meta["typeName"].(string)
		fieldName, _ := changes[i].Meta["fieldName"].(string)
		if typeName == "" {
			continue
		}
		coords = append(coords, usage.Coordinate{TypeName: typeName, FieldName: fieldName})
		indices = append(indices, i)
	}
	if len(coords) == 0 {
		return nil
	}

	window := opts.ValidationWindowHours
	if window <= 0 {
		window = 24 * 7
	}
	traffic, err := c.oracle.HasTraffic(ctx, usage.Selector{
		TargetID: opts.TargetID,
		Window:   durationHours(window),
	}, coords)
	if err != nil {
		return fmt.Errorf("inspector: usage oracle query: %w", err)
	}

	for j, idx := range indices {
		if !traffic[coords[j].String()] {
			changes[idx].IsSafeBasedOnUsage = true
		}
	}
	return nil
}

// sortChanges orders breaking changes first, then by path, for a stable,
// deterministic ordering across repeated runs over the same inputs.
func sortChanges(changes []registrytypes.SchemaChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Severity != changes[j].Severity {
			return severityRank(changes[i].Severity) < severityRank(changes[j].Severity)
		}
		return changes[i].Path < changes[j].Path
	})
}

func severityRank(s registrytypes.Severity) int {
	switch s {
	case registrytypes.SeverityBreaking:
		return 0
	case registrytypes.SeverityDangerous:
		return 1
	default:
		return 2
	}
}
