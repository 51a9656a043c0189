// Package inspector classifies structural differences between two composed
// GraphQL schemas into a severity-tagged list of SchemaChange records,
// consulting the usage oracle to mark breaking changes usage-safe. It is
// the GraphQL-SDL counterpart of a protobuf-era pkg/compatibility.Comparator,
// retargeted from protobuf wire-compatibility rules to GraphQL type/field
// diffing.
package inspector
