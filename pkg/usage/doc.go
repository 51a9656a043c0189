// Package usage defines the Usage Oracle collaborator: a query surface the
// inspector consults to decide whether a structurally
// breaking change is "usage-safe" — no traffic exercised the affected
// schema coordinate within the target's validation window. Usage analytics
// itself (collection, storage) is out of scope; this package only queries it.
package usage
