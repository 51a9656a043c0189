// Package schemadoc canonicalizes, sorts and checksums GraphQL schema
// documents (the "Schema Helper" component of the registry). It parses SDL
// with github.com/vektah/gqlparser/v2, the parser the ecosystem's GraphQL
// schema-registry implementations use for AST-level inspection.
//
// Two logically equivalent schema sets — same subgraphs, possibly in a
// different order — must canonicalize to byte-identical output and thus
// produce equal checksums; pkg/checks's checksum primitive depends on this.
package schemadoc
