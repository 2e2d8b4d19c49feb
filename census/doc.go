// Package census implements the low-level query DSL for the Daybreak
// Game Company Census API.
//
// The package is organised around three node types:
//
//   - SearchTerm: a single field/value/modifier filter condition
//   - Query: a top-level query with service-wide commands (sorting,
//     pagination, localisation, tree reshaping)
//   - JoinedQuery: a nested sub-query whose results the service embeds
//     inside the parent's response under an injection key
//
// Queries are built through chainable methods and serialised to the
// exact URL grammar the API expects via Query.URL. Serialisation is
// deterministic: the same fully built query always yields the same
// wire string, byte for byte.
//
// WIRE GRAMMAR:
//
// The path is <endpoint>/<service-id>/<verb>/<namespace>[/<collection>].
// The query string carries one field=<modifier><value> pair per term,
// followed by c:<command>=<value> pairs in a fixed order. Join values
// use caret-prefixed key:value pairs, single quotes for intra-join list
// separators, commas for sibling separators, and balanced parentheses
// for nesting.
//
// SEALED INTERFACES:
//
// Value and FieldSelection are sealed interfaces using the marker
// method pattern. Only types in this package implement them, which
// keeps type switches in the serialiser exhaustive and makes invalid
// states (a float smuggled in as a term value, show and hide both set)
// unrepresentable.
//
// This package performs no I/O. The rest package pairs it with a
// transport, a response reconstructor and an error classifier.
package census
