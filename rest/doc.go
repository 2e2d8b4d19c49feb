// Package rest pairs the census query DSL with an HTTP transport,
// translates the service's plain-text and coded error responses into
// a typed error taxonomy, and reconstructs the logical result tree
// from payloads containing server-injected join keys.
//
// The three concerns are deliberately separable:
//
//   - Client performs the request (with exponential backoff) and
//     decodes the payload
//   - RaiseForPayload classifies a decoded payload into a typed error
//   - ExtractPayload / ResolveNested turn a successful payload into
//     the flat list of records the caller asked for
//
// RaiseForPayload and ResolveNested are pure functions; they can be
// used against canned payloads without any transport.
package rest
