// Package service implements the game engine's use cases on top of the
// store interfaces: creating, scoring, finishing and ranking games.
//
// Services are constructed once at startup with their stores and
// strategies (eligibility policy, user resolver) and are safe for
// concurrent use. Multi-statement operations run inside
// store.RunInTransaction; single-shot writes such as recording a guess
// rely on guarded UPDATE statements instead.
//
// Expected failures are returned as the sentinel errors in errors.go,
// each wrapping a domain taxonomy root. Anything else is wrapped in a
// ServiceError and treated as an internal fault by the API layer.
package service
