// Package mocks provides test doubles for the store and service interfaces.
//
// Store mocks are built on testify/mock and are used where a test needs to
// script an exact sequence of store results, typically error paths. Service
// mocks use function fields with defaults so handler tests only override
// what they exercise.
package mocks
