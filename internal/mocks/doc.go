// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized implementations can be reused across test packages. Each
// mock exposes Fn fields for per-test behavior overrides plus simple
// default-value fields for the common cases.
package mocks
