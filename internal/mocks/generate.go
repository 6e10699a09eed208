// Package mocks provides mock implementations of the trail ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	dir := mocks.NewMockDirectory(ctrl)
//	dir.EXPECT().Lookup(gomock.Any(), "admin@school.edu", gomock.Any()).Return(rec, nil)
package mocks

// Generate mock for Directory interface from internal/ports package.
// This creates MockDirectory with methods for all Directory interface methods:
// Lookup
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=directory_mock.go github.com/revanth-rampal/trail/internal/ports Directory

// Generate mock for SessionRepository interface from internal/ports package.
// This creates MockSessionRepository with methods for all SessionRepository interface methods:
// Save, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_repository_mock.go github.com/revanth-rampal/trail/internal/ports SessionRepository
