// Package mocks provides generated mocks for the sgi-cnts ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	sink := mocks.NewMockAuditSink(ctrl)
//	sink.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mocks for the audit ports from internal/ports.
// This creates MockAuditSink (Record) and MockAuditReader (Recent).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_mock.go github.com/cnts-sn/sgi-cnts/internal/ports AuditSink,AuditReader
