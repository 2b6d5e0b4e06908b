//go:build !cgo

package csharp

import (
	"context"

	"gdgen/internal/syntax"
)

// ParseSource parses one C# file.
// Stub implementation returns ErrNoCGO.
func ParseSource(ctx context.Context, path string, src []byte) (*syntax.File, error) {
	return nil, ErrNoCGO
}

// IsAvailable returns whether the front end can parse sources.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
