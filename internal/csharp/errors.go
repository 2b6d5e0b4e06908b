package csharp

import "errors"

// ErrNoCGO is returned when parsing is unavailable due to missing CGO.
var ErrNoCGO = errors.New("C# discovery requires CGO (tree-sitter)")
