// Package csharp is the discovery front end: it finds the C# sources of a
// Godot project and turns them into the syntax-level declarations the
// generators work on. Parsing uses tree-sitter and therefore needs cgo.
package csharp

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"gdgen/internal/errors"
	"gdgen/internal/paths"
	"gdgen/internal/syntax"
)

// SourceExt is the extension of the files the front end reads.
const SourceExt = ".cs"

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":    true,
	".godot":  true,
	".gdgen":  true,
	".import": true,
	"bin":     true,
	"obj":     true,
}

// Options controls which files are discovered and how they are read.
type Options struct {
	// OutputDir is the project-relative directory generated units are written
	// to. It is never scanned.
	OutputDir string
	// Exclude holds slash-separated patterns matched against project-relative
	// paths. A pattern ending in "/**" excludes a whole subtree.
	Exclude []string
	// Concurrency bounds the number of files parsed at once; 0 means GOMAXPROCS.
	Concurrency int
	Logger      *slog.Logger
}

func (o Options) excluded(rel string) bool {
	if o.OutputDir != "" {
		out := strings.Trim(paths.NormalizePath(o.OutputDir), "/")
		if out != "" && out != "." && (rel == out || strings.HasPrefix(rel, out+"/")) {
			return true
		}
	}
	for _, pattern := range o.Exclude {
		pattern = strings.TrimPrefix(paths.NormalizePath(pattern), "./")
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// Discover returns the project-relative, slash-separated paths of every C#
// source under root, sorted.
func Discover(root string, opts Options) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if p == root {
			return nil
		}
		rel, ok := paths.ProjectRelative(root, p)
		if !ok {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] || opts.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), SourceExt) || opts.excluded(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Load discovers and parses every C# source under root. Files are parsed
// concurrently; the result is ordered by path. Positions carry the
// project-relative path.
func Load(ctx context.Context, root string, opts Options) ([]*syntax.File, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !IsAvailable() {
		return nil, errors.New(errors.FrontEndUnavailable, "cannot parse C# sources", ErrNoCGO)
	}

	rels, err := Discover(root, opts)
	if err != nil {
		return nil, errors.New(errors.SourceUnreadable, "cannot walk "+root, err)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	files := make([]*syntax.File, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(paths.JoinProjectPath(root, rel))
			if err != nil {
				return errors.New(errors.SourceUnreadable, "cannot read "+rel, err)
			}
			f, err := ParseSource(gctx, rel, src)
			if err != nil {
				return errors.New(errors.ParseFailed, "cannot parse "+rel, err)
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.New(errors.Cancelled, "discovery cancelled", ctx.Err())
		}
		return nil, err
	}

	types := 0
	for _, f := range files {
		types += len(f.AllTypes())
	}
	logger.Debug("Sources parsed",
		"root", root,
		"files", len(files),
		"types", types,
	)
	return files, nil
}
