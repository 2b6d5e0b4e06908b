package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gdgen/internal/annotation"
	"gdgen/internal/diag"
	"gdgen/internal/engine"
	"gdgen/internal/symbols"
	"gdgen/internal/syntax"
)

// ErrCancelled is returned when a pass is abandoned; nothing is emitted.
var ErrCancelled = errors.New("pass cancelled")

// Generator produces units for one kind of marker or input.
type Generator interface {
	Name() string
	Generate(ctx context.Context, p *Pass) error
}

// MarkerProvider is implemented by generators driven by marker attributes,
// so the marker types can be registered in the symbol graph.
type MarkerProvider interface {
	Markers() []*annotation.Marker
}

// Result is everything a pass produced.
type Result struct {
	Units       []Unit            `json:"units" yaml:"units"`
	Diagnostics []diag.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Stats       Stats             `json:"stats" yaml:"stats"`
}

// Stats summarizes a pass.
type Stats struct {
	Files      int            `json:"files" yaml:"files"`
	Symbols    int            `json:"symbols" yaml:"symbols"`
	PerGen     map[string]int `json:"perGenerator" yaml:"perGenerator"`
	DurationMs int64          `json:"durationMs" yaml:"durationMs"`
}

// HasErrors reports whether any error-severity diagnostic was reported.
func (r *Result) HasErrors() bool { return diag.HasErrors(r.Diagnostics) }

// Unit returns the unit with the given key.
func (r *Result) Unit(key string) (Unit, bool) {
	i := sort.Search(len(r.Units), func(i int) bool { return r.Units[i].Key >= key })
	if i < len(r.Units) && r.Units[i].Key == key {
		return r.Units[i], true
	}
	return Unit{}, false
}

// Runner runs a set of generators over one pass.
type Runner struct {
	Generators      []Generator
	Engine          *engine.Table
	ProjectRoot     string
	ProjectSettings string
	Logger          *slog.Logger
}

// Run builds the symbol graph for files and runs every generator
// concurrently, each into its own Pass. Units are merged and sorted by key,
// diagnostics by position. A cancelled context discards all output.
func (r *Runner) Run(ctx context.Context, files []*syntax.File) (*Result, error) {
	start := time.Now()
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var markers []*annotation.Marker
	for _, g := range r.Generators {
		if mp, ok := g.(MarkerProvider); ok {
			markers = append(markers, mp.Markers()...)
		}
	}
	graph := symbols.Build(files, symbols.Options{
		Engine:    r.Engine,
		Externals: annotation.QualifiedNames(markers...),
		Logger:    logger,
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	binder := annotation.NewBinder(graph)
	passes := make([]*Pass, len(r.Generators))
	eg, gctx := errgroup.WithContext(ctx)
	for i, gen := range r.Generators {
		p := &Pass{
			Files:           files,
			Graph:           graph,
			Binder:          binder,
			Engine:          r.Engine,
			ProjectRoot:     r.ProjectRoot,
			ProjectSettings: r.ProjectSettings,
			Logger:          logger.With("generator", gen.Name()),
		}
		passes[i] = p
		eg.Go(func() error {
			if err := gen.Generate(gctx, p); err != nil {
				return fmt.Errorf("%s: %w", gen.Name(), err)
			}
			return nil
		})
	}
	err := eg.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctxErr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		return nil, err
	}

	res := &Result{Stats: Stats{Files: len(files), Symbols: len(graph.Symbols()), PerGen: map[string]int{}}}
	seen := make(map[string]string)
	for i, p := range passes {
		name := r.Generators[i].Name()
		for _, u := range p.Units() {
			if other, dup := seen[u.Key]; dup {
				return nil, fmt.Errorf("unit key %s emitted by both %s and %s", u.Key, other, name)
			}
			seen[u.Key] = name
			res.Units = append(res.Units, u)
		}
		res.Stats.PerGen[name] = len(p.Units())
		res.Diagnostics = append(res.Diagnostics, p.Diagnostics()...)
	}
	sort.Slice(res.Units, func(i, j int) bool { return res.Units[i].Key < res.Units[j].Key })
	diag.Sort(res.Diagnostics)
	res.Stats.DurationMs = time.Since(start).Milliseconds()

	logger.Info("Pass complete",
		"units", len(res.Units),
		"diagnostics", len(res.Diagnostics),
		"duration", time.Since(start),
	)
	return res, nil
}
