package lcp

import (
	"log/slog"
	"time"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
	"github.com/jameslz/rlzap/pkg/matcher"
)

type buildOptions struct {
	transform alphabet.Transform
	observers []Observer
	logger    *slog.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithTransform sets the delta transform applied before matching.
// The default is alphabet.Differential.
func WithTransform(t alphabet.Transform) BuildOption {
	return func(o *buildOptions) {
		o.transform = t
	}
}

// WithObservers feeds additional observers from the same parse pass.
func WithObservers(observers ...Observer) BuildOption {
	return func(o *buildOptions) {
		o.observers = append(o.observers, observers...)
	}
}

// WithLogger sets the logger used for build milestones.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// Build runs the full construction pipeline for target against ref:
// delta transform, matcher, Parse, Coordinator and Builder.
//
// Construction is atomic. On any error no Index is returned, although
// extra observers may already have seen part of the event stream.
func Build(ref *Reference, target []alphabet.Symbol, m matcher.Matcher, opts ...BuildOption) (*Index, error) {
	o := buildOptions{
		transform: alphabet.Differential{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if ref == nil {
		return nil, errors.ConstructionError("reference is nil", nil)
	}
	if m == nil {
		return nil, errors.ConstructionError("matcher is nil", nil)
	}

	start := time.Now()
	refDeltas := o.transform.Forward(nil, ref.Symbols())
	targetDeltas := o.transform.Forward(nil, target)

	matches, err := m.Match(refDeltas, targetDeltas)
	if err != nil {
		return nil, errors.ConstructionError("matcher failed", err)
	}
	o.logger.Debug("matches_found",
		slog.Int("matches", len(matches)),
		slog.Int("target_len", len(target)),
		slog.Int("reference_len", ref.Len()))

	b := NewBuilder()
	coord := NewCoordinator(target, append([]Observer{b}, o.observers...)...)
	if err := Parse(matches, target, ref.Symbols(), coord.Events()); err != nil {
		return nil, err
	}
	idx, err := b.Finalize(ref)
	if err != nil {
		return nil, err
	}

	stats := idx.Stats()
	o.logger.Info("index_built",
		slog.Int("size", stats.Size),
		slog.Int("phrases", stats.Phrases),
		slog.Int("copy_phrases", stats.CopyPhrases),
		slog.Int("literal_symbols", stats.LiteralSymbols),
		slog.Duration("duration", time.Since(start)))
	return idx, nil
}
