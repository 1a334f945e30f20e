// Package dataset resolves a named dataset of layered seed files into flat,
// reference-resolved records.
//
// A Dataset is inert until Load (or Build) runs. Building reads every file of
// the directory chain once, assigns identifiers to all labels, rewrites
// references and merges the levels; the result is published as one immutable
// snapshot. Queries read the current snapshot and never trigger a rebuild.
package dataset

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/datasource"
	"github.com/agentic-research/appseeds/internal/seedfile"
)

// snapshot is the derived state of one build. It is never mutated after it
// has been published.
type snapshot struct {
	name        string
	chain       []string
	policy      api.IDPolicy
	index       LabelIndex
	tables      map[string]*seedTable
	config      map[string]any
	fingerprint string
}

// Dataset owns one dataset name, its id policy and the derived caches.
// It is safe for concurrent use; rebuilds are serialized and published
// atomically so readers never see a partial index.
type Dataset struct {
	src    datasource.Source
	loader seedfile.Loader
	logger *slog.Logger

	buildMu sync.Mutex

	mu         sync.RWMutex
	name       string
	policy     api.IDPolicy
	generation uint64
	snap       *snapshot
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithPolicy sets the identifier policy.
func WithPolicy(p api.IDPolicy) Option {
	return func(d *Dataset) { d.policy = p }
}

// WithLoader replaces the seed file loader.
func WithLoader(l seedfile.Loader) Option {
	return func(d *Dataset) { d.loader = l }
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dataset) { d.logger = l }
}

// New returns an unloaded Dataset over src.
func New(src datasource.Source, opts ...Option) *Dataset {
	d := &Dataset{
		src:    src,
		loader: seedfile.NewLoader(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Source returns the search root.
func (d *Dataset) Source() datasource.Source { return d.src }

// Name returns the current dataset name.
func (d *Dataset) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// Policy returns the current identifier policy.
func (d *Dataset) Policy() api.IDPolicy {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.policy
}

// Load selects dataset name and builds it. On failure the dataset is left
// unloaded; a *api.DatasetNotFoundError lists the valid names.
func (d *Dataset) Load(name string) error {
	d.mu.Lock()
	d.name = name
	d.invalidateLocked()
	d.mu.Unlock()
	return d.Build()
}

// SetPolicy replaces the identifier policy. Derived state is invalidated and,
// when a dataset name is set, rebuilt with the new policy.
func (d *Dataset) SetPolicy(p api.IDPolicy) error {
	d.mu.Lock()
	d.policy = p
	name := d.name
	d.invalidateLocked()
	d.mu.Unlock()
	if name == "" {
		return nil
	}
	return d.Build()
}

// Invalidate drops all derived state. Queries fail with api.ErrNotLoaded
// until the next Build.
func (d *Dataset) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidateLocked()
}

func (d *Dataset) invalidateLocked() {
	d.generation++
	d.snap = nil
}

// Build computes the label index, merged seed data and merged config for the
// current name and policy, then publishes them together.
func (d *Dataset) Build() error {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	d.mu.RLock()
	name, policy, gen := d.name, d.policy, d.generation
	d.mu.RUnlock()

	snap, err := d.build(name, policy)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.generation != gen {
		return fmt.Errorf("dataset %s changed during build", name)
	}
	d.snap = snap
	d.logger.Info("dataset loaded",
		"dataset", name,
		"seed_types", len(snap.tables),
		"fingerprint", snap.fingerprint)
	return nil
}

func (d *Dataset) build(name string, policy api.IDPolicy) (*snapshot, error) {
	chain, err := Chain(d.src, name)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("dataset chain", "dataset", name, "chain", chain)

	levels, err := readLevels(d.src, d.loader, chain)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", name, err)
	}

	index := buildIndex(levels)
	tables := mergeSeedData(levels, index, policy)
	for t, tbl := range tables {
		d.logger.Debug("seed type merged", "dataset", name, "seed_type", t, "records", len(tbl.labels))
	}

	return &snapshot{
		name:        name,
		chain:       chain,
		policy:      policy,
		index:       index,
		tables:      tables,
		config:      mergeConfig(levels),
		fingerprint: fingerprint(levels),
	}, nil
}

func (d *Dataset) current() (*snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return nil, api.ErrNotLoaded
	}
	return d.snap, nil
}

// Chain returns the directory chain of the loaded dataset, innermost first.
func (d *Dataset) Chain() ([]string, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), s.chain...), nil
}

// Fingerprint is a BLAKE3 digest over the expanded content of every file in
// the chain. Identical inputs give identical fingerprints.
func (d *Dataset) Fingerprint() (string, error) {
	s, err := d.current()
	if err != nil {
		return "", err
	}
	return s.fingerprint, nil
}

// SeedTypes lists the seed types defined anywhere in the chain, sorted.
func (d *Dataset) SeedTypes() ([]string, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(s.tables))
	for t := range s.tables {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

// SeedDataExists reports whether seedType has a file anywhere in the chain.
func (d *Dataset) SeedDataExists(seedType string) bool {
	s, err := d.current()
	if err != nil {
		return false
	}
	_, ok := s.tables[seedType]
	return ok
}

// ConfigValue returns the merged _config.yml value for key.
func (d *Dataset) ConfigValue(key string) (any, bool, error) {
	s, err := d.current()
	if err != nil {
		return nil, false, err
	}
	v, ok := s.config[key]
	return api.CloneValue(v), ok, nil
}

// ConfigValues returns a copy of the whole merged config.
func (d *Dataset) ConfigValues() (map[string]any, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(s.config))
	for k, v := range s.config {
		out[k] = api.CloneValue(v)
	}
	return out, nil
}

// Index returns a copy of the label index.
func (d *Dataset) Index() (LabelIndex, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	out := make(LabelIndex, len(s.index))
	for t, labels := range s.index {
		m := make(map[string]api.IdentifierPair, len(labels))
		for l, p := range labels {
			m[l] = p
		}
		out[t] = m
	}
	return out, nil
}
