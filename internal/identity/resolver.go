package identity

import (
	"fmt"

	"appcatalog/internal/catalog"
)

// Resolver runs identity strategies in priority order against an index.
type Resolver struct {
	index      *Index
	signals    []Signal
	strategies []Strategy
}

// NewResolver binds a priority list to idx. A nil priority uses DefaultPriority.
func NewResolver(idx *Index, priority []Signal) (*Resolver, error) {
	if idx == nil {
		idx = NewIndex()
	}
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	r := &Resolver{index: idx}
	for _, signal := range priority {
		strategy, ok := StrategyFor(signal)
		if !ok {
			return nil, fmt.Errorf("unknown match signal %q", signal)
		}
		r.signals = append(r.signals, signal)
		r.strategies = append(r.strategies, strategy)
	}
	return r, nil
}

// Resolve returns the first match in priority order. No match means draft is
// a new identity.
func (r *Resolver) Resolve(draft catalog.Record) (Match, bool) {
	for _, strategy := range r.strategies {
		if m, ok := strategy(r.index, draft); ok {
			return m, true
		}
	}
	return Match{}, false
}

// Observe indexes keys rec gained after being admitted or merged.
func (r *Resolver) Observe(rec catalog.Record) {
	r.index.Add(rec)
}

// Index returns the resolver's index.
func (r *Resolver) Index() *Index { return r.index }

// Priority returns the signals in lookup order.
func (r *Resolver) Priority() []Signal {
	return append([]Signal(nil), r.signals...)
}
