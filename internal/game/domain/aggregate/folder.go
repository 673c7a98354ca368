package aggregate

import (
	"sync"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// Folder folds events into aggregate state.
//
// The folder is where the domain boundary stays deterministic: each event
// type updates exactly one aggregate slice and is replayed identically
// whether during request execution or historical reconstruction.
//
// Dispatch is declarative: foldEntries() defines the mapping from event
// types to fold functions. Adding a new domain requires only adding an entry
// in fold_registry.go.
type Folder struct {
	// foldIndex is lazily built on first Fold to avoid dispatch into fold
	// functions that cannot possibly handle the event type.
	foldOnce  sync.Once
	foldIndex map[event.Type]func(*State, event.Event) error
}

// initFoldIndex builds a type-to-handler lookup from the declarative fold entries.
func (f *Folder) initFoldIndex() {
	f.foldOnce.Do(func() {
		f.foldIndex = make(map[event.Type]func(*State, event.Event) error)
		for _, entry := range foldEntries() {
			fn := entry.fold
			for _, t := range entry.types() {
				f.foldIndex[t] = fn
			}
		}
	})
}

// FoldDispatchedTypes returns the union of all event types wired into the
// fold dispatch index. Registry validation uses this to verify that every
// registered event type actually reaches a fold function at runtime.
func (f *Folder) FoldDispatchedTypes() []event.Type {
	f.initFoldIndex()
	types := make([]event.Type, 0, len(f.foldIndex))
	for t := range f.foldIndex {
		types = append(types, t)
	}
	return types
}

// Fold applies a single event to aggregate state. Events with no registered
// fold function leave state unchanged.
func (f *Folder) Fold(state State, evt event.Event) (State, error) {
	f.initFoldIndex()
	if fn, ok := f.foldIndex[evt.Type]; ok {
		if err := fn(&state, evt); err != nil {
			return state, err
		}
	}
	return state, nil
}

// FoldAll applies events in order, stopping at the first fold error.
func (f *Folder) FoldAll(state State, events []event.Event) (State, error) {
	var err error
	for _, evt := range events {
		state, err = f.Fold(state, evt)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}
