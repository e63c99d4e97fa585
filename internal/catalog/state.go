// Package catalog owns the lake dataset lifecycle: a single cancellable
// load, the explicit load state and the derived filtered view.
package catalog

import "github.com/woozymasta/lakemap/internal/lake"

// State is one of NotLoaded, Loaded or LoadError.
type State interface {
	state()
}

// NotLoaded is the state before the load completes.
type NotLoaded struct{}

// Loaded holds the validated dataset. Dataset.Issues lists records that were
// skipped or flagged.
type Loaded struct {
	Dataset lake.Dataset
}

// LoadError holds the reason the dataset could not be read or decoded.
type LoadError struct {
	Reason error
}

func (NotLoaded) state() {}
func (Loaded) state()    {}
func (LoadError) state() {}

// Lakes returns the full lake list of a state; empty unless loaded.
func Lakes(s State) []lake.Lake {
	if l, ok := s.(Loaded); ok {
		return l.Dataset.Lakes
	}
	return nil
}
