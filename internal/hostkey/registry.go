package hostkey

import (
	"errors"
	"fmt"
)

// State is the resolution state of one algorithm. Transitions are one-way.
type State int

const (
	Unresolved State = iota
	Enabled
	Disabled
)

func (s State) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	}
	return "unresolved"
}

var errAlreadyResolved = errors.New("algorithm already resolved")

// registry is the mutable startup view of the capability table. Only the
// resolver writes to it; everything else reads a Snapshot.
type registry struct {
	algorithms []Algorithm
	states     []State
}

func newRegistry(caps Capabilities) *registry {
	algorithms := caps.Algorithms()
	return &registry{
		algorithms: algorithms,
		states:     make([]State, len(algorithms)),
	}
}

// set moves every algorithm of slot from Unresolved to state.
func (r *registry) set(slot Slot, state State) error {
	for i, algo := range r.algorithms {
		if algo.Slot != slot {
			continue
		}
		if r.states[i] != Unresolved {
			return fmt.Errorf("%s: %w", algo.Name, errAlreadyResolved)
		}
		r.states[i] = state
	}
	return nil
}

// freeze turns any algorithm left unresolved into Enabled and returns the
// immutable view.
func (r *registry) freeze() *Snapshot {
	entries := make([]Entry, len(r.algorithms))
	for i, algo := range r.algorithms {
		entries[i] = Entry{Algorithm: algo, Usable: r.states[i] != Disabled}
	}
	return &Snapshot{entries: entries}
}

// Entry is one algorithm with its final usable flag.
type Entry struct {
	Algorithm
	Usable bool
}

// Snapshot is the read-only enablement registry handed to negotiation. It is
// never modified after construction and is safe for concurrent use.
type Snapshot struct {
	entries []Entry
}

// Entries returns every algorithm in preference order.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Usable reports whether the named algorithm may be offered.
func (s *Snapshot) Usable(name string) bool {
	for _, e := range s.entries {
		if e.Name == name {
			return e.Usable
		}
	}
	return false
}

// Algorithms returns the usable algorithm names in preference order.
func (s *Snapshot) Algorithms() []string {
	var names []string
	for _, e := range s.entries {
		if e.Usable {
			names = append(names, e.Name)
		}
	}
	return names
}

// SlotAlgorithms returns the usable algorithm names belonging to slot.
func (s *Snapshot) SlotAlgorithms(slot Slot) []string {
	var names []string
	for _, e := range s.entries {
		if e.Usable && e.Slot == slot {
			names = append(names, e.Name)
		}
	}
	return names
}
