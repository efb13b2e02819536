// Package store holds the mutable session state: which items are checked,
// the selected project type, the search term and per-phase expand flags.
// All mutation goes through explicit actions; subscribers are notified
// synchronously after each one.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/mapcheck/internal/domain"
)

// ChangeKind identifies what an action changed.
type ChangeKind int

const (
	// ChangeChecked is a single item toggle.
	ChangeChecked ChangeKind = iota
	// ChangeReplaced is a whole-state replacement (import).
	ChangeReplaced
	// ChangeView covers project type, search term and expand flags.
	ChangeView
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeChecked:
		return "checked"
	case ChangeReplaced:
		return "replaced"
	case ChangeView:
		return "view"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change describes a completed mutation. Checked and View are copies taken
// after the mutation.
type Change struct {
	Kind    ChangeKind
	ItemID  string
	Checked domain.CheckedState
	View    ViewState
	// Persisted is set when the new checked state was already written to
	// storage as part of the action.
	Persisted bool
}

// TouchesChecked reports whether the change modified checked state.
func (c Change) TouchesChecked() bool {
	return c.Kind == ChangeChecked || c.Kind == ChangeReplaced
}

// Subscriber is called after every mutation.
type Subscriber func(Change)

// ViewState is the session-only part of the state. It is never persisted.
type ViewState struct {
	ProjectType domain.ProjectType
	SearchTerm  string
	Expanded    map[string]bool
}

func (v ViewState) clone() ViewState {
	out := v
	out.Expanded = make(map[string]bool, len(v.Expanded))
	for k, e := range v.Expanded {
		out.Expanded[k] = e
	}
	return out
}

// IsExpanded reports the expand flag of a phase. Phases not seen at
// startup default to expanded.
func (v ViewState) IsExpanded(phaseID string) bool {
	e, ok := v.Expanded[phaseID]
	return !ok || e
}

type subscription struct {
	id int
	fn Subscriber
}

// Store owns CheckedState and ViewState for one session.
//
// Mutating actions are serialized end to end, notification included, so
// subscribers observe changes in the order they were made. A subscriber
// must not call a mutating action.
type Store struct {
	act sync.Mutex

	mu      sync.Mutex
	checked domain.CheckedState
	view    ViewState

	subMu   sync.Mutex
	subs    []subscription
	nextSub int

	// import tickets, see ImportAsync
	issued  uint64
	applied uint64
}

// Option configures a Store.
type Option func(*Store)

// WithProjectType sets the initial project type. Invalid values are ignored.
func WithProjectType(pt domain.ProjectType) Option {
	return func(s *Store) {
		if pt.Valid() {
			s.view.ProjectType = pt
		}
	}
}

// WithSearchTerm sets the initial search term.
func WithSearchTerm(term string) Option {
	return func(s *Store) {
		s.view.SearchTerm = term
	}
}

// New creates a Store with every phase of the catalog expanded. The initial
// checked state is copied.
func New(c *domain.Catalog, initial domain.CheckedState, opts ...Option) *Store {
	s := &Store{
		checked: initial.Clone(),
		view: ViewState{
			ProjectType: domain.ProjectBoth,
			Expanded:    make(map[string]bool),
		},
	}
	if c != nil {
		for _, id := range c.PhaseIDs() {
			s.view.Expanded[id] = true
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn and returns a function that removes it.
// Subscribers run in registration order.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(c)
	}
}

// snapshotLocked builds a Change from the current state. Caller holds mu.
func (s *Store) snapshotLocked(kind ChangeKind, itemID string) Change {
	return Change{
		Kind:    kind,
		ItemID:  itemID,
		Checked: s.checked.Clone(),
		View:    s.view.clone(),
	}
}

// ToggleItem flips the checked flag of itemID and returns the new value.
// Unknown IDs are accepted; absent counts as unchecked.
func (s *Store) ToggleItem(itemID string) bool {
	s.act.Lock()
	defer s.act.Unlock()

	s.mu.Lock()
	now := s.checked.Toggle(itemID)
	c := s.snapshotLocked(ChangeChecked, itemID)
	s.mu.Unlock()

	s.notify(c)
	return now
}

// TogglePhase flips the expand flag of a phase and returns the new value.
func (s *Store) TogglePhase(phaseID string) bool {
	s.act.Lock()
	defer s.act.Unlock()

	s.mu.Lock()
	now := !s.view.IsExpanded(phaseID)
	s.view.Expanded[phaseID] = now
	c := s.snapshotLocked(ChangeView, "")
	s.mu.Unlock()

	s.notify(c)
	return now
}

// SetProjectType replaces the project type. Invalid values are rejected
// with domain.ErrInvalidProjectType and the previous value is kept.
func (s *Store) SetProjectType(pt domain.ProjectType) error {
	if !pt.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidProjectType, pt)
	}
	s.act.Lock()
	defer s.act.Unlock()

	s.mu.Lock()
	s.view.ProjectType = pt
	c := s.snapshotLocked(ChangeView, "")
	s.mu.Unlock()

	s.notify(c)
	return nil
}

// SetSearchTerm replaces the search term verbatim.
func (s *Store) SetSearchTerm(term string) {
	s.act.Lock()
	defer s.act.Unlock()

	s.mu.Lock()
	s.view.SearchTerm = term
	c := s.snapshotLocked(ChangeView, "")
	s.mu.Unlock()

	s.notify(c)
}

// ReplaceAll swaps in a new project type and checked state in one step.
// Nothing is merged: IDs absent from checked become unchecked.
func (s *Store) ReplaceAll(pt domain.ProjectType, checked domain.CheckedState) error {
	if !pt.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidProjectType, pt)
	}
	s.act.Lock()
	defer s.act.Unlock()

	s.mu.Lock()
	c := s.replaceLocked(pt, checked, false)
	s.mu.Unlock()

	s.notify(c)
	return nil
}

// ClearChecked unchecks every item and keeps the project type. commit, if
// not nil, runs under the action lock first; an error leaves the state as
// it was.
func (s *Store) ClearChecked(ctx context.Context, commit func(ctx context.Context) error) error {
	s.act.Lock()
	defer s.act.Unlock()

	persisted := false
	if commit != nil {
		if err := commit(ctx); err != nil {
			return err
		}
		persisted = true
	}

	s.mu.Lock()
	c := s.replaceLocked(s.view.ProjectType, domain.NewCheckedState(), persisted)
	s.mu.Unlock()

	s.notify(c)
	return nil
}

func (s *Store) replaceLocked(pt domain.ProjectType, checked domain.CheckedState, persisted bool) Change {
	s.view.ProjectType = pt
	s.checked = checked.Clone()
	c := s.snapshotLocked(ChangeReplaced, "")
	c.Persisted = persisted
	return c
}

// IsChecked reports whether itemID is checked.
func (s *Store) IsChecked(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked[itemID]
}

// Checked returns a copy of the checked state.
func (s *Store) Checked() domain.CheckedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked.Clone()
}

// View returns a copy of the view state.
func (s *Store) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.clone()
}

// ProjectType returns the selected project type.
func (s *Store) ProjectType() domain.ProjectType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ProjectType
}

// SearchTerm returns the current search term.
func (s *Store) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.SearchTerm
}
