// Package override tracks, per party group, whether autofilled values are
// locked and which fields the user has hand-edited. It is the gate between
// "a fresh hydration proposed this write" and "the user already took that
// field over."
package override

import "sort"

// Tracker is the per-group state machine. Two states: Autofilled (values
// locked, controls read-only) and Editing (values unlocked, edits tracked).
// Zero value is a group that has never been autofilled: nothing is locked and
// nothing is tracked.
type Tracker struct {
	autofillOK   bool
	editMode     bool
	overrides    map[string]struct{}
	autofillable map[string]struct{}
}

// NewTracker builds a tracker over the fixed autofillable field set of the
// group's entity kind. Fields outside the set are never locked and never
// tracked.
func NewTracker(autofillable map[string]struct{}) *Tracker {
	fields := make(map[string]struct{}, len(autofillable))
	for name := range autofillable {
		fields[name] = struct{}{}
	}
	return &Tracker{
		overrides:    make(map[string]struct{}),
		autofillable: fields,
	}
}

// OnEntitySelected records the outcome of a fresh selection. A new selection
// supersedes all prior manual edits: overrides are cleared and edit mode ends,
// whether the lookup succeeded (ok=true, group locked) or came back empty
// (ok=false, manual-entry state).
func (t *Tracker) OnEntitySelected(ok bool) {
	t.autofillOK = ok
	t.editMode = false
	t.overrides = make(map[string]struct{})
}

// ToggleEdit flips between the two states and returns the new edit mode.
// Toggling edit off does not roll values back — it relocks the current values
// and stops tracking them as overridden, so a later re-hydration may overwrite
// them. That asymmetry is deliberate.
func (t *Tracker) ToggleEdit() bool {
	if t.editMode {
		t.editMode = false
		t.overrides = make(map[string]struct{})
		return false
	}
	t.editMode = true
	return true
}

// OnFieldEdited records a manual edit. Only autofillable fields edited while
// in edit mode become overrides; role-specific fields are always editable and
// never tracked.
func (t *Tracker) OnFieldEdited(field string) {
	if !t.editMode {
		return
	}
	if _, ok := t.autofillable[field]; !ok {
		return
	}
	t.overrides[field] = struct{}{}
}

// AllowWrite reports whether a hydration write may touch the field. Overridden
// fields are protected; everything else is fair game.
func (t *Tracker) AllowWrite(field string) bool {
	_, overridden := t.overrides[field]
	return !overridden
}

// ReadOnly reports whether the field's control renders locked: the group is
// autofilled, the field belongs to the autofillable set, and edit mode is off.
func (t *Tracker) ReadOnly(field string) bool {
	if !t.autofillOK || t.editMode {
		return false
	}
	_, ok := t.autofillable[field]
	return ok
}

// Overridden reports whether the field is currently protected.
func (t *Tracker) Overridden(field string) bool {
	_, ok := t.overrides[field]
	return ok
}

// Overrides returns the protected field names, sorted.
func (t *Tracker) Overrides() []string {
	if len(t.overrides) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.overrides))
	for field := range t.overrides {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// EditMode reports whether the group is in the Editing state.
func (t *Tracker) EditMode() bool { return t.editMode }

// AutofillOK reports whether the group currently holds a successful autofill.
func (t *Tracker) AutofillOK() bool { return t.autofillOK }
