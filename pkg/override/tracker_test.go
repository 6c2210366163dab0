package override

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func autofillable() map[string]struct{} {
	return map[string]struct{}{
		"name":       {},
		"profession": {},
		"provinceId": {},
	}
}

func TestTracker_SelectionLocksGroup(t *testing.T) {
	tracker := NewTracker(autofillable())
	tracker.OnEntitySelected(true)

	if !tracker.AutofillOK() || tracker.EditMode() {
		t.Fatalf("expected Autofilled state")
	}
	if !tracker.ReadOnly("name") {
		t.Fatalf("autofillable field must render read-only while locked")
	}
	if tracker.ReadOnly("rol") {
		t.Fatalf("non-autofillable field must never be read-only")
	}
}

func TestTracker_EditModeTracksOverrides(t *testing.T) {
	tracker := NewTracker(autofillable())
	tracker.OnEntitySelected(true)
	tracker.ToggleEdit()

	tracker.OnFieldEdited("profession")
	tracker.OnFieldEdited("rol") // role-specific, never tracked

	if diff := cmp.Diff([]string{"profession"}, tracker.Overrides()); diff != "" {
		t.Fatalf("overrides mismatch (-want +got):\n%s", diff)
	}
	if tracker.AllowWrite("profession") {
		t.Fatalf("overridden field must block hydration writes")
	}
	if !tracker.AllowWrite("name") {
		t.Fatalf("untouched field must allow hydration writes")
	}
	if tracker.ReadOnly("name") {
		t.Fatalf("nothing is read-only while editing")
	}
}

func TestTracker_EditsOutsideEditModeIgnored(t *testing.T) {
	tracker := NewTracker(autofillable())
	tracker.OnEntitySelected(true)

	tracker.OnFieldEdited("profession")
	if tracker.Overridden("profession") {
		t.Fatalf("edits while locked must not create overrides")
	}
}

func TestTracker_EditOffKeepsValues(t *testing.T) {
	tracker := NewTracker(autofillable())
	tracker.OnEntitySelected(true)
	tracker.ToggleEdit()
	tracker.OnFieldEdited("profession")

	if on := tracker.ToggleEdit(); on {
		t.Fatalf("second toggle must turn edit mode off")
	}
	// Edit-off relocks without reverting: override protection is gone, so a
	// future hydration may overwrite the edited value.
	if tracker.Overridden("profession") {
		t.Fatalf("edit-off must clear overrides")
	}
	if !tracker.AllowWrite("profession") {
		t.Fatalf("relocked field must accept future hydration writes")
	}
	if !tracker.ReadOnly("profession") {
		t.Fatalf("relocked field must render read-only again")
	}
}

func TestTracker_ReselectionClearsOverrides(t *testing.T) {
	tracker := NewTracker(autofillable())
	tracker.OnEntitySelected(true)
	tracker.ToggleEdit()
	tracker.OnFieldEdited("profession")
	tracker.OnFieldEdited("name")

	tracker.OnEntitySelected(true)

	if len(tracker.Overrides()) != 0 {
		t.Fatalf("fresh selection must clear overrides, got %v", tracker.Overrides())
	}
	if tracker.EditMode() {
		t.Fatalf("fresh selection must leave edit mode")
	}
	for _, field := range []string{"profession", "name"} {
		if !tracker.AllowWrite(field) {
			t.Fatalf("fresh selection must re-allow writes to %q", field)
		}
	}
}

func TestTracker_NotFoundSelection(t *testing.T) {
	tracker := NewTracker(autofillable())
	tracker.OnEntitySelected(false)

	if tracker.AutofillOK() {
		t.Fatalf("not-found selection must leave AutofillOK false")
	}
	if tracker.ReadOnly("name") {
		t.Fatalf("manual-entry state must not lock fields")
	}
}
