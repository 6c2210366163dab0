package hydrate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/formpath"
)

func TestHydrate_FullWriteSet(t *testing.T) {
	directory := entity.NewMemoryDirectory()
	directory.Put(entity.Record{
		ID:   "cli-1",
		Kind: entity.KindClient,
		Attributes: map[string]string{
			"name":       "Ana Pérez",
			"nationalId": "001-0000001-1",
			"provinceId": "01",
			// every other attribute deliberately absent
		},
	})
	service := mustService(t, directory)

	result, err := service.Hydrate(context.Background(), formpath.Field("primera_parte"), entity.KindClient, "cli-1")
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if !result.AutofillOK || result.EntityID != "cli-1" {
		t.Fatalf("unexpected result header: %+v", result)
	}
	if len(result.Writes) != len(Fields(entity.KindClient)) {
		t.Fatalf("expected a write per mapped field, got %d of %d", len(result.Writes), len(Fields(entity.KindClient)))
	}

	got := map[string]any{}
	for _, write := range result.Writes {
		got[write.Path.String()] = write.Value
	}
	if got["primera_parte.name"] != "Ana Pérez" || got["primera_parte.provinceId"] != "01" {
		t.Fatalf("mapped values missing: %v", got)
	}
	// Absent attributes still produce writes so no stale prior value survives.
	if value, ok := got["primera_parte.profession"]; !ok || value != "" {
		t.Fatalf("expected blank write for absent attribute, got %v (present=%v)", value, ok)
	}
}

func TestHydrate_NotFoundBlanksGroup(t *testing.T) {
	service := mustService(t, entity.NewMemoryDirectory())

	result, err := service.Hydrate(context.Background(), formpath.Field("notario"), entity.KindNotary, "missing")
	if err != nil {
		t.Fatalf("not-found must not be an error, got %v", err)
	}
	if result.AutofillOK {
		t.Fatalf("not-found must leave the group in manual-entry state")
	}
	if result.EntityID != "" {
		t.Fatalf("not-found must clear the entity id, got %q", result.EntityID)
	}
	want := len(Fields(entity.KindNotary))
	if len(result.Writes) != want {
		t.Fatalf("expected %d blanking writes, got %d", want, len(result.Writes))
	}
	for _, write := range result.Writes {
		if write.Value != "" {
			t.Fatalf("blanking write %q carries value %v", write.Path, write.Value)
		}
	}
}

func TestHydrate_TransientFailurePropagates(t *testing.T) {
	directory := entity.NewMemoryDirectory()
	boom := errors.New("directory unavailable")
	directory.FailWith(boom)
	service := mustService(t, directory)

	_, err := service.Hydrate(context.Background(), formpath.Field("primera_parte"), entity.KindClient, "cli-1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transient error, got %v", err)
	}
}

func TestHydrate_StaleResponseDropped(t *testing.T) {
	directory := entity.NewMemoryDirectory()
	directory.Put(entity.Record{ID: "cli-1", Kind: entity.KindClient, Attributes: map[string]string{"name": "A"}})
	directory.Put(entity.Record{ID: "cli-2", Kind: entity.KindClient, Attributes: map[string]string{"name": "B"}})
	service := mustService(t, directory)
	prefix := formpath.Field("primera_parte")

	stale := service.begin(prefix)
	// A second request for the same group starts before the first resolves.
	fresh := service.begin(prefix)

	if !service.stale(prefix, stale) {
		t.Fatalf("first ticket must be stale once a newer request began")
	}
	if service.stale(prefix, fresh) {
		t.Fatalf("latest ticket must not be stale")
	}

	// Requests for other groups are independently sequenced.
	other := service.begin(formpath.Field("partes").Child("comprador").At(0))
	if service.stale(formpath.Field("partes").Child("comprador").At(0), other) {
		t.Fatalf("sequencing must be scoped per group prefix")
	}
}

func TestFields_KindsCovered(t *testing.T) {
	for _, kind := range entity.Kinds() {
		if len(Fields(kind)) == 0 {
			t.Fatalf("kind %q has no autofill mapping", kind)
		}
	}
	want := []string{"name", "licenseNumber", "maskedNationalId", "office", "jurisdiction", "phone", "email"}
	if diff := cmp.Diff(want, Fields(entity.KindNotary)); diff != "" {
		t.Fatalf("notary mapping drifted (-want +got):\n%s", diff)
	}
}

func mustService(t *testing.T, directory entity.Directory) *Service {
	t.Helper()
	service, err := NewService(directory)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}
