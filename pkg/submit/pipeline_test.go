package submit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/formstate"
	"github.com/goliatone/go-actform/pkg/roster"
	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/submit"
	"github.com/goliatone/go-actform/pkg/visibility"
	"github.com/goliatone/go-actform/pkg/visibility/expr"
)

type storeCall struct {
	name string
	args []string
}

type fakeStore struct {
	calls      []storeCall
	createErr  error
	uploadErr  error
	versionErr error
	onCreate   func() error

	lastPayload []byte
}

func (s *fakeStore) CreateGeneratedAct(_ context.Context, payload []byte, identity submit.Identity) (submit.CreatedAct, error) {
	s.calls = append(s.calls, storeCall{name: "create", args: []string{identity.UserID, identity.TenantID}})
	s.lastPayload = payload
	if s.onCreate != nil {
		if err := s.onCreate(); err != nil {
			return submit.CreatedAct{}, err
		}
	}
	if s.createErr != nil {
		return submit.CreatedAct{}, s.createErr
	}
	return submit.CreatedAct{ID: "act-001", AssignedNumber: "2026-000123"}, nil
}

func (s *fakeStore) UploadDocument(_ context.Context, actID string, _ []byte) (string, error) {
	s.calls = append(s.calls, storeCall{name: "upload", args: []string{actID}})
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "acts/" + actID + "/document.html", nil
}

func (s *fakeStore) RecordDocumentVersion(_ context.Context, actID, storagePath string, _ map[string]string) error {
	s.calls = append(s.calls, storeCall{name: "version", args: []string{actID, storagePath}})
	return s.versionErr
}

type staticRenderer struct{ out string }

func (r staticRenderer) RenderDocument(context.Context, string, map[string]any) ([]byte, error) {
	return []byte(r.out), nil
}

func testBundle() schema.ActBundle {
	min2 := 2
	zero := 0.0
	return schema.ActBundle{
		Slug:       "compraventa",
		Title:      "Contrato de Compraventa",
		IsContract: true,
		Roles: []schema.ActRoleConfig{
			{Role: "vendedor", Required: true},
			{Role: "comprador", Required: true, Multiple: true},
			{Role: "notario", RequiresNotary: true},
		},
		Fields: []schema.FieldSchema{
			{Name: "descripcion", Type: schema.FieldTypeText, Required: true, MinLength: &min2},
			{Name: "correo", Type: schema.FieldTypeText, Format: "email"},
			{Name: "precio", Type: schema.FieldTypeCurrency, Minimum: &zero},
		},
	}
}

// populatedSetup returns a tree and roster that pass every validation stage.
func populatedSetup(t *testing.T, bundle schema.ActBundle) (*formstate.Tree, *roster.Roster) {
	t.Helper()
	tree := formstate.NewTree()
	r, err := roster.New(formpath.Field("partes"), bundle.Roles, tree)
	if err != nil {
		t.Fatalf("roster.New: %v", err)
	}

	for _, role := range []string{"vendedor", "comprador", "notario"} {
		group, err := r.Add(role)
		if err != nil {
			t.Fatalf("Add(%s): %v", role, err)
		}
		group.EntityID = fmt.Sprintf("ent-%s", role)
	}

	tree.Set(formpath.Field("descripcion"), "Solar no. 14 del DC 3")
	tree.Set(formpath.Field("precio"), 1500000.0)
	return tree, r
}

func TestSubmitRecordsAssignedNumber(t *testing.T) {
	bundle := testBundle()
	tree, r := populatedSetup(t, bundle)
	store := &fakeStore{}
	pipeline, err := submit.NewPipeline(store)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	receipt, err := pipeline.Submit(context.Background(), submit.Request{
		Bundle:   bundle,
		Tree:     tree,
		Roster:   r,
		Identity: submit.Identity{UserID: "u1", TenantID: "t1"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if receipt.ActID != "act-001" || receipt.AssignedNumber != "2026-000123" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	got, ok := tree.Get(formpath.Field("numero_asignado"))
	if !ok || got != "2026-000123" {
		t.Fatalf("assigned number on tree = %v (present=%v)", got, ok)
	}
	want := []storeCall{{name: "create", args: []string{"u1", "t1"}}}
	if diff := cmp.Diff(want, store.calls, cmp.AllowUnexported(storeCall{})); diff != "" {
		t.Errorf("store calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRendersDocumentWhenTemplateSet(t *testing.T) {
	bundle := testBundle()
	bundle.Template = "Acto {{ numero_asignado }}"
	tree, r := populatedSetup(t, bundle)
	store := &fakeStore{}
	pipeline, err := submit.NewPipeline(store, submit.WithDocumentRenderer(staticRenderer{out: "doc"}))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	receipt, err := pipeline.Submit(context.Background(), submit.Request{Bundle: bundle, Tree: tree, Roster: r})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if receipt.StoragePath != "acts/act-001/document.html" {
		t.Errorf("storage path = %q", receipt.StoragePath)
	}

	var names []string
	for _, call := range store.calls {
		names = append(names, call.name)
	}
	if diff := cmp.Diff([]string{"create", "upload", "version"}, names); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitMissingNotaryHasNoSideEffects(t *testing.T) {
	bundle := testBundle()
	tree := formstate.NewTree()
	r, err := roster.New(formpath.Field("partes"), bundle.Roles, tree)
	if err != nil {
		t.Fatalf("roster.New: %v", err)
	}
	for _, role := range []string{"vendedor", "comprador"} {
		group, err := r.Add(role)
		if err != nil {
			t.Fatalf("Add(%s): %v", role, err)
		}
		group.EntityID = "ent-" + role
	}
	tree.Set(formpath.Field("descripcion"), "Solar no. 14")
	before := tree.Len()

	store := &fakeStore{}
	pipeline, err := submit.NewPipeline(store)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, err = pipeline.Submit(context.Background(), submit.Request{Bundle: bundle, Tree: tree, Roster: r})
	list, ok := submit.AsValidationErrors(err)
	if !ok {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	found := false
	for _, item := range list {
		if item.Role == "notario" {
			found = true
		}
	}
	if !found {
		t.Errorf("no notary error in %v", list)
	}
	if len(store.calls) != 0 {
		t.Errorf("store was called: %v", store.calls)
	}
	if tree.Len() != before {
		t.Errorf("tree mutated on failed submit: %d != %d", tree.Len(), before)
	}
}

func TestSubmitRequiredRoleUnpopulated(t *testing.T) {
	bundle := testBundle()
	tree, r := populatedSetup(t, bundle)
	// Wipe the buyer's selection and values; the seeded blanks do not count.
	group, err := r.GroupAt("comprador", 0)
	if err != nil {
		t.Fatalf("GroupAt: %v", err)
	}
	group.EntityID = ""

	store := &fakeStore{}
	pipeline, err := submit.NewPipeline(store)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, err = pipeline.Submit(context.Background(), submit.Request{Bundle: bundle, Tree: tree, Roster: r})
	list, ok := submit.AsValidationErrors(err)
	if !ok {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	found := false
	for _, item := range list {
		if item.Role == "comprador" {
			found = true
		}
	}
	if !found {
		t.Errorf("no comprador error in %v", list)
	}
}

func TestSubmitShapeErrors(t *testing.T) {
	bundle := testBundle()
	tree, r := populatedSetup(t, bundle)
	tree.Set(formpath.Field("descripcion"), "x")
	tree.Set(formpath.Field("correo"), "not-an-email")
	tree.Set(formpath.Field("precio"), -5.0)

	pipeline, err := submit.NewPipeline(&fakeStore{})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, err = pipeline.Submit(context.Background(), submit.Request{Bundle: bundle, Tree: tree, Roster: r})
	list, ok := submit.AsValidationErrors(err)
	if !ok {
		t.Fatalf("want ValidationErrors, got %v", err)
	}

	paths := map[string]bool{}
	for _, item := range list {
		paths[item.Path] = true
	}
	for _, want := range []string{"descripcion", "correo", "precio"} {
		if !paths[want] {
			t.Errorf("missing shape error for %s in %v", want, list)
		}
	}
}

func TestSubmitSkipsHiddenRequiredField(t *testing.T) {
	bundle := testBundle()
	bundle.Fields = append(bundle.Fields, schema.FieldSchema{
		Name:        "garantia",
		Type:        schema.FieldTypeText,
		Required:    true,
		VisibleWhen: `tipo == "hipoteca"`,
	})
	tree, r := populatedSetup(t, bundle)
	tree.Set(formpath.Field("tipo"), "venta")

	var evaluator visibility.Evaluator = expr.New()
	pipeline, err := submit.NewPipeline(&fakeStore{}, submit.WithVisibilityEvaluator(evaluator))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	if _, err := pipeline.Submit(context.Background(), submit.Request{Bundle: bundle, Tree: tree, Roster: r}); err != nil {
		t.Fatalf("hidden required field should not block submit: %v", err)
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	bundle := testBundle()
	tree, r := populatedSetup(t, bundle)
	store := &fakeStore{}
	pipeline, err := submit.NewPipeline(store)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	req := submit.Request{Bundle: bundle, Tree: tree, Roster: r}
	store.onCreate = func() error {
		// Re-enter while the first submission is still inside the store call.
		_, err := pipeline.Submit(context.Background(), req)
		if !errors.Is(err, submit.ErrSubmitInFlight) {
			t.Errorf("re-entrant submit error = %v, want ErrSubmitInFlight", err)
		}
		return nil
	}

	if _, err := pipeline.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmitStoreFailureLeavesTreeUntouched(t *testing.T) {
	bundle := testBundle()
	tree, r := populatedSetup(t, bundle)
	store := &fakeStore{createErr: errors.New("pg: connection reset")}
	pipeline, err := submit.NewPipeline(store)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, err = pipeline.Submit(context.Background(), submit.Request{Bundle: bundle, Tree: tree, Roster: r})
	if err == nil {
		t.Fatal("want error from failing store")
	}
	if _, ok := tree.Get(formpath.Field("numero_asignado")); ok {
		t.Error("assigned number recorded despite store failure")
	}
}
