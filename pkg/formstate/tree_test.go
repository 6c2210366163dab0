package formstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-actform/pkg/formpath"
)

func TestTree_ApplyIsOneStep(t *testing.T) {
	tree := NewTree()
	tree.Set(formpath.MustParse("primera_parte.municipalityId"), "mun-01")
	tree.Set(formpath.MustParse("primera_parte.sectorId"), "sec-07")

	tree.Apply(Change{
		Writes: []Write{{Path: formpath.MustParse("primera_parte.provinceId"), Value: "prov-02"}},
		Clears: []formpath.Path{
			formpath.MustParse("primera_parte.municipalityId"),
			formpath.MustParse("primera_parte.sectorId"),
		},
	})

	want := map[string]any{"primera_parte.provinceId": "prov-02"}
	if diff := cmp.Diff(want, tree.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_ClearPrefixRemovesSubtreeOnly(t *testing.T) {
	tree := NewTree()
	tree.Set(formpath.MustParse("partes.comprador.0.nombre"), "B")
	tree.Set(formpath.MustParse("partes.comprador.1.nombre"), "C")
	tree.Set(formpath.MustParse("partes.vendedor.0.nombre"), "A")

	tree.ClearPrefix(formpath.MustParse("partes.comprador.0"))

	if _, ok := tree.Get(formpath.MustParse("partes.comprador.0.nombre")); ok {
		t.Fatalf("expected comprador.0 subtree cleared")
	}
	if !tree.Present(formpath.MustParse("partes.comprador.1.nombre")) {
		t.Fatalf("sibling index must survive")
	}
	if !tree.Present(formpath.MustParse("partes.vendedor.0.nombre")) {
		t.Fatalf("unrelated role must survive")
	}
}

func TestTree_MovePrefixShiftsIndices(t *testing.T) {
	tree := NewTree()
	tree.Set(formpath.MustParse("partes.comprador.1.nombre"), "C")
	tree.Set(formpath.MustParse("partes.comprador.1.provinceId"), "prov-02")

	tree.MovePrefix(
		formpath.MustParse("partes.comprador.1"),
		formpath.MustParse("partes.comprador.0"),
	)

	want := map[string]any{
		"partes.comprador.0.nombre":     "C",
		"partes.comprador.0.provinceId": "prov-02",
	}
	if diff := cmp.Diff(want, tree.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_Present(t *testing.T) {
	tree := NewTree()
	path := formpath.MustParse("testigos")

	if tree.Present(path) {
		t.Fatalf("absent path must not be present")
	}
	tree.Set(path, []any{})
	if tree.Present(path) {
		t.Fatalf("empty list must not be present")
	}
	tree.Set(path, []any{map[string]any{}})
	if !tree.Present(path) {
		t.Fatalf("list with one item is present regardless of item emptiness")
	}
	tree.Set(formpath.MustParse("nota"), "   ")
	if tree.Present(formpath.MustParse("nota")) {
		t.Fatalf("blank string must not be present")
	}
	tree.Set(formpath.MustParse("monto"), 0)
	if !tree.Present(formpath.MustParse("monto")) {
		t.Fatalf("numeric zero is still a present value")
	}
}

func TestTree_SnapshotIsDetached(t *testing.T) {
	tree := NewTree()
	tree.Set(formpath.MustParse("titulo"), "Venta")

	snap := tree.Snapshot()
	snap["titulo"] = "mutated"

	if value, _ := tree.Get(formpath.MustParse("titulo")); value != "Venta" {
		t.Fatalf("snapshot mutation leaked into tree: %v", value)
	}
}
