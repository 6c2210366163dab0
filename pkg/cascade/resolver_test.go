package cascade

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-actform/pkg/formpath"
)

func TestOnFieldChanged_ProvinceClearsBothDescendants(t *testing.T) {
	cases := []struct {
		changed string
		want    []string
	}{
		{"provinceId", []string{"municipalityId", "sectorId"}},
		{"primera_parte.provinceId", []string{"primera_parte.municipalityId", "primera_parte.sectorId"}},
		{"partes.vendedor.2.provinceId", []string{"partes.vendedor.2.municipalityId", "partes.vendedor.2.sectorId"}},
		{"partes.comprador.0.direccion.provinceId", []string{"partes.comprador.0.direccion.municipalityId", "partes.comprador.0.direccion.sectorId"}},
	}
	for _, tc := range cases {
		got := pathsToStrings(OnFieldChanged(formpath.MustParse(tc.changed)))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("OnFieldChanged(%q) mismatch (-want +got):\n%s", tc.changed, diff)
		}
	}
}

func TestOnFieldChanged_MunicipalityClearsSectorOnly(t *testing.T) {
	got := pathsToStrings(OnFieldChanged(formpath.MustParse("partes.comprador.1.municipalityId")))
	want := []string{"partes.comprador.1.sectorId"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOnFieldChanged_OtherFieldsAreInert(t *testing.T) {
	for _, changed := range []string{"sectorId", "primera_parte.nombre", "partes.vendedor.0.cedula", "precio"} {
		if got := OnFieldChanged(formpath.MustParse(changed)); len(got) != 0 {
			t.Fatalf("OnFieldChanged(%q) must be empty, got %v", changed, got)
		}
	}
}

func TestOnFieldChanged_Idempotent(t *testing.T) {
	changed := formpath.MustParse("primera_parte.provinceId")
	first := pathsToStrings(OnFieldChanged(changed))
	second := pathsToStrings(OnFieldChanged(changed))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated resolution must not accumulate clears:\n%s", diff)
	}
}

func TestOnFieldChanged_Locality(t *testing.T) {
	got := OnFieldChanged(formpath.MustParse("partes.comprador.1.provinceId"))
	sibling := formpath.MustParse("partes.comprador.0")
	other := formpath.MustParse("partes.vendedor")
	for _, path := range got {
		if path.HasPrefix(sibling) || path.HasPrefix(other) {
			t.Fatalf("cascade leaked outside its group: %q", path)
		}
	}
}

func pathsToStrings(paths []formpath.Path) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		out = append(out, path.String())
	}
	return out
}
