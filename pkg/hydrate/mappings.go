package hydrate

import "github.com/goliatone/go-actform/pkg/entity"

// kindFields maps each roster kind to the ordered set of group fields a full
// autofill populates. Attribute names in the directory record and field names
// inside the group subtree are the same identifiers on purpose: the mapping is
// the single place that would absorb a divergence if one ever appears.
var kindFields = map[entity.Kind][]string{
	entity.KindClient: {
		"name", "nationalId", "nationality", "maritalStatus", "profession",
		"address", "provinceId", "municipalityId", "sectorId", "email",
		"phone", "birthDate", "birthPlace", "passport", "occupation",
		"employer",
	},
	entity.KindNotary: {
		"name", "licenseNumber", "maskedNationalId", "office", "jurisdiction",
		"phone", "email",
	},
	entity.KindLawyer: {
		"name", "licenseNumber", "nationalId", "office", "address", "phone",
		"email",
	},
	entity.KindBailiff: {
		"name", "licenseNumber", "tribunal", "jurisdiction", "phone", "email",
	},
	entity.KindExpert: {
		"name", "nationalId", "licenseNumber", "specialty", "phone", "email",
	},
	entity.KindAppraiser: {
		"name", "nationalId", "licenseNumber", "company", "phone", "email",
	},
}

// Fields returns the autofillable field names for a kind in write order.
func Fields(kind entity.Kind) []string {
	fields := kindFields[kind]
	if len(fields) == 0 {
		return nil
	}
	return append([]string{}, fields...)
}

// FieldSet returns the autofillable field names for a kind as a membership
// set. Override tracking gates writes against this.
func FieldSet(kind entity.Kind) map[string]struct{} {
	fields := kindFields[kind]
	out := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		out[field] = struct{}{}
	}
	return out
}
