// Package entity defines the contracts the engine uses to reach the
// practice's people directory: clients and the professional rosters. The real
// directory lives in an external service; the engine only needs lookup by id
// and a couple of best-match searches.
package entity

import (
	"context"
	"errors"
	"strings"
)

// Kind names one of the rosters an entity can be looked up in.
type Kind string

const (
	KindClient    Kind = "client"
	KindNotary    Kind = "notary"
	KindLawyer    Kind = "lawyer"
	KindBailiff   Kind = "bailiff"
	KindExpert    Kind = "expert"
	KindAppraiser Kind = "appraiser"
)

// Kinds lists every roster in a stable order.
func Kinds() []Kind {
	return []Kind{KindClient, KindNotary, KindLawyer, KindBailiff, KindExpert, KindAppraiser}
}

// Known reports whether the kind is one of the supported rosters.
func (k Kind) Known() bool {
	switch k {
	case KindClient, KindNotary, KindLawyer, KindBailiff, KindExpert, KindAppraiser:
		return true
	default:
		return false
	}
}

// ErrNotFound signals that a lookup or search yielded no record. It is a
// steady state the form recovers from locally (manual entry), never a fatal
// error.
var ErrNotFound = errors.New("entity: not found")

// Record is one directory entry. Attributes carry the canonical values keyed
// by attribute name; hydration mappings translate attribute names into form
// field names. A missing attribute reads as the empty string so autofill
// always produces a complete write set.
type Record struct {
	ID         string
	Kind       Kind
	Attributes map[string]string
}

// Attr returns the named attribute or "".
func (r Record) Attr(name string) string {
	return r.Attributes[name]
}

// Directory is the external people-directory collaborator. Implementations
// return ErrNotFound (possibly wrapped) when an id or search has no match;
// any other error is treated as transient and surfaced with a retry
// affordance.
type Directory interface {
	Fetch(ctx context.Context, kind Kind, id string) (Record, error)
	SearchClientByNationalID(ctx context.Context, fragment string) (Record, error)
	SearchNotaryByNameOrLicense(ctx context.Context, fragment string) (Record, error)
}

// MemoryDirectory is an in-memory Directory used by tests, fixtures and the
// CLI example. Populate it with Put before use; it is not safe for concurrent
// mutation after handing it to a session.
type MemoryDirectory struct {
	records map[Kind]map[string]Record
	failure error
}

// NewMemoryDirectory returns an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{records: make(map[Kind]map[string]Record)}
}

// Put stores a record under its kind and id.
func (d *MemoryDirectory) Put(record Record) {
	if record.ID == "" || !record.Kind.Known() {
		return
	}
	if d.records[record.Kind] == nil {
		d.records[record.Kind] = make(map[string]Record)
	}
	d.records[record.Kind][record.ID] = record
}

// FailWith makes every subsequent call return err, simulating a transient
// directory outage. Pass nil to heal.
func (d *MemoryDirectory) FailWith(err error) { d.failure = err }

// Fetch implements Directory.
func (d *MemoryDirectory) Fetch(ctx context.Context, kind Kind, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if d.failure != nil {
		return Record{}, d.failure
	}
	record, ok := d.records[kind][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// SearchClientByNationalID implements Directory with a best-match scan over
// the nationalId attribute.
func (d *MemoryDirectory) SearchClientByNationalID(ctx context.Context, fragment string) (Record, error) {
	return d.search(ctx, KindClient, fragment, "nationalId")
}

// SearchNotaryByNameOrLicense implements Directory.
func (d *MemoryDirectory) SearchNotaryByNameOrLicense(ctx context.Context, fragment string) (Record, error) {
	return d.search(ctx, KindNotary, fragment, "name", "licenseNumber")
}

func (d *MemoryDirectory) search(ctx context.Context, kind Kind, fragment string, attrs ...string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if d.failure != nil {
		return Record{}, d.failure
	}
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return Record{}, ErrNotFound
	}
	for _, record := range d.records[kind] {
		for _, attr := range attrs {
			if strings.Contains(strings.ToLower(record.Attr(attr)), needle) {
				return record, nil
			}
		}
	}
	return Record{}, ErrNotFound
}
