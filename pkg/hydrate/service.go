// Package hydrate turns a selected directory entity into the full set of
// path→value writes that populate a form group. The service always proposes
// the complete write set for the kind — suppressing writes to fields the user
// has overridden is the caller's job, and keeping that gate out of here is
// what makes hydration a pure "what would full autofill produce" function.
package hydrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/formstate"
)

// ErrSuperseded reports that a newer hydration request for the same group
// started while this one was waiting on the directory. The stale result must
// be dropped so a slow early lookup cannot clobber the user's later selection.
var ErrSuperseded = errors.New("hydrate: superseded by a newer request")

// Result is the outcome of one hydration. Writes covers every mapped field of
// the kind: found entities carry their attribute values (missing attributes
// become empty strings, never stale leftovers), and a not-found lookup blanks
// the whole group with AutofillOK false — the recoverable "enter manually"
// state.
type Result struct {
	Prefix     formpath.Path
	Kind       entity.Kind
	EntityID   string
	Writes     []formstate.Write
	AutofillOK bool
}

// Service resolves entities through the directory and builds write sets. Safe
// for concurrent use; per-group sequencing is internal.
type Service struct {
	directory entity.Directory

	mu   sync.Mutex
	seqs map[string]uint64
}

// NewService wires a hydration service to a directory.
func NewService(directory entity.Directory) (*Service, error) {
	if directory == nil {
		return nil, errors.New("hydrate: directory is required")
	}
	return &Service{directory: directory, seqs: make(map[string]uint64)}, nil
}

// Hydrate looks up the entity and returns the full write set for the group at
// prefix. A not-found lookup is not an error. Transient directory failures
// are returned as-is and leave no trace on the result; the caller's tree is
// never partially overwritten. When a second request for the same prefix
// starts before this one resolves, the earlier response returns ErrSuperseded.
func (s *Service) Hydrate(ctx context.Context, prefix formpath.Path, kind entity.Kind, id string) (Result, error) {
	if prefix.IsZero() {
		return Result{}, errors.New("hydrate: group prefix is required")
	}
	if !kind.Known() {
		return Result{}, fmt.Errorf("hydrate: unknown entity kind %q", kind)
	}

	ticket := s.begin(prefix)

	record, err := s.directory.Fetch(ctx, kind, id)

	if s.stale(prefix, ticket) {
		return Result{}, ErrSuperseded
	}

	switch {
	case err == nil:
		return Result{
			Prefix:     prefix,
			Kind:       kind,
			EntityID:   id,
			Writes:     buildWrites(prefix, kind, record),
			AutofillOK: true,
		}, nil
	case errors.Is(err, entity.ErrNotFound):
		return Result{
			Prefix:     prefix,
			Kind:       kind,
			EntityID:   "",
			Writes:     buildWrites(prefix, kind, entity.Record{}),
			AutofillOK: false,
		}, nil
	default:
		return Result{}, fmt.Errorf("hydrate: fetch %s %q: %w", kind, id, err)
	}
}

func buildWrites(prefix formpath.Path, kind entity.Kind, record entity.Record) []formstate.Write {
	fields := kindFields[kind]
	writes := make([]formstate.Write, 0, len(fields))
	for _, field := range fields {
		writes = append(writes, formstate.Write{
			Path:  prefix.Child(field),
			Value: record.Attr(field),
		})
	}
	return writes
}

func (s *Service) begin(prefix formpath.Path) uint64 {
	key := prefix.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[key]++
	return s.seqs[key]
}

func (s *Service) stale(prefix formpath.Path, ticket uint64) bool {
	key := prefix.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[key] != ticket
}
