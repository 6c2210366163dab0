// Package session is the engine's front door: one Session per act being
// filled in, owning the form-state tree, the party roster, wizard paging and
// the submission pipeline, and serializing every mutation. Renderers talk to
// the session only; the packages underneath never see each other's state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-actform/pkg/cascade"
	"github.com/goliatone/go-actform/pkg/controls"
	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/formstate"
	"github.com/goliatone/go-actform/pkg/geo"
	"github.com/goliatone/go-actform/pkg/hydrate"
	"github.com/goliatone/go-actform/pkg/roster"
	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/submit"
	"github.com/goliatone/go-actform/pkg/visibility"
	"github.com/goliatone/go-actform/pkg/visibility/expr"
	"github.com/goliatone/go-actform/pkg/wizard"
)

var (
	// ErrFieldLocked reports a write against an autofilled field while its
	// group is not in edit mode.
	ErrFieldLocked = errors.New("session: field is locked by autofill")
	// ErrNoPipeline reports Submit on a session built without a pipeline.
	ErrNoPipeline = errors.New("session: no submission pipeline configured")
)

// DefaultPartyBase is the tree prefix party groups live under.
var DefaultPartyBase = formpath.Field("partes")

// Option configures a Session before construction.
type Option func(*Session)

// WithGeoCatalog overrides the embedded location catalog.
func WithGeoCatalog(catalog *geo.Catalog) Option {
	return func(s *Session) { s.catalog = catalog }
}

// WithEvaluator overrides the visibleWhen rule evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Session) { s.evaluator = evaluator }
}

// WithPipeline wires the submission pipeline. Sessions without one can be
// filled in and inspected but not submitted.
func WithPipeline(pipeline *submit.Pipeline) Option {
	return func(s *Session) { s.pipeline = pipeline }
}

// WithIdentity sets the user and tenant submissions run as.
func WithIdentity(identity submit.Identity) Option {
	return func(s *Session) { s.identity = identity }
}

// WithPartyBase overrides the tree prefix for party groups.
func WithPartyBase(base formpath.Path) Option {
	return func(s *Session) { s.base = base }
}

// Session drives one act intake from first field to submission receipt.
// Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	bundle    schema.ActBundle
	base      formpath.Path
	tree      *formstate.Tree
	roster    *roster.Roster
	hydrator  *hydrate.Service
	directory entity.Directory
	wizard    *wizard.Controller

	catalog   *geo.Catalog
	evaluator visibility.Evaluator
	pipeline  *submit.Pipeline
	identity  submit.Identity
}

// New builds a session for the act. The directory is required even for acts
// without professional roles: every party group hydrates through it.
func New(bundle schema.ActBundle, directory entity.Directory, options ...Option) (*Session, error) {
	if directory == nil {
		return nil, errors.New("session: entity directory is required")
	}
	s := &Session{
		bundle:    bundle,
		base:      DefaultPartyBase,
		tree:      formstate.NewTree(),
		directory: directory,
		evaluator: expr.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.catalog == nil {
		catalog, err := geo.Default()
		if err != nil {
			return nil, fmt.Errorf("session: load geo catalog: %w", err)
		}
		s.catalog = catalog
	}

	var err error
	if s.roster, err = roster.New(s.base, bundle.Roles, s.tree); err != nil {
		return nil, err
	}
	if s.hydrator, err = hydrate.NewService(directory); err != nil {
		return nil, err
	}
	pageSize := bundle.PageSize
	if pageSize <= 0 {
		pageSize = 8
	}
	if len(bundle.Fields) > 0 {
		if s.wizard, err = wizard.NewController(bundle.Fields, pageSize, s.tree, s.evaluator); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Bundle returns the act definition the session runs on.
func (s *Session) Bundle() schema.ActBundle { return s.bundle }

// SetField writes one value. Geo ancestor changes clear their dependents in
// the same atomic change, so no reader ever sees a sector under the wrong
// municipality. Writes to locked autofilled fields fail with ErrFieldLocked.
func (s *Session) SetField(path formpath.Path, value any) error {
	if path.IsZero() {
		return errors.New("session: field path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	leaf := path.LeafField()
	if group := s.groupForPath(path); group != nil {
		if group.Tracker.ReadOnly(leaf) {
			return fmt.Errorf("%w: %s", ErrFieldLocked, path)
		}
		group.Tracker.OnFieldEdited(leaf)
	}

	s.tree.Apply(formstate.Change{
		Writes: []formstate.Write{{Path: path, Value: value}},
		Clears: cascade.OnFieldChanged(path),
	})
	return nil
}

// Value reads one value from the tree.
func (s *Session) Value(path formpath.Path) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Get(path)
}

// Snapshot returns a flat copy of the current tree.
func (s *Session) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Snapshot()
}

// AddParty creates a new group for the role and returns it.
func (s *Session) AddParty(role string) (*roster.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Add(role)
}

// RemoveParty deletes the group at index; trailing groups shift down.
func (s *Session) RemoveParty(role string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Remove(role, index)
}

// Parties returns the live groups of a role.
func (s *Session) Parties(role string) []*roster.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Get(role)
}

// Roles returns the act's configured role names.
func (s *Session) Roles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Roles()
}

// SelectEntity resolves the entity and autofills the group at role/index. A
// found entity locks the group's autofillable fields; a not-found id blanks
// them and leaves the group in manual entry. A selection that was superseded
// by a newer one while the directory call was in flight returns
// hydrate.ErrSuperseded and changes nothing.
func (s *Session) SelectEntity(ctx context.Context, role string, index int, entityID string) error {
	s.mu.Lock()
	group, err := s.roster.GroupAt(role, index)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	prefix := s.roster.PrefixOf(role, index)
	kind := group.Kind
	s.mu.Unlock()

	// Directory latency stays outside the session lock; the hydrator's
	// per-prefix sequencing handles overlapping selections.
	result, err := s.hydrator.Hydrate(ctx, prefix, kind, entityID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The group may have shifted or vanished while the lookup ran.
	current, err := s.roster.GroupAt(role, index)
	if err != nil || current.ID != group.ID {
		return hydrate.ErrSuperseded
	}

	current.Tracker.OnEntitySelected(result.AutofillOK)
	current.EntityID = result.EntityID
	s.tree.Apply(formstate.Change{Writes: result.Writes})
	return nil
}

// Rehydrate re-fetches the group's current entity and re-applies autofill,
// skipping fields the user has overridden in edit mode. No-op for groups
// without a selected entity.
func (s *Session) Rehydrate(ctx context.Context, role string, index int) error {
	s.mu.Lock()
	group, err := s.roster.GroupAt(role, index)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	entityID := group.EntityID
	prefix := s.roster.PrefixOf(role, index)
	kind := group.Kind
	s.mu.Unlock()

	if entityID == "" {
		return nil
	}

	result, err := s.hydrator.Hydrate(ctx, prefix, kind, entityID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.roster.GroupAt(role, index)
	if err != nil || current.ID != group.ID {
		return hydrate.ErrSuperseded
	}

	writes := make([]formstate.Write, 0, len(result.Writes))
	for _, write := range result.Writes {
		if current.Tracker.AllowWrite(write.Path.LeafField()) {
			writes = append(writes, write)
		}
	}
	s.tree.Apply(formstate.Change{Writes: writes})
	return nil
}

// ToggleEdit flips the group between locked autofill and tracked editing and
// returns the new edit mode.
func (s *Session) ToggleEdit(role string, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, err := s.roster.GroupAt(role, index)
	if err != nil {
		return false, err
	}
	return group.Tracker.ToggleEdit(), nil
}

// SearchClient finds a client by national-id fragment.
func (s *Session) SearchClient(ctx context.Context, fragment string) (entity.Record, error) {
	return s.directory.SearchClientByNationalID(ctx, fragment)
}

// SearchNotary finds a notary by name or license fragment.
func (s *Session) SearchNotary(ctx context.Context, fragment string) (entity.Record, error) {
	return s.directory.SearchNotaryByNameOrLicense(ctx, fragment)
}

// Page returns the current wizard page, zero-based.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard == nil {
		return 0
	}
	return s.wizard.Page()
}

// TotalPages returns the wizard page count.
func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard == nil {
		return 0
	}
	return s.wizard.TotalPages()
}

// NextPage advances the wizard, or reports StepBlocked / StepSubmit.
func (s *Session) NextPage() wizard.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard == nil {
		return wizard.StepSubmit
	}
	return s.wizard.Next()
}

// PrevPage moves back one page.
func (s *Session) PrevPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard != nil {
		s.wizard.Prev()
	}
}

// PageControls returns the bound controls of the current wizard page.
func (s *Session) PageControls() []controls.Control {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard == nil {
		return nil
	}
	builder := controls.NewBuilder(s.tree, s.catalog, s.evaluator, nil)
	return builder.Build(s.wizard.PageFields(), formpath.Path{})
}

// PartyControls returns the bound controls of the group at role/index, with
// read-only state wired to the group's override tracker.
func (s *Session) PartyControls(role string, index int) ([]controls.Control, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, err := s.roster.GroupAt(role, index)
	if err != nil {
		return nil, err
	}
	readOnly := func(path formpath.Path) bool {
		return group.Tracker.ReadOnly(path.LeafField())
	}
	builder := controls.NewBuilder(s.tree, s.catalog, s.evaluator, readOnly)
	return builder.Build(partyFields(group.Kind), s.roster.PrefixOf(role, index)), nil
}

// Submit runs the submission pipeline against the current state.
func (s *Session) Submit(ctx context.Context) (submit.Receipt, error) {
	s.mu.Lock()
	pipeline := s.pipeline
	request := submit.Request{
		Bundle:   s.bundle,
		Tree:     s.tree,
		Roster:   s.roster,
		Identity: s.identity,
	}
	s.mu.Unlock()

	if pipeline == nil {
		return submit.Receipt{}, ErrNoPipeline
	}
	return pipeline.Submit(ctx, request)
}

// groupForPath resolves the party group owning a tree path, or nil for paths
// outside the party base.
func (s *Session) groupForPath(path formpath.Path) *roster.Group {
	if !path.HasPrefix(s.base) {
		return nil
	}
	for _, role := range s.roster.Roles() {
		for index := range s.roster.Get(role) {
			if path.HasPrefix(s.roster.PrefixOf(role, index)) {
				group, err := s.roster.GroupAt(role, index)
				if err != nil {
					return nil
				}
				return group
			}
		}
	}
	return nil
}
