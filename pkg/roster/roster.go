// Package roster manages the repeatable party groups of one form session:
// which roles exist, how many instances each allows, and the per-group
// override state. Groups live in the session's form-state tree under
// base.<role>.<index>; the roster owns their lifecycle.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/formstate"
	"github.com/goliatone/go-actform/pkg/hydrate"
	"github.com/goliatone/go-actform/pkg/override"
	"github.com/goliatone/go-actform/pkg/schema"
)

var (
	// ErrUnknownRole reports an Add/Remove against a role the act does not
	// configure.
	ErrUnknownRole = errors.New("roster: unknown role")
	// ErrLimitReached reports an Add on a singular role that already has its
	// instance.
	ErrLimitReached = errors.New("roster: role limit reached")
	// ErrNoSuchGroup reports an index that does not address a live group.
	// Indices shift on removal, so stale indices are an expected caller error.
	ErrNoSuchGroup = errors.New("roster: no such group")
)

// Group is one live instance of a role. EntityID is empty until a directory
// entity is selected into the group. ID is stable across index shifts.
type Group struct {
	ID       string
	Role     string
	Kind     entity.Kind
	EntityID string
	Tracker  *override.Tracker
}

// Roster holds the group collections per configured role.
type Roster struct {
	base   formpath.Path
	tree   *formstate.Tree
	roles  map[string]schema.ActRoleConfig
	order  []string
	groups map[string][]*Group
}

// New builds a roster for the act's role configuration. Groups write into the
// provided tree under base.
func New(base formpath.Path, roles []schema.ActRoleConfig, tree *formstate.Tree) (*Roster, error) {
	if base.IsZero() {
		return nil, errors.New("roster: base path is required")
	}
	if tree == nil {
		return nil, errors.New("roster: form-state tree is required")
	}
	r := &Roster{
		base:   base,
		tree:   tree,
		roles:  make(map[string]schema.ActRoleConfig, len(roles)),
		groups: make(map[string][]*Group, len(roles)),
	}
	for _, cfg := range roles {
		if _, dup := r.roles[cfg.Role]; dup {
			return nil, fmt.Errorf("roster: role %q configured twice", cfg.Role)
		}
		r.roles[cfg.Role] = cfg
		r.order = append(r.order, cfg.Role)
	}
	return r, nil
}

// Roles returns the configured role names in declaration order.
func (r *Roster) Roles() []string {
	return append([]string{}, r.order...)
}

// Config returns the configuration for a role.
func (r *Roster) Config(role string) (schema.ActRoleConfig, bool) {
	cfg, ok := r.roles[role]
	return cfg, ok
}

// Add creates a new group for the role, seeded with the blank autofill
// template: every autofillable field written empty, no entity, manual-entry
// state. Singular roles reject a second Add with ErrLimitReached.
func (r *Roster) Add(role string) (*Group, error) {
	cfg, ok := r.roles[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if !cfg.Multiple && len(r.groups[role]) > 0 {
		return nil, fmt.Errorf("%w: role %q is singular", ErrLimitReached, role)
	}

	kind := KindForRole(cfg)
	group := &Group{
		ID:      uuid.NewString(),
		Role:    role,
		Kind:    kind,
		Tracker: override.NewTracker(hydrate.FieldSet(kind)),
	}
	r.groups[role] = append(r.groups[role], group)

	prefix := r.PrefixOf(role, len(r.groups[role])-1)
	writes := make([]formstate.Write, 0, len(hydrate.Fields(kind)))
	for _, field := range hydrate.Fields(kind) {
		writes = append(writes, formstate.Write{Path: prefix.Child(field), Value: ""})
	}
	r.tree.Apply(formstate.Change{Writes: writes})
	return group, nil
}

// Remove deletes the group at index. Its subtree goes entirely — no
// tombstones — and the remaining groups of the role shift down, tree keys
// included. Callers holding indices across a structural edit must revalidate
// them; hold Group.ID for a stable handle.
func (r *Roster) Remove(role string, index int) error {
	if _, ok := r.roles[role]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	groups := r.groups[role]
	if index < 0 || index >= len(groups) {
		return fmt.Errorf("%w: %s[%d]", ErrNoSuchGroup, role, index)
	}

	r.tree.ClearPrefix(r.PrefixOf(role, index))
	for i := index + 1; i < len(groups); i++ {
		r.tree.MovePrefix(r.PrefixOf(role, i), r.PrefixOf(role, i-1))
	}
	r.groups[role] = append(groups[:index], groups[index+1:]...)
	return nil
}

// Get returns the live groups of a role in index order.
func (r *Roster) Get(role string) []*Group {
	groups := r.groups[role]
	if len(groups) == 0 {
		return nil
	}
	return append([]*Group{}, groups...)
}

// GroupAt returns the group at a role index.
func (r *Roster) GroupAt(role string, index int) (*Group, error) {
	groups := r.groups[role]
	if index < 0 || index >= len(groups) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrNoSuchGroup, role, index)
	}
	return groups[index], nil
}

// PrefixOf returns the tree path of the group at role/index.
func (r *Roster) PrefixOf(role string, index int) formpath.Path {
	return r.base.Child(role).At(index)
}

// KindForRole resolves which directory roster a role's autofill queries. An
// explicit entityKind in the act bundle wins; otherwise well-known role names
// map to their professional rosters and everything else is a client.
func KindForRole(cfg schema.ActRoleConfig) entity.Kind {
	if cfg.EntityKind != "" {
		kind := entity.Kind(cfg.EntityKind)
		if kind.Known() {
			return kind
		}
	}
	switch strings.ToLower(cfg.Role) {
	case "notario", "notary":
		return entity.KindNotary
	case "abogado", "lawyer":
		return entity.KindLawyer
	case "alguacil", "bailiff":
		return entity.KindBailiff
	case "perito", "expert":
		return entity.KindExpert
	case "tasador", "appraiser":
		return entity.KindAppraiser
	default:
		return entity.KindClient
	}
}
