package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultPageSize = 8

// ErrBundleNotFound is returned when a requested act slug has no document in
// the store. Missing bundles are a configuration error in the deployment, not
// a user-recoverable state, so callers should surface this loudly.
var ErrBundleNotFound = errors.New("schema: act bundle not found")

// ErrUnknownFieldType is returned when a bundle declares a field type outside
// the supported set. The type enum is closed; renderers rely on that.
var ErrUnknownFieldType = errors.New("schema: unknown field type")

// Store holds the parsed act bundles keyed by slug. Safe for concurrent
// readers once loaded; loading happens once at startup.
type Store struct {
	bundles map[string]ActBundle
}

// LoadFS reads every .yaml/.yml/.json document in the filesystem and parses it
// as an act bundle. Files that do not parse fail the whole load: a partially
// available act catalog is worse than a crash at boot.
func LoadFS(fsys fs.FS) (*Store, error) {
	if fsys == nil {
		return nil, errors.New("schema: bundle filesystem is nil")
	}

	store := &Store{bundles: make(map[string]ActBundle)}
	err := fs.WalkDir(fsys, ".", func(entry string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(entry)) {
		case ".yaml", ".yml", ".json":
		default:
			return nil
		}
		data, err := fs.ReadFile(fsys, entry)
		if err != nil {
			return fmt.Errorf("schema: read bundle %q: %w", entry, err)
		}
		bundle, err := ParseBundle(data)
		if err != nil {
			return fmt.Errorf("schema: parse bundle %q: %w", entry, err)
		}
		if _, exists := store.bundles[bundle.Slug]; exists {
			return fmt.Errorf("schema: duplicate bundle slug %q in %q", bundle.Slug, entry)
		}
		store.bundles[bundle.Slug] = bundle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// ParseBundle decodes a single act bundle document. YAML is a superset of the
// JSON documents some deployments author, so one decoder covers both.
func ParseBundle(data []byte) (ActBundle, error) {
	var bundle ActBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return ActBundle{}, fmt.Errorf("schema: decode bundle: %w", err)
	}
	if err := normalizeBundle(&bundle); err != nil {
		return ActBundle{}, err
	}
	return bundle, nil
}

// Get returns the bundle for a slug or ErrBundleNotFound.
func (s *Store) Get(slug string) (ActBundle, error) {
	if s == nil {
		return ActBundle{}, ErrBundleNotFound
	}
	bundle, ok := s.bundles[strings.TrimSpace(slug)]
	if !ok {
		return ActBundle{}, fmt.Errorf("%w: %q", ErrBundleNotFound, slug)
	}
	return bundle, nil
}

// Slugs lists the available act slugs in sorted order.
func (s *Store) Slugs() []string {
	if s == nil || len(s.bundles) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.bundles))
	for slug := range s.bundles {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

func normalizeBundle(bundle *ActBundle) error {
	bundle.Slug = strings.TrimSpace(bundle.Slug)
	if bundle.Slug == "" {
		return errors.New("schema: bundle slug is required")
	}
	if len(bundle.Fields) == 0 {
		return fmt.Errorf("schema: bundle %q has no fields", bundle.Slug)
	}
	if bundle.PageSize <= 0 {
		bundle.PageSize = defaultPageSize
	}
	bundle.Title = SanitizeLabel(bundle.Title)

	seenRoles := make(map[string]struct{}, len(bundle.Roles))
	for i := range bundle.Roles {
		role := &bundle.Roles[i]
		role.Role = strings.TrimSpace(role.Role)
		if role.Role == "" {
			return fmt.Errorf("schema: bundle %q has a role without a name", bundle.Slug)
		}
		if _, dup := seenRoles[role.Role]; dup {
			return fmt.Errorf("schema: bundle %q declares role %q twice", bundle.Slug, role.Role)
		}
		seenRoles[role.Role] = struct{}{}
		role.Label = SanitizeLabel(role.Label)
	}

	return normalizeFields(bundle.Slug, bundle.Fields)
}

func normalizeFields(slug string, fields []FieldSchema) error {
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		field := &fields[i]
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return fmt.Errorf("schema: bundle %q has a field without a name", slug)
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("schema: bundle %q declares field %q twice", slug, field.Name)
		}
		seen[field.Name] = struct{}{}

		if !field.Type.Known() {
			return fmt.Errorf("%w: bundle %q field %q declares %q", ErrUnknownFieldType, slug, field.Name, field.Type)
		}
		if field.Type == FieldTypeSelect && len(field.Options) == 0 {
			return fmt.Errorf("schema: bundle %q select field %q has no options", slug, field.Name)
		}
		if field.Type == FieldTypeObjectList && len(field.ItemSchema) == 0 {
			return fmt.Errorf("schema: bundle %q objectList field %q has no item schema", slug, field.Name)
		}
		if field.Type != FieldTypeObjectList && len(field.ItemSchema) > 0 {
			return fmt.Errorf("schema: bundle %q field %q carries an item schema but is not an objectList", slug, field.Name)
		}

		field.Label = SanitizeLabel(field.Label)
		field.Help = SanitizeHelp(field.Help)

		if len(field.ItemSchema) > 0 {
			if err := normalizeFields(slug, field.ItemSchema); err != nil {
				return err
			}
		}
	}
	return nil
}
