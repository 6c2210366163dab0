package geo

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

//go:embed data/do_locations.txt
var dataFS embed.FS

const defaultDataPath = "data/do_locations.txt"

// Tier identifies one level of the location hierarchy.
type Tier string

const (
	TierProvince     Tier = "province"
	TierMunicipality Tier = "municipality"
	TierSector       Tier = "sector"
)

// Node is one location entry. ParentID is empty for provinces.
type Node struct {
	ID       string
	Name     string
	ParentID string
}

// Catalog is the static location hierarchy, read-only after load. Lookups go
// through a parent→children index built once at load time; the observable
// behavior is identical to scanning the tier lists.
type Catalog struct {
	tiers    map[Tier][]Node
	children map[Tier]map[string][]Node
	byID     map[Tier]map[string]Node
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog parsed from the embedded data file. The file is
// read once per process; every caller shares the same catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultDataPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()
		defaultCatalog, defaultErr = Load(f)
	})
	return defaultCatalog, defaultErr
}

// Load parses a catalog from pipe-delimited lines of the form
// "tier|id|parentId|name". Blank lines and # comments are skipped. The
// hierarchy is verified: every municipality must name a known province and
// every sector a known municipality.
func Load(r io.Reader) (*Catalog, error) {
	if r == nil {
		return nil, fmt.Errorf("geo: missing reader")
	}

	catalog := &Catalog{
		tiers:    make(map[Tier][]Node),
		children: make(map[Tier]map[string][]Node),
		byID:     make(map[Tier]map[string]Node),
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.Split(text, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("geo: line %d: expected 4 fields, got %d", line, len(parts))
		}
		tier := Tier(strings.TrimSpace(parts[0]))
		node := Node{
			ID:       strings.TrimSpace(parts[1]),
			ParentID: strings.TrimSpace(parts[2]),
			Name:     strings.TrimSpace(parts[3]),
		}
		if err := catalog.add(tier, node); err != nil {
			return nil, fmt.Errorf("geo: line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := catalog.verify(); err != nil {
		return nil, err
	}
	catalog.sortAll()
	return catalog, nil
}

func (c *Catalog) add(tier Tier, node Node) error {
	switch tier {
	case TierProvince, TierMunicipality, TierSector:
	default:
		return fmt.Errorf("unknown tier %q", tier)
	}
	if node.ID == "" || node.Name == "" {
		return fmt.Errorf("node id and name are required")
	}
	if tier == TierProvince && node.ParentID != "" {
		return fmt.Errorf("province %q must not have a parent", node.ID)
	}
	if tier != TierProvince && node.ParentID == "" {
		return fmt.Errorf("%s %q has no parent", tier, node.ID)
	}
	if c.byID[tier] == nil {
		c.byID[tier] = make(map[string]Node)
	}
	if _, dup := c.byID[tier][node.ID]; dup {
		return fmt.Errorf("duplicate %s id %q", tier, node.ID)
	}
	c.byID[tier][node.ID] = node
	c.tiers[tier] = append(c.tiers[tier], node)
	if node.ParentID != "" {
		if c.children[tier] == nil {
			c.children[tier] = make(map[string][]Node)
		}
		c.children[tier][node.ParentID] = append(c.children[tier][node.ParentID], node)
	}
	return nil
}

func (c *Catalog) verify() error {
	for _, node := range c.tiers[TierMunicipality] {
		if _, ok := c.byID[TierProvince][node.ParentID]; !ok {
			return fmt.Errorf("geo: municipality %q references unknown province %q", node.ID, node.ParentID)
		}
	}
	for _, node := range c.tiers[TierSector] {
		if _, ok := c.byID[TierMunicipality][node.ParentID]; !ok {
			return fmt.Errorf("geo: sector %q references unknown municipality %q", node.ID, node.ParentID)
		}
	}
	return nil
}

func (c *Catalog) sortAll() {
	byName := func(nodes []Node) {
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	}
	for tier := range c.tiers {
		byName(c.tiers[tier])
	}
	for tier := range c.children {
		for parent := range c.children[tier] {
			byName(c.children[tier][parent])
		}
	}
}

// Provinces returns every province, sorted by name.
func (c *Catalog) Provinces() []Node {
	return cloneNodes(c.tiers[TierProvince])
}

// ChildrenOf returns the nodes of tier whose parent is parentID, sorted by
// name. An unknown or empty parent yields an empty slice — that is the
// correct "nothing selectable yet" state, not an error.
func (c *Catalog) ChildrenOf(tier Tier, parentID string) []Node {
	if c == nil || parentID == "" {
		return nil
	}
	return cloneNodes(c.children[tier][parentID])
}

// Node looks up a single entry by tier and id.
func (c *Catalog) Node(tier Tier, id string) (Node, bool) {
	if c == nil {
		return Node{}, false
	}
	node, ok := c.byID[tier][id]
	return node, ok
}

func cloneNodes(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	return append([]Node{}, nodes...)
}
