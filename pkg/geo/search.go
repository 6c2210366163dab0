package geo

import (
	"sort"
	"strings"
)

const defaultSearchLimit = 20

// Search returns the nodes of tier whose name contains query, prefix matches
// first, then alphabetical. An empty query returns nothing; select controls
// list via ChildrenOf instead.
func (c *Catalog) Search(tier Tier, query string, limit int) []Node {
	if c == nil {
		return nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedNode, 0, 16)
	for _, node := range c.tiers[tier] {
		lower := strings.ToLower(node.Name)
		if !strings.Contains(lower, q) {
			continue
		}
		matches = append(matches, matchedNode{
			node:     node,
			isPrefix: strings.HasPrefix(lower, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].node.Name < matches[j].node.Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Node, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.node)
	}
	return out
}

type matchedNode struct {
	node     Node
	isPrefix bool
}
