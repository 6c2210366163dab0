// Package wizard partitions an act's flat field list into fixed-size pages
// and gates forward navigation on per-page required-field presence. It is a
// rendering/UX partition only: full cross-field validation belongs to the
// submission pipeline.
package wizard

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/formstate"
	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/visibility"
)

// Step is the outcome of a Next call.
type Step int

const (
	// StepBlocked means a required field on the current page is still empty.
	StepBlocked Step = iota
	// StepAdvanced means the controller moved to the next page.
	StepAdvanced
	// StepSubmit means Next was pressed on the last page; the caller should
	// run the submission pipeline.
	StepSubmit
)

// Controller walks a finite page sequence {0 .. TotalPages-1}.
type Controller struct {
	fields    []schema.FieldSchema
	pageSize  int
	page      int
	tree      *formstate.Tree
	evaluator visibility.Evaluator
}

// NewController builds a controller over the bundle's top-level fields.
func NewController(fields []schema.FieldSchema, pageSize int, tree *formstate.Tree, evaluator visibility.Evaluator) (*Controller, error) {
	if len(fields) == 0 {
		return nil, errors.New("wizard: field list is empty")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("wizard: page size must be positive, got %d", pageSize)
	}
	if tree == nil {
		return nil, errors.New("wizard: form-state tree is required")
	}
	if evaluator == nil {
		return nil, errors.New("wizard: visibility evaluator is required")
	}
	return &Controller{
		fields:    fields,
		pageSize:  pageSize,
		tree:      tree,
		evaluator: evaluator,
	}, nil
}

// TotalPages returns the page count of the fixed partition.
func (c *Controller) TotalPages() int {
	return (len(c.fields) + c.pageSize - 1) / c.pageSize
}

// Page returns the current zero-based page.
func (c *Controller) Page() int { return c.page }

// PageFields returns the schema slice of the current page, hidden fields
// filtered out. The partition itself is over the full flat list so page
// boundaries never move as visibility flips.
func (c *Controller) PageFields() []schema.FieldSchema {
	start := c.page * c.pageSize
	end := start + c.pageSize
	if end > len(c.fields) {
		end = len(c.fields)
	}
	out := make([]schema.FieldSchema, 0, end-start)
	for _, field := range c.fields[start:end] {
		if c.visible(field) {
			out = append(out, field)
		}
	}
	return out
}

// CanAdvance reports whether every required, visible field on the current
// page holds a present value. For list fields presence means length > 0; the
// emptiness of individual items does not matter here.
func (c *Controller) CanAdvance() bool {
	for _, field := range c.PageFields() {
		if !field.Required {
			continue
		}
		if !c.tree.Present(formpath.Field(field.Name)) {
			return false
		}
	}
	return true
}

// Next advances, blocks, or signals submission when already on the last page.
func (c *Controller) Next() Step {
	if !c.CanAdvance() {
		return StepBlocked
	}
	if c.page >= c.TotalPages()-1 {
		return StepSubmit
	}
	c.page++
	return StepAdvanced
}

// Prev moves back one page; backward navigation is never gated.
func (c *Controller) Prev() {
	if c.page > 0 {
		c.page--
	}
}

func (c *Controller) visible(field schema.FieldSchema) bool {
	if field.VisibleWhen == "" {
		return true
	}
	siblings := make(map[string]any, len(c.fields))
	for _, sibling := range c.fields {
		if value, ok := c.tree.Get(formpath.Field(sibling.Name)); ok {
			siblings[sibling.Name] = value
		}
	}
	ok, err := c.evaluator.Visible(field.VisibleWhen, visibility.Scope{Siblings: siblings})
	if err != nil {
		// A malformed rule hides nothing; the bundle author sees the field
		// and the loader should have caught the syntax anyway.
		return true
	}
	return ok
}
