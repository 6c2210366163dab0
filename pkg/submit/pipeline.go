// Package submit validates the assembled form-state tree against the act's
// schema and roster configuration, serializes it, and hands it to the
// persistence and document-generation collaborators. It is the single point
// where "is this tree complete and coherent" is authoritatively decided.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/formstate"
	"github.com/goliatone/go-actform/pkg/roster"
	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/visibility"
)

// AssignedNumberField is the tree path the assigned act number is recorded
// under after a successful submission.
const AssignedNumberField = "numero_asignado"

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Option customises the pipeline.
type Option func(*Pipeline)

// WithDocumentRenderer supplies the template renderer used when the act
// bundle carries a document template.
func WithDocumentRenderer(renderer DocumentRenderer) Option {
	return func(p *Pipeline) { p.renderer = renderer }
}

// WithVisibilityEvaluator lets required-field validation skip fields whose
// visibleWhen rule currently hides them.
func WithVisibilityEvaluator(evaluator visibility.Evaluator) Option {
	return func(p *Pipeline) { p.evaluator = evaluator }
}

// Pipeline runs the submission sequence. One instance per form session; the
// in-flight guard is per pipeline.
type Pipeline struct {
	store     ActStore
	renderer  DocumentRenderer
	evaluator visibility.Evaluator
	inFlight  atomic.Bool
}

// NewPipeline wires a pipeline to the persistence collaborator.
func NewPipeline(store ActStore, options ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("submit: act store is required")
	}
	p := &Pipeline{store: store}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Request carries everything one submission needs. Identity is explicit;
// the pipeline never reads ambient session state.
type Request struct {
	Bundle   schema.ActBundle
	Tree     *formstate.Tree
	Roster   *roster.Roster
	Identity Identity
}

// Receipt reports a successful submission.
type Receipt struct {
	ActID          string
	AssignedNumber string
	StoragePath    string
}

// Submit validates, serializes and persists. Validation failures come back as
// ValidationErrors (all of them, one entry per offending field or role);
// collaborator failures come back wrapped and leave the tree untouched. On
// success the assigned number is recorded onto the tree before returning.
func (p *Pipeline) Submit(ctx context.Context, req Request) (Receipt, error) {
	if req.Tree == nil || req.Roster == nil {
		return Receipt{}, errors.New("submit: tree and roster are required")
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return Receipt{}, ErrSubmitInFlight
	}
	defer p.inFlight.Store(false)

	if errs := p.validate(req); len(errs) > 0 {
		return Receipt{}, errs
	}

	snapshot := req.Tree.Snapshot()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return Receipt{}, fmt.Errorf("submit: serialize tree: %w", err)
	}

	created, err := p.store.CreateGeneratedAct(ctx, payload, req.Identity)
	if err != nil {
		return Receipt{}, fmt.Errorf("submit: create act: %w", err)
	}

	receipt := Receipt{ActID: created.ID, AssignedNumber: created.AssignedNumber}

	if p.renderer != nil && strings.TrimSpace(req.Bundle.Template) != "" {
		data := make(map[string]any, len(snapshot)+1)
		for key, value := range snapshot {
			data[key] = value
		}
		data[AssignedNumberField] = created.AssignedNumber

		document, err := p.renderer.RenderDocument(ctx, req.Bundle.Template, data)
		if err != nil {
			return Receipt{}, fmt.Errorf("submit: render document: %w", err)
		}
		storagePath, err := p.store.UploadDocument(ctx, created.ID, document)
		if err != nil {
			return Receipt{}, fmt.Errorf("submit: upload document: %w", err)
		}
		if err := p.store.RecordDocumentVersion(ctx, created.ID, storagePath, map[string]string{
			"act":    req.Bundle.Slug,
			"tenant": req.Identity.TenantID,
			"user":   req.Identity.UserID,
		}); err != nil {
			return Receipt{}, fmt.Errorf("submit: record document version: %w", err)
		}
		receipt.StoragePath = storagePath
	}

	req.Tree.Set(formpath.Field(AssignedNumberField), created.AssignedNumber)
	return receipt, nil
}

// validate runs the three-stage check: role population, notary presence,
// shallow field shape. Deliberately shallow: act-specific business rules
// belong to the document generator.
func (p *Pipeline) validate(req Request) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, p.validateRoles(req)...)
	errs = append(errs, p.validateNotary(req)...)
	errs = append(errs, p.validateFields(req)...)
	return errs
}

func (p *Pipeline) validateRoles(req Request) ValidationErrors {
	var errs ValidationErrors
	for _, role := range req.Roster.Roles() {
		cfg, _ := req.Roster.Config(role)
		if !cfg.Required {
			continue
		}
		populated := false
		for index := range req.Roster.Get(role) {
			group, _ := req.Roster.GroupAt(role, index)
			if group.EntityID != "" || req.Tree.PresentUnder(req.Roster.PrefixOf(role, index)) {
				populated = true
				break
			}
		}
		if !populated {
			errs = append(errs, ValidationError{
				Role:    role,
				Message: "at least one party is required",
			})
		}
	}
	return errs
}

func (p *Pipeline) validateNotary(req Request) ValidationErrors {
	if !req.Bundle.RequiresNotary() {
		return nil
	}
	for _, role := range req.Roster.Roles() {
		cfg, _ := req.Roster.Config(role)
		if roster.KindForRole(cfg) != entity.KindNotary {
			continue
		}
		for _, group := range req.Roster.Get(role) {
			if group.EntityID != "" {
				return nil
			}
		}
		return ValidationErrors{{Role: role, Message: "a notary must be selected"}}
	}
	return ValidationErrors{{Role: "notario", Message: "act requires a notary role"}}
}

func (p *Pipeline) validateFields(req Request) ValidationErrors {
	var errs ValidationErrors
	for _, field := range req.Bundle.Fields {
		path := formpath.Field(field.Name)
		value, ok := req.Tree.Get(path)

		if field.Required && p.fieldVisible(field, req) && !req.Tree.Present(path) {
			errs = append(errs, ValidationError{Path: path.String(), Message: "value is required"})
			continue
		}
		if !ok || !req.Tree.Present(path) {
			continue
		}
		errs = append(errs, checkShape(path.String(), field, value)...)
	}
	return errs
}

func (p *Pipeline) fieldVisible(field schema.FieldSchema, req Request) bool {
	if field.VisibleWhen == "" || p.evaluator == nil {
		return true
	}
	siblings := make(map[string]any, len(req.Bundle.Fields))
	for _, sibling := range req.Bundle.Fields {
		if value, ok := req.Tree.Get(formpath.Field(sibling.Name)); ok {
			siblings[sibling.Name] = value
		}
	}
	ok, err := p.evaluator.Visible(field.VisibleWhen, visibility.Scope{Siblings: siblings})
	if err != nil {
		return true
	}
	return ok
}

func checkShape(path string, field schema.FieldSchema, value any) ValidationErrors {
	var errs ValidationErrors
	text, isText := value.(string)

	if isText {
		if field.MinLength != nil && utf8.RuneCountInString(text) < *field.MinLength {
			errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf("must be at least %d characters", *field.MinLength)})
		}
		if field.MaxLength != nil && utf8.RuneCountInString(text) > *field.MaxLength {
			errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf("must be at most %d characters", *field.MaxLength)})
		}
		if field.Format == "email" && !emailShape.MatchString(strings.TrimSpace(text)) {
			errs = append(errs, ValidationError{Path: path, Message: "must be a valid email address"})
		}
	}

	switch field.Type {
	case schema.FieldTypeNumber, schema.FieldTypeCurrency:
		number, ok := asNumber(value)
		if !ok {
			errs = append(errs, ValidationError{Path: path, Message: "must be a number"})
			break
		}
		if field.Minimum != nil && number < *field.Minimum {
			errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf("must be at least %v", *field.Minimum)})
		}
		if field.Maximum != nil && number > *field.Maximum {
			errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf("must be at most %v", *field.Maximum)})
		}
	}
	return errs
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
