// Package tui walks a form session from the terminal: party selection first,
// then the wizard pages, then submission. Prompting goes through PromptDriver
// so the whole flow runs under test with a scripted driver.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-actform/pkg/controls"
	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/session"
	"github.com/goliatone/go-actform/pkg/submit"
	"github.com/goliatone/go-actform/pkg/wizard"
)

// Option configures a Runner.
type Option func(*Runner)

// WithDriver swaps the prompt driver; tests use a scripted one.
func WithDriver(driver PromptDriver) Option {
	return func(r *Runner) { r.driver = driver }
}

// Runner drives one session interactively.
type Runner struct {
	session *session.Session
	driver  PromptDriver
}

// NewRunner builds a runner over a session, defaulting to the survey driver.
func NewRunner(sess *session.Session, options ...Option) (*Runner, error) {
	if sess == nil {
		return nil, errors.New("tui: session is required")
	}
	r := &Runner{session: sess, driver: newSurveyDriver()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Run walks parties, pages and submission and returns the receipt.
func (r *Runner) Run(ctx context.Context) (submit.Receipt, error) {
	bundle := r.session.Bundle()
	if err := r.driver.Info(ctx, fmt.Sprintf("— %s —", bundle.Title)); err != nil {
		return submit.Receipt{}, err
	}

	for _, role := range r.session.Roles() {
		if err := r.collectParties(ctx, role); err != nil {
			return submit.Receipt{}, err
		}
	}

	if err := r.walkPages(ctx); err != nil {
		return submit.Receipt{}, err
	}

	receipt, err := r.session.Submit(ctx)
	if err != nil {
		if list, ok := submit.AsValidationErrors(err); ok {
			for _, item := range list {
				_ = r.driver.Info(ctx, "✗ "+item.String())
			}
		}
		return submit.Receipt{}, err
	}
	_ = r.driver.Info(ctx, fmt.Sprintf("Acto registrado: %s (no. %s)", receipt.ActID, receipt.AssignedNumber))
	return receipt, nil
}

func (r *Runner) collectParties(ctx context.Context, role string) error {
	bundle := r.session.Bundle()
	cfg, _ := bundle.RoleConfig(role)
	label := cfg.Label
	if label == "" {
		label = role
	}

	if !cfg.Required && !cfg.RequiresNotary {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("¿Agregar %s?", label),
			Default: false,
		})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
	}

	for {
		group, err := r.session.AddParty(role)
		if err != nil {
			return err
		}
		index := len(r.session.Parties(role)) - 1

		if err := r.selectOrFill(ctx, role, index, label, group.Kind); err != nil {
			return err
		}

		if !cfg.Multiple {
			return nil
		}
		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("¿Agregar otro %s?", label),
			Default: false,
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// selectOrFill asks for a directory id; a blank answer or a failed lookup
// falls through to manual field entry.
func (r *Runner) selectOrFill(ctx context.Context, role string, index int, label string, kind entity.Kind) error {
	idPrompt := fmt.Sprintf("%s: cédula o ID (vacío para entrada manual)", label)
	if kind != entity.KindClient {
		idPrompt = fmt.Sprintf("%s: matrícula o ID (vacío para entrada manual)", label)
	}

	id, err := r.driver.Input(ctx, InputConfig{Message: idPrompt})
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)

	if id != "" {
		if err := r.session.SelectEntity(ctx, role, index, id); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("Directorio no disponible: %v", err))
		} else if r.session.Parties(role)[index].EntityID != "" {
			return nil
		} else {
			_ = r.driver.Info(ctx, fmt.Sprintf("No se encontró %q; complete los datos manualmente.", id))
		}
	}

	groupControls, err := r.session.PartyControls(role, index)
	if err != nil {
		return err
	}
	for _, control := range groupControls {
		if err := r.promptControl(ctx, control); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) walkPages(ctx context.Context) error {
	if r.session.TotalPages() == 0 {
		return nil
	}
	for {
		_ = r.driver.Info(ctx, fmt.Sprintf("Página %d de %d", r.session.Page()+1, r.session.TotalPages()))
		for _, control := range r.session.PageControls() {
			if err := r.promptControl(ctx, control); err != nil {
				return err
			}
		}
		switch r.session.NextPage() {
		case wizard.StepAdvanced:
			continue
		case wizard.StepSubmit:
			return nil
		case wizard.StepBlocked:
			_ = r.driver.Info(ctx, "Faltan campos obligatorios en esta página.")
		}
	}
}

func (r *Runner) promptControl(ctx context.Context, control controls.Control) error {
	if control.ReadOnly {
		return r.driver.Info(ctx, fmt.Sprintf("%s: %v (autocompletado)", displayLabel(control), control.Value))
	}

	path, err := formpath.Parse(control.Path)
	if err != nil {
		return err
	}

	switch control.Type {
	case schema.FieldTypeBoolean:
		current, _ := control.Value.(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: displayLabel(control),
			Default: current,
			Help:    control.Help,
		})
		if err != nil {
			return err
		}
		return r.session.SetField(path, answer)

	case schema.FieldTypeSelect, schema.FieldTypeGeoProvince,
		schema.FieldTypeGeoMunicipality, schema.FieldTypeGeoSector:
		return r.promptSelect(ctx, control, path)

	case schema.FieldTypeNumber, schema.FieldTypeCurrency:
		return r.promptNumber(ctx, control, path)

	default:
		current, _ := control.Value.(string)
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(control),
			Default: current,
			Help:    control.Help,
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" && !control.Required {
			return nil
		}
		return r.session.SetField(path, answer)
	}
}

func (r *Runner) promptSelect(ctx context.Context, control controls.Control, path formpath.Path) error {
	if len(control.Options) == 0 {
		if control.Required {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s: sin opciones disponibles todavía.", displayLabel(control)))
		}
		return nil
	}
	labels := make([]string, len(control.Options))
	defaultIndex := -1
	for i, option := range control.Options {
		labels[i] = option.Label
		if current, ok := control.Value.(string); ok && current == option.Value {
			defaultIndex = i
		}
	}
	index, err := r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(control),
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         control.Help,
	})
	if err != nil {
		return err
	}
	if index < 0 || index >= len(control.Options) {
		return fmt.Errorf("tui: selection out of range for %s", control.Path)
	}
	return r.session.SetField(path, control.Options[index].Value)
}

func (r *Runner) promptNumber(ctx context.Context, control controls.Control, path formpath.Path) error {
	current := ""
	if control.Value != nil {
		current = fmt.Sprint(control.Value)
	}
	for {
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(control),
			Default: current,
			Help:    control.Help,
		})
		if err != nil {
			return err
		}
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" && !control.Required {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s: debe ser un número.", displayLabel(control)))
			continue
		}
		return r.session.SetField(path, parsed)
	}
}

func displayLabel(control controls.Control) string {
	if control.Label != "" {
		return control.Label
	}
	return control.Name
}
