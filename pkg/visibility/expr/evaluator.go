// Package expr implements the visibleWhen rule language used by act bundles.
//
// Supported forms:
//   - truthy check:      casado
//   - comparison:        rol == "vendedor", cuotas != 0, conyuge == null
//   - membership:        rol in ["vendedor", "comprador"]
//   - composition:       a && b, a || b, !a, parentheses
//
// Identifiers resolve against the sibling values of the field's group. An
// unknown identifier reads as null; rules never fail on missing data, only on
// malformed syntax.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-actform/pkg/visibility"
)

// Evaluator parses and evaluates visibleWhen rules. Stateless; the zero value
// is usable.
type Evaluator struct{}

// New returns a rule evaluator.
func New() *Evaluator { return &Evaluator{} }

// Visible implements visibility.Evaluator. An empty rule is always visible.
func (e *Evaluator) Visible(rule string, scope visibility.Scope) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}
	p := &parser{input: trimmed}
	node, err := p.parseOr()
	if err != nil {
		return false, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return false, fmt.Errorf("expr: trailing input at %q", p.input[p.pos:])
	}
	return node.eval(scope), nil
}

type node interface {
	eval(scope visibility.Scope) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(scope visibility.Scope) bool {
	return n.left.eval(scope) || n.right.eval(scope)
}

type andNode struct{ left, right node }

func (n andNode) eval(scope visibility.Scope) bool {
	return n.left.eval(scope) && n.right.eval(scope)
}

type notNode struct{ inner node }

func (n notNode) eval(scope visibility.Scope) bool {
	return !n.inner.eval(scope)
}

type truthyNode struct{ ident string }

func (n truthyNode) eval(scope visibility.Scope) bool {
	return truthy(scope.Siblings[n.ident])
}

type compareNode struct {
	ident  string
	negate bool
	value  literal
}

func (n compareNode) eval(scope visibility.Scope) bool {
	equal := n.value.matches(scope.Siblings[n.ident])
	if n.negate {
		return !equal
	}
	return equal
}

type membershipNode struct {
	ident  string
	values []literal
}

func (n membershipNode) eval(scope visibility.Scope) bool {
	current := scope.Siblings[n.ident]
	for _, candidate := range n.values {
		if candidate.matches(current) {
			return true
		}
	}
	return false
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind   literalKind
	text   string
	number float64
	flag   bool
}

func (l literal) matches(value any) bool {
	switch l.kind {
	case litNull:
		return value == nil
	case litBool:
		got, ok := asBool(value)
		return ok && got == l.flag
	case litNumber:
		got, ok := asNumber(value)
		return ok && got == l.number
	default:
		return asString(value) == l.text
	}
}

// parser is a recursive-descent parser working directly on the rule string.
type parser struct {
	input string
	pos   int
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consumeOp("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.consumeOp("&&") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	p.skipSpace()
	if p.consumeOp("!") && !p.peekOp("=") {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	p.skipSpace()
	if p.consumeOp("(") {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.consumeOp(")") {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, err := p.readIdentifier()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	switch {
	case p.consumeOp("=="):
		lit, err := p.readLiteral()
		if err != nil {
			return nil, err
		}
		return compareNode{ident: ident, value: lit}, nil
	case p.consumeOp("!="):
		lit, err := p.readLiteral()
		if err != nil {
			return nil, err
		}
		return compareNode{ident: ident, negate: true, value: lit}, nil
	case p.consumeWord("in"):
		values, err := p.readList()
		if err != nil {
			return nil, err
		}
		return membershipNode{ident: ident, values: values}, nil
	default:
		return truthyNode{ident: ident}, nil
	}
}

func (p *parser) readIdentifier() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == '_' || ch == '-' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9' && p.pos > start) {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		if p.pos >= len(p.input) {
			return "", errors.New("expr: unexpected end of rule")
		}
		return "", fmt.Errorf("expr: expected identifier at %q", p.input[p.pos:])
	}
	return p.input[start:p.pos], nil
}

func (p *parser) readLiteral() (literal, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return literal{}, errors.New("expr: missing literal")
	}
	ch := p.input[p.pos]
	if ch == '"' || ch == '\'' {
		return p.readString(ch)
	}
	if ch == '-' || (ch >= '0' && ch <= '9') {
		return p.readNumber()
	}
	word, err := p.readIdentifier()
	if err != nil {
		return literal{}, err
	}
	switch strings.ToLower(word) {
	case "true":
		return literal{kind: litBool, flag: true}, nil
	case "false":
		return literal{kind: litBool, flag: false}, nil
	case "null", "nil":
		return literal{kind: litNull}, nil
	default:
		// Bare words compare as strings; bundles in the wild omit quotes.
		return literal{kind: litString, text: word}, nil
	}
}

func (p *parser) readString(quote byte) (literal, error) {
	p.pos++ // opening quote
	var builder strings.Builder
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == '\\' && p.pos+1 < len(p.input) {
			p.pos++
			builder.WriteByte(p.input[p.pos])
			p.pos++
			continue
		}
		if ch == quote {
			p.pos++
			return literal{kind: litString, text: builder.String()}, nil
		}
		builder.WriteByte(ch)
		p.pos++
	}
	return literal{}, errors.New("expr: unterminated string literal")
}

func (p *parser) readNumber() (literal, error) {
	start := p.pos
	if p.input[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' {
			p.pos++
			continue
		}
		break
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return literal{}, fmt.Errorf("expr: invalid number %q", p.input[start:p.pos])
	}
	return literal{kind: litNumber, number: value}, nil
}

func (p *parser) readList() ([]literal, error) {
	p.skipSpace()
	if !p.consumeOp("[") {
		return nil, errors.New("expr: 'in' requires a [..] list")
	}
	var values []literal
	for {
		p.skipSpace()
		if p.consumeOp("]") {
			return values, nil
		}
		if len(values) > 0 && !p.consumeOp(",") {
			return nil, errors.New("expr: expected ',' or ']' in list")
		}
		p.skipSpace()
		if p.consumeOp("]") {
			return values, nil
		}
		lit, err := p.readLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) consumeOp(op string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], op) {
		p.pos += len(op)
		return true
	}
	return false
}

func (p *parser) peekOp(op string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.input[p.pos:], op)
}

func (p *parser) consumeWord(word string) bool {
	p.skipSpace()
	end := p.pos + len(word)
	if end > len(p.input) || p.input[p.pos:end] != word {
		return false
	}
	if end < len(p.input) {
		next := p.input[end]
		if next == '_' || next == '-' ||
			(next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') ||
			(next >= '0' && next <= '9') {
			return false
		}
	}
	p.pos = end
	return true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func asBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
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

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
