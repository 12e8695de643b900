package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Lookup resolves the current value of a form field. ok is false when the
// field does not exist.
type Lookup func(name string) (value string, ok bool)

// Values is a static Lookup source.
type Values map[string]string

// Lookup returns the value stored under name.
func (v Values) Lookup(name string) (string, bool) {
	value, ok := v[name]
	return value, ok
}

// Expression is a compiled skip rule.
//
// Supported syntax:
//   - truthiness: `newsletter`
//   - comparisons: `plan == "pro"`, `plan != basic`, `seats == 3`
//   - the legacy single `=` as an alias of `==`: `plan=pro`
//   - composition: `a == x && !(b || c)`
//
// Field values compare case-insensitively after trimming. Number literals
// compare numerically when the field value parses as a number.
type Expression struct {
	raw  string
	root node
}

// Compile parses rule. An empty rule compiles to an expression that is
// always false, so an empty skip attribute never skips a step.
func Compile(rule string) (*Expression, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return &Expression{raw: trimmed}, nil
	}

	root, err := parse(trimmed)
	if err != nil {
		if legacy, ok := parseLegacy(trimmed); ok {
			return &Expression{raw: trimmed, root: legacy}, nil
		}
		return nil, err
	}
	return &Expression{raw: trimmed, root: root}, nil
}

// MustCompile is Compile for rules known to be valid.
func MustCompile(rule string) *Expression {
	e, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval compiles and evaluates rule in one step.
func Eval(rule string, lookup Lookup) (bool, error) {
	e, err := Compile(rule)
	if err != nil {
		return false, err
	}
	return e.Eval(lookup)
}

// Eval evaluates the expression against lookup.
func (e *Expression) Eval(lookup Lookup) (bool, error) {
	if e == nil || e.root == nil {
		return false, nil
	}
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return e.root.eval(lookup)
}

// Identifiers returns the field names referenced by the expression, in
// first-seen order.
func (e *Expression) Identifiers() []string {
	if e == nil || e.root == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	e.root.identifiers(func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	})
	return out
}

func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	return e.raw
}

var legacyRule = regexp.MustCompile(`^([A-Za-z0-9_.\-\[\]]+)\s*(!=|=)\s*([^=!&|()"']*)$`)

// parseLegacy accepts the historical `field=value` and `field!=value` forms
// whose value may contain spaces.
func parseLegacy(rule string) (node, bool) {
	m := legacyRule.FindStringSubmatch(rule)
	if m == nil {
		return nil, false
	}
	op := tokenEq
	if m[2] == "!=" {
		op = tokenNeq
	}
	return compare{identifier: m[1], op: op, literal: literal{kind: litString, raw: strings.TrimSpace(m[3])}}, true
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || strings.IndexByte("()!=&|", c) >= 0
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case isSpace(ch):
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case ch == '=':
			// `=` is accepted as an alias of `==`.
			i++
			if i < len(input) && input[i] == '=' {
				i++
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
		case ch == '&' || ch == '|':
			if i+1 >= len(input) || input[i+1] != ch {
				return nil, fmt.Errorf("navigation/expr: unexpected %q; use %q", string(ch), string([]byte{ch, ch}))
			}
			kind := tokenAnd
			if ch == '|' {
				kind = tokenOr
			}
			tokens = append(tokens, token{kind: kind, raw: input[i : i+2]})
			i += 2
		case ch == '"' || ch == '\'':
			value, next, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = next
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, classify(input[start:i]))
		}
	}
	return tokens, nil
}

func readString(input string, start int) (string, int, error) {
	quote := input[start]
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == quote {
			body := input[start+1 : i]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `\'`, `'`)
				body = strings.ReplaceAll(body, `"`, `\"`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return "", 0, fmt.Errorf("navigation/expr: invalid string literal: %w", err)
			}
			return value, i + 1, nil
		}
	}
	return "", 0, errors.New("navigation/expr: unterminated string literal")
}

func classify(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kind: tokenBool, raw: strings.ToLower(raw)}
	case "null", "nil":
		return token{kind: tokenNull, raw: "null"}
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return token{kind: tokenNumber, raw: raw}
	}
	return token{kind: tokenIdentifier, raw: raw}
}

type node interface {
	eval(lookup Lookup) (bool, error)
	identifiers(visit func(string))
}

type or struct{ left, right node }

func (n or) eval(lookup Lookup) (bool, error) {
	ok, err := n.left.eval(lookup)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(lookup)
}

func (n or) identifiers(visit func(string)) {
	n.left.identifiers(visit)
	n.right.identifiers(visit)
}

type and struct{ left, right node }

func (n and) eval(lookup Lookup) (bool, error) {
	ok, err := n.left.eval(lookup)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(lookup)
}

func (n and) identifiers(visit func(string)) {
	n.left.identifiers(visit)
	n.right.identifiers(visit)
}

type not struct{ inner node }

func (n not) eval(lookup Lookup) (bool, error) {
	ok, err := n.inner.eval(lookup)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n not) identifiers(visit func(string)) { n.inner.identifiers(visit) }

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

type compare struct {
	identifier string
	op         tokenKind
	literal    literal
}

func (n compare) identifiers(visit func(string)) { visit(n.identifier) }

func (n compare) eval(lookup Lookup) (bool, error) {
	value, present := lookup(n.identifier)
	var equal bool
	switch n.literal.kind {
	case litNull:
		equal = !present
	case litBool:
		equal = truthy(value) == (n.literal.raw == "true")
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("navigation/expr: invalid number literal %q", n.literal.raw)
		}
		got, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err == nil {
			equal = got == want
		} else {
			equal = normalize(value) == normalize(n.literal.raw)
		}
	case litString:
		equal = normalize(value) == normalize(n.literal.raw)
	default:
		return false, errors.New("navigation/expr: unsupported literal")
	}
	if n.op == tokenNeq {
		return !equal, nil
	}
	return equal, nil
}

type truthiness struct{ identifier string }

func (n truthiness) eval(lookup Lookup) (bool, error) {
	value, ok := lookup(n.identifier)
	return ok && truthy(value), nil
}

func (n truthiness) identifiers(visit func(string)) { visit(n.identifier) }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// truthy treats empty strings, "false", "0", "off" and "no" as false.
func truthy(value string) bool {
	switch normalize(value) {
	case "", "false", "0", "off", "no":
		return false
	default:
		return true
	}
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parse(input string) (node, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	stream := &tokenStream{tokens: tokens}
	root, err := stream.parseOr()
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("navigation/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return root, nil
}

func (s *tokenStream) parseOr() (node, error) {
	left, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	for s.match(tokenOr) {
		right, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		left = or{left: left, right: right}
	}
	return left, nil
}

func (s *tokenStream) parseAnd() (node, error) {
	left, err := s.parseUnary()
	if err != nil {
		return nil, err
	}
	for s.match(tokenAnd) {
		right, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		left = and{left: left, right: right}
	}
	return left, nil
}

func (s *tokenStream) parseUnary() (node, error) {
	if s.match(tokenNot) {
		inner, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		return not{inner: inner}, nil
	}
	return s.parsePrimary()
}

func (s *tokenStream) parsePrimary() (node, error) {
	if s.match(tokenLParen) {
		inner, err := s.parseOr()
		if err != nil {
			return nil, err
		}
		if !s.match(tokenRParen) {
			return nil, errors.New("navigation/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := s.consume(tokenIdentifier)
	if !ok {
		if s.pos >= len(s.tokens) {
			return nil, errors.New("navigation/expr: empty expression")
		}
		return nil, fmt.Errorf("navigation/expr: expected identifier, got %q", s.tokens[s.pos].raw)
	}

	for _, op := range []tokenKind{tokenEq, tokenNeq} {
		if s.match(op) {
			lit, err := s.consumeLiteral()
			if err != nil {
				return nil, err
			}
			return compare{identifier: ident.raw, op: op, literal: lit}, nil
		}
	}
	return truthiness{identifier: ident.raw}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (literal, error) {
	if s.pos >= len(s.tokens) {
		return literal{}, errors.New("navigation/expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString, tokenIdentifier:
		// Bare words are strings, which keeps `plan == pro` working.
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("navigation/expr: expected literal, got %q", tok.raw)
	}
}
