// SPDX-License-Identifier: MIT
package hpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/hpp/lexer"
)

type (
	// Parser recognizes declarations in a header's token sequence.
	//
	// Every rule takes the token sequence & a cursor, returning the cursor past the construct it
	// consumed. Tokens are never modified; the cursor is the only state threaded through the
	// rules, so a Parser may be shared by goroutines given a goroutine-safe Sink.
	Parser struct {
		sink   Sink
		logger logrus.FieldLogger
		debug  bool
	}

	// Option defines the Parser functional option type.
	Option func(*Parser)

	// ParseError locates a grammar failure in the token sequence.
	ParseError struct {
		Err    error
		Detail string

		// Token is the offending token, zero-valued at the end of the sequence.
		Token lexer.Token
		Index int
	}
)

const (
	kwClass    = "class"
	kwStruct   = "struct"
	kwTypedef  = "typedef"
	kwConst    = "const"
	kwStatic   = "static"
	kwVirtual  = "virtual"
	kwExplicit = "explicit"
	kwInline   = "inline"
	kwOverride = "override"

	dirPragma  = "#pragma"
	dirInclude = "#include"
	dirDefine  = "#define"

	debugWindow = 3
)

// Parsing errors.
var (
	ErrUnsupported     = errors.New("unsupported construct")
	ErrUnexpectedEnd   = errors.New("unexpected end of tokens")
	ErrUnexpectedToken = errors.New("unexpected token")

	ErrPanicked = errors.New("recovery from panic")
)

var (
	// memberSpecifiers may precede a member declaration in any order.
	memberSpecifiers = map[string]struct{}{
		kwStatic:   {},
		kwVirtual:  {},
		kwExplicit: {},
		kwInline:   {},
	}

	accessSpecifiers = map[string]struct{}{
		"public:":    {},
		"protected:": {},
		"private:":   {},
	}

	// Conditional directives are skipped, both branches get parsed.
	conditionalDirectives = map[string]struct{}{
		"#if":     {},
		"#ifdef":  {},
		"#ifndef": {},
		"#elif":   {},
		"#else":   {},
		"#endif":  {},
		"#undef":  {},
	}
)

// New instantiates a Parser emitting to sink.
func New(sink Sink, options ...Option) *Parser {
	p := &Parser{
		sink:   sink,
		logger: logrus.New(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option { return func(p *Parser) { p.logger = logger } }

// WithDebug configures the debug option.
func WithDebug(debug bool) Option { return func(p *Parser) { p.debug = debug } }

// Logger obtains the logger.
func (p *Parser) Logger() logrus.FieldLogger { return p.logger }

// Error is the error interface implementation for ParseError.
func (e *ParseError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}

	if e.Token.Kind == 0 {
		return fmt.Sprintf("%s at token %d", msg, e.Index)
	}

	return fmt.Sprintf("%s at line %d, token %d %q", msg, e.Token.Line, e.Index, e.Token.Val)
}

// Unwrap obtains the underlying error kind.
func (e *ParseError) Unwrap() error { return e.Err }

// ParseReader tokenizes r & parses the resulting token sequence.
func ParseReader(ctx context.Context, r io.Reader, sink Sink, options ...Option) (tokens lexer.Tokens, err error) {
	p := New(sink, options...)

	tokens, err = lexer.Tokenize(ctx, lexer.WithReader(r), lexer.WithLogger(p.logger), lexer.WithDebug(p.debug))
	if err != nil {
		return
	}

	err = p.Parse(tokens)

	return
}

// Parse recognizes the declarations of a file's token sequence.
//
// The file scope ends with the sequence; Events recognized before a failure have already been
// emitted.
func (p *Parser) Parse(tokens lexer.Tokens) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}

		var pErr *ParseError
		if p.debug && errors.As(err, &pErr) {
			p.logger.Debugf("parse failure: %v\ntokens: %s", err, spew.Sdump(window(tokens, pErr.Index)))
		}
	}()

	_, err = p.parseScope(tokens, 0, nil)

	return
}

// parseScope dispatches declarations until the scope's closing brace or the end of the tokens.
//
// A nil scope is the file scope, which has no braces.
func (p *Parser) parseScope(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	for idx < len(tokens) {
		keyword := tokens[idx]
		idx++

		var err error
		switch {
		case keyword.Is(lexer.TokenPunctuation, "}"):
			if scope == nil {
				return idx - 1, fail(tokens, idx-1, ErrUnexpectedToken, `"}" at file scope`)
			}

			return idx, nil
		case keyword.Kind == lexer.TokenPreprocessor:
			idx, err = p.parseDirective(tokens, idx, keyword, scope)
		case keyword.Is(lexer.TokenIdentifier, kwClass), keyword.Is(lexer.TokenIdentifier, kwStruct):
			idx, err = p.parseClass(tokens, idx, scope)
		case keyword.Is(lexer.TokenIdentifier, kwTypedef):
			idx, err = p.parseTypedef(tokens, idx, scope)
		case isAccessSpecifier(keyword):
		default:
			// The keyword begins a member declaration.
			idx, err = p.parseMember(tokens, idx-1, scope)
		}

		if err != nil {
			return idx, err
		}
	}

	if scope != nil {
		return idx, fail(tokens, idx, ErrUnexpectedEnd, "unterminated "+strings.Join(scope, "::"))
	}

	return idx, nil
}

func (p *Parser) parseDirective(tokens lexer.Tokens, idx int, directive lexer.Token, scope []string) (int, error) {
	switch directive.Val {
	case dirPragma:
		return p.parsePragma(tokens, idx, directive), nil
	case dirInclude:
		return p.parseInclude(tokens, idx, scope)
	case dirDefine:
		return p.parseDefine(tokens, idx-1)
	}

	if _, ok := conditionalDirectives[directive.Val]; ok {
		return skipLine(tokens, idx, directive.Line), nil
	}

	return idx - 1, fail(tokens, idx-1, ErrUnsupported, "directive "+directive.Val)
}

// parsePragma consumes the pragma body, the tokens on the directive's line.
func (p *Parser) parsePragma(tokens lexer.Tokens, idx int, directive lexer.Token) int {
	return skipLine(tokens, idx, directive.Line)
}

// parseInclude emits the include path, either a string literal or a `< … >` token run.
func (p *Parser) parseInclude(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	path, err := p.at(tokens, idx)
	if err != nil {
		return idx, err
	}

	if path.Is(lexer.TokenPunctuation, "<") {
		var buffer strings.Builder
		buffer.WriteString(path.Val)

		for {
			idx++

			part, err := p.at(tokens, idx)
			if err != nil {
				return idx, err
			}
			if part.Line != path.Line {
				return idx, fail(tokens, idx, ErrUnexpectedToken, "unterminated include path")
			}

			buffer.WriteString(part.Val)
			if part.Is(lexer.TokenPunctuation, ">") {
				break
			}
		}

		path.Val = buffer.String()
	}

	p.emit(EventInclude, path, scope)

	return idx + 1, nil
}

func (p *Parser) parseDefine(tokens lexer.Tokens, idx int) (int, error) {
	return idx, fail(tokens, idx, ErrUnsupported, dirDefine)
}

// parseClass handles `<name> ;`, `<name> { … } ;` & `<name> : …`.
func (p *Parser) parseClass(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	name, err := p.expect(tokens, idx, lexer.TokenIdentifier, "class name")
	if err != nil {
		return idx, err
	}

	// `class Foo: public Bar` & `class Foo:public Bar` lex the colon into the name.
	if base, ok := cutInheritance(name.Val); ok && base != "" {
		name.Val = base
		p.emit(EventDefinedClass, name, scope)

		return p.parseInheritedClasses(tokens, idx+1)
	}

	divider, err := p.at(tokens, idx+1)
	if err != nil {
		return idx + 1, err
	}
	idx += 2

	switch {
	case divider.Is(lexer.TokenPunctuation, ";"):
		p.emit(EventDeclaredClass, name, scope)

		return idx, nil
	case divider.Kind == lexer.TokenIdentifier && strings.HasPrefix(divider.Val, ":"):
		p.emit(EventDefinedClass, name, scope)

		return p.parseInheritedClasses(tokens, idx-1)
	case divider.Is(lexer.TokenPunctuation, "{"):
		p.emit(EventDefinedClass, name, scope)

		if idx, err = p.parseScope(tokens, idx, nest(scope, name.Val)); err != nil {
			return idx, err
		}
		if err = p.expectPunct(tokens, idx, ";"); err != nil {
			return idx, err
		}

		return idx + 1, nil
	}

	return idx - 1, fail(tokens, idx-1, ErrUnexpectedToken, `expected ";", "{" or ":"`)
}

// parseInheritedClasses rejects base class lists.
func (p *Parser) parseInheritedClasses(tokens lexer.Tokens, idx int) (int, error) {
	return idx, fail(tokens, idx, ErrUnsupported, "inheritance list")
}

// parseTypedef handles `<type> <alias> ;`.
func (p *Parser) parseTypedef(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	idx, err := p.parseType(tokens, idx, scope)
	if err != nil {
		return idx, err
	}

	alias, err := p.expectName(tokens, idx, "type alias")
	if err != nil {
		return idx, err
	}
	p.emit(EventDefinedType, alias, scope)

	if err = p.expectPunct(tokens, idx+1, ";"); err != nil {
		return idx + 1, err
	}

	return idx + 2, nil
}

// parseMember handles data members & member function declarations.
func (p *Parser) parseMember(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	for idx < len(tokens) && isMemberSpecifier(tokens[idx]) {
		idx++
	}

	// Constructors & destructors have no return type.
	if isConstructor(tokens, idx) {
		return p.parseFunctionSignature(tokens, idx+2, scope)
	}

	idx, err := p.parseIdentifier(tokens, idx, scope)
	if err != nil {
		return idx, err
	}

	name, err := p.expectName(tokens, idx, "member name")
	if err != nil {
		return idx, err
	}
	idx++

	delim, err := p.at(tokens, idx)
	if err != nil {
		return idx, err
	}
	idx++

	switch {
	case delim.Is(lexer.TokenPunctuation, "("):
		return p.parseFunctionSignature(tokens, idx, scope)
	case delim.Is(lexer.TokenPunctuation, ";"):
		p.emit(EventDeclaredMember, name, scope)

		return idx, nil
	}

	return idx - 1, fail(tokens, idx-1, ErrUnexpectedToken, `expected "(" or ";"`)
}

// parseFunctionSignature handles the parameter list & qualifiers, the cursor being just past `(`.
//
// Only declarations are supported; a body is a failure.
func (p *Parser) parseFunctionSignature(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	name, err := p.at(tokens, idx-2)
	if err != nil {
		return idx, err
	}

	for {
		delim, err := p.at(tokens, idx)
		if err != nil {
			return idx, err
		}

		if delim.Is(lexer.TokenPunctuation, ")") {
			idx++
			break
		}
		if delim.Is(lexer.TokenPunctuation, ",") {
			idx++
		}

		if idx, err = p.parseParameter(tokens, idx, scope); err != nil {
			return idx, err
		}
	}

	idx = optional(kwConst, tokens, idx)
	idx = optional(kwOverride, tokens, idx)

	delim, err := p.at(tokens, idx)
	if err != nil {
		return idx, err
	}

	switch {
	case delim.Is(lexer.TokenPunctuation, ";"):
		p.emit(EventDeclaredFunction, name, scope)

		return idx + 1, nil
	case delim.Is(lexer.TokenPunctuation, "{"):
		return idx, fail(tokens, idx, ErrUnsupported, "function definition")
	}

	return idx, fail(tokens, idx, ErrUnexpectedToken, `expected ";"`)
}

// parseParameter handles `<identifier> [name]`.
func (p *Parser) parseParameter(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	idx, err := p.parseIdentifier(tokens, idx, scope)
	if err != nil {
		return idx, err
	}

	if idx < len(tokens) && tokens[idx].Kind == lexer.TokenIdentifier && isName(tokens[idx].Val) {
		idx++
	}

	return idx, nil
}

// parseIdentifier handles `[static] [virtual] <type>`.
func (p *Parser) parseIdentifier(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	idx = optional(kwStatic, tokens, idx)
	idx = optional(kwVirtual, tokens, idx)

	return p.parseType(tokens, idx, scope)
}

// parseType handles `[const] <typename> [* | &] [, <type> | < <type> >]`.
func (p *Parser) parseType(tokens lexer.Tokens, idx int, scope []string) (int, error) {
	idx = optional(kwConst, tokens, idx)

	typename, err := p.expectName(tokens, idx, "type name")
	if err != nil {
		return idx, err
	}
	idx++

	delim, err := p.at(tokens, idx)
	if err != nil {
		return idx, err
	}

	if delim.Is(lexer.TokenPunctuation, "*") || delim.Is(lexer.TokenPunctuation, "&") {
		p.emit(EventReferencedType, typename, scope)

		idx++
		if delim, err = p.at(tokens, idx); err != nil {
			return idx, err
		}
	} else {
		p.emit(EventUsedType, typename, scope)
	}

	switch {
	case delim.Is(lexer.TokenPunctuation, ","):
		return p.parseType(tokens, idx+1, scope)
	case delim.Is(lexer.TokenPunctuation, "<"):
		if idx, err = p.parseType(tokens, idx+1, scope); err != nil {
			return idx, err
		}
		if err = p.expectPunct(tokens, idx, ">"); err != nil {
			return idx, err
		}

		return idx + 1, nil
	}

	return idx, nil
}

// optional consumes the token at idx when it is the identifier attribute.
func optional(attribute string, tokens lexer.Tokens, idx int) int {
	if idx < len(tokens) && tokens[idx].Is(lexer.TokenIdentifier, attribute) {
		return idx + 1
	}

	return idx
}

func (p *Parser) emit(kind EventKind, tok lexer.Token, scope []string) {
	e := Event{Kind: kind, Name: tok.Val, Scope: scope, Line: tok.Line}
	if p.debug {
		p.logger.Debugf("parser emit: %s", e)
	}

	p.sink.Emit(e)
}

func (p *Parser) at(tokens lexer.Tokens, idx int) (lexer.Token, error) {
	if idx < 0 || idx >= len(tokens) {
		return lexer.Token{}, fail(tokens, idx, ErrUnexpectedEnd, "")
	}

	return tokens[idx], nil
}

func (p *Parser) expect(tokens lexer.Tokens, idx int, kind lexer.TokenKind, what string) (tok lexer.Token, err error) {
	if tok, err = p.at(tokens, idx); err != nil {
		return
	}

	if tok.Kind != kind {
		err = fail(tokens, idx, ErrUnexpectedToken, "expected "+what)
	}

	return
}

// expectName requires an identifier shaped like a (possibly qualified) name.
func (p *Parser) expectName(tokens lexer.Tokens, idx int, what string) (tok lexer.Token, err error) {
	if tok, err = p.expect(tokens, idx, lexer.TokenIdentifier, what); err != nil {
		return
	}

	if !isName(tok.Val) {
		err = fail(tokens, idx, ErrUnexpectedToken, "expected "+what)
	}

	return
}

func (p *Parser) expectPunct(tokens lexer.Tokens, idx int, val string) error {
	tok, err := p.at(tokens, idx)
	if err != nil {
		return err
	}

	if !tok.Is(lexer.TokenPunctuation, val) {
		return fail(tokens, idx, ErrUnexpectedToken, fmt.Sprintf("expected %q", val))
	}

	return nil
}

func fail(tokens lexer.Tokens, idx int, err error, detail string) error {
	pErr := &ParseError{Err: err, Detail: detail, Index: idx}
	if idx >= 0 && idx < len(tokens) {
		pErr.Token = tokens[idx]
	}

	return pErr
}

// skipLine consumes the tokens starting on line.
func skipLine(tokens lexer.Tokens, idx, line int) int {
	for idx < len(tokens) && tokens[idx].Line == line {
		idx++
	}

	return idx
}

// isConstructor matches `<name> (` where name has no preceding return type.
func isConstructor(tokens lexer.Tokens, idx int) bool {
	return idx+1 < len(tokens) &&
		tokens[idx].Kind == lexer.TokenIdentifier &&
		tokens[idx+1].Is(lexer.TokenPunctuation, "(")
}

func isMemberSpecifier(tok lexer.Token) bool {
	if tok.Kind != lexer.TokenIdentifier {
		return false
	}
	_, ok := memberSpecifiers[tok.Val]

	return ok
}

// isName matches identifiers & `::` qualified identifiers.
func isName(val string) bool {
	for index, r := range val {
		switch {
		case r == '_' || r == ':' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && index > 0:
		default:
			return false
		}
	}

	return val != ""
}

// cutInheritance splits a class name at a colon that is not part of a `::` qualifier.
func cutInheritance(val string) (name string, found bool) {
	rest, offset := val, 0
	for {
		before, after, ok := strings.Cut(rest, ":")
		if !ok {
			return val, false
		}

		if strings.HasPrefix(after, ":") {
			offset += len(before) + 2
			rest = after[1:]

			continue
		}

		return val[:offset+len(before)], true
	}
}

func isAccessSpecifier(tok lexer.Token) bool {
	if tok.Kind != lexer.TokenIdentifier {
		return false
	}
	_, ok := accessSpecifiers[tok.Val]

	return ok
}

// nest appends name to a copy of scope.
func nest(scope []string, name string) []string {
	inner := make([]string, len(scope), len(scope)+1)
	copy(inner, scope)

	return append(inner, name)
}

// window obtains the tokens around idx.
func window(tokens lexer.Tokens, idx int) lexer.Tokens {
	lower, upper := idx-debugWindow, idx+debugWindow+1
	if lower < 0 {
		lower = 0
	}
	if upper > len(tokens) {
		upper = len(tokens)
	}
	if lower > upper {
		lower = upper
	}

	return tokens[lower:upper]
}
