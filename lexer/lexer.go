// SPDX-License-Identifier: MIT
package lexer

// REF: https://github.com/sh4t/sql-parser
// REF: https://gitlab.com/fisherprime/go-ddbms/-/blob/master/internal/v1/lexer.go

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type (
	// State identifies the scanning mode of a Lexer.
	State int

	// StateFunction scans runes for a single State.
	//
	// emitted is set once tok holds a complete Token; the caller otherwise re-dispatches on the
	// (possibly updated) state.
	StateFunction func(*Lexer) (tok Token, emitted bool, err error)

	// Lexer defines a type to split C-family header source into Tokens.
	Lexer struct {
		Debug  bool
		logger logrus.FieldLogger

		// c is a channel for communicating lexed Tokens.
		c chan Token

		// source is the input source.
		source io.RuneReader

		state State

		// buffer accumulates the runes of the Token being lexed.
		buffer []rune

		// pending is the single pushback slot.
		pending    rune
		hasPending bool

		// line counts consumed line breaks, tokenLine is the line the current Token started on.
		line      int
		tokenLine int

		// afterCR is set when the last consumed rune was `\r`, prevCR holds its prior value
		// for backup.
		afterCR bool
		prevCR  bool
	}

	// Option defines the Lexer functional option type
	Option func(*Lexer)
)

// Scanner states.
const (
	StateTopLevel State = iota
	StateComment
	StateIdentifier
	StatePreprocessor
	StateString
	StateSpecialChar
)

const (
	defBufferSize = 16
	defChanSize   = 10
	defTokensSize = 256
)

// Lexing errors.
var (
	ErrPushbackOverflow = errors.New("pushback slot already occupied")
	ErrUnknownState     = errors.New("unknown lexer state")
)

// Improves on performance compared to ORs.
var (
	whitespace = [256]bool{
		' ':  true,
		'\t': true,
		'\r': true,
		'\n': true,
	}

	newline = [256]bool{
		'\r': true,
		'\n': true,
	}

	punctuation = [256]bool{
		';': true,
		',': true,
		'{': true,
		'}': true,
		'(': true,
		')': true,
		'<': true,
		'>': true,
		'&': true,
		'*': true,
	}
)

// stateFunctions is the transition table; lexTopLevel selects the next state for every Token.
var stateFunctions = [...]StateFunction{
	StateTopLevel:     (*Lexer).lexTopLevel,
	StateComment:      (*Lexer).lexComment,
	StateIdentifier:   (*Lexer).lexIdentifier,
	StatePreprocessor: (*Lexer).lexPreprocessor,
	StateString:       (*Lexer).lexString,
	StateSpecialChar:  (*Lexer).lexSpecialChar,
}

// New creates a new scanner, reading from an empty source unless configured otherwise.
func New(opts ...Option) *Lexer {
	l := &Lexer{
		logger: logrus.New(),

		c: make(chan Token, defChanSize),

		buffer: make([]rune, 0, defBufferSize),
		source: strings.NewReader(""),

		line:      1,
		tokenLine: 1,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// WithDebug configures the debug option.
func WithDebug(debug bool) Option { return func(l *Lexer) { l.Debug = debug } }

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option { return func(l *Lexer) { l.logger = logger } }

// WithSource configures the source option.
func WithSource(source io.RuneReader) Option { return func(l *Lexer) { l.source = source } }

// WithReader configures a buffered source from an io.Reader.
func WithReader(r io.Reader) Option {
	return func(l *Lexer) { l.source = bufio.NewReader(r) }
}

// Logger obtains the logger.
func (l *Lexer) Logger() logrus.FieldLogger { return l.logger }

// Next scans and returns the next Token.
//
// io.EOF is returned once the source is exhausted; a Token being accumulated at that point is
// discarded.
func (l *Lexer) Next() (tok Token, err error) {
	l.setState(StateTopLevel)

	for {
		if int(l.state) >= len(stateFunctions) {
			err = fmt.Errorf("%w: %d", ErrUnknownState, l.state)
			return
		}

		var emitted bool
		if tok, emitted, err = stateFunctions[l.state](l); err != nil || emitted {
			return
		}
	}
}

// Lex lexes the input, sending Tokens over the Lexer's channel.
//
// The stream ends with a TokenEOF or TokenError item, after which the channel is closed.
func (l *Lexer) Lex(ctx context.Context) {
	defer close(l.c)

	for {
		select {
		case <-ctx.Done():
			l.EmitError(ctx, ctx.Err())
			return
		default:
		}

		tok, err := l.Next()
		if err != nil {
			l.EmitError(ctx, err)
			return
		}

		select {
		case l.c <- tok:
		case <-ctx.Done():
			l.EmitError(ctx, ctx.Err())
			return
		}
	}
}

// EmitError sends an error over the Lexer's channel.
//
// io.EOF is sent as a TokenEOF item. Once ctx is done the send is dropped if the channel is full.
func (l *Lexer) EmitError(ctx context.Context, err error) {
	tok := Token{Kind: TokenError, Err: err, Line: l.line}
	if err == io.EOF {
		tok = Token{Kind: TokenEOF, Line: l.line}
	}

	if ctx.Err() != nil {
		select {
		case l.c <- tok:
		default:
		}

		return
	}

	l.c <- tok
}

// Item return a lexed Token from the channel.
func (l *Lexer) Item() (tok Token, ok bool) {
	tok, ok = <-l.c
	return
}

// Tokenize materializes all Tokens of a source.
func Tokenize(ctx context.Context, opts ...Option) (tokens Tokens, err error) {
	l := New(opts...)
	go l.Lex(ctx)

	tokens = make(Tokens, 0, defTokensSize)
	for {
		tok, ok := l.Item()
		if !ok {
			// Closed without a terminal item; only happens on cancellation.
			return nil, ctx.Err()
		}

		switch tok.Kind {
		case TokenEOF:
			return
		case TokenError:
			return nil, tok.Err
		}

		tokens = append(tokens, tok)
	}
}

func (l *Lexer) lexTopLevel() (tok Token, emitted bool, err error) {
	r, err := l.peek()
	if err != nil {
		return
	}

	switch {
	case isWhitespace(r):
		_, err = l.next()
	case isPunctuation(r):
		l.setState(StateSpecialChar)
	case r == '#':
		l.setState(StatePreprocessor)
	case r == '"':
		l.setState(StateString)
	case r == '/':
		l.setState(StateComment)
	default:
		l.setState(StateIdentifier)
	}

	return
}

// lexPreprocessor accumulates a directive head; the terminating whitespace is consumed.
func (l *Lexer) lexPreprocessor() (tok Token, emitted bool, err error) {
	r, err := l.next()
	if err != nil {
		return
	}

	if isWhitespace(r) {
		return l.emit(TokenPreprocessor), true, nil
	}
	l.buffer = append(l.buffer, r)

	return
}

// lexString accumulates a quoted literal, ending it early at a newline.
func (l *Lexer) lexString() (tok Token, emitted bool, err error) {
	r, err := l.next()
	if err != nil {
		return
	}

	if isNewline(r) {
		return l.emit(TokenString), true, nil
	}

	l.buffer = append(l.buffer, r)
	if r == '"' && len(l.buffer) > 1 {
		return l.emit(TokenString), true, nil
	}

	return
}

func (l *Lexer) lexComment() (tok Token, emitted bool, err error) {
	r, err := l.next()
	if err != nil {
		return
	}

	if isNewline(r) {
		l.setState(StateTopLevel)
	}

	return
}

func (l *Lexer) lexIdentifier() (tok Token, emitted bool, err error) {
	r, err := l.next()
	if err != nil {
		return
	}

	if isWhitespace(r) || isPunctuation(r) {
		if err = l.backup(r); err != nil {
			return
		}

		return l.emit(TokenIdentifier), true, nil
	}
	l.buffer = append(l.buffer, r)

	return
}

func (l *Lexer) lexSpecialChar() (tok Token, emitted bool, err error) {
	r, err := l.next()
	if err != nil {
		return
	}
	l.buffer = append(l.buffer, r)

	return l.emit(TokenPunctuation), true, nil
}

// setState switches the scanning mode, clearing the accumulation buffer.
func (l *Lexer) setState(state State) {
	l.buffer = l.buffer[:0]
	l.state = state
	l.tokenLine = l.line
}

// next return the next rune in the input, preferring the pushback slot.
func (l *Lexer) next() (r rune, err error) {
	if l.hasPending {
		r, l.hasPending = l.pending, false
	} else if r, _, err = l.source.ReadRune(); err != nil {
		return
	}

	// `\r\n`, `\n` & a bare `\r` each end a line.
	if r == '\r' || (r == '\n' && !l.afterCR) {
		l.line++
	}
	l.prevCR, l.afterCR = l.afterCR, r == '\r'

	return
}

// backup stores a rune in the pushback slot.
func (l *Lexer) backup(r rune) error {
	if l.hasPending {
		return fmt.Errorf("%w: %q", ErrPushbackOverflow, r)
	}
	l.pending, l.hasPending = r, true

	l.afterCR = l.prevCR
	if r == '\r' || (r == '\n' && !l.afterCR) {
		l.line--
	}

	return nil
}

// peek return the next rune, without consuming it.
//
// Only one rune of lookahead exists; peek must not be called twice without an intervening next.
func (l *Lexer) peek() (r rune, err error) {
	if r, err = l.next(); err != nil {
		return
	}
	err = l.backup(r)

	return
}

// emit builds a Token from the accumulation buffer & clears it.
func (l *Lexer) emit(kind TokenKind) (tok Token) {
	tok = Token{
		Kind: kind,
		Val:  string(l.buffer),
		Line: l.tokenLine,
	}
	l.buffer = l.buffer[:0]

	if l.Debug {
		l.logger.Debugf("lexer emit: %s", tok)
	}

	return
}

// isWhitespace return true for whitespace, newline & carriage return.
func isWhitespace(r rune) bool { return inTable(&whitespace, r) }

// isNewline return true for newline & carriage return.
func isNewline(r rune) bool { return inTable(&newline, r) }

// isPunctuation return true for runes lexed as single-rune Tokens.
func isPunctuation(r rune) bool { return inTable(&punctuation, r) }

func inTable(table *[256]bool, r rune) bool { return uint32(r) < 256 && table[r] }
