// SPDX-License-Identifier: MIT
package lexer

import (
	"fmt"
	"strings"
)

type (
	// TokenKind int holding an identifier for the Token classes.
	TokenKind int

	// Token type holding the text, classification & position of a scanned token.
	Token struct {
		Err  error
		Val  string    // The text of this Token.
		Kind TokenKind // The class of this Token.
		Line int       // The line (1-based) on which this Token starts.
	}

	// Tokens is a materialized, read-only token sequence.
	Tokens []Token
)

// iota is used to define an incrementing number sequence for const
// declarations
const (
	_                 TokenKind = iota // Consume 0 to start actual numbering at 1.
	TokenError                         // Notify occurrence of an `error`.
	TokenEOF                           // End of the source.
	TokenPunctuation                   // One of `; , { } ( ) < > & *`.
	TokenIdentifier                    // Keywords, names & anything unclassified.
	TokenString                        // A double-quoted literal, quotes included.
	TokenPreprocessor                  // A directive head such as `#include`.
)

var kindNames = [...]string{
	TokenError:        "error",
	TokenEOF:          "eof",
	TokenPunctuation:  "punctuation",
	TokenIdentifier:   "identifier",
	TokenString:       "string",
	TokenPreprocessor: "preprocessor",
}

// String is the fmt.Stringer implementation for TokenKind.
func (k TokenKind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Is reports whether the Token is of kind k with the text val.
func (t Token) Is(k TokenKind, val string) bool { return t.Kind == k && t.Val == val }

// String is the fmt.Stringer implementation for Token.
func (t Token) String() string {
	if t.Kind == TokenError {
		return fmt.Sprintf("%d:error(%v)", t.Line, t.Err)
	}

	return fmt.Sprintf("%d:%s(%q)", t.Line, t.Kind, t.Val)
}

// String renders one Token per line.
func (ts Tokens) String() string {
	var buffer strings.Builder
	for index := range ts {
		buffer.WriteString(ts[index].String())
		buffer.WriteByte('\n')
	}

	return buffer.String()
}
