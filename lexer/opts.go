// SPDX-License-Identifier: MIT
package lexer

import (
	"io"

	"github.com/sirupsen/logrus"
)

type (
	// Opts defines options for the Lexer's operations.
	//
	// A struct alternative to the functional options, convenient when the values come from
	// configuration.
	Opts struct {
		Debug  bool
		Logger logrus.FieldLogger
		Source io.RuneReader
	}
)

// NewOpts configures the lexer's Opts.
func NewOpts() *Opts {
	return &Opts{
		Logger: logrus.New(),
	}
}

// Validate populates missing Opts entries with defaults.
func (o *Opts) Validate() {
	if o.Logger == nil {
		o.Logger = logrus.New()
	}
}

// Options converts the Opts into functional options for New.
//
// A nil Source is omitted, leaving the Lexer's empty default in place.
func (o *Opts) Options() (opts []Option) {
	o.Validate()

	opts = []Option{WithDebug(o.Debug), WithLogger(o.Logger)}
	if o.Source != nil {
		opts = append(opts, WithSource(o.Source))
	}

	return
}
