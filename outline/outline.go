// SPDX-License-Identifier: MIT
package outline

import (
	"context"
	"fmt"
	"io"

	"gitlab.com/fisherprime/hpp"
)

// Reporter renders an outline per file once the file's Events are complete.
type Reporter struct {
	ctx context.Context
	w   io.Writer
	cfg *Config

	file     string
	recorder hpp.Recorder
	err      error
}

// Build folds a file's Events into a [Hierarchy] rooted at the file name.
//
// Classes become inner nodes, declarations & includes leaves. Type usages are omitted.
func Build(ctx context.Context, file string, events []hpp.Event, options ...Option[string]) (h *Hierarchy[string], err error) {
	h = New(file, options...)

	for index := range events {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		e := events[index]
		value, ok := label(e.Kind, e.Name)
		if !ok {
			continue
		}

		parent := h
		for _, class := range e.Scope {
			parent = parent.Ensure(ctx, classLabel(class))
		}
		parent.Ensure(ctx, value)
	}

	return
}

// NewReporter instantiates a Reporter writing to w.
func NewReporter(ctx context.Context, w io.Writer, cfg *Config) *Reporter {
	if cfg == nil {
		cfg = DefConfig()
	}

	return &Reporter{ctx: ctx, w: w, cfg: cfg}
}

// Begin starts the outline of a file.
func (r *Reporter) Begin(file string) {
	r.file = file
	r.recorder.Reset()
}

// Emit records an Event for the current file.
func (r *Reporter) Emit(e hpp.Event) { r.recorder.Emit(e) }

// End renders the current file's outline, returning the first error encountered.
func (r *Reporter) End() error {
	if r.err != nil {
		return r.err
	}

	h, err := Build(r.ctx, r.file, r.recorder.Events, WithConfig[string](r.cfg))
	if err != nil {
		r.err = err
		return err
	}

	if r.cfg.Debug {
		r.cfg.Logger.Debugf("outline of %s: %d nodes", r.file, h.Len())
	}

	output, err := h.Render(r.ctx)
	if err != nil {
		r.err = err
		return err
	}

	_, r.err = io.WriteString(r.w, output)

	return r.err
}

func label(kind hpp.EventKind, name string) (value string, ok bool) {
	ok = true

	switch kind {
	case hpp.EventInclude:
		value = "include " + name
	case hpp.EventDeclaredClass, hpp.EventDefinedClass:
		value = classLabel(name)
	case hpp.EventDefinedType:
		value = "typedef " + name
	case hpp.EventDeclaredMember:
		value = "member " + name
	case hpp.EventDeclaredFunction:
		value = fmt.Sprintf("function %s()", name)
	default:
		ok = false
	}

	return
}

func classLabel(name string) string { return "class " + name }
