// SPDX-License-Identifier: MIT
package outline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Constraint is a wrapper interface containing comparable & constraints.Ordered.
type Constraint interface {
	comparable
	constraints.Ordered
}

type (
	// Hierarchy defines an n-array tree to hold an outline.
	//
	// Synchronization is unnecessary, the type is designed for single write multiple read.
	Hierarchy[T Constraint] struct {
		// cfg contains a pointer to a [Config] shared by all Hierarchy nodes.
		cfg *Config

		// value contains the node's data.
		value T

		// children holds references to nodes at a lower level.
		children children[T]
	}

	// Config defines configuration options for the [Hierarchy]'s operations.
	Config struct {
		// Logger for [Hierarchy] messages.
		//
		// Preferring a public field to allow for sharing.
		Logger logrus.FieldLogger
		Debug  bool

		// Indent prefixes each rendered level.
		Indent string
	}

	children[T Constraint] map[T]*Hierarchy[T]

	// List is a type wrapper for []*Hierarchy.
	List[T Constraint] []*Hierarchy[T]

	// Option defines the Hierarchy functional option type.
	Option[T Constraint] func(*Hierarchy[T])

	// renderComm carries a node & its depth from a traversal to Render.
	renderComm[T Constraint] struct {
		node  *Hierarchy[T]
		depth int
	}
)

const (
	traverseBufferSize = 10
	defIndent          = "  "
)

// Errors encountered when handling a Hierarchy.
var (
	ErrAlreadyChild = errors.New("is a child of")
)

var defConfig = DefConfig()

// DefConfig obtains the package's [Hierarchy] default options.
func DefConfig() *Config {
	return &Config{
		Logger: logrus.New(),
		Indent: defIndent,
	}
}

// New instantiates a [Hierarchy].
func New[T Constraint](value T, options ...Option[T]) *Hierarchy[T] {
	h := &Hierarchy[T]{
		cfg:      defConfig,
		value:    value,
		children: make(children[T]),
	}

	for _, opt := range options {
		opt(h)
	}

	return h
}

// WithConfig configures the [Hierarchy] [Config].
func WithConfig[T Constraint](cfg *Config) Option[T] {
	return func(h *Hierarchy[T]) { h.cfg = cfg }
}

// Config retrieves the [Hierarchy]'s Config.
func (h *Hierarchy[T]) Config() *Config { return h.cfg }

// Value retrieves the [Hierarchy]'s data.
func (h *Hierarchy[T]) Value() T { return h.value }

// Child retrieves an immediate child.
func (h *Hierarchy[T]) Child(_ context.Context, childValue T) (child *Hierarchy[T], ok bool) {
	child, ok = h.children[childValue]
	return
}

// AddChild to a [Hierarchy].
//
// Throws an error on existing child.
func (h *Hierarchy[T]) AddChild(ctx context.Context, child *Hierarchy[T]) (err error) {
	if _, ok := h.Child(ctx, child.value); ok {
		return fmt.Errorf("(%v) %w (%v)", child.value, ErrAlreadyChild, h.value)
	}

	child.cfg = h.cfg
	h.children[child.value] = child

	return
}

// Ensure retrieves an immediate child, adding it when missing.
func (h *Hierarchy[T]) Ensure(ctx context.Context, childValue T) (child *Hierarchy[T]) {
	child, ok := h.Child(ctx, childValue)
	if ok {
		return
	}

	child = New(childValue, WithConfig[T](h.cfg))
	_ = h.AddChild(ctx, child)

	return
}

// Children lists the immediate children for a [Hierarchy], sorted by value.
func (h *Hierarchy[T]) Children(_ context.Context) (list List[T]) {
	values := maps.Keys(h.children)
	slices.Sort(values)

	list = make(List[T], len(values))
	for index, value := range values {
		list[index] = h.children[value]
	}

	return
}

// Len counts the nodes of the [Hierarchy], itself included.
func (h *Hierarchy[T]) Len() (n int) {
	n = 1
	for _, child := range h.children {
		n += child.Len()
	}

	return
}

// Render prints the [Hierarchy] depth-first, one indented node per line.
//
// Siblings are sorted by value; the output is identical for identical trees.
func (h *Hierarchy[T]) Render(ctx context.Context) (output string, err error) {
	renderChan := make(chan renderComm[T], traverseBufferSize)
	renderCtx, renderCancel := context.WithCancel(ctx)
	defer renderCancel()

	go func() {
		h.traverse(renderCtx, 0, renderChan)
		close(renderChan)
	}()

	var buffer strings.Builder
	for {
		comm, proceed := <-renderChan
		if !proceed {
			break
		}

		buffer.WriteString(strings.Repeat(h.cfg.Indent, comm.depth))
		buffer.WriteString(fmt.Sprint(comm.node.value))
		buffer.WriteByte('\n')
	}

	if err = ctx.Err(); err != nil {
		return
	}
	output = buffer.String()

	if h.cfg.Debug {
		h.cfg.Logger.Debugf("rendered: %s", output)
	}

	return
}

// traverse performs the depth-first grunt work for Render.
func (h *Hierarchy[T]) traverse(ctx context.Context, depth int, renderChan chan renderComm[T]) {
	select {
	case <-ctx.Done():
		// NOTE: context error captured in [Hierarchy.Render].
		return
	case renderChan <- renderComm[T]{node: h, depth: depth}:
	}

	for _, child := range h.Children(ctx) {
		child.traverse(ctx, depth+1, renderChan)
	}
}
