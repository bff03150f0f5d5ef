// SPDX-License-Identifier: MIT
package hpp

import (
	"fmt"
)

type (
	// EventKind identifies the construct a Recognition Event reports.
	EventKind int

	// Event is emitted for every construct the grammar recognizes.
	Event struct {
		Kind EventKind `json:"kind"`

		// Name is the class, type, member, function or include path the Event is about.
		Name string `json:"name"`

		// Scope lists the enclosing class names, outermost first; nil at file scope.
		//
		// Shared between Events, not to be modified.
		Scope []string `json:"scope,omitempty"`

		// Line is the source line of the named token.
		Line int `json:"line"`
	}
)

// Recognition Event kinds.
const (
	_ EventKind = iota // Consume 0 to start actual numbering at 1.
	EventInclude
	EventDeclaredClass
	EventDefinedClass
	EventUsedType
	EventReferencedType
	EventDefinedType
	EventDeclaredMember
	EventDeclaredFunction
)

var eventKinds = [...]struct {
	name   string
	format string
}{
	EventInclude:          {"include", "Included: %s"},
	EventDeclaredClass:    {"declared_class", "Declared class %s"},
	EventDefinedClass:     {"defined_class", "Defined class: %s"},
	EventUsedType:         {"used_type", "Used %s"},
	EventReferencedType:   {"referenced_type", "Referenced %s"},
	EventDefinedType:      {"defined_type", "Defined type %s"},
	EventDeclaredMember:   {"declared_member", "Declared member %s"},
	EventDeclaredFunction: {"declared_function", "Declared function %s"},
}

func (k EventKind) valid() bool { return k > 0 && int(k) < len(eventKinds) }

// String is the fmt.Stringer implementation for EventKind.
func (k EventKind) String() string {
	if k.valid() {
		return eventKinds[k].name
	}

	return fmt.Sprintf("EventKind(%d)", int(k))
}

// MarshalText is the encoding.TextMarshaler implementation for EventKind.
func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// String renders the Event using its report line template.
func (e Event) String() string {
	if !e.Kind.valid() {
		return fmt.Sprintf("%s %s", e.Kind, e.Name)
	}

	return fmt.Sprintf(eventKinds[e.Kind].format, e.Name)
}
