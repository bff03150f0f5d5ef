// SPDX-License-Identifier: MIT
package outline

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gitlab.com/fisherprime/hpp"
)

func TestHierarchy_AddChild(t *testing.T) {
	ctx := context.Background()

	h := New("root")
	if err := h.AddChild(ctx, New("b")); err != nil {
		t.Fatalf("Hierarchy.AddChild() error = %v", err)
	}
	if err := h.AddChild(ctx, New("a")); err != nil {
		t.Fatalf("Hierarchy.AddChild() error = %v", err)
	}
	if err := h.AddChild(ctx, New("a")); !errors.Is(err, ErrAlreadyChild) {
		t.Errorf("Hierarchy.AddChild() error = %v, want %v", err, ErrAlreadyChild)
	}

	var got []string
	for _, child := range h.Children(ctx) {
		got = append(got, child.Value())
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Hierarchy.Children() = %v, want %v", got, want)
	}
}

func TestHierarchy_Ensure(t *testing.T) {
	ctx := context.Background()

	h := New(0)
	first := h.Ensure(ctx, 1)
	first.Ensure(ctx, 2)

	tests := []struct {
		name    string
		value   int
		want    *Hierarchy[int]
		wantLen int
	}{
		{name: "existing", value: 1, want: first, wantLen: 3},
		{name: "missing", value: 3, wantLen: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Ensure(ctx, tt.value)
			if tt.want != nil && got != tt.want {
				t.Errorf("Hierarchy.Ensure() = %p, want %p", got, tt.want)
			}
			if child, ok := h.Child(ctx, tt.value); !ok || child != got {
				t.Errorf("Hierarchy.Child() = %v, %v", child, ok)
			}
			if gotLen := h.Len(); gotLen != tt.wantLen {
				t.Errorf("Hierarchy.Len() = %d, want %d", gotLen, tt.wantLen)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	src := "#include \"b.h\"\nclass Foo {\n\tint x;\n\tvoid f();\n\tclass Bar;\n};\ntypedef Foo* FooPtr;\n"

	rec := &hpp.Recorder{}
	if _, err := hpp.ParseReader(ctx, strings.NewReader(src), rec); err != nil {
		t.Fatalf("hpp.ParseReader() error = %v", err)
	}

	h, err := Build(ctx, "a.h", rec.Events)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got, err := h.Render(ctx)
	if err != nil {
		t.Fatalf("Hierarchy.Render() error = %v", err)
	}

	want := strings.Join([]string{
		"a.h",
		"  class Foo",
		"    class Bar",
		"    function f()",
		"    member x",
		`  include "b.h"`,
		"  typedef FooPtr",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Hierarchy.Render() = %q, want %q", got, want)
	}
}

func TestBuild_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []hpp.Event{{Kind: hpp.EventDeclaredClass, Name: "Foo"}}
	if _, err := Build(ctx, "a.h", events); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want %v", err, context.Canceled)
	}
}

func TestReporter(t *testing.T) {
	ctx := context.Background()
	var buffer bytes.Buffer

	r := NewReporter(ctx, &buffer, &Config{Indent: "\t", Logger: DefConfig().Logger, Debug: true})
	for _, file := range []string{"a.h", "b.h"} {
		r.Begin(file)
		r.Emit(hpp.Event{Kind: hpp.EventUsedType, Name: "int"})
		r.Emit(hpp.Event{Kind: hpp.EventDeclaredMember, Name: "x"})
		if err := r.End(); err != nil {
			t.Fatalf("Reporter.End() error = %v", err)
		}
	}

	if got, want := buffer.String(), "a.h\n\tmember x\nb.h\n\tmember x\n"; got != want {
		t.Errorf("Reporter output = %q, want %q", got, want)
	}
}
