// SPDX-License-Identifier: MIT
package hpp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var sinkEvents = []Event{
	{Kind: EventInclude, Name: "<foo.h>", Line: 1},
	{Kind: EventDefinedClass, Name: "Foo", Line: 2},
	{Kind: EventReferencedType, Name: "Bar", Scope: []string{"Foo"}, Line: 3},
	{Kind: EventDeclaredMember, Name: "bar", Scope: []string{"Foo"}, Line: 3},
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		e    Event
		want string
	}{
		{Event{Kind: EventInclude, Name: `"a.h"`}, `Included: "a.h"`},
		{Event{Kind: EventDeclaredClass, Name: "Foo"}, "Declared class Foo"},
		{Event{Kind: EventDefinedClass, Name: "Foo"}, "Defined class: Foo"},
		{Event{Kind: EventUsedType, Name: "int"}, "Used int"},
		{Event{Kind: EventReferencedType, Name: "Foo"}, "Referenced Foo"},
		{Event{Kind: EventDefinedType, Name: "FooPtr"}, "Defined type FooPtr"},
		{Event{Kind: EventDeclaredMember, Name: "x"}, "Declared member x"},
		{Event{Kind: EventDeclaredFunction, Name: "f"}, "Declared function f"},
		{Event{Kind: 42, Name: "x"}, "EventKind(42) x"},
	}

	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("Event.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTextSink(t *testing.T) {
	var buffer bytes.Buffer

	s := NewTextSink(&buffer)
	s.Begin("foo.h")
	for _, e := range sinkEvents {
		s.Emit(e)
	}
	if err := s.End(); err != nil {
		t.Fatalf("TextSink.End() error = %v", err)
	}

	want := "Parsing foo.h\nIncluded: <foo.h>\nDefined class: Foo\nReferenced Bar\nDeclared member bar\n"
	if got := buffer.String(); got != want {
		t.Errorf("TextSink output = %q, want %q", got, want)
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestTextSink_writeError(t *testing.T) {
	s := NewTextSink(failingWriter{})
	s.Begin("foo.h")
	s.Emit(sinkEvents[0])

	if err := s.End(); !errors.Is(err, errWrite) {
		t.Errorf("TextSink.End() error = %v, want %v", err, errWrite)
	}
}

func TestJSONSink(t *testing.T) {
	var buffer bytes.Buffer

	s := NewJSONSink(&buffer)
	s.Begin("foo.h")
	s.Emit(sinkEvents[0])
	s.Emit(sinkEvents[2])
	if err := s.End(); err != nil {
		t.Fatalf("JSONSink.End() error = %v", err)
	}

	want := `{"file":"foo.h","kind":"include","name":"<foo.h>","line":1}` + "\n" +
		`{"file":"foo.h","kind":"referenced_type","name":"Bar","scope":["Foo"],"line":3}` + "\n"
	if got := buffer.String(); got != want {
		t.Errorf("JSONSink output = %q, want %q", got, want)
	}
}

func TestLogSink(t *testing.T) {
	logger, hook := test.NewNullLogger()

	s := NewLogSink(logger)
	s.Begin("foo.h")
	s.Emit(sinkEvents[1])
	if err := s.End(); err != nil {
		t.Fatalf("LogSink.End() error = %v", err)
	}

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("LogSink entries = %d, want 2", len(entries))
	}

	entry := entries[1]
	if entry.Level != logrus.InfoLevel || entry.Message != "Defined class: Foo" {
		t.Errorf("LogSink entry = %v %q", entry.Level, entry.Message)
	}
	if entry.Data["file"] != "foo.h" || entry.Data["kind"] != "defined_class" || entry.Data["line"] != 2 {
		t.Errorf("LogSink entry fields = %v", entry.Data)
	}
}

func TestRecorder_Replay(t *testing.T) {
	rec := &Recorder{}
	for _, e := range sinkEvents {
		rec.Emit(e)
	}

	var names []string
	rec.Replay(SinkFunc(func(e Event) { names = append(names, e.Name) }))
	if len(names) != len(sinkEvents) || names[0] != "<foo.h>" || names[3] != "bar" {
		t.Errorf("Recorder.Replay() = %v", names)
	}

	rec.Reset()
	if rec.Events != nil {
		t.Errorf("Recorder.Reset() left %v", rec.Events)
	}
}
