// SPDX-License-Identifier: MIT
package hpp

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type (
	// Sink consumes Recognition Events in the order they are recognized.
	Sink interface {
		Emit(Event)
	}

	// Reporter is a Sink reporting on a sequence of files.
	//
	// Begin announces the file the following Events belong to, End completes it.
	Reporter interface {
		Sink
		Begin(file string)
		End() error
	}

	// SinkFunc adapts a function to the Sink interface.
	SinkFunc func(Event)

	// Recorder is an in-memory Sink.
	Recorder struct {
		Events []Event
	}

	// TextSink writes one line per Event using the report templates.
	TextSink struct {
		w   io.Writer
		err error
	}

	// JSONSink writes one JSON object per Event.
	JSONSink struct {
		enc  *json.Encoder
		file string
		err  error
	}

	// LogSink writes Events as logrus entries.
	LogSink struct {
		logger logrus.FieldLogger
		file   string
	}

	jsonEvent struct {
		File string `json:"file,omitempty"`
		Event
	}
)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Emit records an Event.
func (r *Recorder) Emit(e Event) { r.Events = append(r.Events, e) }

// Reset discards the recorded Events.
func (r *Recorder) Reset() { r.Events = nil }

// Replay forwards the recorded Events to sink.
func (r *Recorder) Replay(sink Sink) {
	for index := range r.Events {
		sink.Emit(r.Events[index])
	}
}

// NewTextSink instantiates a TextSink.
func NewTextSink(w io.Writer) *TextSink { return &TextSink{w: w} }

// Begin writes the per-file header.
func (s *TextSink) Begin(file string) {
	if s.err == nil {
		_, s.err = fmt.Fprintf(s.w, "Parsing %s\n", file)
	}
}

// Emit writes an Event's report line.
func (s *TextSink) Emit(e Event) {
	if s.err == nil {
		_, s.err = fmt.Fprintln(s.w, e.String())
	}
}

// End returns the first write error.
func (s *TextSink) End() error { return s.err }

// NewJSONSink instantiates a JSONSink; include paths are written unescaped.
func NewJSONSink(w io.Writer) *JSONSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return &JSONSink{enc: enc}
}

// Begin sets the file name attached to the following Events.
func (s *JSONSink) Begin(file string) { s.file = file }

// Emit encodes an Event.
func (s *JSONSink) Emit(e Event) {
	if s.err == nil {
		s.err = s.enc.Encode(jsonEvent{File: s.file, Event: e})
	}
}

// End returns the first encoding error.
func (s *JSONSink) End() error { return s.err }

// NewLogSink instantiates a LogSink.
func NewLogSink(logger logrus.FieldLogger) *LogSink { return &LogSink{logger: logger} }

// Begin sets the file field of the following entries.
func (s *LogSink) Begin(file string) {
	s.file = file
	s.logger.WithField("file", file).Info("parsing")
}

// Emit logs an Event at info level.
func (s *LogSink) Emit(e Event) {
	s.logger.WithFields(logrus.Fields{
		"file": s.file,
		"kind": e.Kind.String(),
		"name": e.Name,
		"line": e.Line,
	}).Info(e.String())
}

// End is a no-op.
func (s *LogSink) End() error { return nil }
