package atlas

import (
	"bytes"
	"fmt"

	"github.com/golang/glog"
)

// Severity of a Diagnostic.
type Severity int

const (
	// SeverityError means the element was discarded.
	SeverityError Severity = iota
	// SeverityWarning means the element was discarded or only partially
	// usable, and the document is likely wrong.
	SeverityWarning
	// SeverityInfo is used for content the parser does not know about.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Diagnostic describes a problem found while loading a document. None of
// them stop the load.
type Diagnostic struct {
	Severity  Severity
	Element   string // Element is the tag name as written in the document.
	Attribute string // Attribute is set when a single attribute is at fault.
	Message   string

	// Line and Column of the end of the offending tag, when known.
	Line, Column int
}

func (d Diagnostic) String() string {
	var b bytes.Buffer
	b.WriteString(d.Severity.String())
	if d.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", d.Line, d.Column)
	}
	if d.Element != "" {
		fmt.Fprintf(&b, " <%s>", d.Element)
	}
	if d.Attribute != "" {
		fmt.Fprintf(&b, " @%s", d.Attribute)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// Diagnostics is the list of diagnostics of one load.
type Diagnostics []Diagnostic

// Count returns how many diagnostics have severity s.
func (ds Diagnostics) Count(s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Errors returns only the diagnostics of SeverityError.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (ds Diagnostics) String() string {
	var b bytes.Buffer
	for i, d := range ds {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// Sink receives diagnostics as they are found.
type Sink interface {
	Diagnose(Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Diagnostic)

func (f SinkFunc) Diagnose(d Diagnostic) { f(d) }

// Collector is a Sink which keeps everything it receives.
type Collector struct {
	diags Diagnostics
}

func (c *Collector) Diagnose(d Diagnostic) { c.diags = append(c.diags, d) }

// Diagnostics returns the collected diagnostics in the order received.
func (c *Collector) Diagnostics() Diagnostics { return c.diags }

// Reset drops the collected diagnostics.
func (c *Collector) Reset() { c.diags = nil }

// LogSink writes diagnostics to glog. Info diagnostics are only logged at
// verbosity 1 and above.
type LogSink struct{}

func (LogSink) Diagnose(d Diagnostic) {
	switch d.Severity {
	case SeverityError:
		glog.ErrorDepth(1, d.String())
	case SeverityWarning:
		glog.WarningDepth(1, d.String())
	default:
		glog.V(1).Info(d.String())
	}
}

// multiSink fans out to several sinks.
type multiSink []Sink

func (m multiSink) Diagnose(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Diagnose(d)
		}
	}
}
