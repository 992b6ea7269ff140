package atlas

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the errors which abort a load.
type ErrorKind int

const (
	// KindSyntax is a document that is not well-formed XML.
	KindSyntax ErrorKind = iota
	// KindIO is a failure reading the document.
	KindIO
	// KindConfig is a catalog or call that cannot start a load.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindIO:
		return "io"
	case KindConfig:
		return "config"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// LoadError is returned by Catalog.Load when the document could not be read
// to the end. Sheets created before the failure stay in the catalog.
type LoadError struct {
	Kind ErrorKind
	Line int // Line is the input line at the failure, 0 if unknown.
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("atlas: %s error at line %d: %v", e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("atlas: %s error: %v", e.Kind, e.Err)
}

// Cause supports errors.Cause.
func (e *LoadError) Cause() error { return e.Err }

// Unwrap supports errors.Is and errors.As.
func (e *LoadError) Unwrap() error { return e.Err }

// IsKind reports whether err is, or wraps, a LoadError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind == k
	}
	return false
}
