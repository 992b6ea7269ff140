package atlas

import (
	"image"
	"io"

	"github.com/pkg/errors"
)

// Extender is implemented by sheets and sprites which accept attributes beyond
// the ones the parser consumes itself.
type Extender interface {
	// ExtraAttributes returns the attribute names the resource recognizes,
	// mapped to their default values.
	ExtraAttributes() Attributes
	// HandleAttributes receives the defaults overwritten with the values found
	// on the tag.
	HandleAttributes(Attributes)
}

// Sprite is a named rectangle inside a Sheet.
type Sprite interface {
	Extender
	Bounds() image.Rectangle
}

// Sheet is an image atlas holding named sprites.
type Sheet interface {
	Extender

	// Load is called once the attributes were handled. Implementations
	// decide whether and how to read the source.
	Load(src Source) error

	Put(name string, sprite Sprite)
	Sprite(name string) (Sprite, bool)
	SpriteNames() []string
}

// Factory creates the sheets and sprites stored in a Catalog.
type Factory interface {
	// NewSheet returns an empty sheet. It must not fail.
	NewSheet() Sheet
	// NewSprite returns a sprite covering bounds on sheet. The bounds were
	// validated by the parser and are never empty.
	NewSprite(sheet Sheet, bounds image.Rectangle) Sprite
}

// Resolver opens the byte stream named by a sheet's source attribute.
type Resolver interface {
	Open(source string) (io.ReadCloser, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(source string) (io.ReadCloser, error)

func (f ResolverFunc) Open(source string) (io.ReadCloser, error) { return f(source) }

// Source is the value of a sheet's source attribute together with the
// resolver able to open it.
type Source struct {
	Name     string
	Resolver Resolver
}

// Open opens the source through its resolver.
func (s Source) Open() (io.ReadCloser, error) {
	if s.Resolver == nil {
		return nil, errors.Errorf("atlas: no resolver for source %q", s.Name)
	}
	rc, err := s.Resolver.Open(s.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "atlas: opening source %q", s.Name)
	}
	return rc, nil
}
