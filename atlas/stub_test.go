package atlas

import (
	"image"
	"io"
	"io/ioutil"
	"sort"
)

// stubFactory creates in-memory sheets and sprites which remember everything
// they were given.
type stubFactory struct {
	sheetDefaults  Attributes
	spriteDefaults Attributes
	loadErr        error
}

type stubSheet struct {
	defaults Attributes
	attrs    Attributes
	source   string
	loaded   []byte
	loadErr  error
	sprites  map[string]Sprite
}

type stubSprite struct {
	sheet    Sheet
	bounds   image.Rectangle
	defaults Attributes
	attrs    Attributes
}

func (f *stubFactory) NewSheet() Sheet {
	return &stubSheet{defaults: f.sheetDefaults, loadErr: f.loadErr, sprites: map[string]Sprite{}}
}

func (f *stubFactory) NewSprite(sheet Sheet, bounds image.Rectangle) Sprite {
	return &stubSprite{sheet: sheet, bounds: bounds, defaults: f.spriteDefaults}
}

func (s *stubSheet) ExtraAttributes() Attributes    { return s.defaults.Clone() }
func (s *stubSheet) HandleAttributes(a Attributes) { s.attrs = a }

func (s *stubSheet) Load(src Source) error {
	s.source = src.Name
	if s.loadErr != nil {
		return s.loadErr
	}
	if src.Resolver == nil {
		return nil
	}
	rc, err := src.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	s.loaded, err = ioutil.ReadAll(rc)
	return err
}

func (s *stubSheet) Put(name string, sprite Sprite) { s.sprites[name] = sprite }

func (s *stubSheet) Sprite(name string) (Sprite, bool) {
	sp, ok := s.sprites[name]
	return sp, ok
}

func (s *stubSheet) SpriteNames() []string {
	var names []string
	for name := range s.sprites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *stubSprite) ExtraAttributes() Attributes    { return s.defaults.Clone() }
func (s *stubSprite) HandleAttributes(a Attributes) { s.attrs = a }
func (s *stubSprite) Bounds() image.Rectangle        { return s.bounds }

// failingReader returns some bytes and then an error.
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

var _ io.Reader = (*failingReader)(nil)
