// Package imagesheet provides sheets and sprites backed by decoded images.
//
// Sheets understand these attributes besides name and source:
//
//	scale     factor applied to sprite images, default 1
//	filter    interpolation used when scaling: nearest (default), bilinear,
//	          bicubic, mitchell, lanczos2, lanczos3
//	colorkey  RGB colour made transparent, as #rrggbb; none by default
//
// Sprites understand:
//
//	frames    number of animation frames laid out left to right inside the
//	          bounds, default 1
//	delay     milliseconds each frame is shown, default 100
//
// PNG, GIF and JPEG sources can be decoded.
package imagesheet

import (
	"bytes"
	"encoding/hex"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"badc0de.net/pkg/go-atlas/atlas"
)

var filters = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"mitchell": resize.MitchellNetravali,
	"lanczos2": resize.Lanczos2,
	"lanczos3": resize.Lanczos3,
}

// Factory creates Sheet and Sprite values. It implements atlas.Factory.
type Factory struct{}

func (Factory) NewSheet() atlas.Sheet { return NewSheet() }

// NewSprite returns a *Sprite. Sprites created for sheets of another
// implementation have no pixels.
func (Factory) NewSprite(sheet atlas.Sheet, bounds image.Rectangle) atlas.Sprite {
	s, _ := sheet.(*Sheet)
	return &Sprite{sheet: s, bounds: bounds, frames: 1, delay: defaultDelay}
}

// Sheet is an image holding sprites.
type Sheet struct {
	Scale    float64
	Filter   resize.InterpolationFunction
	ColorKey *color.RGBA // nil when no colour is transparent

	source  string
	img     image.Image
	digest  string
	sprites map[string]atlas.Sprite
}

// NewSheet returns an empty sheet with default attributes.
func NewSheet() *Sheet {
	return &Sheet{
		Scale:   1,
		Filter:  resize.NearestNeighbor,
		sprites: make(map[string]atlas.Sprite),
	}
}

func (s *Sheet) ExtraAttributes() atlas.Attributes {
	return atlas.Attributes{"scale": "1", "filter": "nearest", "colorkey": ""}
}

// HandleAttributes applies the scale, filter and colorkey attributes. Values
// that cannot be parsed are logged and leave the default in place.
func (s *Sheet) HandleAttributes(attrs atlas.Attributes) {
	if v := attrs["scale"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			glog.Warningf("imagesheet: ignoring scale %q, want a positive number", v)
		} else {
			s.Scale = f
		}
	}
	if v := attrs["filter"]; v != "" {
		if fn, ok := filters[strings.ToLower(v)]; ok {
			s.Filter = fn
		} else {
			glog.Warningf("imagesheet: ignoring unknown filter %q", v)
		}
	}
	if v := attrs["colorkey"]; v != "" {
		c, err := ParseColor(v)
		if err != nil {
			glog.Warningf("imagesheet: ignoring colorkey: %v", err)
		} else {
			s.ColorKey = &c
		}
	}
}

// Load opens and decodes the sheet's image.
func (s *Sheet) Load(src atlas.Source) error {
	s.source = src.Name
	rc, err := src.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	buf, err := ioutil.ReadAll(rc)
	if err != nil {
		return errors.Wrapf(err, "imagesheet: reading %q", src.Name)
	}
	img, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return errors.Wrapf(err, "imagesheet: decoding %q", src.Name)
	}
	glog.V(1).Infof("imagesheet: decoded %q (%s, %v)", src.Name, format, img.Bounds())

	if s.ColorKey != nil {
		img = applyColorKey(img, *s.ColorKey)
	}
	sum := blake2b.Sum256(buf)
	s.img = img
	s.digest = hex.EncodeToString(sum[:16])
	return nil
}

// Source returns the source the sheet was loaded from.
func (s *Sheet) Source() string { return s.source }

// Image returns the decoded image, or nil if it was not loaded.
func (s *Sheet) Image() image.Image { return s.img }

// Digest identifies the source bytes the image was decoded from. It is empty
// until the sheet was loaded.
func (s *Sheet) Digest() string { return s.digest }

func (s *Sheet) Put(name string, sprite atlas.Sprite) { s.sprites[name] = sprite }

func (s *Sheet) Sprite(name string) (atlas.Sprite, bool) {
	sp, ok := s.sprites[name]
	return sp, ok
}

func (s *Sheet) SpriteNames() []string {
	names := make([]string, 0, len(s.sprites))
	for name := range s.sprites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(v string) (color.RGBA, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(v, "#"))
	if err != nil || len(b) != 3 {
		return color.RGBA{}, errors.Errorf("color %q is not #rrggbb", v)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xFF}, nil
}

// applyColorKey returns a copy of img where every pixel with the RGB of key
// is fully transparent.
func applyColorKey(img image.Image, key color.RGBA) image.Image {
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := dst.NRGBAAt(x, y)
			if c.R == key.R && c.G == key.G && c.B == key.B {
				dst.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
	return dst
}

// Get returns the sheet stored under name in c, if it is a *Sheet.
func Get(c *atlas.Catalog, name string) (*Sheet, bool) {
	sheet, ok := c.Get(name)
	if !ok {
		return nil, false
	}
	s, ok := sheet.(*Sheet)
	return s, ok
}
