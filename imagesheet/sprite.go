package imagesheet

import (
	"image"
	"image/draw"
	"math"
	"strconv"
	"time"

	"github.com/bradfitz/iter"
	"github.com/golang/glog"
	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-atlas/atlas"
)

const defaultDelay = 100 * time.Millisecond

// Sprite is a rectangle of a Sheet's image.
type Sprite struct {
	sheet  *Sheet
	bounds image.Rectangle
	frames int
	delay  time.Duration
}

func (s *Sprite) ExtraAttributes() atlas.Attributes {
	return atlas.Attributes{"frames": "1", "delay": "100"}
}

// HandleAttributes applies the frames and delay attributes.
func (s *Sprite) HandleAttributes(attrs atlas.Attributes) {
	if v := attrs["frames"]; v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil || n <= 0:
			glog.Warningf("imagesheet: ignoring frames %q, want a positive integer", v)
		case n > s.bounds.Dx():
			glog.Warningf("imagesheet: ignoring frames %q, sprite is only %d pixels wide", v, s.bounds.Dx())
		default:
			s.frames = n
		}
	}
	if v := attrs["delay"]; v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			glog.Warningf("imagesheet: ignoring delay %q, want milliseconds", v)
		} else {
			s.delay = time.Duration(ms) * time.Millisecond
		}
	}
}

// Bounds returns the sprite's rectangle within the sheet image.
func (s *Sprite) Bounds() image.Rectangle { return s.bounds }

// FrameCount returns the number of animation frames.
func (s *Sprite) FrameCount() int { return s.frames }

// Delay returns how long each frame is shown.
func (s *Sprite) Delay() time.Duration { return s.delay }

// Image returns the sprite's pixels, scaled by the sheet's scale. It returns
// nil if the sheet has no image or the bounds lie outside of it.
func (s *Sprite) Image() image.Image {
	return s.crop(s.bounds)
}

// Frames splits the sprite into FrameCount images of equal width, left to
// right. Columns left over by the division are dropped.
func (s *Sprite) Frames() []image.Image {
	w := s.bounds.Dx() / s.frames
	var out []image.Image
	for i := range iter.N(s.frames) {
		r := image.Rect(s.bounds.Min.X+i*w, s.bounds.Min.Y, s.bounds.Min.X+(i+1)*w, s.bounds.Max.Y)
		img := s.crop(r)
		if img == nil {
			return nil
		}
		out = append(out, img)
	}
	return out
}

func (s *Sprite) crop(r image.Rectangle) image.Image {
	if s.sheet == nil || s.sheet.img == nil {
		return nil
	}
	src := s.sheet.img
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil
	}

	var sub image.Image
	if si, ok := src.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		sub = si.SubImage(r)
	} else {
		dst := image.NewNRGBA(r)
		draw.Draw(dst, r, src, r.Min, draw.Src)
		sub = dst
	}

	if scale := s.sheet.Scale; scale != 1 {
		w := uint(math.Max(1, math.Round(float64(r.Dx())*scale)))
		h := uint(math.Max(1, math.Round(float64(r.Dy())*scale)))
		return resize.Resize(w, h, sub, s.sheet.Filter)
	}
	return sub
}

// GetSprite returns the sprite named sprite on the sheet named sheet in c, if
// both exist and the sprite is a *Sprite.
func GetSprite(c *atlas.Catalog, sheet, sprite string) (*Sprite, bool) {
	sh, ok := c.Get(sheet)
	if !ok {
		return nil, false
	}
	sp, ok := sh.Sprite(sprite)
	if !ok {
		return nil, false
	}
	s, ok := sp.(*Sprite)
	return s, ok
}
