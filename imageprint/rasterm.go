//go:build go1.13 && !windows
// +build go1.13,!windows

package imageprint

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pkg/errors"
)

// sixelColors is the palette size used for sixel output.
const sixelColors = 64

// printRasTerm draws img using the RasTerm library. Kitty is preferred, then
// iTerm, then sixel.
func printRasTerm(w io.Writer, img image.Image) error {
	var err error
	switch {
	case rasterm.IsTermKitty():
		err = rasterm.Settings{}.KittyWriteImage(w, img)
	case rasterm.IsTermItermWez():
		err = rasterm.Settings{}.ItermWriteImage(w, img)
	default:
		capable, cerr := rasterm.IsSixelCapable()
		if cerr != nil || !capable {
			return errors.New("imageprint: terminal supports neither kitty, iTerm nor sixel images")
		}
		err = rasterm.Settings{}.SixelWriteImage(w, paletted(img, sixelColors))
	}
	if err != nil {
		return errors.Wrap(err, "imageprint: rasterm")
	}
	_, err = fmt.Fprintln(w)
	return err
}

// paletted reduces img to at most n colours plus transparency.
func paletted(img image.Image, n int) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, n), img)
	pal = append(color.Palette{color.Transparent}, pal...)

	dst := image.NewPaletted(img.Bounds(), pal)
	draw.Draw(dst, img.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}
