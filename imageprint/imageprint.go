// Package imageprint prints sprite images on a terminal.
//
// Pixel modes draw each pixel as two character cells, so that a square sprite
// stays roughly square. Image modes hand the whole picture to the terminal.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/pkg/errors"
)

// Mode selects how an image is drawn.
type Mode int

const (
	// ModeTrueColor paints pixel backgrounds with 24-bit colour escapes.
	ModeTrueColor Mode = iota
	// Mode256 paints pixel backgrounds with the closest entry of the xterm
	// 256-colour 6x6x6 cube.
	Mode256
	// ModePlain uses no escapes at all; shading is expressed with characters.
	ModePlain
	// ModeITerm sends the image inline using iTerm2's escape sequence.
	//
	// https://www.iterm2.com/documentation-images.html
	ModeITerm
	// ModeRasTerm picks kitty, iTerm or sixel output depending on what the
	// terminal supports.
	ModeRasTerm
)

var modeNames = []string{
	ModeTrueColor: "24bit",
	Mode256:       "256",
	ModePlain:     "plain",
	ModeITerm:     "iterm",
	ModeRasTerm:   "rasterm",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the mode with the given name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return 0, errors.Errorf("imageprint: unknown mode %q, want one of %s", s, strings.Join(modeNames, ", "))
}

// IsImage reports whether the mode sends whole images rather than pixels.
func (m Mode) IsImage() bool {
	return m == ModeITerm || m == ModeRasTerm
}

// Printer draws images to W.
type Printer struct {
	W    io.Writer // os.Stdout when nil
	Mode Mode

	// Blanks paints pixels as spaces. Otherwise each pixel is drawn with a
	// character showing its brightness, which is the only thing ModePlain can
	// show.
	Blanks bool

	// Name is the file name announced to iTerm. Defaults to image.png.
	Name string
}

// Print draws img.
func (p *Printer) Print(img image.Image) error {
	if img == nil {
		return errors.New("imageprint: no image")
	}
	w := p.W
	if w == nil {
		w = os.Stdout
	}

	switch p.Mode {
	case ModeTrueColor, Mode256, ModePlain:
		return p.printPixels(w, img)
	case ModeITerm:
		return p.printITerm(w, img)
	case ModeRasTerm:
		return printRasTerm(w, img)
	}
	return errors.Errorf("imageprint: unsupported mode %v", p.Mode)
}

func (p *Printer) printPixels(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.shade(&buf, img.At(x, y))
		}
		if p.Mode != ModePlain {
			buf.WriteString("\x1b[0m")
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "imageprint: writing")
}

func (p *Printer) shade(buf *bytes.Buffer, col ic.Color) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if p.Mode != ModePlain {
			buf.WriteString("\x1b[0m")
		}
		buf.WriteString("  ")
		return
	}

	// RGBA is alpha premultiplied; undo it so translucent pixels keep their hue.
	r, g, bl := uint8(cR*0xFF/cA), uint8(cG*0xFF/cA), uint8(cB*0xFF/cA)
	switch p.Mode {
	case ModeTrueColor:
		fmt.Fprintf(buf, "\x1b[48;2;%d;%d;%dm", r, g, bl)
	case Mode256:
		fmt.Fprintf(buf, "\x1b[%sm", color.C256(xterm256(r, g, bl), true).String())
	}

	if p.Blanks {
		buf.WriteString("  ")
		return
	}
	switch a := (uint32(r) + uint32(g) + uint32(bl)) / 3; {
	case a < 32:
		buf.WriteString("..")
	case a < 64:
		buf.WriteString("--")
	case a < 128:
		buf.WriteString("==")
	default:
		buf.WriteString("##")
	}
}

// cubeLevels are the channel intensities of the xterm colour cube.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

func cubeIndex(v uint8) uint8 {
	best := 0
	for i, l := range cubeLevels {
		if absDiff(v, l) < absDiff(v, cubeLevels[best]) {
			best = i
		}
	}
	return uint8(best)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// xterm256 returns the index of the cube entry closest to r, g, b.
func xterm256(r, g, b uint8) uint8 {
	return 16 + 36*cubeIndex(r) + 6*cubeIndex(g) + cubeIndex(b)
}

func (p *Printer) printITerm(w io.Writer, img image.Image) error {
	fn := p.Name
	if fn == "" {
		fn = "image.png"
	}
	var b bytes.Buffer
	enc := base64.NewEncoder(base64.StdEncoding, &b)
	if err := png.Encode(enc, img); err != nil {
		return errors.Wrap(err, "imageprint: encoding png")
	}
	enc.Close()

	name := base64.StdEncoding.EncodeToString([]byte(fn))
	size := img.Bounds().Size()
	_, err := fmt.Fprintf(w, "\n\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), size.X, size.Y, b.String())
	return errors.Wrap(err, "imageprint: writing")
}
