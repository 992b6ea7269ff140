//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

type TermSize struct {
	WSRow, WSCol       uint
	WSXPixel, WSYPixel uint
}

// GetTermSize asks the controlling terminal for its size. Pixel sizes are
// zero when the terminal does not report them.
func GetTermSize() (TermSize, error) {
	f, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	if err == nil {
		defer f.Close()
		sz, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil {
			return TermSize{WSRow: uint(sz.Row), WSCol: uint(sz.Col), WSXPixel: uint(sz.Xpixel), WSYPixel: uint(sz.Ypixel)}, nil
		}
	}

	fd := int(os.Stdout.Fd())
	if !terminal.IsTerminal(fd) {
		return TermSize{}, errors.New("stdout is not a terminal")
	}
	w, h, err := terminal.GetSize(fd)
	if err != nil {
		return TermSize{}, errors.Wrap(err, "getting terminal size")
	}
	return TermSize{WSRow: uint(h), WSCol: uint(w)}, nil
}
