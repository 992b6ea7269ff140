package main

import (
	"image"

	"github.com/golang/glog"
	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-atlas/imageprint"
)

// fit shrinks img to half of the terminal when -downsize is set. Image modes
// are measured in pixels, pixel modes in character cells.
func fit(img image.Image, m imageprint.Mode) image.Image {
	if !*downsize {
		return img
	}
	termSize, err := GetTermSize()
	if err != nil {
		glog.V(1).Infof("not downsizing, terminal size unknown: %v", err)
		return img
	}
	if m.IsImage() && termSize.WSXPixel != 0 && termSize.WSYPixel != 0 {
		return resize.Thumbnail(termSize.WSXPixel/2, termSize.WSYPixel/2, img, resize.Lanczos3)
	}
	// pixel modes draw two cells per pixel
	return resize.Thumbnail(termSize.WSCol/2, termSize.WSRow, img, resize.Lanczos3)
}
