// Command spriteprint loads sprite sheet documents and prints sprites on the
// terminal.
//
//	spriteprint -sheet=terrain -sprite=grass sheets.xml
//	spriteprint -list sheets.xml
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-atlas/atlas"
	"badc0de.net/pkg/go-atlas/imageprint"
	"badc0de.net/pkg/go-atlas/imagesheet"
	"badc0de.net/pkg/go-atlas/outline"
	"badc0de.net/pkg/go-atlas/paths"
)

var (
	sheetName  = flag.String("sheet", "", "sheet to print")
	spriteName = flag.String("sprite", "", "sprite to print; the whole sheet image if empty")
	list       = flag.Bool("list", false, "list what the documents declare and whether it was loaded")
	mode       = flag.String("mode", "24bit", "how to print: 24bit, 256, plain, iterm or rasterm")
	blanks     = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	frames     = flag.Bool("frames", false, "print every animation frame of the sprite")
	downsize   = flag.Bool("downsize", false, "whether to shrink images to fit the terminal")
	encoding   = flag.Bool("honor_encoding", false, "decode documents using their declared encoding instead of UTF-8")

	sourceDirs []string
)

func load(cat *atlas.Catalog, fn string) bool {
	f, err := os.Open(fn)
	if err != nil {
		glog.Errorf("opening %s: %v", fn, err)
		return false
	}
	defer f.Close()

	ds, err := cat.Load(f)
	if err != nil {
		glog.Errorf("loading %s: %v", fn, err)
		return false
	}
	glog.V(1).Infof("loaded %s: %d errors, %d warnings", fn, ds.Count(atlas.SeverityError), ds.Count(atlas.SeverityWarning))
	return true
}

func listDocument(cat *atlas.Catalog, fn string) {
	f, err := os.Open(fn)
	if err != nil {
		glog.Errorf("opening %s: %v", fn, err)
		return
	}
	defer f.Close()

	o, err := outline.Read(f)
	if err != nil {
		glog.Errorf("outlining %s: %v", fn, err)
		return
	}
	fmt.Printf("%s:\n", fn)
	for _, s := range o.Sheets {
		status := "discarded"
		if s.Valid() {
			status = "not loaded"
			if sheet, ok := imagesheet.Get(cat, s.Name.Value); ok && sheet.Image() != nil {
				status = fmt.Sprintf("%v", sheet.Image().Bounds().Size())
			}
		}
		fmt.Printf("  sheet %q source %q: %s\n", s.Name.Value, s.Source.Value, status)
		for _, sp := range s.Sprites {
			fmt.Printf("    sprite %q bounds %q\n", sp.Name.Value, sp.Bounds.Value)
		}
	}
}

func spriteImages(cat *atlas.Catalog) []image.Image {
	if *spriteName == "" {
		sheet, ok := imagesheet.Get(cat, *sheetName)
		if !ok || sheet.Image() == nil {
			glog.Errorf("sheet %q not found or has no image", *sheetName)
			return nil
		}
		return []image.Image{sheet.Image()}
	}

	sp, ok := imagesheet.GetSprite(cat, *sheetName, *spriteName)
	if !ok {
		glog.Errorf("sprite %q not found on sheet %q", *spriteName, *sheetName)
		return nil
	}
	if *frames {
		return sp.Frames()
	}
	if img := sp.Image(); img != nil {
		return []image.Image{img}
	}
	glog.Errorf("sprite %q has no pixels", *spriteName)
	return nil
}

func main() {
	paths.SetupDirsFlag("source_dirs", &sourceDirs)
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	m, err := imageprint.ParseMode(*mode)
	if err != nil {
		glog.Exit(err)
	}
	if flag.NArg() == 0 {
		glog.Exit("no documents to load")
	}

	if len(sourceDirs) == 0 {
		for _, fn := range flag.Args() {
			sourceDirs = append(sourceDirs, filepath.Dir(fn))
		}
	}
	opts := []atlas.Option{atlas.WithResolver(paths.New(sourceDirs...))}
	if *encoding {
		opts = append(opts, atlas.WithDeclaredEncoding())
	}
	cat := atlas.New(imagesheet.Factory{}, opts...)

	failed := false
	for _, fn := range flag.Args() {
		if !load(cat, fn) {
			failed = true
		}
	}

	if *list {
		for _, fn := range flag.Args() {
			listDocument(cat, fn)
		}
	}
	if *sheetName != "" {
		p := &imageprint.Printer{Mode: m, Blanks: *blanks, Name: *spriteName + ".png"}
		for _, img := range spriteImages(cat) {
			if err := p.Print(fit(img, m)); err != nil {
				glog.Errorf("printing: %v", err)
				failed = true
			}
		}
	}

	glog.Flush()
	if failed {
		os.Exit(1)
	}
}
