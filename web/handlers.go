// Package web serves the sheets and sprites of a loaded catalog over HTTP.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"net/http"
	"net/url"

	"github.com/andybons/gogif"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-atlas/atlas"
	"badc0de.net/pkg/go-atlas/imagesheet"
)

// generation is part of every ETag. Bump it if the way renditions are
// generated changes.
const generation = 1

// Handler serves a catalog. The catalog must not be loaded into while the
// handler is in use.
type Handler struct {
	cat *atlas.Catalog
}

// NewHandler constructs a web handler for the passed catalog.
func NewHandler(cat *atlas.Catalog) *Handler {
	return &Handler{cat: cat}
}

type spriteJSON struct {
	Name    string `json:"name"`
	Bounds  [4]int `json:"bounds"`
	Frames  int    `json:"frames,omitempty"`
	DelayMS int64  `json:"delay_ms,omitempty"`
}

type sheetJSON struct {
	Name    string       `json:"name"`
	Source  string       `json:"source,omitempty"`
	Digest  string       `json:"digest,omitempty"`
	Sprites []spriteJSON `json:"sprites"`
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	out := struct {
		Sheets []sheetJSON `json:"sheets"`
	}{Sheets: []sheetJSON{}}

	h.cat.Each(func(name string, sheet atlas.Sheet) {
		sj := sheetJSON{Name: name, Sprites: []spriteJSON{}}
		if s, ok := sheet.(*imagesheet.Sheet); ok {
			sj.Source = s.Source()
			sj.Digest = s.Digest()
		}
		for _, spriteName := range sheet.SpriteNames() {
			sp, _ := sheet.Sprite(spriteName)
			b := sp.Bounds()
			spj := spriteJSON{Name: spriteName, Bounds: [4]int{b.Min.X, b.Min.Y, b.Dx(), b.Dy()}}
			if s, ok := sp.(*imagesheet.Sprite); ok {
				spj.Frames = s.FrameCount()
				spj.DelayMS = s.Delay().Milliseconds()
			}
			sj.Sprites = append(sj.Sprites, spj)
		}
		out.Sheets = append(out.Sheets, sj)
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		glog.Errorf("web: encoding sheet index: %v", err)
	}
}

// lookup finds the sprite named in the request and computes its ETag. It
// writes an error response and returns nil if there is nothing to serve, or
// a 304 if the client already has this rendition.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, mime string) (*imagesheet.Sprite, string) {
	vars := mux.Vars(r)
	sheet, ok := imagesheet.Get(h.cat, vars["sheet"])
	if !ok {
		http.Error(w, "no such sheet", http.StatusNotFound)
		return nil, ""
	}
	sp, ok := imagesheet.GetSprite(h.cat, vars["sheet"], vars["sprite"])
	if !ok {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return nil, ""
	}
	if sheet.Digest() == "" {
		http.Error(w, "sheet has no image", http.StatusNotFound)
		return nil, ""
	}

	etag := fmt.Sprintf(`W/"sprite:%d:%s:%s:%s:%s"`, generation, sheet.Digest(), url.PathEscape(vars["sheet"]), url.PathEscape(vars["sprite"]), mime)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return nil, ""
	}
	return sp, etag
}

func writeHeaders(w http.ResponseWriter, mime, etag string) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)
}

func (h *Handler) pngHandler(w http.ResponseWriter, r *http.Request) {
	mime := "image/png"
	sp, etag := h.lookup(w, r, mime)
	if sp == nil {
		return
	}
	img := sp.Image()
	if img == nil {
		http.Error(w, "sprite lies outside of its sheet", http.StatusNotFound)
		return
	}

	writeHeaders(w, mime, etag)
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		glog.Errorf("web: encoding png: %v", err)
	}
}

func (h *Handler) dataURLHandler(w http.ResponseWriter, r *http.Request) {
	sp, etag := h.lookup(w, r, "text/plain+dataurl")
	if sp == nil {
		return
	}
	img := sp.Image()
	if img == nil {
		http.Error(w, "sprite lies outside of its sheet", http.StatusNotFound)
		return
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	byt, err := dataurl.New(buf.Bytes(), "image/png").MarshalText()
	if err != nil {
		http.Error(w, "failed to encode data url", http.StatusInternalServerError)
		return
	}

	writeHeaders(w, "text/plain; charset=utf-8", etag)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(byt); err != nil {
		glog.Errorf("web: writing data url: %v", err)
	}
}

func (h *Handler) gifHandler(w http.ResponseWriter, r *http.Request) {
	mime := "image/gif"
	sp, etag := h.lookup(w, r, mime)
	if sp == nil {
		return
	}
	frames := sp.Frames()
	if frames == nil {
		http.Error(w, "sprite lies outside of its sheet", http.StatusNotFound)
		return
	}

	g := gif.GIF{}
	delay := int(sp.Delay().Milliseconds() / 10)
	quantizer := gogif.MedianCutQuantizer{NumColor: 255} // Up to 255 colors plus 1 space for transparency.
	for _, frame := range frames {
		// Frames sit where they are on the sheet; GIF frames start at the origin.
		b := image.Rect(0, 0, frame.Bounds().Dx(), frame.Bounds().Dy())
		img := image.NewNRGBA(b)
		draw.Draw(img, b, frame, frame.Bounds().Min, draw.Src)

		pal := image.NewPaletted(b, nil)
		quantizer.Quantize(pal, b, img, image.ZP)

		// The quantizer's palette has no transparent entry. Put it first so
		// that the empty image defaults to it, then draw the frame over.
		palTransparent := image.NewPaletted(b, append(color.Palette([]color.Color{color.Transparent}), pal.Palette...))
		draw.Draw(palTransparent, b, img, image.ZP, draw.Over)

		g.Image = append(g.Image, palTransparent)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0 // color.Transparent

	writeHeaders(w, mime, etag)
	w.WriteHeader(http.StatusOK)
	if err := gif.EncodeAll(w, &g); err != nil {
		glog.Errorf("web: encoding gif: %v", err)
	}
}

// RegisterRoutes adds the handler's routes to r:
//
//	/sheets                          JSON index of sheets and sprites
//	/sheet/{sheet}/{sprite}.png      sprite image
//	/sheet/{sheet}/{sprite}.gif      sprite animation
//	/sheet/{sheet}/{sprite}.dataurl  sprite image as a data: URL
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sheets", h.indexHandler).Methods("GET")
	r.HandleFunc("/sheet/{sheet}/{sprite}.png", h.pngHandler).Methods("GET", "HEAD")
	r.HandleFunc("/sheet/{sheet}/{sprite}.gif", h.gifHandler).Methods("GET", "HEAD")
	r.HandleFunc("/sheet/{sheet}/{sprite}.dataurl", h.dataURLHandler).Methods("GET", "HEAD")
}
