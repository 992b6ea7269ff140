// Package outline lists what a sprite sheet document declares without loading
// anything. It reads the whole document into a tree and answers with the
// sheets and sprites found under <images>, including the ones a Catalog would
// reject, so that tools can show a document as written.
package outline

import (
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
)

var (
	xpSheets  = xpath.MustCompile(`//*[translate(local-name(),'IMAGES','images')='images']//*[translate(local-name(),'SHEET','sheet')='sheet']`)
	xpSprites = xpath.MustCompile(`.//*[translate(local-name(),'SPRITE','sprite')='sprite']`)
)

// Attr is an attribute as written in the document.
type Attr struct {
	Value   string
	Present bool
}

// SpriteDecl is a <sprite> element.
type SpriteDecl struct {
	Name   Attr
	Bounds Attr
}

// SheetDecl is a <sheet> element and the sprites nested in it.
type SheetDecl struct {
	Name    Attr
	Source  Attr
	Sprites []SpriteDecl
}

// Valid reports whether the sheet carries both attributes a catalog needs to
// keep it.
func (s SheetDecl) Valid() bool {
	return s.Name.Present && s.Source.Present
}

// Outline is the declarative content of a document, in document order.
type Outline struct {
	Sheets []SheetDecl
}

// SheetNames returns the distinct names of valid sheets in document order.
// Loading a document without nested <images> elements stores exactly these
// sheets. A catalog stops taking sheets at the first </images>, even an inner
// one, while the outline lists every sheet under any <images>.
func (o *Outline) SheetNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, s := range o.Sheets {
		if !s.Valid() || seen[s.Name.Value] {
			continue
		}
		seen[s.Name.Value] = true
		names = append(names, s.Name.Value)
	}
	return names
}

// Read parses the document from r. Unlike Catalog.Load it honours the declared
// encoding.
func Read(r io.Reader) (*Outline, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "outline: parsing document")
	}

	o := &Outline{}
	seen := map[*xmlquery.Node]bool{}
	for _, sn := range xmlquery.QuerySelectorAll(doc, xpSheets) {
		// nested <images> select the same sheet twice
		if seen[sn] {
			continue
		}
		seen[sn] = true

		sheet := SheetDecl{
			Name:   attr(sn, "name"),
			Source: attr(sn, "source"),
		}
		for _, pn := range xmlquery.QuerySelectorAll(sn, xpSprites) {
			if owner(pn) != sn {
				continue
			}
			sheet.Sprites = append(sheet.Sprites, SpriteDecl{
				Name:   attr(pn, "name"),
				Bounds: attr(pn, "bounds"),
			})
		}
		o.Sheets = append(o.Sheets, sheet)
	}
	return o, nil
}

// attr looks up an attribute without a namespace prefix. Attribute names are
// matched exactly.
func attr(n *xmlquery.Node, name string) Attr {
	for _, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return Attr{Value: a.Value, Present: true}
		}
	}
	return Attr{}
}

// owner returns the nearest enclosing sheet element of n.
func owner(n *xmlquery.Node) *xmlquery.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == xmlquery.ElementNode && strings.EqualFold(p.Data, "sheet") {
			return p
		}
	}
	return nil
}
