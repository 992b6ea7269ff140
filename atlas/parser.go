package atlas

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

const (
	tagImages = "images"
	tagSheet  = "sheet"
	tagSprite = "sprite"

	attrName   = "name"
	attrSource = "source"
	attrBounds = "bounds"
)

// Parser turns start and end tag events into sheets and sprites stored in a
// catalog. It does not read XML itself; Catalog.Load feeds it from an
// xml.Decoder, and tests can feed it synthetic events.
//
// The parser is only interested in this nesting:
//
//	images > sheet > sprite
//
// Tags outside <images> are ignored. Tag names are matched regardless of
// case, attribute names exactly.
type Parser struct {
	catalog *Catalog
	sink    Sink

	// Pos, when set, returns the current input position. It is used to
	// annotate diagnostics.
	Pos func() (line, column int)

	active  bool  // inside <images>
	current Sheet // sheet receiving sprites; nil outside <sheet> or after a discarded one
}

// NewParser returns a parser storing into c and reporting to sink.
func NewParser(c *Catalog, sink Sink) *Parser {
	return &Parser{catalog: c, sink: sink}
}

// Reset returns the parser to its initial state, outside <images>.
func (p *Parser) Reset() {
	p.active = false
	p.current = nil
}

// StartTag handles an opening tag with the given attributes.
func (p *Parser) StartTag(name string, attrs Attributes) {
	switch strings.ToLower(name) {
	case tagImages:
		p.active = true
	case tagSheet:
		if p.active {
			p.startSheet(name, attrs)
		}
	case tagSprite:
		if p.active {
			p.startSprite(name, attrs)
		}
	default:
		if p.active {
			p.report(SeverityInfo, name, "", "unknown tag %q", name)
		}
	}
}

// EndTag handles a closing tag.
func (p *Parser) EndTag(name string) {
	switch strings.ToLower(name) {
	case tagSheet:
		p.current = nil
	case tagImages:
		p.active = false
	}
}

func (p *Parser) startSheet(tag string, attrs Attributes) {
	// a sheet that fails validation must not receive the sprites that follow
	p.current = nil

	name, ok := attrs[attrName]
	if !ok {
		p.report(SeverityError, tag, attrName, "sheet has no name; discarded")
		return
	}
	source, ok := attrs[attrSource]
	if !ok {
		p.report(SeverityError, tag, attrSource, "sheet %q has no source; discarded", name)
		return
	}

	sheet := p.catalog.factory.NewSheet()
	resolved := Resolve(sheet, attrs)
	p.checkAttributes(tag, attrs, resolved, attrName, attrSource)

	if err := sheet.Load(Source{Name: source, Resolver: p.catalog.resolver}); err != nil {
		p.report(SeverityWarning, tag, attrSource, "sheet %q could not load %q: %v", name, source, err)
	}

	p.catalog.Put(name, sheet)
	p.current = sheet
}

func (p *Parser) startSprite(tag string, attrs Attributes) {
	if p.current == nil {
		p.report(SeverityWarning, tag, "", "sprite is not inside a sheet; discarded")
		return
	}

	name, hasName := attrs[attrName]
	bounds, ok := attrs[attrBounds]
	if !ok {
		p.report(SeverityError, tag, attrBounds, "sprite %q has no bounds; discarded", name)
		return
	}
	fields := strings.Split(bounds, ",")
	if len(fields) != 4 {
		p.report(SeverityError, tag, attrBounds, "bounds %q invalid, must be X,Y,W,H; discarded", bounds)
		return
	}
	var v [4]int
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			p.report(SeverityError, tag, attrBounds, "bounds %q invalid, %q is not an integer; discarded", bounds, f)
			return
		}
		v[i] = int(n)
	}
	if !hasName {
		p.report(SeverityError, tag, attrName, "sprite has no name; discarded")
		return
	}
	x, y, w, h := v[0], v[1], v[2], v[3]
	if x < 0 || y < 0 || w <= 0 || h <= 0 {
		p.report(SeverityError, tag, attrBounds, "sprite %q bounds [%d,%d,%d,%d] are invalid; discarded", name, x, y, w, h)
		return
	}

	sprite := p.catalog.factory.NewSprite(p.current, image.Rect(x, y, x+w, y+h))
	resolved := Resolve(sprite, attrs)
	p.checkAttributes(tag, attrs, resolved, attrName, attrBounds)
	p.current.Put(name, sprite)
}

// checkAttributes reports the attributes of a tag that are neither consumed
// by the parser nor declared by the resource, if the catalog asks for it.
func (p *Parser) checkAttributes(tag string, attrs, declared Attributes, own ...string) {
	if !p.catalog.unknownAttributes {
		return
	}
	for _, a := range attrs.Names() {
		if _, ok := declared[a]; ok || isOneOf(a, own) {
			continue
		}
		p.report(SeverityInfo, tag, a, "unknown attribute %q ignored", a)
	}
}

func isOneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (p *Parser) report(sev Severity, element, attribute, format string, args ...interface{}) {
	if p.sink == nil {
		return
	}
	d := Diagnostic{
		Severity:  sev,
		Element:   element,
		Attribute: attribute,
		Message:   fmt.Sprintf(format, args...),
	}
	if p.Pos != nil {
		d.Line, d.Column = p.Pos()
	}
	p.sink.Diagnose(d)
}
