package atlas

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithResolver sets the resolver handed to sheets for opening their source.
func WithResolver(r Resolver) Option { return func(c *Catalog) { c.resolver = r } }

// WithSink sets where diagnostics are reported while loading. The default is
// LogSink.
func WithSink(s Sink) Option { return func(c *Catalog) { c.sink = s } }

// WithDeclaredEncoding makes Load decode documents using the encoding named
// in their XML declaration instead of always reading them as UTF-8.
func WithDeclaredEncoding() Option { return func(c *Catalog) { c.declaredEncoding = true } }

// WithUnknownAttributes makes the parser report attributes on sheet and sprite
// tags that neither it nor the resource recognize, as SeverityInfo.
func WithUnknownAttributes() Option { return func(c *Catalog) { c.unknownAttributes = true } }

// Catalog maps sheet names to sheets.
//
// A Catalog is not safe for concurrent mutation; callers loading into the
// same catalog from several goroutines must serialize the calls.
type Catalog struct {
	factory  Factory
	resolver Resolver
	sink     Sink

	declaredEncoding  bool
	unknownAttributes bool

	sheets map[string]Sheet
}

// New returns an empty catalog creating its resources with f.
func New(f Factory, opts ...Option) *Catalog {
	c := &Catalog{
		factory: f,
		sink:    LogSink{},
		sheets:  make(map[string]Sheet),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put stores sheet under name, replacing any sheet stored under it before.
func (c *Catalog) Put(name string, sheet Sheet) {
	if c.sheets == nil {
		c.sheets = make(map[string]Sheet)
	}
	c.sheets[name] = sheet
}

// Get returns the sheet stored under name.
func (c *Catalog) Get(name string) (Sheet, bool) {
	s, ok := c.sheets[name]
	return s, ok
}

// Remove drops the sheet stored under name, if any.
func (c *Catalog) Remove(name string) { delete(c.sheets, name) }

// Len returns the number of sheets.
func (c *Catalog) Len() int { return len(c.sheets) }

// Names returns the sheet names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.sheets))
	for name := range c.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every sheet in name order.
func (c *Catalog) Each(fn func(name string, sheet Sheet)) {
	for _, name := range c.Names() {
		fn(name, c.sheets[name])
	}
}

// Load reads one document from r into the catalog. Sheets already in the
// catalog are kept unless the document defines a sheet with the same name.
//
// The diagnostics of this load are returned, and were also reported to the
// catalog's sink. The error, if any, is a *LoadError.
func (c *Catalog) Load(r io.Reader) (Diagnostics, error) {
	if c.factory == nil {
		return nil, &LoadError{Kind: KindConfig, Err: errors.New("catalog has no factory")}
	}
	if r == nil {
		return nil, &LoadError{Kind: KindConfig, Err: errors.New("nil reader")}
	}

	var d *xml.Decoder
	if c.declaredEncoding {
		d = xml.NewDecoder(r)
		d.CharsetReader = charset.NewReaderLabel
	} else {
		d = xml.NewDecoder(NewUTF8Reader(r))
		d.CharsetReader = ignoreDeclaredCharset
	}

	collected := &Collector{}
	p := NewParser(c, multiSink{collected, c.sink})
	p.Pos = d.InputPos

	sawRoot := false
	depth := 0
	for {
		t, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := d.InputPos()
			return collected.Diagnostics(), classify(err, line)
		}

		switch e := t.(type) {
		case xml.StartElement:
			if depth == 0 && sawRoot {
				line, _ := d.InputPos()
				return collected.Diagnostics(), &LoadError{Kind: KindSyntax, Line: line, Err: errors.Errorf("element <%s> after the root element", e.Name.Local)}
			}
			sawRoot = true
			depth++
			p.StartTag(e.Name.Local, tagAttributes(e.Attr))
		case xml.EndElement:
			depth--
			p.EndTag(e.Name.Local)
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(e)) > 0 {
				line, _ := d.InputPos()
				return collected.Diagnostics(), &LoadError{Kind: KindSyntax, Line: line, Err: errors.New("text outside the root element")}
			}
		}
	}
	if !sawRoot {
		return collected.Diagnostics(), &LoadError{Kind: KindSyntax, Err: errors.New("document has no root element")}
	}
	return collected.Diagnostics(), nil
}

func classify(err error, line int) *LoadError {
	if se, ok := err.(*xml.SyntaxError); ok {
		return &LoadError{Kind: KindSyntax, Line: se.Line, Err: errors.Wrap(err, "parsing document")}
	}
	if err == io.ErrUnexpectedEOF {
		return &LoadError{Kind: KindSyntax, Line: line, Err: errors.Wrap(err, "parsing document")}
	}
	return &LoadError{Kind: KindIO, Line: line, Err: errors.Wrap(err, "reading document")}
}
