package atlas

import (
	"bytes"
	"image"
	"io"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestCatalog(opts ...Option) (*Catalog, *Collector) {
	col := &Collector{}
	return New(&stubFactory{}, append([]Option{WithSink(col)}, opts...)...), col
}

func TestLoadSingleSprite(t *testing.T) {
	check := assert.New(t)
	c, _ := newTestCatalog()
	ds, err := c.Load(strings.NewReader(`<images><sheet name="tiles" source="tiles.png"><sprite name="grass" bounds="0,0,16,16"/></sheet></images>`))
	check.NoError(err)
	check.Empty(ds)

	check.Equal(1, c.Len())
	sheet, ok := c.Get("tiles")
	if !check.True(ok) {
		return
	}
	check.Equal([]string{"grass"}, sheet.SpriteNames())
	grass, _ := sheet.Sprite("grass")
	check.Equal(image.Rect(0, 0, 16, 16), grass.Bounds())
}

func TestLoadExamples(t *testing.T) {
	for _, tc := range []struct {
		name        string
		input       string
		wantSheets  []string
		wantSprites map[string][]string
		wantErrors  int
		wantWarns   int
	}{
		{
			name:        "three bounds tokens",
			input:       `<images><sheet name="tiles" source="tiles.png"><sprite name="grass" bounds="0,0,16"/></sheet></images>`,
			wantSheets:  []string{"tiles"},
			wantSprites: map[string][]string{"tiles": nil},
			wantErrors:  1,
		},
		{
			name:       "sheet without name",
			input:      `<images><sheet source="x.png"><sprite name="grass" bounds="0,0,16,16"/></sheet></images>`,
			wantSheets: []string{},
			wantErrors: 1,
			wantWarns:  1,
		},
		{
			name: "duplicate sheets",
			input: `<images>
  <sheet name="a" source="first.png"><sprite name="one" bounds="0,0,1,1"/></sheet>
  <sheet name="a" source="second.png"><sprite name="two" bounds="0,0,2,2"/></sheet>
</images>`,
			wantSheets:  []string{"a"},
			wantSprites: map[string][]string{"a": {"two"}},
		},
		{
			name: "full document",
			input: `<?xml version="1.0" encoding="UTF-8"?>
<!-- tiles and characters -->
<images>
	<sheet name="tiles" source="tiles.png">
		<sprite name="grass" bounds="0,0,16,16"></sprite>
		<sprite name="water" bounds="16,0,16,16"/>
	</sheet>
	<sheet
		name="chars"
		source="chars.png">
		<sprite name="player" bounds="0,0,16,24"/>
	</sheet>
</images>`,
			wantSheets:  []string{"chars", "tiles"},
			wantSprites: map[string][]string{"tiles": {"grass", "water"}, "chars": {"player"}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			c, _ := newTestCatalog()
			ds, err := c.Load(strings.NewReader(tc.input))
			if !check.NoError(err) {
				return
			}
			check.Equal(tc.wantSheets, c.Names())
			for sheetName, want := range tc.wantSprites {
				sheet, ok := c.Get(sheetName)
				if check.True(ok, sheetName) {
					check.Equal(want, sheet.SpriteNames(), sheetName)
				}
			}
			check.Equal(tc.wantErrors, ds.Count(SeverityError), "diagnostics: %v", ds)
			check.Equal(tc.wantWarns, ds.Count(SeverityWarning), "diagnostics: %v", ds)
		})
	}
}

func TestLoadDuplicateSheetKeepsSecond(t *testing.T) {
	check := assert.New(t)
	c, _ := newTestCatalog()
	_, err := c.Load(strings.NewReader(`<images><sheet name="a" source="1.png"/><sheet name="a" source="2.png"/></images>`))
	check.NoError(err)
	a, _ := c.Get("a")
	check.Equal("2.png", a.(*stubSheet).source)
}

func TestLoadIsAdditive(t *testing.T) {
	check := assert.New(t)
	c, _ := newTestCatalog()
	_, err := c.Load(strings.NewReader(`<images><sheet name="a" source="a1.png"/><sheet name="b" source="b.png"/></images>`))
	check.NoError(err)
	_, err = c.Load(strings.NewReader(`<images><sheet name="a" source="a2.png"/><sheet name="c" source="c.png"/></images>`))
	check.NoError(err)

	check.Equal([]string{"a", "b", "c"}, c.Names())
	a, _ := c.Get("a")
	check.Equal("a2.png", a.(*stubSheet).source)
}

func TestLoadDoesNotCarryStateAcrossPasses(t *testing.T) {
	check := assert.New(t)
	c, col := newTestCatalog()
	// the first document is cut short inside a sheet
	_, err := c.Load(strings.NewReader(`<images><sheet name="a" source="a.png">`))
	check.True(IsKind(err, KindSyntax))

	col.Reset()
	ds, err := c.Load(strings.NewReader(`<other><sprite name="s" bounds="0,0,1,1"/></other>`))
	check.NoError(err)
	check.Empty(ds)
	a, _ := c.Get("a")
	check.Empty(a.SpriteNames())
}

func TestLoadReturnsAndReportsDiagnostics(t *testing.T) {
	check := assert.New(t)
	c, col := newTestCatalog()
	ds, err := c.Load(strings.NewReader("<images>\n  <bogus/>\n  <sprite name=\"x\" bounds=\"0,0,1,1\"/>\n</images>"))
	check.NoError(err)
	check.Equal(col.Diagnostics(), ds)
	if check.Len(ds, 2) {
		check.Equal(SeverityInfo, ds[0].Severity)
		check.Equal(2, ds[0].Line)
		check.Equal(SeverityWarning, ds[1].Severity)
		check.Equal(3, ds[1].Line)
	}
}

func TestLoadReportsToSinkFunc(t *testing.T) {
	var got []Severity
	c := New(&stubFactory{}, WithSink(SinkFunc(func(d Diagnostic) { got = append(got, d.Severity) })))
	ds, err := c.Load(strings.NewReader(`<images><sheet source="a.png"/><sprite/></images>`))
	assert.NoError(t, err)
	assert.Equal(t, []Severity{SeverityError, SeverityWarning}, got)
	assert.Equal(t, 1, ds.Count(SeverityError))
	assert.Len(t, ds.Errors(), 1)
}

func TestLoadFatalErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input io.Reader
		kind  ErrorKind
	}{
		{name: "unclosed", input: strings.NewReader(`<images><sheet name="a" source="a.png">`), kind: KindSyntax},
		{name: "mismatched", input: strings.NewReader(`<images></sheet>`), kind: KindSyntax},
		{name: "bad attribute", input: strings.NewReader(`<images><sheet name=a/></images>`), kind: KindSyntax},
		{name: "empty", input: strings.NewReader(""), kind: KindSyntax},
		{name: "only a comment", input: strings.NewReader("<!-- nothing -->"), kind: KindSyntax},
		{name: "second root", input: strings.NewReader(`<images><sheet name="a" source="a.png"/></images><images><sheet name="b" source="b.png"/></images>`), kind: KindSyntax},
		{name: "text after root", input: strings.NewReader("<images/>\ntrailing"), kind: KindSyntax},
		{name: "text before root", input: strings.NewReader("leading<images/>"), kind: KindSyntax},
		{name: "reader failure", input: &failingReader{data: []byte("<images>"), err: errors.New("disk on fire")}, kind: KindIO},
		{name: "nil reader", input: nil, kind: KindConfig},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			c, _ := newTestCatalog()
			_, err := c.Load(tc.input)
			if check.Error(err) {
				check.True(IsKind(err, tc.kind), "got %v", err)
			}
		})
	}
}

func TestLoadAllowsMiscAroundRoot(t *testing.T) {
	c, _ := newTestCatalog()
	_, err := c.Load(strings.NewReader("<?xml version=\"1.0\"?>\n<!-- sheets -->\n<images><sheet name=\"a\" source=\"a.png\"/></images>\n<!-- end -->\n<?done?>\n"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, c.Names())
}

func TestLoadSecondRootKeepsFirst(t *testing.T) {
	c, _ := newTestCatalog()
	_, err := c.Load(strings.NewReader(`<images><sheet name="a" source="a.png"/></images><images><sheet name="b" source="b.png"/></images>`))
	assert.True(t, IsKind(err, KindSyntax), "got %v", err)
	assert.Equal(t, []string{"a"}, c.Names())
}

func TestZeroCatalog(t *testing.T) {
	var c Catalog
	_, ok := c.Get("a")
	assert.False(t, ok)
	c.Put("a", &stubSheet{})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"a"}, c.Names())
}

func TestLoadKeepsSheetsBeforeSyntaxError(t *testing.T) {
	check := assert.New(t)
	c, _ := newTestCatalog()
	_, err := c.Load(strings.NewReader(`<images><sheet name="a" source="a.png"></sheet><sheet name="b"`))
	check.Error(err)
	check.Equal([]string{"a"}, c.Names())

	var le *LoadError
	if check.True(errors.As(err, &le)) {
		check.Equal(KindSyntax, le.Kind)
		check.NotZero(le.Line)
	}
}

func TestLoadWithoutFactory(t *testing.T) {
	c := New(nil, WithSink(nil))
	_, err := c.Load(strings.NewReader("<images/>"))
	assert.True(t, IsKind(err, KindConfig))
}

func TestLoadUTF8(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input []byte
		opts  []Option
		want  string
	}{
		{
			name:  "plain",
			input: []byte(`<images><sheet name="žaba" source="a.png"/></images>`),
			want:  "žaba",
		},
		{
			name:  "byte order mark",
			input: append([]byte{0xEF, 0xBB, 0xBF}, `<images><sheet name="bom" source="a.png"/></images>`...),
			want:  "bom",
		},
		{
			name:  "declared latin-1 is read as utf-8",
			input: []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><images><sheet name="čvor" source="a.png"/></images>`),
			want:  "čvor",
		},
		{
			name:  "declared latin-1 honoured",
			input: []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><images><sheet name=\"caf\xe9\" source=\"a.png\"/></images>"),
			opts:  []Option{WithDeclaredEncoding()},
			want:  "café",
		},
		{
			name:  "invalid utf-8 replaced",
			input: []byte("<images><sheet name=\"a\xffb\" source=\"a.png\"/></images>"),
			want:  "a�b",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			c, _ := newTestCatalog(tc.opts...)
			_, err := c.Load(bytes.NewReader(tc.input))
			if check.NoError(err) {
				check.Equal([]string{tc.want}, c.Names())
			}
		})
	}
}

func TestLoadOpensSourcesThroughResolver(t *testing.T) {
	check := assert.New(t)
	var opened []string
	r := ResolverFunc(func(source string) (io.ReadCloser, error) {
		opened = append(opened, source)
		if source == "missing.png" {
			return nil, errors.New("no such file")
		}
		return ioutil.NopCloser(strings.NewReader("pixels of " + source)), nil
	})
	c, _ := newTestCatalog(WithResolver(r))
	ds, err := c.Load(strings.NewReader(`<images><sheet name="a" source="a.png"/><sheet name="m" source="missing.png"/></images>`))
	check.NoError(err)
	check.Equal([]string{"a.png", "missing.png"}, opened)

	a, _ := c.Get("a")
	check.Equal("pixels of a.png", string(a.(*stubSheet).loaded))
	check.Equal(2, c.Len())
	if check.Len(ds, 1) {
		check.Equal(SeverityWarning, ds[0].Severity)
		check.Contains(ds[0].Message, "no such file")
	}
}

func TestCatalogPutGetRemove(t *testing.T) {
	check := assert.New(t)
	c, _ := newTestCatalog()
	_, ok := c.Get("nope")
	check.False(ok)

	s1, s2 := &stubSheet{}, &stubSheet{}
	c.Put("x", s1)
	c.Put("x", s2)
	got, ok := c.Get("x")
	check.True(ok)
	check.True(got == Sheet(s2))
	check.Equal(1, c.Len())

	c.Put("a", s1)
	var seen []string
	c.Each(func(name string, _ Sheet) { seen = append(seen, name) })
	check.Equal([]string{"a", "x"}, seen)

	c.Remove("x")
	_, ok = c.Get("x")
	check.False(ok)
	check.Equal([]string{"a"}, c.Names())
}
