package atlas

import (
	"encoding/xml"
	"sort"
)

// Attributes maps attribute names to values.
type Attributes map[string]string

// Clone returns a copy of a. The copy of a nil map is an empty map.
func (a Attributes) Clone() Attributes {
	c := make(Attributes, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Names returns the attribute names, sorted.
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Resolve overwrites the defaults declared by ext with the values present in
// tag and passes the result to ext.HandleAttributes. Names ext does not
// declare are never copied. The resolved attributes are returned.
func Resolve(ext Extender, tag Attributes) Attributes {
	resolved := ext.ExtraAttributes().Clone()
	for name := range resolved {
		if v, ok := tag[name]; ok {
			resolved[name] = v
		}
	}
	ext.HandleAttributes(resolved)
	return resolved
}

// tagAttributes converts the attributes of a start element. Attributes with
// a namespace are keyed "space:local".
func tagAttributes(attrs []xml.Attr) Attributes {
	a := make(Attributes, len(attrs))
	for _, attr := range attrs {
		name := attr.Name.Local
		if attr.Name.Space != "" {
			name = attr.Name.Space + ":" + name
		}
		a[name] = attr.Value
	}
	return a
}
