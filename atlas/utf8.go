package atlas

import (
	"io"

	"github.com/golang/glog"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewUTF8Reader returns r decoded as UTF-8. A leading byte order mark is
// honoured and dropped, and invalid sequences become U+FFFD. If no UTF-8
// decoder is available, r is returned unchanged.
func NewUTF8Reader(r io.Reader) io.Reader {
	enc, _ := charset.Lookup("utf-8")
	if enc == nil {
		glog.Warning("atlas: utf-8 decoder unavailable, reading document as is")
		return r
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))
}

// ignoreDeclaredCharset is used as xml.Decoder.CharsetReader once the input
// was already normalized to UTF-8: the encoding named by the XML declaration
// no longer describes the bytes the decoder sees.
func ignoreDeclaredCharset(label string, input io.Reader) (io.Reader, error) {
	glog.V(2).Infof("atlas: ignoring declared encoding %q", label)
	return input, nil
}
