package paths

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
)

// openHTTP fetches source once per resolver and serves later opens from
// memory. Concurrent first opens of the same URL share one request.
func (r *Resolver) openHTTP(source string) (io.ReadCloser, error) {
	r.mu.Lock()
	buf, ok := r.cache[source]
	r.mu.Unlock()
	if ok {
		glog.V(2).Infof("paths: %q served from cache", source)
		return &bytesReaderWithDummyClose{bytes.NewReader(buf)}, nil
	}

	v, err, _ := r.group.Do(source, func() (interface{}, error) {
		return r.fetch(source)
	})
	if err != nil {
		return nil, err
	}
	return &bytesReaderWithDummyClose{bytes.NewReader(v.([]byte))}, nil
}

func (r *Resolver) fetch(source string) ([]byte, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	glog.V(2).Infof("paths: getting http file %q", source)
	response, err := client.Get(source)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: getting %q", source)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		e := os.ErrInvalid
		if response.StatusCode == http.StatusNotFound {
			e = os.ErrNotExist
		}
		return nil, errors.Wrapf(e, "paths: getting %q: http response.StatusCode=%v, want 200", source, response.StatusCode)
	}

	// TODO: use ranged reads once sheets can decode lazily.
	buf, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: reading %q", source)
	}

	r.mu.Lock()
	if r.cache == nil {
		r.cache = make(map[string][]byte)
	}
	r.cache[source] = buf
	r.mu.Unlock()
	return buf, nil
}

func openDataURL(source string) (io.ReadCloser, error) {
	du, err := dataurl.DecodeString(source)
	if err != nil {
		return nil, errors.Wrap(err, "paths: decoding data url")
	}
	return &bytesReaderWithDummyClose{bytes.NewReader(du.Data)}, nil
}

type bytesReaderWithDummyClose struct {
	*bytes.Reader
}

func (bytesReaderWithDummyClose) Close() error {
	return nil
}
