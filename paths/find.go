// Package paths resolves the source attribute of a sheet into a byte stream.
//
// Sources may be data: URLs, http: or https: URLs, file: URLs, or file names
// looked up in a list of directories.
package paths

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Resolver opens sheet sources. It implements atlas.Resolver.
//
// The zero value looks files up relative to the working directory and fetches
// URLs with http.DefaultClient. A Resolver may be used concurrently.
type Resolver struct {
	// Dirs are searched in order for relative file names.
	Dirs []string
	// Client is used for http: and https: sources.
	Client *http.Client

	mu    sync.Mutex
	cache map[string][]byte
	group singleflight.Group
}

// New returns a resolver searching dirs.
func New(dirs ...string) *Resolver {
	return &Resolver{Dirs: dirs}
}

// Open returns a reader for source. The reader also implements io.Seeker.
func (r *Resolver) Open(source string) (io.ReadCloser, error) {
	switch scheme(source) {
	case "data":
		return openDataURL(source)
	case "http", "https":
		return r.openHTTP(source)
	case "file":
		u, err := url.Parse(source)
		if err != nil {
			return nil, errors.Wrapf(err, "paths: parsing %q", source)
		}
		return openFile(u.Path)
	}

	path := r.Find(source)
	if path == "" {
		return nil, errors.Wrapf(os.ErrNotExist, "paths: %q not found in %v", source, r.searchDirs())
	}
	return openFile(path)
}

// Find locates the passed file name and returns a path to open it at, or an
// empty string if it was not found. Absolute names are returned as they are if
// the file exists.
func (r *Resolver) Find(fileName string) string {
	if filepath.IsAbs(fileName) {
		if exists(fileName) {
			return fileName
		}
		return ""
	}
	for _, dir := range r.searchDirs() {
		path := filepath.Join(dir, filepath.FromSlash(fileName))
		if exists(path) {
			glog.V(2).Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}
	return ""
}

func (r *Resolver) searchDirs() []string {
	if len(r.Dirs) == 0 {
		return []string{"."}
	}
	return r.Dirs
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: opening %q", path)
	}
	return f, nil
}

// scheme returns the lowercased URL scheme of source, or an empty string if
// source does not look like a URL. Single letter schemes are taken to be
// Windows drive letters.
func scheme(source string) string {
	i := strings.Index(source, ":")
	if i < 2 {
		return ""
	}
	for _, c := range source[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return ""
		}
	}
	return strings.ToLower(source[:i])
}
