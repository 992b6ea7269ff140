// Command spriteweb loads sprite sheet documents and serves their sprites
// over HTTP.
package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-atlas/atlas"
	"badc0de.net/pkg/go-atlas/imagesheet"
	"badc0de.net/pkg/go-atlas/paths"
	"badc0de.net/pkg/go-atlas/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for spriteweb")
	banner        = flag.Bool("banner", true, "print a banner on startup")

	sourceDirs []string
)

func loadCatalog(docs []string) (*atlas.Catalog, error) {
	dirs := sourceDirs
	if len(dirs) == 0 {
		for _, fn := range docs {
			dirs = append(dirs, filepath.Dir(fn))
		}
	}
	cat := atlas.New(imagesheet.Factory{}, atlas.WithResolver(paths.New(dirs...)))
	for _, fn := range docs {
		f, err := os.Open(fn)
		if err != nil {
			return nil, err
		}
		_, err = cat.Load(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func main() {
	paths.SetupDirsFlag("source_dirs", &sourceDirs)
	flagutil.Parse()

	if *banner {
		figure.NewFigure("spriteweb", "", true).Print()
	}

	cat, err := loadCatalog(flag.Args())
	if err != nil {
		glog.Exitf("loading documents: %v", err)
	}
	glog.Infof("serving %d sheets on %s", cat.Len(), *listenAddress)

	r := mux.NewRouter()
	web.NewHandler(cat).RegisterRoutes(r)

	glog.Fatal(http.ListenAndServe(*listenAddress, handlers.CombinedLoggingHandler(os.Stderr, r)))
}
