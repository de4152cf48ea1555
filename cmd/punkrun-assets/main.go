// Command punkrun-assets serves an asset blob over HTTP so punkrun can use
// it as the fallback source. It serves a blob file when -file is given and
// a generated blob otherwise.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phanxgames/punkrun"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr, file, name, layoutPath string
	var seed uint64
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&file, "file", "", "Blob file to serve; empty serves a generated blob")
	flag.StringVar(&name, "name", "punkrun.bin", "Name the blob is served under")
	flag.StringVar(&layoutPath, "layout", "", "YAML layout for the generated blob")
	flag.Uint64Var(&seed, "seed", 1, "Seed for the generated blob")
	flag.Parse()

	log, err := punkrun.NewLogger(punkrun.LoggingConfig{Level: "info", Format: "console"})
	if err != nil {
		return err
	}
	defer log.Sync()

	blob, err := loadBlob(file, layoutPath, seed)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.LoggingHandler(os.Stdout, newRouter(map[string][]byte{name: blob}, log)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("serving assets", zap.String("addr", addr), zap.String("name", name), zap.Int("bytes", len(blob)))
	return srv.ListenAndServe()
}

// loadBlob reads file, or generates a blob from the layout at layoutPath
// (the built-in layout when empty).
func loadBlob(file, layoutPath string, seed uint64) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		return data, errors.Wrap(err, "read blob")
	}
	layout := punkrun.DefaultLayout()
	if layoutPath != "" {
		data, err := os.ReadFile(layoutPath)
		if err != nil {
			return nil, errors.Wrap(err, "read layout")
		}
		if layout, err = punkrun.ParseLayout(data); err != nil {
			return nil, err
		}
	}
	return punkrun.GenerateBlob(layout, seed), nil
}

// newRouter serves each blob by name under /, plus a health check.
func newRouter(blobs map[string][]byte, log *zap.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.HandleFunc("/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := mux.Vars(req)["name"]
		blob, ok := blobs[name]
		if !ok {
			log.Warn("unknown blob", zap.String("name", name))
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
		w.Write(blob)
	}).Methods(http.MethodGet, http.MethodHead)
	return handlers.RecoveryHandler()(r)
}
