package punkrun

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AssetSource delivers the raw bytes of the asset blob. It is implemented by
// the platform: a filesystem read for native builds, an HTTP fetch for web
// builds.
type AssetSource interface {
	ReadBytes(ctx context.Context, path string) ([]byte, error)
}

// AssetRef names a blob at a source.
type AssetRef struct {
	Source AssetSource
	Path   string
}

// Valid reports whether the ref has a source.
func (r AssetRef) Valid() bool {
	return r.Source != nil
}

// FileSource reads blobs from the local filesystem, relative to Root.
type FileSource struct {
	Root string
}

// ReadBytes reads the whole file.
func (s FileSource) ReadBytes(_ context.Context, path string) ([]byte, error) {
	full := path
	if s.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(s.Root, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", full)
	}
	return data, nil
}

// maxBlobBytes bounds an HTTP response body.
const maxBlobBytes = 256 << 20

// HTTPSource fetches blobs with a one-shot GET against BaseURL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// ReadBytes fetches BaseURL/path.
func (s HTTPSource) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read body %s", url)
	}
	if len(data) > maxBlobBytes {
		return nil, errors.Errorf("fetch %s: body exceeds %d bytes", url, maxBlobBytes)
	}
	return data, nil
}

// MemorySource serves blobs from memory, keyed by path.
type MemorySource map[string][]byte

// ReadBytes returns the stored bytes.
func (s MemorySource) ReadBytes(_ context.Context, path string) ([]byte, error) {
	data, ok := s[path]
	if !ok {
		return nil, errors.Errorf("memory source: no blob %q", path)
	}
	return data, nil
}

// StartLoad begins fetching the blob on a separate goroutine. The primary
// source is tried first, then the fallback once; if both fail the status
// becomes AssetFailLoad. It reports false if a load was already started.
func (d *AssetData) StartLoad(ctx context.Context, primary, fallback AssetRef, log *zap.Logger) bool {
	if !d.beginLoad() {
		return false
	}
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		blob, err := fetchBlob(ctx, primary, fallback, log)
		status := d.finish(blob, err)
		if status == AssetSuccess {
			log.Info("assets resident", zap.Int("bytes", len(blob)))
		} else {
			log.Error("assets unavailable", zap.Stringer("status", status), zap.Error(d.err))
		}
	}()
	return true
}

// fetchBlob tries primary, then fallback.
func fetchBlob(ctx context.Context, primary, fallback AssetRef, log *zap.Logger) ([]byte, error) {
	var firstErr error
	for i, ref := range [2]AssetRef{primary, fallback} {
		if !ref.Valid() {
			continue
		}
		blob, err := ref.Source.ReadBytes(ctx, ref.Path)
		if err == nil {
			return blob, nil
		}
		log.Warn("asset source failed", zap.Int("attempt", i+1), zap.String("path", ref.Path), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("no asset source configured")
	}
	return nil, errors.Wrap(ErrAssetLoad, firstErr.Error())
}
