// Package assets resolves link geometry into renderable shapes, fetching meshes through a
// coalescing cache.
package assets

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ggldnl/hexviz/spatialmath"
	"github.com/ggldnl/hexviz/utils"
)

// Loader fetches and decodes one mesh by its base filename.
type Loader interface {
	Load(ctx context.Context, filename string) (*spatialmath.Mesh, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(ctx context.Context, filename string) (*spatialmath.Mesh, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, filename string) (*spatialmath.Mesh, error) {
	return f(ctx, filename)
}

// Key returns the cache key of a mesh reference: its base filename with any package://
// URI, URL or directory prefix removed.
func Key(assetPath string) string {
	p := strings.TrimSpace(assetPath)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// DefaultTimeout bounds a single mesh fetch.
const DefaultTimeout = 30 * time.Second

// HTTPLoader fetches meshes from BaseURL + filename.
type HTTPLoader struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPLoader returns a loader for meshes served under baseURL.
func NewHTTPLoader(baseURL string, timeout time.Duration) (*HTTPLoader, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid asset base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &HTTPLoader{BaseURL: baseURL, Client: &http.Client{Timeout: timeout}}, nil
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, filename string) (*spatialmath.Mesh, error) {
	u := l.BaseURL + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		//nolint:errcheck
		resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", u)
	}
	return spatialmath.NewMeshFromSTLBytes(filename, data)
}

// DirLoader reads meshes from a local directory.
type DirLoader struct {
	Dir string
}

// Load implements Loader.
func (l DirLoader) Load(ctx context.Context, filename string) (*spatialmath.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := utils.SafeJoinDir(l.Dir, filename)
	if err != nil {
		return nil, err
	}
	return spatialmath.NewMeshFromSTLFile(path)
}
