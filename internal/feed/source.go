package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/domainsuffixes/internal/version"
)

// Source opens a named feed. Names are URLs or file paths depending on the
// implementation.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// HTTPSource fetches feeds over HTTP(S).
type HTTPSource struct {
	client    *http.Client
	userAgent string
}

// NewHTTPSource returns an HTTP source whose requests time out after timeout.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		client:    &http.Client{Timeout: timeout},
		userAgent: version.UserAgent(),
	}
}

// Open issues a GET for name. Anything but 200 is an error.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, NewFetchError(name, "get", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewFetchError(name, "get", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		e := NewFetchError(name, "get", ErrUnexpectedStatus)
		e.Status = resp.StatusCode
		return nil, e
	}
	return resp.Body, nil
}

// FileSource reads feeds from a filesystem, rooted at Root when set.
type FileSource struct {
	Fs   afero.Fs
	Root string
}

// NewFileSource returns a source reading the OS filesystem below root.
func NewFileSource(root string) *FileSource {
	return &FileSource{Fs: afero.NewOsFs(), Root: root}
}

// Open opens name relative to Root.
func (s *FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewFetchError(name, "open", err)
	}
	p := name
	if s.Root != "" && !path.IsAbs(name) {
		p = path.Join(s.Root, name)
	}
	f, err := s.Fs.Open(p)
	if err != nil {
		return nil, NewFetchError(name, "open", err)
	}
	return f, nil
}

// MultiSource sends http and https names to Remote and everything else to
// Local.
type MultiSource struct {
	Remote Source
	Local  Source
}

// Open dispatches on the name's scheme.
func (s *MultiSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		if s.Remote == nil {
			return nil, NewFetchError(name, "open", fmt.Errorf("no remote source configured"))
		}
		return s.Remote.Open(ctx, name)
	}
	if s.Local == nil {
		return nil, NewFetchError(name, "open", fmt.Errorf("no local source configured"))
	}
	return s.Local.Open(ctx, name)
}
