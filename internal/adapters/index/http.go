package index

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

const httpClientTimeout = 60 * time.Second

var _ ports.ArtifactSource = (*HTTPSource)(nil)

// HTTPSource downloads artifacts from <base>/<name>/<name>-<version><suffix>.
// Every request waits on a shared rate limiter.
type HTTPSource struct {
	base       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPSource creates an HTTPSource for base, limited to r requests per second.
func NewHTTPSource(base string, r float64, burst int) *HTTPSource {
	return NewHTTPSourceWithClient(base, r, burst, &http.Client{Timeout: httpClientTimeout})
}

// NewHTTPSourceWithClient creates an HTTPSource with a custom client.
func NewHTTPSourceWithClient(base string, r float64, burst int, client *http.Client) *HTTPSource {
	limit := rate.Inf
	if r > 0 {
		limit = rate.Limit(r)
	}
	if burst < 1 {
		burst = 1
	}
	return &HTTPSource{
		base:       strings.TrimRight(base, "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// Fetch downloads the artifact of exactly pkg's pinned version into w.
func (s *HTTPSource) Fetch(ctx context.Context, pkg domain.PinnedPackage, w io.Writer) (string, error) {
	for _, suffix := range Suffixes() {
		name := ArtifactName(pkg, suffix)
		found, err := s.download(ctx, pkg.Name+"/"+name, w)
		if err != nil {
			return "", zerr.With(err, "package", pkg.String())
		}
		if found {
			return name, nil
		}
	}
	return "", notFound(pkg, s.base)
}

func (s *HTTPSource) download(ctx context.Context, rel string, w io.Writer) (bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "rate limiter"), "reason", err.Error())
	}

	target, err := url.JoinPath(s.base, rel)
	if err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "invalid index url"), "url", s.base)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "cannot build request"), "url", target)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "request failed"),
			"url", target), "reason", err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck // Body is drained below

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "unexpected status"),
			"url", target), "status", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return false, zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "download interrupted"),
			"url", target), "reason", err.Error())
	}
	return true, nil
}
