package interceptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/goPortal/internal/logs"
)

// DefaultMaxInspectBytes bounds how much of a response body is buffered
// for message inspection.
const DefaultMaxInspectBytes int64 = 1 << 20

// ErrNilChain is returned by RoundTrip when the transport has no chain.
var ErrNilChain = errors.New("interceptor: transport has no chain")

// Transport is an http.RoundTripper that runs a [Chain] around Base.
//
// The request phase completes before the request is handed to Base, and the
// response phase completes before RoundTrip returns. Bodies larger than
// MaxInspectBytes are passed through untouched and treated as carrying no
// message.
//
// Requests to a host other than the backend, including redirect hops to one,
// go straight to Base: no credential is attached and their responses have
// no effect on the session.
type Transport struct {
	Base  http.RoundTripper
	Chain *Chain
	// Host is the backend host ("name:port" as in URL.Host). Empty accepts
	// the host of the first request in each redirect chain.
	Host string
	// BasePath is stripped from the URL path to form [Request.Path].
	BasePath string
	// MaxInspectBytes defaults to [DefaultMaxInspectBytes].
	MaxInspectBytes int64
	Logger          logs.Logger
	// OnComplete is called after the response phase with the round-trip latency.
	OnComplete func(req Request, resp Response, elapsed time.Duration)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) relativePath(p string) string {
	base := strings.TrimSuffix(t.BasePath, "/")
	if base == "" {
		return p
	}
	if p == base {
		return "/"
	}
	if !strings.HasPrefix(p, base+"/") {
		return p
	}
	return strings.TrimPrefix(p, base)
}

// foreign reports whether r targets a host other than the backend.
func (t *Transport) foreign(r *http.Request) bool {
	if t.Host != "" {
		return !strings.EqualFold(r.URL.Host, t.Host)
	}
	first := r
	for first.Response != nil && first.Response.Request != nil {
		first = first.Response.Request
	}
	return !strings.EqualFold(r.URL.Host, first.URL.Host)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.Chain == nil {
		return nil, ErrNilChain
	}
	log := logs.OrDefault(t.Logger)
	ctx := r.Context()

	if t.foreign(r) {
		log.CtxDebug(ctx, "%s %s is not the backend host, bypassing interceptors", r.Method, r.URL.Host)
		return t.base().RoundTrip(r)
	}
	start := time.Now()

	req := t.Chain.Request(Request{
		Method: r.Method,
		Path:   t.relativePath(r.URL.Path),
		Header: HeadersFromHTTP(r.Header),
	})

	out := r.Clone(ctx)
	out.Header = req.Header.HTTP()

	httpResp, err := t.base().RoundTrip(out)
	if err != nil {
		log.CtxDebug(ctx, "%s %s failed: %v", req.Method, req.Path, err)
		return nil, err
	}

	body, inspect, err := t.buffer(httpResp)
	if err != nil {
		// The status line arrived; a 401 still logs out.
		resp := t.Chain.Response(req, Response{Status: httpResp.StatusCode})
		if t.OnComplete != nil {
			t.OnComplete(req, resp, time.Since(start))
		}
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var resp Response
	if inspect {
		resp = ParseResponse(httpResp.StatusCode, body)
	} else {
		resp = Response{Status: httpResp.StatusCode}
	}
	resp = t.Chain.Response(req, resp)

	log.CtxDebug(ctx, "%s %s -> %d", req.Method, req.Path, httpResp.StatusCode)
	if t.OnComplete != nil {
		t.OnComplete(req, resp, time.Since(start))
	}
	return httpResp, nil
}

// buffer reads up to the inspection limit and re-arms httpResp.Body so the
// caller still sees the whole body. inspect is false when the body exceeded
// the limit.
func (t *Transport) buffer(httpResp *http.Response) ([]byte, bool, error) {
	if httpResp.Body == nil || httpResp.Body == http.NoBody {
		return nil, true, nil
	}

	limit := t.MaxInspectBytes
	if limit <= 0 {
		limit = DefaultMaxInspectBytes
	}

	orig := httpResp.Body
	buf, err := io.ReadAll(io.LimitReader(orig, limit+1))
	if err != nil {
		_ = orig.Close()
		return nil, false, err
	}

	if int64(len(buf)) > limit {
		httpResp.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(buf), orig), orig}
		return nil, false, nil
	}

	_ = orig.Close()
	httpResp.Body = io.NopCloser(bytes.NewReader(buf))
	return buf, true, nil
}
