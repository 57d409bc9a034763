package watchdog

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const defaultEndpointTimeout = 2 * time.Second

// HTTPEndpoint adapts a controller's HTTP surface to the Endpoint contract:
// GET /ping answers liveness, GET /connect asks the controller to
// (re)establish its hardware link.
type HTTPEndpoint struct {
	name    string
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewHTTPEndpoint(name, baseURL string) *HTTPEndpoint {
	return &HTTPEndpoint{
		name:    strings.TrimSpace(name),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &fasthttp.Client{
			ReadTimeout:  defaultEndpointTimeout,
			WriteTimeout: defaultEndpointTimeout,
		},
		timeout: defaultEndpointTimeout,
	}
}

func (e *HTTPEndpoint) Name() string { return e.name }

func (e *HTTPEndpoint) Ping(ctx context.Context) bool {
	return e.get(ctx, "/ping")
}

func (e *HTTPEndpoint) EnsureConnected(ctx context.Context) bool {
	return e.get(ctx, "/connect")
}

func (e *HTTPEndpoint) get(ctx context.Context, path string) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(e.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return false
	}
	if err := e.client.DoTimeout(req, resp, timeout); err != nil {
		return false
	}
	return resp.StatusCode() == fasthttp.StatusOK
}
