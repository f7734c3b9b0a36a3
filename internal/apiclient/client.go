package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/perrors"
)

var tracer = otel.Tracer("github.com/curaious/taskdesk/internal/apiclient")

// TokenSource supplies the bearer token of the current session, or "".
type TokenSource interface {
	Token() string
}

// Client is the REST transport of the dashboard.
type Client struct {
	baseURL       string
	http          *fasthttp.Client
	timeout       time.Duration
	tokens        TokenSource
	onAuthExpired func()
}

type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "taskdesk-dashboard",
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource attaches the session whose token authenticates requests.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// OnAuthExpired registers fn to run when an authenticated request gets a 401.
func (c *Client) OnAuthExpired(fn func()) {
	c.onAuthExpired = fn
}

type envelope struct {
	Message    string           `json:"message"`
	Error      bool             `json:"error"`
	Status     int              `json:"status"`
	Data       json.RawMessage  `json:"data"`
	Pagination *pagination.Info `json:"pagination"`
}

// do sends in as JSON and decodes the envelope's data into out. fallback is
// the error message used when the server gives none.
func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	_, err := c.send(ctx, method, path, in, out, fallback)
	return err
}

// send is do that also returns the envelope's pagination block, if any.
func (c *Client) send(ctx context.Context, method, path string, in, out any, fallback string) (*pagination.Info, error) {
	ctx, span := tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, perrors.New(perrors.ErrCodeNetworkFailure, fallback, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")

	if in != nil {
		body, err := sonic.Marshal(in)
		if err != nil {
			return nil, perrors.NewErrInvalidRequest(fallback, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	carrier := propagation.HeaderCarrier(http.Header{})
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, k := range carrier.Keys() {
		req.Header.Set(k, carrier.Get(k))
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, fallback, slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return nil, perrors.New(perrors.ErrCodeNetworkFailure, fallback, err)
	}

	status := resp.StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", status))

	var env envelope
	body := resp.Body()
	if len(body) > 0 {
		if err := sonic.Unmarshal(body, &env); err != nil && status < 300 {
			return nil, perrors.NewErrInternalServerError(fallback, err)
		}
	}

	if status < 200 || status >= 300 {
		apiErr := perrors.FromStatus(status, env.Message, fallback, token != "")
		span.SetStatus(codes.Error, apiErr.Error())
		if perrors.Is(apiErr, perrors.ErrCodeAuthenticationExpired) && c.onAuthExpired != nil {
			c.onAuthExpired()
		}
		return nil, apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return env.Pagination, nil
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return nil, perrors.NewErrInternalServerError(fallback, err)
	}
	return env.Pagination, nil
}

// listAll reads every page of the listing at path at the largest page size.
func listAll[T any](ctx context.Context, c *Client, path, search, fallback string) ([]T, error) {
	out := []T{}
	for number := 1; ; number++ {
		var page []T
		info, err := c.send(ctx, fasthttp.MethodGet, listPath(path, search, pagination.Page{Number: number, Limit: pagination.MaxLimit}), nil, &page, fallback)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if info.Last() || len(page) == 0 {
			return out, nil
		}
	}
}

// listPage reads a single page of the listing at path.
func listPage[T any](ctx context.Context, c *Client, path, search string, page pagination.Page, fallback string) ([]T, *pagination.Info, error) {
	var out []T
	info, err := c.send(ctx, fasthttp.MethodGet, listPath(path, search, page), nil, &out, fallback)
	if err != nil {
		return nil, nil, err
	}
	return out, info, nil
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return perrors.Is(err, perrors.ErrCodeNotFound)
}

// ServerMessage returns the text the API gave for err, or err's own text.
func ServerMessage(err error) string {
	var perr perrors.Err
	if errors.As(err, &perr) {
		return perr.Error()
	}
	return err.Error()
}
