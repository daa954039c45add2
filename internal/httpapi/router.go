// Package httpapi serves the Lambda handler over plain net/http for local runs.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// ProxyHandler is satisfied by handler.Handler.
type ProxyHandler interface {
	Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

type routerConfig struct {
	metrics http.Handler
}

type RouterOption func(*routerConfig)

// WithMetricsHandler exposes h at /metrics.
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(c *routerConfig) {
		c.metrics = h
	}
}

func NewRouter(h ProxyHandler, opts ...RouterOption) (http.Handler, error) {
	if h == nil {
		return nil, errors.New("httpapi: handler must not be nil")
	}
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.metrics != nil {
		r.Handle("/metrics", cfg.metrics)
	}

	proxy := proxyTo(h)
	r.Handle("/api/*", proxy)
	r.NotFound(proxy)
	return r, nil
}

// proxyTo converts the request into an API Gateway proxy event so local and
// Lambda traffic share one code path.
func proxyTo(h ProxyHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, `{"error":"INVALID_INPUT","message":"request body too large"}`, http.StatusRequestEntityTooLarge)
			return
		}
		event := toEvent(r, string(body))

		resp, err := h.Handle(r.Context(), event)
		if err != nil {
			slog.Error("handler returned error", "err", err, "path", r.URL.Path)
			http.Error(w, `{"error":"INTERNAL_ERROR","message":"internal error"}`, http.StatusInternalServerError)
			return
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		for k, vs := range resp.MultiValueHeaders {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		io.WriteString(w, resp.Body)
	}
}

func toEvent(r *http.Request, body string) events.APIGatewayProxyRequest {
	headers := make(map[string]string, len(r.Header))
	multi := make(map[string][]string, len(r.Header))
	for k, vs := range r.Header {
		if len(vs) == 0 {
			continue
		}
		headers[k] = strings.Join(vs, ", ")
		multi[k] = vs
	}
	if r.Header.Get("X-Correlation-Id") == "" {
		if id := middleware.GetReqID(r.Context()); id != "" {
			headers["X-Correlation-Id"] = id
		}
	}
	query := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		MultiValueHeaders:     multi,
		QueryStringParameters: query,
		Body:                  body,
	}
}
