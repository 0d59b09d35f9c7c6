package static

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/metrics"
	"github.com/indigo-web/lantern/stream"
)

type handler struct {
	resolver *Resolver
	logger   hclog.Logger
	metrics  *metrics.Registry
}

type Option func(*handler)

func WithLogger(logger hclog.Logger) Option {
	return func(h *handler) {
		h.logger = logger
	}
}

func WithMetrics(registry *metrics.Registry) Option {
	return func(h *handler) {
		h.metrics = registry
	}
}

// Handler serves files from the resolver's root. Missing and forbidden paths are both
// answered with 400 Bad Request, the difference is visible in logs only.
func Handler(resolver *Resolver, opts ...Option) func(*http.Request, *http.Response) {
	h := &handler{
		resolver: resolver,
		logger:   hclog.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h.serve
}

func (h *handler) serve(request *http.Request, response *http.Response) {
	result := h.resolver.Resolve(request.Path)
	if result.Status != Found {
		h.logger.Debug("cannot serve path",
			"id", request.ID,
			"path", request.Path,
			"status", result.Status.String(),
		)
		h.reject(request, response)
		return
	}

	file, err := os.Open(result.Path)
	if err != nil {
		h.logger.Debug("cannot open file", "id", request.ID, "path", result.Path, "error", err)
		h.reject(request, response)
		return
	}

	stream.Begin(response, stream.NewSession(file, result.Length), h.logger, h.metrics)
}

func (h *handler) reject(request *http.Request, response *http.Response) {
	response.String(status.BadRequest, "Could not open path "+request.Path)
}
