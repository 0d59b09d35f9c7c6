// Package resources provides a set of demonstrational handlers: echoing the body, decoding
// JSON, describing the request, path captures, long-running work and metrics exposition.
package resources

import (
	"bytes"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/metrics"
	"github.com/indigo-web/lantern/router/inbuilt"
)

// DefaultWorkDelay is how long the /work resource pretends to be busy.
const DefaultWorkDelay = 5 * time.Second

type Option func(*resources)

// WithWorkDelay overrides DefaultWorkDelay.
func WithWorkDelay(delay time.Duration) Option {
	return func(r *resources) {
		r.workDelay = delay
	}
}

// WithMetrics exposes the registry at GET /metrics.
func WithMetrics(registry *metrics.Registry) Option {
	return func(r *resources) {
		r.metrics = registry
	}
}

type resources struct {
	workDelay time.Duration
	metrics   *metrics.Registry
}

// Register adds all the resources to the router.
func Register(r *inbuilt.Router, opts ...Option) *inbuilt.Router {
	res := &resources{
		workDelay: DefaultWorkDelay,
	}

	for _, opt := range opts {
		opt(res)
	}

	r.
		Post("/string", String).
		Post("/json", JSON).
		Get("/info", Info).
		Get("/match/([0-9]+)", Match).
		Get("/work", res.work)

	if res.metrics != nil {
		r.Get("/metrics", res.exposition)
	}

	return r
}

// String responds with the request body.
func String(request *http.Request, response *http.Response) {
	body, err := request.Body.Bytes()
	if err != nil {
		response.Error(err)
		return
	}

	response.Bytes(status.OK, body)
}

// Person is the model accepted by the /json resource. Names must be present, but may
// be empty.
type Person struct {
	FirstName *string `json:"firstName" validate:"required"`
	LastName  *string `json:"lastName" validate:"required"`
	Age       int     `json:"age"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// JSON decodes a Person and responds with the full name. Malformed or incomplete documents
// are answered with 400 and the reason in the body.
func JSON(request *http.Request, response *http.Response) {
	var person Person
	if err := request.Body.JSON(&person); err != nil {
		response.String(status.BadRequest, err.Error())
		return
	}

	if err := validate.Struct(person); err != nil {
		response.String(status.BadRequest, describe(err))
		return
	}

	response.String(status.OK, *person.FirstName+" "+*person.LastName)
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}

	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field()
	}

	return "missing required field: " + strings.Join(fields, ", ")
}

// Info responds with an HTML page describing the request.
func Info(request *http.Request, response *http.Response) {
	var page strings.Builder
	page.WriteString("<h1>Request from ")
	page.WriteString(request.RemoteAddress())
	page.WriteString(" (")
	page.WriteString(strconv.Itoa(request.RemotePort()))
	page.WriteString(")</h1>")
	page.WriteString(request.Method.String())
	page.WriteByte(' ')
	page.WriteString(request.Path)
	page.WriteString(" HTTP/")
	page.WriteString(request.Version())
	page.WriteString("<br>")

	for key, value := range request.Headers.Pairs() {
		page.WriteString(key)
		page.WriteString(": ")
		page.WriteString(value)
		page.WriteString("<br>")
	}

	response.String(status.OK, page.String())
}

// Match responds with the number captured from the path.
func Match(request *http.Request, response *http.Response) {
	response.String(status.OK, request.PathMatch[1])
}

// work completes the response from a separate goroutine once the delay elapses, leaving
// the event loop free in the meantime.
func (r *resources) work(_ *http.Request, response *http.Response) {
	time.AfterFunc(r.workDelay, func() {
		response.String(status.OK, "Work done")
	})
}

func (r *resources) exposition(_ *http.Request, response *http.Response) {
	var buff bytes.Buffer
	if err := r.metrics.Render(&buff); err != nil {
		response.Error(status.NewError(status.InternalServerError, err.Error()))
		return
	}

	response.Bytes(status.OK, buff.Bytes())
}
