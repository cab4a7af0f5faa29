package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// API routes.
const (
	routeSearch = "/api/v1/search"
	routeRules  = "/api/v1/rules"
	routeRule   = "/api/v1/rules/{appKey}"
	routeHealth = "/health"
	routeMetric = "/metrics"
)

// AppKey is the tenant path parameter.
type AppKey = string

// HealthCheckParams are the query parameters of GET /health.
type HealthCheckParams struct {
	// Verbose includes per-component checks in the response.
	Verbose *bool `form:"verbose,omitempty" json:"verbose,omitempty"`
}

// ServerInterface is the set of HTTP operations served by searchd.
type ServerInterface interface {
	// POST /api/v1/search
	Search(w http.ResponseWriter, r *http.Request)
	// GET /api/v1/rules
	ListRules(w http.ResponseWriter, r *http.Request)
	// GET /api/v1/rules/{appKey}
	GetRule(w http.ResponseWriter, r *http.Request, appKey AppKey)
	// PUT /api/v1/rules/{appKey}
	PutRule(w http.ResponseWriter, r *http.Request, appKey AppKey)
	// DELETE /api/v1/rules/{appKey}
	DeleteRule(w http.ResponseWriter, r *http.Request, appKey AppKey)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request, params HealthCheckParams)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// serverInterfaceWrapper binds path and query parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	middlewares      []MiddlewareFunc
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, mw := range siw.middlewares {
		h = mw(h)
	}
	return h
}

func (siw *serverInterfaceWrapper) bindAppKey(w http.ResponseWriter, r *http.Request) (AppKey, bool) {
	var appKey AppKey
	err := runtime.BindStyledParameterWithOptions("simple", "appKey", chi.URLParam(r, "appKey"), &appKey,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "appKey", Err: err})
		return "", false
	}
	return appKey, true
}

// Search operation middleware.
func (siw *serverInterfaceWrapper) Search(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.handler.Search)).ServeHTTP(w, r)
}

// ListRules operation middleware.
func (siw *serverInterfaceWrapper) ListRules(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.handler.ListRules)).ServeHTTP(w, r)
}

// GetRule operation middleware.
func (siw *serverInterfaceWrapper) GetRule(w http.ResponseWriter, r *http.Request) {
	appKey, ok := siw.bindAppKey(w, r)
	if !ok {
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.GetRule(w, r, appKey)
	})).ServeHTTP(w, r)
}

// PutRule operation middleware.
func (siw *serverInterfaceWrapper) PutRule(w http.ResponseWriter, r *http.Request) {
	appKey, ok := siw.bindAppKey(w, r)
	if !ok {
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.PutRule(w, r, appKey)
	})).ServeHTTP(w, r)
}

// DeleteRule operation middleware.
func (siw *serverInterfaceWrapper) DeleteRule(w http.ResponseWriter, r *http.Request) {
	appKey, ok := siw.bindAppKey(w, r)
	if !ok {
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.DeleteRule(w, r, appKey)
	})).ServeHTTP(w, r)
}

// HealthCheck operation middleware.
func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var params HealthCheckParams
	if err := runtime.BindQueryParameter("form", true, false, "verbose", r.URL.Query(), &params.Verbose); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "verbose", Err: err})
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.HealthCheck(w, r, params)
	})).ServeHTTP(w, r)
}

// Metrics operation middleware.
func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.handler.Metrics)).ServeHTTP(w, r)
}

// HandlerWithOptions mounts every operation of si on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := &serverInterfaceWrapper{
		handler:          si,
		middlewares:      options.Middlewares,
		errorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+routeSearch, wrapper.Search)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+routeRules, wrapper.ListRules)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+routeRule, wrapper.GetRule)
	})
	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+routeRule, wrapper.PutRule)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+routeRule, wrapper.DeleteRule)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+routeHealth, wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+routeMetric, wrapper.Metrics)
	})
	return r
}
