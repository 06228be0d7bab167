// Package kernel assembles the catalog's HTTP handler: the global middleware
// stack, the operational endpoints and the product routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/catalog/app/controllers"
	"github.com/shashiranjanraj/catalog/app/routes"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
	"github.com/shashiranjanraj/catalog/pkg/middleware"
	"github.com/shashiranjanraj/catalog/pkg/reqid"
	"github.com/shashiranjanraj/catalog/pkg/response"
	"github.com/shashiranjanraj/catalog/pkg/router"
)

// Service is what the product and health controllers need.
type Service interface {
	controllers.ProductService
	controllers.Pinger
}

// HTTPKernel owns the router and the rate limiter feeding it.
type HTTPKernel struct {
	Router  *router.Router
	Limiter *middleware.RateLimiter
}

// NewHTTPKernel wires the middleware stack and every route. rateLimit is
// the number of requests a client may make per minute.
func NewHTTPKernel(svc Service, rateLimit int) *HTTPKernel {
	r := router.New()
	limiter := middleware.NewRateLimiter(rateLimit, time.Minute)

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics  for total latency
	//  2. Recovery            so a panic still gets metered and answered
	//  3. Request ID          before anything logs
	//  4. Logger              tags the request logger with the ID
	//  5. CORS
	//  6. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	routes.RegisterHealth(r, controllers.NewHealthController(svc))
	routes.RegisterAPI(r, controllers.NewProductController(svc))

	return &HTTPKernel{Router: r, Limiter: limiter}
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.Router.Handler()
}
