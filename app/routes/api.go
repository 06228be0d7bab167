package routes

import (
	"github.com/shashiranjanraj/catalog/app/controllers"
	"github.com/shashiranjanraj/catalog/pkg/ctx"
	"github.com/shashiranjanraj/catalog/pkg/router"
)

// RegisterAPI mounts the product resource at the root and again under /api.
func RegisterAPI(r *router.Router, products *controllers.ProductController) {
	for _, g := range []*router.Group{r.Group("/", ""), r.Group("/api", "api")} {
		p := g.Group("/products", "products")
		p.Get("/", "index", ctx.Wrap(products.Index))
		p.Post("/", "store", ctx.Wrap(products.Store))
		p.Get("/{id}", "show", ctx.Wrap(products.Show))
		p.Put("/{id}", "update", ctx.Wrap(products.Update))
		p.Delete("/{id}", "destroy", ctx.Wrap(products.Destroy))
	}
}

// RegisterHealth mounts the liveness check.
func RegisterHealth(r *router.Router, health *controllers.HealthController) {
	r.Get("/health", "health", ctx.Wrap(health.Show))
}
