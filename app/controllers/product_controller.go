package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/pkg/bind"
	"github.com/shashiranjanraj/catalog/pkg/ctx"
)

// ProductService is the part of services.ProductService the controller
// calls.
type ProductService interface {
	Create(ctx context.Context, in services.ProductInput) (uint, error)
	RetrieveOne(ctx context.Context, id, fields string) (map[string]any, error)
	RetrieveMany(ctx context.Context, p services.ListParams) (services.ProductList, error)
	Update(ctx context.Context, id string, in services.ProductInput) (bool, error)
	Delete(ctx context.Context, id string) error
}

type ProductController struct {
	service ProductService
}

func NewProductController(service ProductService) *ProductController {
	return &ProductController{service: service}
}

// Store handles POST /products. Responds 201 with the new identifier as
// plain text.
func (pc *ProductController) Store(c *ctx.Context) {
	f, err := c.Bind()
	if err != nil {
		pc.fail(c, "create", &services.ValidationError{Reason: err.Error()})
		return
	}

	id, err := pc.service.Create(c.Context(), productInput(f))
	if err != nil {
		pc.fail(c, "create", err)
		return
	}
	c.String(http.StatusCreated, "%d", id)
}

// Show handles GET /products/{id}.
func (pc *ProductController) Show(c *ctx.Context) {
	rec, err := pc.service.RetrieveOne(c.Context(), c.Param("id"), c.Query("fields"))
	if err != nil {
		pc.fail(c, "retrieve", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Index handles GET /products.
func (pc *ProductController) Index(c *ctx.Context) {
	list, err := pc.service.RetrieveMany(c.Context(), services.ListParams{
		Start:   c.Query("start"),
		Num:     c.Query("num"),
		SKU:     c.Query("sku"),
		Barcode: c.Query("barcode"),
		Fields:  c.Query("fields"),
	})
	if err != nil {
		pc.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Update handles PUT /products/{id}. Responds with plain text true when the
// product row was modified.
func (pc *ProductController) Update(c *ctx.Context) {
	f, err := c.Bind()
	if err != nil {
		pc.fail(c, "update", &services.ValidationError{Reason: err.Error()})
		return
	}

	ok, err := pc.service.Update(c.Context(), c.Param("id"), productInput(f))
	if err != nil {
		pc.fail(c, "update", err)
		return
	}
	c.String(http.StatusOK, "%t", ok)
}

// Destroy handles DELETE /products/{id}.
func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.service.Delete(c.Context(), c.Param("id")); err != nil {
		pc.fail(c, "delete", err)
		return
	}
	c.String(http.StatusOK, "true")
}

// fail maps service errors onto status codes. Store failures are logged
// with their cause and reported to the client without it.
func (pc *ProductController) fail(c *ctx.Context, op string, err error) {
	var (
		verr *services.ValidationError
		cerr *services.ConflictError
		nerr *services.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		c.Logger().Warn("product request rejected", "op", op, "reason", verr.Reason)
		c.Error(http.StatusBadRequest, verr.Message())
	case errors.As(err, &cerr):
		c.Error(http.StatusBadRequest, cerr.Message())
	case errors.As(err, &nerr):
		c.Error(http.StatusNotFound, nerr.Message())
	default:
		c.Logger().Error("product request failed", "op", op, "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
	}
}

func productInput(f bind.Fields) services.ProductInput {
	in := services.ProductInput{
		Title:       f.String("title"),
		SKU:         f.String("sku"),
		Description: f.Optional("description"),
		Price:       f.String("price"),
	}
	if codes, present, ok := f.Strings("barcodes"); present {
		in.Barcodes = &services.Barcodes{Codes: codes, Valid: ok}
	}
	return in
}
