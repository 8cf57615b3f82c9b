// Product HTTP handlers.
//
// This file exposes the catalogue endpoints:
//   - GET    /                                 (greeting)
//   - GET    /products                         (filter, search, sort, paginate)
//   - GET    /products/stats/category-count    (per-category totals)
//   - GET    /products/{id}
//   - POST   /products
//   - PUT    /products/{id}                    (full replace)
//   - DELETE /products/{id}
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-products-api/internal/domain"
	"github.com/tbourn/go-products-api/internal/search"
	"github.com/tbourn/go-products-api/internal/services"
	"github.com/tbourn/go-products-api/internal/utils"
)

// Greeting is the plain-text body of GET /.
const Greeting = "Hello — Products API running"

// ProductService defines the catalogue operations consumed by the handlers.
//
// Implementations must be safe for concurrent use and return *apperr.Error
// values for failures that map to a specific status.
type ProductService interface {
	List(ctx context.Context, q search.Query) (search.Page, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in services.ProductPayload) (*domain.Product, error)
	Replace(ctx context.Context, id string, in services.ProductPayload) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	CategoryCounts(ctx context.Context) (map[string]int, error)
}

// Handlers groups the product endpoints.
type Handlers struct {
	svc ProductService
}

// New constructs Handlers bound to svc.
func New(svc ProductService) *Handlers {
	return &Handlers{svc: svc}
}

// listQuery reads the list parameters. Non-numeric page and limit values
// fall back to their defaults; range clamping happens in the pipeline.
func listQuery(c *gin.Context) search.Query {
	return search.Query{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     utils.IntPrefix(c.Query("page"), search.DefaultPage),
		Limit:    utils.IntPrefix(c.Query("limit"), search.DefaultLimit),
	}
}

// Root godoc
// @ID          root
// @Summary     Greeting
// @Tags        Meta
// @Produce     plain
// @Security    ApiKeyAuth
// @Success     200  {string}  string  "Hello — Products API running"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid API key"
// @Router      / [get]
func (h *Handlers) Root(c *gin.Context) {
	c.String(http.StatusOK, Greeting)
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List products
// @Description Filters by category (case-insensitive exact match) and name substring, sorts, then paginates.
// @Tags        Products
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       category  query  string  false  "Category, case-insensitive"  example(kitchen)
// @Param       search    query  string  false  "Substring of name, case-insensitive"
// @Param       sort      query  string  false  "Sort key, '-' prefix for descending"  Enums(id, name, description, price, category, inStock, -id, -name, -description, -price, -category, -inStock)
// @Param       page      query  int     false  "Page number"     minimum(1) default(1)
// @Param       limit     query  int     false  "Items per page"  minimum(1) default(5)
//
// @Success     200  {object}  search.Page
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid sort key"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid API key"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), listQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

// CategoryCount godoc
// @ID          categoryCount
// @Summary     Count products per category
// @Description Products without a category are counted under "Uncategorized".
// @Tags        Products
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200  {object}  map[string]int
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid API key"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/stats/category-count [get]
func (h *Handlers) CategoryCount(c *gin.Context) {
	counts, err := h.svc.CategoryCounts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, counts)
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get a product
// @Tags        Products
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id   path      string  true  "Product ID"
// @Success     200  {object}  domain.Product
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid API key"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Description price accepts a number or numeric string; inStock is optional and defaults to false.
// @Tags        Products
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       body  body      services.ProductPayload  true  "Product"
// @Success     201   {object}  domain.Product
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401   {object}  handlers.ErrorResponse  "Missing or invalid API key"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	var in services.ProductPayload
	if err := decodeJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// ReplaceProduct godoc
// @ID          replaceProduct
// @Summary     Replace a product
// @Description Overwrites every field except the id. An omitted inStock resets it to false.
// @Tags        Products
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id    path      string                   true  "Product ID"
// @Param       body  body      services.ProductPayload  true  "Product"
// @Success     200   {object}  domain.Product
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401   {object}  handlers.ErrorResponse  "Missing or invalid API key"
// @Failure     404   {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [put]
func (h *Handlers) ReplaceProduct(c *gin.Context) {
	var in services.ProductPayload
	if err := decodeJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Replace(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete a product
// @Tags        Products
// @Security    ApiKeyAuth
// @Param       id   path  string  true  "Product ID"
// @Success     204  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid API key"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
