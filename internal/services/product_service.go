// Package services – ProductService
//
// ProductService owns the catalogue use cases: listing through the query
// pipeline, lookups, validated create/replace, delete, and per-category
// statistics. Store misses come back as 404 app errors; other store
// failures are wrapped and surface as 500s.
//
// Observability: every public method opens an OpenTelemetry span on the
// "services/ProductService" tracer.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-products-api/internal/domain"
	"github.com/tbourn/go-products-api/internal/search"
)

// ProductRepo is the store contract required by ProductService.
type ProductRepo interface {
	// Create stores a new product under a freshly generated id.
	Create(ctx context.Context, f domain.ProductFields) (*domain.Product, error)

	// Get returns the product with id, or repo.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Product, error)

	// List returns a snapshot of all products in insertion order.
	List(ctx context.Context) ([]domain.Product, error)

	// Replace overwrites every field except the id, or returns repo.ErrNotFound.
	Replace(ctx context.Context, id string, f domain.ProductFields) (*domain.Product, error)

	// Remove deletes the product with id, or returns repo.ErrNotFound.
	Remove(ctx context.Context, id string) error
}

// ProductService implements the product use cases on top of a ProductRepo.
type ProductService struct {
	Repo ProductRepo
}

// NewProductService constructs a ProductService.
func NewProductService(r ProductRepo) *ProductService {
	return &ProductService{Repo: r}
}

var tracer = otel.Tracer("services/ProductService")

// List runs q through the query pipeline over a snapshot of the catalogue.
// An unknown sort key yields a 400 app error.
func (s *ProductService) List(ctx context.Context, q search.Query) (search.Page, error) {
	ctx, span := tracer.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("query.category", q.Category),
			attribute.String("query.search", q.Search),
			attribute.String("query.sort", q.Sort),
			attribute.Int("query.page", q.Page),
			attribute.Int("query.limit", q.Limit),
		),
	)
	defer span.End()

	items, err := s.Repo.List(ctx)
	if err != nil {
		return search.Page{}, fail(span, storeErr(err, "list products"))
	}
	page, err := search.Run(items, q)
	if err != nil {
		return search.Page{}, fail(span, err)
	}
	span.SetAttributes(attribute.Int("result.total", page.Total))
	return page, nil
}

// Get returns one product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Get", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fail(span, storeErr(err, "get product"))
	}
	return p, nil
}

// Create validates in and stores it as a new product.
func (s *ProductService) Create(ctx context.Context, in ProductPayload) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	f, err := ValidateProduct(in)
	if err != nil {
		return nil, fail(span, err)
	}
	p, err := s.Repo.Create(ctx, f)
	if err != nil {
		return nil, fail(span, storeErr(err, "create product"))
	}
	span.SetAttributes(attribute.String("product.id", p.ID))
	productMutations.WithLabelValues("create").Inc()
	return p, nil
}

// Replace validates in and overwrites the product with id. Validation runs
// first, so an invalid body is reported even for an unknown id.
func (s *ProductService) Replace(ctx context.Context, id string, in ProductPayload) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Replace", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	f, err := ValidateProduct(in)
	if err != nil {
		return nil, fail(span, err)
	}
	p, err := s.Repo.Replace(ctx, id, f)
	if err != nil {
		return nil, fail(span, storeErr(err, "replace product"))
	}
	productMutations.WithLabelValues("replace").Inc()
	return p, nil
}

// Delete removes the product with id.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Delete", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	if err := s.Repo.Remove(ctx, id); err != nil {
		return fail(span, storeErr(err, "delete product"))
	}
	productMutations.WithLabelValues("delete").Inc()
	return nil
}

// CategoryCounts returns the number of products per category.
func (s *ProductService) CategoryCounts(ctx context.Context) (map[string]int, error) {
	ctx, span := tracer.Start(ctx, "CategoryCounts")
	defer span.End()

	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fail(span, storeErr(err, "list products"))
	}
	return search.CategoryCounts(items), nil
}

// fail records err on span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
