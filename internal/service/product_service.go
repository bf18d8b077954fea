package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"product-api/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ProductStore is the persistence contract the service depends on.
// *repository.ProductRepository implements it.
type ProductStore interface {
	List(ctx context.Context, filter model.ProductFilter, skip, limit int64) ([]model.Product, int64, error)
	SearchByName(ctx context.Context, name string) ([]model.Product, error)
	StatsByCategory(ctx context.Context) ([]model.CategoryCount, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	Insert(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, id primitive.ObjectID, product *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
}

// ListQuery carries the raw list parameters as received from the caller.
type ListQuery struct {
	Category string
	Page     string
	Limit    string
}

type ProductService struct {
	repo ProductStore
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(repo ProductStore) *ProductService {
	return &ProductService{repo: repo}
}

// List resolves pagination defaults and returns one page plus the total
// number of matches. A page beyond the end is empty, not an error.
func (s *ProductService) List(ctx context.Context, q ListQuery) (*model.ProductPage, error) {
	page := ParsePositiveInt(q.Page, DefaultPage)
	limit := ParsePositiveInt(q.Limit, DefaultLimit)

	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.category", q.Category),
		attribute.Int("page", page),
		attribute.Int("limit", limit),
	)

	skip := pageOffset(page, limit)
	products, total, err := s.repo.List(ctx, model.ProductFilter{Category: q.Category}, skip, int64(limit))
	if err != nil {
		return nil, err
	}

	return &model.ProductPage{Total: total, Page: page, Products: products}, nil
}

func (s *ProductService) Search(ctx context.Context, name string) ([]model.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.ErrMissingSearchTerm
	}
	return s.repo.SearchByName(ctx, name)
}

func (s *ProductService) Stats(ctx context.Context) ([]model.CategoryCount, error) {
	return s.repo.StatsByCategory(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, objID)
}

func (s *ProductService) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, p *model.Product) (*model.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, objID, p)
}

func (s *ProductService) Delete(ctx context.Context, id string) (*model.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Delete(ctx, objID)
}

// pageOffset is (page-1)*limit, saturating at math.MaxInt64 so a huge page
// number reads past the end instead of wrapping negative.
func pageOffset(page, limit int) int64 {
	p, l := int64(page-1), int64(limit)
	if p > math.MaxInt64/l {
		return math.MaxInt64
	}
	return p * l
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}
	return objID, nil
}
