package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"product-api/internal/logger"
	"product-api/internal/model"
	"product-api/internal/service"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
)

// ProductService is what the handler needs from the service layer.
type ProductService interface {
	List(ctx context.Context, q service.ListQuery) (*model.ProductPage, error)
	Search(ctx context.Context, name string) ([]model.Product, error)
	Stats(ctx context.Context) ([]model.CategoryCount, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	Update(ctx context.Context, id string, p *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id string) (*model.Product, error)
}

// PayloadValidator turns a raw write body into a product or an error
// wrapping model.ErrInvalidProduct.
type PayloadValidator interface {
	Product(body []byte) (*model.Product, error)
}

type ProductHandler struct {
	service   ProductService
	validator PayloadValidator
}

var HttpProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(service ProductService, validator PayloadValidator) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validator: validator,
	}
}

func (h *ProductHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Hello World")
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.List")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler.List")

	q := r.URL.Query()
	page, err := h.service.List(ctx, service.ListQuery{
		Category: q.Get("category"),
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Search")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler.Search")

	name := r.URL.Query().Get("name")
	if name == "" {
		writeMessage(w, http.StatusBadRequest, msgMissingSearchTerm)
		return
	}

	products, err := h.service.Search(ctx, name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Stats")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler.Stats")

	stats, err := h.service.Stats(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.GetByID")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler.GetByID")

	product, err := h.service.GetByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Create")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler.Create")

	product, err := h.readProduct(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	created, err := h.service.Create(ctx, product)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Update")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler.Update")

	product, err := h.readProduct(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.service.Update(ctx, mux.Vars(r)["id"], product)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Delete")
	defer span.End()
	logger.Info(ctx, "HttpProductHandler.Delete")

	deleted, err := h.service.Delete(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// readProduct runs the write-path validator over the request body.
func (h *ProductHandler) readProduct(w http.ResponseWriter, r *http.Request) (*model.Product, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, logger.MaxBodyLogged))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidProduct, err)
	}
	return h.validator.Product(body)
}
