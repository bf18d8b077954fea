package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"product-api/internal/model"
)

const productsPath = "/api/products"

// ProductClient is a typed client for the product API.
type ProductClient struct {
	http *HTTPClient
}

// ListOptions are sent only when set; zero values leave the server defaults.
type ListOptions struct {
	Category string
	Page     int
	Limit    int
}

func NewProductClient(baseURL, apiKey string, timeout time.Duration) *ProductClient {
	c := NewHTTPClient(baseURL, timeout)
	c.SetDefaultHeader("x-api-key", apiKey)
	c.SetDefaultHeader("Accept", "application/json")
	return &ProductClient{http: c}
}

func (c *ProductClient) Hello(ctx context.Context) (string, error) {
	var out string
	err := c.http.Do(ctx, RequestOptions{Method: http.MethodGet, Path: "/"}, &out)
	return out, err
}

func (c *ProductClient) List(ctx context.Context, opts ListOptions) (*model.ProductPage, error) {
	q := url.Values{}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page model.ProductPage
	if err := c.http.Do(ctx, RequestOptions{Method: http.MethodGet, Path: productsPath, Query: q}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *ProductClient) Search(ctx context.Context, name string) ([]model.Product, error) {
	var products []model.Product
	opts := RequestOptions{Method: http.MethodGet, Path: productsPath + "/search", Query: url.Values{"name": {name}}}
	if err := c.http.Do(ctx, opts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *ProductClient) Stats(ctx context.Context) ([]model.CategoryCount, error) {
	var stats []model.CategoryCount
	if err := c.http.Do(ctx, RequestOptions{Method: http.MethodGet, Path: productsPath + "/stats"}, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *ProductClient) Get(ctx context.Context, id string) (*model.Product, error) {
	return c.one(ctx, http.MethodGet, productsPath+"/"+url.PathEscape(id), nil)
}

// Create sends payload as JSON. Any JSON-encodable value works, including
// json.RawMessage.
func (c *ProductClient) Create(ctx context.Context, payload any) (*model.Product, error) {
	return c.one(ctx, http.MethodPost, productsPath, payload)
}

func (c *ProductClient) Update(ctx context.Context, id string, payload any) (*model.Product, error) {
	return c.one(ctx, http.MethodPut, productsPath+"/"+url.PathEscape(id), payload)
}

func (c *ProductClient) Delete(ctx context.Context, id string) (*model.Product, error) {
	return c.one(ctx, http.MethodDelete, productsPath+"/"+url.PathEscape(id), nil)
}

func (c *ProductClient) one(ctx context.Context, method, path string, body any) (*model.Product, error) {
	var p model.Product
	if err := c.http.Do(ctx, RequestOptions{Method: method, Path: path, Body: body}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
