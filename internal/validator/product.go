// Package validator checks product write payloads before they reach the store.
package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"product-api/internal/model"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
)

// productPayload pins each schema field to a JSON type. Pointers tell an
// absent or null field apart from a zero value, and decoding rejects a
// field of the wrong JSON type (e.g. "price": "12").
type productPayload struct {
	Name        *string  `json:"name" validate:"required,min=1"`
	Description *string  `json:"description" validate:"required,min=1"`
	Price       *float64 `json:"price" validate:"required"`
	Category    *string  `json:"category" validate:"required,min=1"`
	InStock     *bool    `json:"inStock" validate:"required"`
}

// Schema keys are matched exactly. encoding/json would also accept "NAME"
// or "Price" for these fields, so they are picked out of the raw object by
// their exact name before decoding.
var schemaKeys = []string{"name", "description", "price", "category", "inStock"}

// Keys the store owns or that the payload struct already covers, lower-cased.
// Extra keys are compared case-insensitively so "NAME" cannot sit next to
// "name" in the stored document.
var reservedKeys = map[string]bool{
	"id":          true,
	"_id":         true,
	"createdat":   true,
	"updatedat":   true,
	"name":        true,
	"description": true,
	"price":       true,
	"category":    true,
	"instock":     true,
}

type ProductValidator struct {
	validate *validator.Validate
}

func New() *ProductValidator {
	return &ProductValidator{validate: validator.New()}
}

// Product validates body and returns the product it describes. Unknown
// fields are kept in Extra. Every failure wraps model.ErrInvalidProduct.
func (v *ProductValidator) Product(body []byte) (*model.Product, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidProduct, err)
	}

	schema := make(map[string]any, len(schemaKeys))
	for _, k := range schemaKeys {
		if val, ok := raw[k]; ok {
			schema[k] = val
		}
	}
	exact, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidProduct, err)
	}

	var payload productPayload
	if err := json.Unmarshal(exact, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidProduct, err)
	}
	if err := v.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidProduct, err)
	}

	return &model.Product{
		Name:        *payload.Name,
		Description: *payload.Description,
		Price:       *payload.Price,
		Category:    *payload.Category,
		InStock:     *payload.InStock,
		Extra:       extraFields(raw),
	}, nil
}

func extraFields(raw map[string]any) bson.M {
	var extra bson.M
	for k, val := range raw {
		if reservedKeys[strings.ToLower(k)] || k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			continue
		}
		if extra == nil {
			extra = bson.M{}
		}
		extra[k] = val
	}
	return extra
}
