package model

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Category    string             `json:"category" bson:"category"`
	InStock     bool               `json:"inStock" bson:"inStock"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Extra holds payload fields outside the product schema. They are stored
	// as top-level document fields and echoed back in JSON.
	Extra bson.M `json:"-" bson:",inline"`
}

// MarshalJSON flattens Extra next to the schema fields. Schema fields win on
// key collision.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	known, err := json.Marshal(product(p))
	if err != nil || len(p.Extra) == 0 {
		return known, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(fields)+len(p.Extra))
	for k, v := range p.Extra {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

var schemaKeys = []string{"id", "name", "description", "price", "category", "inStock", "createdAt", "updatedAt"}

// UnmarshalJSON is the inverse of MarshalJSON: keys outside the schema land
// in Extra.
func (p *Product) UnmarshalJSON(b []byte) error {
	type product Product
	var known product
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range schemaKeys {
		delete(all, k)
	}

	*p = Product(known)
	if len(all) > 0 {
		p.Extra = bson.M(all)
	}
	return nil
}

// ProductPage is the paginated list response.
type ProductPage struct {
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Products []Product `json:"products"`
}

type CategoryCount struct {
	Category string `json:"category" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// ProductFilter narrows a list query. Empty fields match everything.
type ProductFilter struct {
	Category string
}
