package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"product-api/internal/logger"
	"product-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
)

type ProductRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

// byID keeps list and search output deterministic: ObjectIDs grow with
// insertion time.
var byID = bson.D{{Key: "_id", Value: 1}}

func NewProductRepository(db *mongo.Database, collection string) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection(collection),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// timestamp is truncated to what BSON datetimes can hold so the value handed
// back to callers equals the stored one.
func (r *ProductRepository) timestamp() time.Time {
	return r.now().Truncate(time.Millisecond)
}

func (r *ProductRepository) List(ctx context.Context, filter model.ProductFilter, skip, limit int64) ([]model.Product, int64, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.List")
	defer span.End()
	logger.Info(ctx, "Repository")

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().SetSort(byID).SetSkip(skip).SetLimit(limit)
	products, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// SearchByName matches name case-insensitively as a literal substring.
func (r *ProductRepository) SearchByName(ctx context.Context, name string) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.SearchByName")
	defer span.End()
	logger.Info(ctx, "Repository")

	query := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}}
	return r.find(ctx, query, options.Find().SetSort(byID))
}

func (r *ProductRepository) StatsByCategory(ctx context.Context) ([]model.CategoryCount, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.StatsByCategory")
	defer span.End()
	logger.Info(ctx, "Repository")

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: byID}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	stats := make([]model.CategoryCount, 0)
	for cursor.Next(ctx) {
		var c model.CategoryCount
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode category count: %w", err)
		}
		stats = append(stats, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return stats, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var product model.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		return nil, notFound("find product", err)
	}
	return &product, nil
}

// Insert assigns the id and both timestamps, then stores the product.
func (r *ProductRepository) Insert(ctx context.Context, product *model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()
	logger.Info(ctx, "Repository")

	now := r.timestamp()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update overwrites every schema field and any extra fields of the payload,
// refreshes updatedAt and returns the stored document after the change.
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, product *model.Product) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Update")
	defer span.End()
	logger.Info(ctx, "Repository")

	set := bson.M{}
	for k, v := range product.Extra {
		set[k] = v
	}
	set["name"] = product.Name
	set["description"] = product.Description
	set["price"] = product.Price
	set["category"] = product.Category
	set["inStock"] = product.InStock
	set["updatedAt"] = r.timestamp()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, notFound("update product", err)
	}
	return &updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()
	logger.Info(ctx, "Repository")

	var deleted model.Product
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return nil, notFound("delete product", err)
	}
	return &deleted, nil
}

func (r *ProductRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]model.Product, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]model.Product, 0)
	for cursor.Next(ctx) {
		var product model.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
