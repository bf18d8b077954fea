package repository

import (
	"context"
	"testing"
	"time"

	"product-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 589_793_238, time.UTC)

func productDoc(id primitive.ObjectID, name, category string) bson.D {
	ts := fixedNow.Truncate(time.Millisecond)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "description", Value: name + " description"},
		{Key: "price", Value: 10.5},
		{Key: "category", Value: category},
		{Key: "inStock", Value: true},
		{Key: "createdAt", Value: ts},
		{Key: "updatedAt", Value: ts},
	}
}

func intValue(v bson.RawValue) int64 {
	switch v.Type {
	case bson.TypeInt32:
		return int64(v.Int32())
	case bson.TypeInt64:
		return v.Int64()
	case bson.TypeDouble:
		return int64(v.Double())
	}
	return -1
}

func newRepo(mt *mtest.T) (*ProductRepository, string) {
	repo := NewProductRepository(mt.DB, "products")
	repo.now = func() time.Time { return fixedNow }
	return repo, mt.DB.Name() + ".products"
}

func TestProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list counts before paging", func(mt *mtest.T) {
		repo, ns := newRepo(mt)
		id1, id2 := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int64(5)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				productDoc(id1, "Laptop", "A"),
				productDoc(id2, "Mouse", "A"),
			),
		)

		products, total, err := repo.List(ctx, model.ProductFilter{Category: "A"}, 2, 2)
		require.NoError(mt, err)
		assert.Equal(mt, int64(5), total)
		require.Len(mt, products, 2)
		assert.Equal(mt, id1, products[0].ID)
		assert.Equal(mt, "Mouse", products[1].Name)

		count := mt.GetStartedEvent()
		require.NotNil(mt, count)
		assert.Equal(mt, "aggregate", count.CommandName)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, "find", find.CommandName)
		assert.Equal(mt, "A", find.Command.Lookup("filter", "category").StringValue())
		assert.Equal(mt, int64(2), intValue(find.Command.Lookup("skip")))
		assert.Equal(mt, int64(2), intValue(find.Command.Lookup("limit")))
		assert.Equal(mt, int64(1), intValue(find.Command.Lookup("sort", "_id")))
	})

	mt.Run("list past the end is empty", func(mt *mtest.T) {
		repo, ns := newRepo(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int64(1)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		products, total, err := repo.List(ctx, model.ProductFilter{}, 40, 10)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), total)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)
	})

	mt.Run("list surfaces driver errors", func(mt *mtest.T) {
		repo, _ := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))

		_, _, err := repo.List(ctx, model.ProductFilter{}, 0, 10)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("search escapes the term", func(mt *mtest.T) {
		repo, ns := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			productDoc(primitive.NewObjectID(), "Smartphone", "A"),
		))

		products, err := repo.SearchByName(ctx, "phone.+")
		require.NoError(mt, err)
		require.Len(mt, products, 1)
		assert.Equal(mt, "Smartphone", products[0].Name)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		pattern, opts := ev.Command.Lookup("filter", "name").Regex()
		assert.Equal(mt, `phone\.\+`, pattern)
		assert.Equal(mt, "i", opts)
	})

	mt.Run("stats groups by category", func(mt *mtest.T) {
		repo, ns := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "A"}, {Key: "count", Value: int32(3)}},
			bson.D{{Key: "_id", Value: "B"}, {Key: "count", Value: int32(1)}},
		))

		stats, err := repo.StatsByCategory(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []model.CategoryCount{
			{Category: "A", Count: 3},
			{Category: "B", Count: 1},
		}, stats)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "aggregate", ev.CommandName)
		assert.Equal(mt, "$category", ev.Command.Lookup("pipeline", "0", "$group", "_id").StringValue())
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo, ns := newRepo(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDoc(id, "Laptop", "A")))

		p, err := repo.FindByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, p.ID)
		assert.Equal(mt, "Laptop", p.Name)
		assert.True(mt, p.InStock)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo, ns := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("insert assigns id and timestamps", func(mt *mtest.T) {
		repo, _ := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &model.Product{
			Name: "Laptop", Description: "Fast", Price: 999, Category: "A", InStock: true,
			Extra: bson.M{"color": "silver"},
		}
		require.NoError(mt, repo.Insert(ctx, p))

		assert.False(mt, p.ID.IsZero())
		assert.Equal(mt, fixedNow.Truncate(time.Millisecond), p.CreatedAt)
		assert.Equal(mt, p.CreatedAt, p.UpdatedAt)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		doc := ev.Command.Lookup("documents", "0").Document()
		assert.Equal(mt, "Laptop", doc.Lookup("name").StringValue())
		assert.Equal(mt, "silver", doc.Lookup("color").StringValue())
		assert.Equal(mt, p.ID, doc.Lookup("_id").ObjectID())
	})

	mt.Run("insert surfaces write errors", func(mt *mtest.T) {
		repo, _ := newRepo(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		err := repo.Insert(ctx, &model.Product{Name: "Laptop"})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "insert product")
	})

	mt.Run("update returns the new document", func(mt *mtest.T) {
		repo, _ := newRepo(mt)
		id := primitive.NewObjectID()
		after := productDoc(id, "Laptop Pro", "A")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: after}))

		updated, err := repo.Update(ctx, id, &model.Product{
			Name: "Laptop Pro", Description: "Faster", Price: 1299, Category: "A", InStock: false,
		})
		require.NoError(mt, err)
		assert.Equal(mt, "Laptop Pro", updated.Name)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "findAndModify", ev.CommandName)
		assert.Equal(mt, id, ev.Command.Lookup("query", "_id").ObjectID())
		assert.Equal(mt, "Laptop Pro", ev.Command.Lookup("update", "$set", "name").StringValue())
		assert.False(mt, ev.Command.Lookup("update", "$set", "inStock").Boolean())
		assert.Equal(mt, fixedNow.Truncate(time.Millisecond), ev.Command.Lookup("update", "$set", "updatedAt").Time().UTC())
		assert.True(mt, ev.Command.Lookup("new").Boolean())
	})

	mt.Run("update missing document", func(mt *mtest.T) {
		repo, _ := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Update(ctx, primitive.NewObjectID(), &model.Product{Name: "x"})
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("delete returns the removed document", func(mt *mtest.T) {
		repo, _ := newRepo(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: productDoc(id, "Laptop", "A")}))

		deleted, err := repo.Delete(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, deleted.ID)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.True(mt, ev.Command.Lookup("remove").Boolean())
	})

	mt.Run("delete missing document", func(mt *mtest.T) {
		repo, _ := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Delete(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})
}
