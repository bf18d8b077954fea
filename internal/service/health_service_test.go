package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context, _ *readpref.ReadPref) error { return f(ctx) }

func TestHealthService_Check(t *testing.T) {
	up := NewHealthService(pingFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "ping must be bounded")
		return nil
	}))
	status := up.Check(context.Background())
	assert.Equal(t, StatusUp, status.Mongo)
	assert.True(t, status.Healthy())

	down := NewHealthService(pingFunc(func(context.Context) error { return errors.New("no reachable servers") }))
	status = down.Check(context.Background())
	assert.Equal(t, StatusDown, status.Mongo)
	assert.False(t, status.Healthy())
}
