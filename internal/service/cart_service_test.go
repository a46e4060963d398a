package service

import (
	"context"
	"net/http"
	"testing"

	"farmerfriend-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartTotals(t *testing.T) {
	f := newFixture()
	svc := NewCartService(f.users, f.products)
	me := f.account(f.users, "Asha", "asha@example.com")
	tomato := f.products.add(&model.Product{Name: "Tomato", Price: 40})
	carrot := f.products.add(&model.Product{Name: "Carrot", Price: 25})
	ctx := context.Background()
	qty := func(n int) *int { return &n }

	empty, err := svc.Get(ctx, me)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.DeliveryCharge)
	assert.Zero(t, empty.Total)

	_, err = svc.Add(ctx, me, tomato.ID.Hex(), nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, me, tomato.ID.Hex(), qty(2))
	require.NoError(t, err)
	v, err := svc.Add(ctx, me, carrot.ID.Hex(), qty(2))
	require.NoError(t, err)

	assert.Equal(t, 5, v.Count)
	assert.Equal(t, 170.0, v.Subtotal)
	assert.Equal(t, DeliveryCharge, v.DeliveryCharge)
	assert.Equal(t, 220.0, v.Total)

	v, err = svc.Update(ctx, me, carrot.ID.Hex(), qty(0))
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 3, v.Items[0].Quantity)
	assert.Equal(t, 120.0, v.Items[0].LineTotal)

	_, err = f.products.Delete(ctx, tomato.ID)
	require.NoError(t, err)
	v, err = svc.Get(ctx, me)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Zero(t, v.Total)

	require.NoError(t, svc.Clear(ctx, me))
	acc, err := f.users.FindByID(ctx, me.ID)
	require.NoError(t, err)
	assert.Empty(t, acc.Cart)
}

func TestCartRejections(t *testing.T) {
	f := newFixture()
	svc := NewCartService(f.users, f.products)
	me := f.account(f.users, "Asha", "asha@example.com")
	p := f.products.add(&model.Product{Name: "Tomato", Price: 40})
	ctx := context.Background()
	qty := func(n int) *int { return &n }

	_, err := svc.Add(ctx, me, model.Product{}.ID.Hex(), nil)
	requireAppErr(t, err, http.StatusNotFound, "Product not found")

	_, err = svc.Update(ctx, me, p.ID.Hex(), qty(-1))
	requireAppErr(t, err, http.StatusBadRequest, "Quantity cannot be negative")

	_, err = svc.Update(ctx, me, p.ID.Hex(), nil)
	requireAppErr(t, err, http.StatusBadRequest, "Product ID and quantity are required")

	unknown := primitive.NewObjectID()
	_, err = svc.Update(ctx, me, unknown.Hex(), qty(2))
	requireAppErr(t, err, http.StatusNotFound, "Product not found")
	acc, err := f.users.FindByID(ctx, me.ID)
	require.NoError(t, err)
	assert.NotContains(t, acc.Cart, unknown.Hex())
}
