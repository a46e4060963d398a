package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleFarmer, ParseRole("farmer"))
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUser, ParseRole("Farmer"))
	assert.Equal(t, RoleUser, ParseRole(""))
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderApproved, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestItemsTotal(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{Quantity: 2, Price: 40},
		{Quantity: 1, Price: 15.5},
	}}
	assert.InDelta(t, 95.5, o.ItemsTotal(), 1e-9)
	assert.Zero(t, (&Order{}).ItemsTotal())
}

func TestSummaries(t *testing.T) {
	p := &Product{ID: primitive.NewObjectID(), Name: "Tomatoes", Price: 40, Category: "vegetables", Image: []string{"a.jpg"}}
	assert.Nil(t, p.Summary(false).Image)
	assert.Equal(t, []string{"a.jpg"}, p.Summary(true).Image)

	me := primitive.NewObjectID()
	f := &Feedback{Likes: []primitive.ObjectID{me}}
	assert.True(t, f.LikedBy(me))
	assert.False(t, f.LikedBy(primitive.NewObjectID()))
}
