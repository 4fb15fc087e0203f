package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddItemMergesSameVariant(t *testing.T) {
	cart := &Cart{}

	cart.AddItem(LineItem{ProductID: "p1", Price: 25, Size: "M", Color: "Red", Quantity: 2})
	cart.AddItem(LineItem{ProductID: "p1", Price: 25, Size: "m", Color: "red", Quantity: 1})

	require.Len(t, cart.Products, 1)
	assert.Equal(t, 3, cart.Products[0].Quantity)
	assert.Equal(t, 75.0, cart.TotalPrice)
}

func TestCart_AddItemKeepsDistinctVariants(t *testing.T) {
	cart := &Cart{}

	cart.AddItem(LineItem{ProductID: "p1", Price: 25, Size: "M", Color: "Red", Quantity: 1})
	cart.AddItem(LineItem{ProductID: "p1", Price: 25, Size: "L", Color: "Red", Quantity: 1})
	cart.AddItem(LineItem{ProductID: "p2", Price: 10, Size: "M", Color: "Red", Quantity: 1})

	assert.Len(t, cart.Products, 3)
	assert.Equal(t, 60.0, cart.TotalPrice)
}

func TestCart_SetQuantity(t *testing.T) {
	cart := &Cart{}
	cart.AddItem(LineItem{ProductID: "p1", Price: 10, Size: "M", Color: "Red", Quantity: 4})
	cart.AddItem(LineItem{ProductID: "p2", Price: 5, Size: "S", Color: "Blue", Quantity: 1})

	assert.True(t, cart.SetQuantity(NewLineItemKey("p1", "M", "Red"), 2))
	assert.Equal(t, 25.0, cart.TotalPrice)

	assert.True(t, cart.SetQuantity(NewLineItemKey("p1", "M", "Red"), 0))
	assert.Len(t, cart.Products, 1)
	assert.Equal(t, 5.0, cart.TotalPrice)

	assert.False(t, cart.SetQuantity(NewLineItemKey("p9", "M", "Red"), 1))
}

func TestCart_RemoveLastItemLeavesEmptyCart(t *testing.T) {
	cart := &Cart{}
	cart.AddItem(LineItem{ProductID: "p1", Price: 10, Size: "M", Color: "Red", Quantity: 1})

	assert.True(t, cart.RemoveItem(NewLineItemKey("p1", "M", "Red")))
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestCart_AbsorbGuestCartAddsOnlyNewerLines(t *testing.T) {
	user := &Cart{}
	user.AddItem(LineItem{ProductID: "p1", Price: 10, Size: "M", Color: "Red", Quantity: 1})

	guest := &Cart{ID: "g1", Version: 1}
	guest.AddItem(LineItem{ProductID: "p1", Price: 10, Size: "M", Color: "Red", Quantity: 2})

	assert.True(t, user.AbsorbGuestCart(guest))
	assert.Equal(t, 3, user.Products[0].Quantity)

	// same version again is a no-op
	assert.False(t, user.AbsorbGuestCart(guest))
	assert.Equal(t, 3, user.Products[0].Quantity)

	// the guest grew after the first absorb: only the difference is added
	guest.AddItem(LineItem{ProductID: "p1", Price: 10, Size: "M", Color: "Red", Quantity: 1})
	guest.AddItem(LineItem{ProductID: "p2", Price: 5, Size: "L", Color: "Blue", Quantity: 4})
	guest.Version = 2

	assert.True(t, user.AbsorbGuestCart(guest))
	require.Len(t, user.Products, 2)
	assert.Equal(t, 4, user.Products[0].Quantity)
	assert.Equal(t, 4, user.Products[1].Quantity)
	assert.Equal(t, 60.0, user.TotalPrice)
	require.Len(t, user.MergedGuestCarts, 1)
	assert.Equal(t, 2, user.MergedGuestCarts[0].Version)
}

func TestCart_ForgetMergedGuestCarts(t *testing.T) {
	cart := &Cart{MergedGuestCarts: []MergedGuestCart{{CartID: "g1"}, {CartID: "g2"}, {CartID: "g3"}}}

	assert.False(t, cart.ForgetMergedGuestCarts(func(string) bool { return false }))
	assert.Len(t, cart.MergedGuestCarts, 3)

	assert.True(t, cart.ForgetMergedGuestCarts(func(id string) bool { return id != "g2" }))
	require.Len(t, cart.MergedGuestCarts, 1)
	assert.Equal(t, "g2", cart.MergedGuestCarts[0].CartID)
}

func TestShippingAddress_Complete(t *testing.T) {
	full := ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
	assert.True(t, full.Complete())

	missing := full
	missing.PostalCode = "   "
	assert.False(t, missing.Complete())
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Valid())
	assert.False(t, OrderStatus("Delivered").Valid())
	assert.False(t, OrderStatus("lost").Valid())
}
