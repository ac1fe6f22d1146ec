package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsByPickID(t *testing.T) {
	order := ConsolidatableOrder{Items: []ConsolidatableOrderItem{
		{ItemID: "101", Placed: true},
		{ItemID: "102"},
		{ItemID: "not-a-pick"},
	}}

	byPickID, skipped := order.ItemsByPickID()

	require.Len(t, byPickID, 2)
	require.NotNil(t, byPickID[101])
	assert.True(t, byPickID[101].Placed)
	assert.False(t, byPickID[102].Placed)
	assert.Equal(t, []string{"not-a-pick"}, skipped)

	// The index points into the order's own slots.
	byPickID[102].Placed = true
	assert.True(t, order.Items[1].Placed)
}

func TestItemsByPickIDEmptyOrder(t *testing.T) {
	order := ConsolidatableOrder{}
	byPickID, skipped := order.ItemsByPickID()
	assert.Empty(t, byPickID)
	assert.Empty(t, skipped)
}
