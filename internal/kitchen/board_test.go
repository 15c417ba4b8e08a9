package kitchen_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"qr_menu/internal/kitchen"
	"qr_menu/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

func placed(id string, orderID int64, table, menu string, at time.Time) model.OrderEvent {
	return model.OrderEvent{EventID: id, Type: model.EventOrderPlaced, OrderID: orderID, TableID: table, MenuID: menu, OccurredAt: at}
}

func TestBoard_TracksTicketsUntilServedOrCheckedOut(t *testing.T) {
	ctx := context.Background()
	b := kitchen.NewBoard(nil)

	require.NoError(t, b.Handle(ctx, placed("e1", 1, "t1", "カフェラテ", t0.Add(time.Minute))))
	require.NoError(t, b.Handle(ctx, placed("e2", 2, "t1", "ブレンドコーヒー", t0)))
	require.NoError(t, b.Handle(ctx, placed("e3", 3, "t2", "Earl Grey", t0)))

	pending := b.Pending()
	require.Len(t, pending["t1"], 2)
	assert.Equal(t, int64(2), pending["t1"][0].OrderID)

	require.NoError(t, b.Handle(ctx, model.OrderEvent{EventID: "e4", Type: model.EventOrderServed, OrderID: 2, TableID: "t1", Served: true, OccurredAt: t0}))
	assert.Len(t, b.Pending()["t1"], 1)

	require.NoError(t, b.Handle(ctx, model.OrderEvent{EventID: "e5", Type: model.EventTableCheckedOut, TableID: "t2", Affected: 1, OccurredAt: t0}))
	_, ok := b.Pending()["t2"]
	assert.False(t, ok)
}

func TestBoard_IgnoresRedelivery(t *testing.T) {
	ctx := context.Background()
	b := kitchen.NewBoard(nil)
	ev := placed("e1", 1, "t1", "カフェラテ", t0)

	require.NoError(t, b.Handle(ctx, ev))
	require.NoError(t, b.Handle(ctx, ev))
	assert.Len(t, b.Pending()["t1"], 1)
}

func TestBoard_CheckoutForgetsEventIDs(t *testing.T) {
	ctx := context.Background()
	b := kitchen.NewBoard(nil)

	for round := 0; round < 100; round++ {
		id := fmt.Sprintf("r%d", round)
		require.NoError(t, b.Handle(ctx, placed(id+"-a", int64(2*round), "t1", "Latte", t0)))
		require.NoError(t, b.Handle(ctx, placed(id+"-b", int64(2*round+1), "t1", "Mocha", t0)))
		require.NoError(t, b.Handle(ctx, model.OrderEvent{EventID: id + "-c", Type: model.EventTableCheckedOut, TableID: "t1", Affected: 2, OccurredAt: t0}))
	}
	assert.Zero(t, b.SeenCount())

	require.NoError(t, b.Handle(ctx, placed("open", 999, "t2", "Latte", t0)))
	assert.Equal(t, 1, b.SeenCount())
}
