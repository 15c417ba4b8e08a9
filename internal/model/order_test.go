package model_test

import (
	"math"
	"testing"
	"time"

	"qr_menu/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogLookup(menuID string) (int64, bool) {
	if menuID == "ブレンドコーヒー" {
		return 350, true
	}
	return 0, false
}

func TestNormalize_LegacySchemaBackfills(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := model.Record{ID: 7, QRID: "table1", MenuID: "ブレンドコーヒー", Timestamp: ts}

	o := rec.Normalize(catalogLookup)

	assert.Equal(t, "table1", o.TableID)
	assert.Equal(t, int64(350), o.Price)
	assert.False(t, o.Paid)
	assert.False(t, o.Served)
	assert.Nil(t, o.PaidAt)
	assert.Equal(t, ts, o.Timestamp)
}

func TestNormalize_LegacyUnknownItemIsFree(t *testing.T) {
	o := model.Record{QRID: "t", MenuID: "未知の商品"}.Normalize(catalogLookup)
	assert.Equal(t, int64(0), o.Price)
}

func TestNormalize_StoredPriceWinsOverCatalog(t *testing.T) {
	rec := model.Record{QRID: "t", MenuID: "ブレンドコーヒー", Price: 300, Schema: model.Capabilities{Price: true}}
	assert.Equal(t, int64(300), rec.Normalize(catalogLookup).Price)
}

func TestNormalize_CoercesBadStoredPrice(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), -5} {
		rec := model.Record{QRID: "t", MenuID: "ブレンドコーヒー", Price: v, Schema: model.Capabilities{Price: true}}
		assert.Equal(t, int64(0), rec.Normalize(catalogLookup).Price)
	}
}

func TestNormalize_EmptyTableIDFallsBack(t *testing.T) {
	caps := model.FullCapabilities()
	assert.Equal(t, "qr9", model.Record{QRID: "qr9", Schema: caps}.Normalize(nil).TableID)
	assert.Equal(t, model.UnknownTable, model.Record{Schema: caps}.Normalize(nil).TableID)
}

func TestNormalize_FullSchemaKeepsFlags(t *testing.T) {
	at := time.Now().UTC()
	rec := model.Record{
		QRID: "a", TableID: "b", Paid: true, PaidAt: &at, Served: true, ServedAt: &at,
		Schema: model.FullCapabilities(),
	}
	o := rec.Normalize(nil)
	assert.Equal(t, "b", o.TableID)
	assert.True(t, o.Paid)
	assert.True(t, o.Served)
	require.NotNil(t, o.ServedAt)
}

func TestCapabilities_Degraded(t *testing.T) {
	assert.False(t, model.FullCapabilities().Degraded())
	assert.True(t, model.Capabilities{Paid: true}.Degraded())
}

func TestOrderEvent_Validate(t *testing.T) {
	now := time.Now()
	ok := model.OrderEvent{EventID: "e1", Type: model.EventOrderPlaced, OrderID: 1, TableID: "t1", MenuID: "x", OccurredAt: now}
	require.NoError(t, ok.Validate())

	checkout := model.OrderEvent{EventID: "e2", Type: model.EventTableCheckedOut, TableID: "t1", OccurredAt: now}
	require.NoError(t, checkout.Validate())

	bad := ok
	bad.Type = "refund"
	assert.Error(t, bad.Validate())

	missing := ok
	missing.TableID = ""
	assert.Error(t, missing.Validate())
}
