package embedded_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"
	"qr_menu/internal/store/embedded"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openStore(t *testing.T) *embedded.Store {
	t.Helper()
	s, err := embedded.Open(filepath.Join(t.TempDir(), "orders.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEmbedded_InsertAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, menu := range []string{"A", "B", "C"} {
		_, err := s.Insert(ctx, model.OrderDraft{QRID: "t1", MenuID: menu, TableID: "t1", Price: 500, Timestamp: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, model.OrderDraft{QRID: "t2", MenuID: "Z", Timestamp: base})
	require.NoError(t, err)

	got, err := s.List(ctx, model.Filter{QRID: "t1", UnpaidOnly: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].MenuID)
	assert.Equal(t, "B", got[1].MenuID)
	assert.Equal(t, model.Capabilities{}, got[0].Schema)
	assert.True(t, got[0].Timestamp.Equal(base.Add(2*time.Minute)))
}

func TestEmbedded_LegacySchemaDropsOptionalFields(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	rec, err := s.Insert(ctx, model.OrderDraft{QRID: "t1", MenuID: "ブレンドコーヒー", TableID: "t1", Price: 350})
	require.NoError(t, err)
	assert.Positive(t, rec.ID)

	o := rec.Normalize(func(string) (int64, bool) { return 350, true })
	assert.Equal(t, "t1", o.TableID)
	assert.Equal(t, int64(350), o.Price)
	assert.False(t, o.Paid)
}

func TestEmbedded_WritesNeedingNewColumnsFail(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	rec, err := s.Insert(ctx, model.OrderDraft{QRID: "t1", MenuID: "A"})
	require.NoError(t, err)

	_, err = s.MarkPaid(ctx, "t1", time.Now())
	assert.True(t, apperr.Is(err, apperr.KindMigrationRequired))

	_, err = s.SetServed(ctx, rec.ID, true, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindMigrationRequired))

	_, err = s.SetServed(ctx, rec.ID+100, true, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestEmbedded_DeleteByQRAndCount(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	for _, qr := range []string{"t1", "t1", "t2"} {
		_, err := s.Insert(ctx, model.OrderDraft{QRID: qr, MenuID: "A"})
		require.NoError(t, err)
	}

	n, err := s.DeleteByQR(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
