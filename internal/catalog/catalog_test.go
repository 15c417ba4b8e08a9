package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"qr_menu/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCSV = `category,subcategory,name_ja,name_en,price,recommended,new,stock,image_path
Drinks,コーヒー,ブレンドコーヒー,Blend Coffee,350,1,0,1,drinks/coffee-blend.png
,,幽霊メニュー,Ghost,100,0,0,1,
Specials,チーズ,ティラミス,Tiramisu,650,1,,0,sweets/tiramisu.png
`

func writeMenu(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSVSkipsEmptyCategory(t *testing.T) {
	p := NewProvider(writeMenu(t, "menu.csv", sampleCSV), zap.NewNop())

	items, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	coffee := items[0]
	assert.Equal(t, "Drinks", coffee.Category)
	assert.Equal(t, "ブレンドコーヒー", coffee.NameLocal)
	assert.Equal(t, "Blend Coffee", coffee.NameAlt)
	assert.Equal(t, int64(350), coffee.Price)
	assert.True(t, coffee.Recommended)
	assert.False(t, coffee.IsNew)
	assert.True(t, coffee.Stock)

	tiramisu := items[1]
	assert.False(t, tiramisu.IsNew, "missing new flag defaults to 0")
	assert.False(t, tiramisu.Stock)
}

func TestLoad_CanonicalHeaders(t *testing.T) {
	csv := "category,name_local,name_alt,price,is_new,stock\nSnacks,カルボナーラ,Carbonara,800,1,1\n"
	p := NewProvider(writeMenu(t, "menu.csv", csv), nil)

	items, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsNew)
	assert.False(t, items[0].Recommended)
}

func TestLoad_MissingFileUsesBuiltin(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "absent.csv"), zap.NewNop())

	items, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 21)

	item, ok, err := p.FindByName(context.Background(), "ブレンドコーヒー")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(350), item.Price)
}

func TestLoad_BadPriceIsFetchFailure(t *testing.T) {
	csv := "category,name_ja,price\nDrinks,水,free\n"
	p := NewProvider(writeMenu(t, "menu.csv", csv), zap.NewNop())

	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindReadFailure))
	assert.Contains(t, err.Error(), "row 2")
	assert.False(t, p.Loaded(), "failed load must not be cached")
}

func TestLoad_NegativePriceRejected(t *testing.T) {
	csv := "category,name_ja,price\nDrinks,水,-1\n"
	_, err := NewProvider(writeMenu(t, "menu.csv", csv), nil).Load(context.Background())
	assert.ErrorContains(t, err, "negative")
}

func TestLoad_CachedForProcessLifetime(t *testing.T) {
	path := writeMenu(t, "menu.csv", sampleCSV)
	p := NewProvider(path, zap.NewNop())

	first, err := p.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("category,name_ja,price\nX,Y,1\n"), 0o644))
	second, err := p.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), p.loads.Load())
}

func TestLoad_ConcurrentFirstAccessConverges(t *testing.T) {
	p := NewProvider(writeMenu(t, "menu.csv", sampleCSV), zap.NewNop())

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := p.Load(context.Background())
			if err == nil {
				results[i] = len(items)
			}
		}(i)
	}
	wg.Wait()

	for _, n := range results {
		assert.Equal(t, 2, n)
	}
	assert.Equal(t, int64(1), p.loads.Load())
}

func TestLoad_YAML(t *testing.T) {
	yml := `
- category: Drinks
  name_local: カフェラテ
  name_alt: Cafe Latte
  price: 450
  stock: true
- category: ""
  name_local: 無効
  price: 1
`
	p := NewProvider(writeMenu(t, "menu.yaml", yml), zap.NewNop())

	items, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(450), items[0].Price)
	assert.True(t, items[0].Stock)
}

func TestFindByName_AltNameAndMiss(t *testing.T) {
	p := NewProvider(writeMenu(t, "menu.csv", sampleCSV), zap.NewNop())

	item, ok, err := p.FindByName(context.Background(), "Tiramisu")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(650), item.Price)

	_, ok, err = p.FindByName(context.Background(), "未知の商品")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPriceLookup(t *testing.T) {
	p := NewProvider(writeMenu(t, "menu.csv", sampleCSV), zap.NewNop())
	lookup := p.PriceLookup(context.Background())

	price, ok := lookup("Blend Coffee")
	assert.True(t, ok)
	assert.Equal(t, int64(350), price)

	_, ok = lookup("Ghost")
	assert.False(t, ok)
}

func TestPriceLookup_FailedLoadMatchesNothing(t *testing.T) {
	p := NewProvider(writeMenu(t, "menu.csv", "category,name_ja,price\nA,B,x\n"), zap.NewNop())
	_, ok := p.PriceLookup(context.Background())("B")
	assert.False(t, ok)
}
