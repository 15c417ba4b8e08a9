// Package catalog 每个进程只加载一次菜单，并提供按名称查询。
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Provider 是进程级、懒加载的菜单缓存。并发的首次调用
// 共用同一次加载；加载失败不缓存。
type Provider struct {
	path string
	log  *zap.Logger

	group singleflight.Group
	items atomic.Pointer[[]model.MenuItem]
	loads atomic.Int64
}

// NewProvider 创建从 path 读取菜单的 provider（支持 .csv、.yaml、.yml）。
func NewProvider(path string, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{path: path, log: log.Named("catalog")}
}

// Loaded 表示菜单是否已缓存。
func (p *Provider) Loaded() bool {
	return p.items.Load() != nil
}

// Load 返回缓存的菜单，首次调用时读取文件。
func (p *Provider) Load(ctx context.Context) ([]model.MenuItem, error) {
	if items := p.items.Load(); items != nil {
		return *items, nil
	}

	ch := p.group.DoChan("menu", func() (any, error) {
		if items := p.items.Load(); items != nil {
			return *items, nil
		}
		items, err := p.read()
		if err != nil {
			return nil, err
		}
		p.items.Store(&items)
		p.loads.Add(1)
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.KindReadFailure, "catalog.Load", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, apperr.Wrap(apperr.KindReadFailure, "catalog.Load", res.Err)
		}
		return res.Val.([]model.MenuItem), nil
	}
}

// FindByName 按任一显示名称查找菜品。
func (p *Provider) FindByName(ctx context.Context, name string) (model.MenuItem, bool, error) {
	items, err := p.Load(ctx)
	if err != nil {
		return model.MenuItem{}, false, err
	}
	for _, it := range items {
		if it.Matches(name) {
			return it, true, nil
		}
	}
	return model.MenuItem{}, false, nil
}

// PriceLookup 返回绑定当前菜单的价格查询函数。菜单加载失败时
// 查询一律不命中，并记录日志。
func (p *Provider) PriceLookup(ctx context.Context) model.PriceLookup {
	items, err := p.Load(ctx)
	if err != nil {
		p.log.Warn("menu unavailable for price backfill", zap.Error(err))
		return func(string) (int64, bool) { return 0, false }
	}
	byName := make(map[string]int64, len(items)*2)
	for _, it := range items {
		// 重名时以第一条为准
		for _, n := range []string{it.NameLocal, it.NameAlt} {
			if n == "" {
				continue
			}
			if _, seen := byName[n]; !seen {
				byName[n] = it.Price
			}
		}
	}
	return func(menuID string) (int64, bool) {
		price, ok := byName[menuID]
		return price, ok
	}
}

func (p *Provider) read() ([]model.MenuItem, error) {
	f, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.log.Info("menu source not found, using built-in menu", zap.String("path", p.path))
			return builtinMenu(), nil
		}
		return nil, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	var items []model.MenuItem
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".yaml", ".yml":
		items, err = parseYAML(f, p.log)
	default:
		items, err = parseCSV(f, p.log)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.path, err)
	}
	p.log.Info("menu loaded", zap.String("path", p.path), zap.Int("items", len(items)))
	return items, nil
}
