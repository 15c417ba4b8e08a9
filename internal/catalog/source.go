package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"qr_menu/internal/model"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// headerAliases 把可接受的 CSV 表头映射到标准字段。
var headerAliases = map[string]string{
	"category":    "category",
	"subcategory": "subcategory",
	"name_local":  "name_local",
	"name_ja":     "name_local",
	"name_alt":    "name_alt",
	"name_en":     "name_alt",
	"price":       "price",
	"recommended": "recommended",
	"is_new":      "is_new",
	"new":         "is_new",
	"stock":       "stock",
	"image_path":  "image_path",
}

// parseCSV 读取带表头的 CSV 菜单，没有分类的行会被跳过。
func parseCSV(r io.Reader, log *zap.Logger) ([]model.MenuItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.MenuItem{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := headerAliases[h]; ok {
			if _, dup := index[canon]; !dup {
				index[canon] = i
			}
		}
	}
	if _, ok := index["category"]; !ok {
		return nil, fmt.Errorf("menu header has no category column")
	}

	items := make([]model.MenuItem, 0, 32)
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		get := func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		if get("category") == "" {
			log.Warn("skipping menu row with empty category", zap.Int("row", line), zap.Strings("values", row))
			continue
		}
		item, err := buildItem(get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func buildItem(get func(string) string) (model.MenuItem, error) {
	price, err := parseInt(get("price"))
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("price: %w", err)
	}
	if price < 0 {
		return model.MenuItem{}, fmt.Errorf("price must not be negative")
	}
	recommended, err := parseFlag(get("recommended"))
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("recommended: %w", err)
	}
	isNew, err := parseFlag(get("is_new"))
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("is_new: %w", err)
	}
	stock, err := parseFlag(get("stock"))
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("stock: %w", err)
	}
	return model.MenuItem{
		Category:    get("category"),
		Subcategory: get("subcategory"),
		NameLocal:   get("name_local"),
		NameAlt:     get("name_alt"),
		Price:       price,
		Recommended: recommended,
		IsNew:       isNew,
		Stock:       stock,
		ImagePath:   get("image_path"),
	}, nil
}

// parseInt 空单元格按 0 处理。
func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// parseFlag 接受 0/1 整数，空值为 0。
func parseFlag(s string) (bool, error) {
	n, err := parseInt(s)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// parseYAML 读取 YAML 格式的菜品列表。
func parseYAML(r io.Reader, log *zap.Logger) ([]model.MenuItem, error) {
	var raw []model.MenuItem
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.MenuItem{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	items := make([]model.MenuItem, 0, len(raw))
	for i, it := range raw {
		if strings.TrimSpace(it.Category) == "" {
			log.Warn("skipping menu entry with empty category", zap.Int("entry", i+1), zap.String("name", it.NameLocal))
			continue
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("entry %d: price must not be negative", i+1)
		}
		items = append(items, it)
	}
	return items, nil
}
