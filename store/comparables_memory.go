package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rushteam/rentprice/core"
	"github.com/rushteam/rentprice/pkg/dsl"
)

// ListingRecord 是一条房源记录：可比房源快照 + 状态字段。
type ListingRecord struct {
	core.ComparableListing
	Status  string `json:"status"`
	Flagged bool   `json:"flagged"`
}

func (r ListingRecord) celValue() map[string]any {
	return map[string]any{
		"id":              r.ID,
		"price_per_month": r.PricePerMonth,
		"bedrooms":        int64(r.Bedrooms),
		"bathrooms":       int64(r.Bathrooms),
		"property_type":   r.PropertyType,
		"city":            r.City,
		"postcode":        r.Postcode,
		"status":          r.Status,
		"flagged":         r.Flagged,
	}
}

// MemoryComparables 是内存实现的 ComparablesProvider，用于测试/开发/CLI。
// 状态过滤由 CEL 表达式决定（默认 dsl.DefaultListingFilter）。
type MemoryComparables struct {
	mu       sync.RWMutex
	listings []ListingRecord
	filter   *dsl.Filter
}

// NewMemoryComparables 创建内存可比房源。filter 为 nil 时使用默认过滤。
func NewMemoryComparables(listings []ListingRecord, filter *dsl.Filter) (*MemoryComparables, error) {
	if filter == nil {
		f, err := dsl.Compile("")
		if err != nil {
			return nil, err
		}
		filter = f
	}
	cp := make([]ListingRecord, len(listings))
	copy(cp, listings)
	return &MemoryComparables{listings: cp, filter: filter}, nil
}

// LoadListingsFile 从 JSON 数组文件读取房源
func LoadListingsFile(path string) ([]ListingRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取房源文件失败: %w", err)
	}
	var listings []ListingRecord
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("解析房源文件失败: %w", err)
	}
	return listings, nil
}

// Add 追加一条房源
func (m *MemoryComparables) Add(r ListingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings = append(m.listings, r)
}

// Find 返回精确匹配房型与卧室数、通过过滤表达式的房源，按发布时间倒序，最多 limit 条。
func (m *MemoryComparables) Find(ctx context.Context, propertyType string, bedrooms int, limit int) ([]core.ComparableListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []core.ComparableListing
	for _, r := range m.listings {
		if r.PropertyType != propertyType || r.Bedrooms != bedrooms {
			continue
		}
		ok, err := m.filter.Match(r.celValue())
		if err != nil {
			return nil, fmt.Errorf("filter %q on listing %s: %w", m.filter.Expr(), r.ID, err)
		}
		if ok {
			matched = append(matched, r.ComparableListing)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ListedAt.After(matched[j].ListedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

var _ core.ComparablesProvider = (*MemoryComparables)(nil)
