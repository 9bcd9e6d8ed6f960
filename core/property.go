package core

import "time"

// PropertyAttributes 是估价请求的输入：一个只填写了部分字段的房源。
// Bedrooms 与 PropertyType 必填，其余可选。
type PropertyAttributes struct {
	Bedrooms         *int   `json:"bedrooms,omitempty"`
	Bathrooms        *int   `json:"bathrooms,omitempty"`
	PropertyType     string `json:"property_type,omitempty"`
	City             string `json:"city,omitempty"`
	Postcode         string `json:"postcode,omitempty"`
	FurnishingStatus string `json:"furnishing_status,omitempty"`
	HasParking       bool   `json:"has_parking,omitempty"`
	HasGarden        bool   `json:"has_garden,omitempty"`
}

// ProvidedFields 返回请求中实际填写了的字段名（按固定顺序），用于错误提示。
func (a PropertyAttributes) ProvidedFields() []string {
	fields := make([]string, 0, 8)
	if a.Bedrooms != nil {
		fields = append(fields, "bedrooms")
	}
	if a.Bathrooms != nil {
		fields = append(fields, "bathrooms")
	}
	if a.PropertyType != "" {
		fields = append(fields, "property_type")
	}
	if a.City != "" {
		fields = append(fields, "city")
	}
	if a.Postcode != "" {
		fields = append(fields, "postcode")
	}
	if a.FurnishingStatus != "" {
		fields = append(fields, "furnishing_status")
	}
	if a.HasParking {
		fields = append(fields, "has_parking")
	}
	if a.HasGarden {
		fields = append(fields, "has_garden")
	}
	return fields
}

// IntPtr 便于构造可选整型字段。
func IntPtr(v int) *int { return &v }

// ComparableListing 是一条可比房源的只读快照，本模块不会修改它。
type ComparableListing struct {
	ID            string    `json:"id,omitempty"`
	PricePerMonth float64   `json:"price_per_month"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	PropertyType  string    `json:"property_type"`
	City          string    `json:"city,omitempty"`
	Postcode      string    `json:"postcode,omitempty"`
	ListedAt      time.Time `json:"listed_at,omitempty"`
}

// ModelStatus 标识估价结果是否经过模型。
type ModelStatus string

const (
	ModelStatusModel                 ModelStatus = "model"
	ModelStatusFallbackToComparables ModelStatus = "fallback_to_comparables"
)

// PriceRange 价格区间，Min <= EstimatedPrice <= Max。
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PredictionResult 是一次估价的输出。
//
// ModelStatus 是唯一的降级信号；Confidence 与区间宽度是定量信号。
type PredictionResult struct {
	EstimatedPrice       float64             `json:"estimated_price"`
	Confidence           float64             `json:"confidence"`
	PriceRange           PriceRange          `json:"price_range"`
	ComparableProperties []ComparableListing `json:"comparable_properties"`
	ModelStatus          ModelStatus         `json:"model_status"`
}
