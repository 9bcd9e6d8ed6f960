package feature

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/rushteam/rentprice/core"
)

// 位置特征的哈希取模范围。改动会悄悄改变模型输入，需与训练侧保持一致。
const (
	CityBuckets     = 100
	PostcodeBuckets = 200
)

// 缺失数值特征的默认值
const defaultCount = 1.0

// Vector 是已标准化的模型输入，顺序与 Metadata.FeatureNames 一致。
type Vector []float64

// Encode 把房源属性编码为模型输入向量。
//
// 对 meta.FeatureNames 中的每个特征，按特征语义取原始值，再做 Z-score：
//
//	normalized[i] = (raw[i] - mean[i]) / std[i]
//
// 同样的 (attrs, meta) 总是得到同样的向量。
func Encode(attrs core.PropertyAttributes, meta *Metadata) (Vector, error) {
	if meta == nil {
		return nil, fmt.Errorf("feature: metadata is nil")
	}
	n := len(meta.FeatureNames)
	if len(meta.Mean) != n || len(meta.Std) != n {
		return nil, fmt.Errorf("feature: metadata length mismatch: names=%d mean=%d std=%d", n, len(meta.Mean), len(meta.Std))
	}

	vec := make(Vector, n)
	for i, name := range meta.FeatureNames {
		vec[i] = (RawValue(name, attrs, meta) - meta.Mean[i]) / meta.Std[i]
	}
	return vec, nil
}

// RawValue 计算单个特征的原始（未标准化）值。
//
// 未知的特征名编码为 0，不报错：元数据里多出的列不会让请求失败。
func RawValue(name string, attrs core.PropertyAttributes, meta *Metadata) float64 {
	switch name {
	case FeatureBedrooms:
		return countOrDefault(attrs.Bedrooms)
	case FeatureBathrooms:
		return countOrDefault(attrs.Bathrooms)
	case FeaturePropertyType:
		return CategoricalCode(meta, FeaturePropertyType, attrs.PropertyType)
	case FeatureFurnishingStatus:
		return CategoricalCode(meta, FeatureFurnishingStatus, attrs.FurnishingStatus)
	case FeatureCity:
		return CityCode(attrs.City)
	case FeaturePostcode:
		return PostcodeCode(attrs.Postcode)
	case FeatureHasParking:
		return boolValue(attrs.HasParking)
	case FeatureHasGarden:
		return boolValue(attrs.HasGarden)
	default:
		return 0
	}
}

// CategoricalCode 在 CategoricalMaps 中查找类别序号（Label 编码）。
//
// 未知或缺失的类别一律编码为 0，与序号为 0 的已知类别（通常是 Flat / Unfurnished）无法区分。
func CategoricalCode(meta *Metadata, feature, value string) float64 {
	if meta == nil || value == "" {
		return 0
	}
	codes, ok := meta.CategoricalMaps[feature]
	if !ok {
		return 0
	}
	if code, ok := codes[value]; ok {
		return float64(code)
	}
	return 0
}

// CityCode 城市的低基数位置代理：Hash31(city) mod 100，空串为 0。
func CityCode(city string) float64 {
	if city == "" {
		return 0
	}
	return float64(Hash31(city) % CityBuckets)
}

// PostcodeCode 邮编的位置代理：取第一个空白分隔段，去空白并转大写后 Hash31 mod 200。
// 例如 "sw1a 1aa" 与 "SW1A 2BB" 编码相同。
func PostcodeCode(postcode string) float64 {
	outward := PostcodeOutward(postcode)
	if outward == "" {
		return 0
	}
	return float64(Hash31(outward) % PostcodeBuckets)
}

// PostcodeOutward 返回邮编第一段（大写、去空白）
func PostcodeOutward(postcode string) string {
	fields := strings.Fields(postcode)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(fields[0]))
}

// Hash31 是稳定的多项式字符串哈希，逐位精确定义如下：
//
//	h := int32(0)
//	for each UTF-16 code unit u of s: h = h*31 + u   (32 位有符号整数回绕)
//	return |h|                                        (在 int64 中取绝对值，-2^31 -> 2^31)
//
// 与训练侧使用的哈希一致，修改它等于修改模型输入。
func Hash31(s string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

func countOrDefault(v *int) float64 {
	if v == nil || *v < 0 {
		return defaultCount
	}
	return float64(*v)
}

func boolValue(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
