package feature

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/rushteam/rentprice/core"
)

// 特征名常量。Encode 按特征语义（而非存储顺序）计算原始值。
const (
	FeatureBedrooms         = "bedrooms"
	FeatureBathrooms        = "bathrooms"
	FeaturePropertyType     = "property_type"
	FeatureCity             = "city"
	FeatureFurnishingStatus = "furnishing_status"
	FeaturePostcode         = "postcode"
	FeatureHasParking       = "has_parking"
	FeatureHasGarden        = "has_garden"
)

// Metadata 模型元数据，对应 metadata.json
//
// 约束：len(Mean) == len(Std) == len(FeatureNames)，Std 中没有 0。
// 由 Validate 在加载时保证，Encode 不再做除零处理。
type Metadata struct {
	// FeatureNames 特征列名列表（按模型输入顺序）
	FeatureNames []string `json:"feature_names"`
	// Mean 每个特征的均值
	Mean []float64 `json:"mean"`
	// Std 每个特征的标准差
	Std []float64 `json:"std"`
	// CategoricalMaps 类别特征到序号的映射，按特征名索引，例如 property_type -> {"Flat": 0}
	CategoricalMaps map[string]map[string]int `json:"categorical_maps"`
	// ModelVersion 模型版本（可选）
	ModelVersion string `json:"model_version,omitempty"`
}

// ParseMetadata 解析并校验元数据 JSON
func ParseMetadata(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, core.NewInvalidArtifactError("解析模型元数据失败", err)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Validate 校验元数据不变量
func (m *Metadata) Validate() error {
	n := len(m.FeatureNames)
	if n == 0 {
		return core.NewInvalidArtifactError("元数据没有特征列", nil)
	}
	if len(m.Mean) != n || len(m.Std) != n {
		return core.NewInvalidArtifactError(
			fmt.Sprintf("元数据长度不一致: feature_names=%d mean=%d std=%d", n, len(m.Mean), len(m.Std)), nil)
	}
	seen := make(map[string]struct{}, n)
	for i, name := range m.FeatureNames {
		if name == "" {
			return core.NewInvalidArtifactError(fmt.Sprintf("第 %d 个特征名为空", i), nil)
		}
		if _, dup := seen[name]; dup {
			return core.NewInvalidArtifactError(fmt.Sprintf("特征名重复: %s", name), nil)
		}
		seen[name] = struct{}{}
		if math.IsNaN(m.Mean[i]) || math.IsInf(m.Mean[i], 0) {
			return core.NewInvalidArtifactError(fmt.Sprintf("特征 %s 的 mean 不是有限值", name), nil)
		}
		if m.Std[i] == 0 || math.IsNaN(m.Std[i]) || math.IsInf(m.Std[i], 0) {
			return core.NewInvalidArtifactError(fmt.Sprintf("特征 %s 的 std 必须为非零有限值", name), nil)
		}
	}
	return nil
}

// FeatureCount 返回特征数量
func (m *Metadata) FeatureCount() int {
	return len(m.FeatureNames)
}

// Clone 深拷贝元数据，供只读句柄对外暴露
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	out := &Metadata{
		FeatureNames: slices.Clone(m.FeatureNames),
		Mean:         slices.Clone(m.Mean),
		Std:          slices.Clone(m.Std),
		ModelVersion: m.ModelVersion,
	}
	if m.CategoricalMaps != nil {
		out.CategoricalMaps = make(map[string]map[string]int, len(m.CategoricalMaps))
		for k, v := range m.CategoricalMaps {
			inner := make(map[string]int, len(v))
			for ck, cv := range v {
				inner[ck] = cv
			}
			out.CategoricalMaps[k] = inner
		}
	}
	return out
}
