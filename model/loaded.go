package model

import (
	"time"

	"github.com/rushteam/rentprice/feature"
)

// Loaded 是缓存持有的只读推理句柄：模型 + 元数据。
// 构造后不再修改，Metadata 返回副本。
type Loaded struct {
	model    Regressor
	meta     *feature.Metadata
	fallback bool
	loadedAt time.Time
}

// NewLoaded 组合模型与元数据。元数据不满足约束或维度不一致时报错。
func NewLoaded(m Regressor, meta *feature.Metadata) (*Loaded, error) {
	if err := checkArity(m, meta); err != nil {
		return nil, err
	}
	return &Loaded{model: m, meta: meta.Clone(), loadedAt: time.Now()}, nil
}

// Predict 对已编码的特征向量做推理
func (l *Loaded) Predict(vec feature.Vector) (float64, error) {
	return l.model.Predict(vec)
}

// Metadata 返回元数据副本
func (l *Loaded) Metadata() *feature.Metadata {
	return l.meta.Clone()
}

// IsFallback 是否为降级模型
func (l *Loaded) IsFallback() bool { return l.fallback }

// Name 返回模型类型名
func (l *Loaded) Name() string { return l.model.Name() }

// Version 返回元数据中的模型版本
func (l *Loaded) Version() string { return l.meta.ModelVersion }

// LoadedAt 返回加载时间
func (l *Loaded) LoadedAt() time.Time { return l.loadedAt }
