// Package rentprice 是租房平台的租金估价引擎。
//
// 设计要点：
// - 模型 + 可比房源混合：模型预测与近期可比房源均价按 60/40 加权
// - 降级链：真实模型 → 降级模型 → 仅可比房源 → ESTIMATION_UNAVAILABLE
// - 模型只加载一次：并发请求共享同一次加载，失败后进入冷却期
package rentprice

import (
	"context"
	"log/slog"

	"github.com/rushteam/rentprice/config"
	"github.com/rushteam/rentprice/core"
)

// 轻量 facade：便于用户直接 import "rentprice" 使用核心类型。
type (
	PropertyAttributes = core.PropertyAttributes
	PredictionResult   = core.PredictionResult
	ComparableListing  = core.ComparableListing
	Runtime            = config.Runtime
)

const (
	ModelStatusModel                 = core.ModelStatusModel
	ModelStatusFallbackToComparables = core.ModelStatusFallbackToComparables
)

// Open 读取 YAML 配置并装配估价引擎；path 为空时使用默认配置。
// 调用方负责 Runtime.Close。
func Open(ctx context.Context, path string, logger *slog.Logger) (*Runtime, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	return config.Build(ctx, cfg, logger)
}
