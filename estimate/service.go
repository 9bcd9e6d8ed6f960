package estimate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/rentprice/core"
	"github.com/rushteam/rentprice/feature"
	"github.com/rushteam/rentprice/model"
)

// ModelSource 提供已加载的模型，由 *model.Cache 实现。
type ModelSource interface {
	Get(ctx context.Context) (*model.Loaded, error)
}

// Service 是估价入口，负责完整的降级链：
//
//	模型 + 可比房源 -> Blend（model_status=model）
//	模型不可用     -> 仅可比房源（model_status=fallback_to_comparables）
//	两者都没有     -> ErrEstimationUnavailable
//
// 低置信度不是错误。
type Service struct {
	models       ModelSource
	comparables  core.ComparablesProvider
	limit        int
	compsTimeout time.Duration
	logger       *slog.Logger
}

// ServiceOption 配置 Service
type ServiceOption func(*Service)

// WithComparablesLimit 设置可比房源数量上限（默认 5）
func WithComparablesLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithComparablesTimeout 限制可比房源查询耗时，超时视为没有可比房源
func WithComparablesTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.compsTimeout = d }
}

// WithServiceLogger 设置日志
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService 创建估价服务。comparables 可以为 nil（始终视为没有可比房源）。
func NewService(models ModelSource, comparables core.ComparablesProvider, opts ...ServiceOption) *Service {
	s := &Service{
		models:      models,
		comparables: comparables,
		limit:       MaxComparables,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Estimate 对一个房源估价。
//
// 只会返回两类错误：INVALID_REQUEST（缺少必填字段）与 ESTIMATION_UNAVAILABLE。
func (s *Service) Estimate(ctx context.Context, attrs core.PropertyAttributes) (*core.PredictionResult, error) {
	if err := Validate(attrs); err != nil {
		return nil, err
	}
	attrs.PropertyType = strings.TrimSpace(attrs.PropertyType)

	var (
		comps    []core.ComparableListing
		raw      float64
		modelErr error
		eg       errgroup.Group
	)
	// 可比房源查询与模型获取互不依赖，并发执行；两者的失败都不会中断对方
	eg.Go(func() error {
		comps = s.findComparables(ctx, attrs.PropertyType, *attrs.Bedrooms)
		return nil
	})
	eg.Go(func() error {
		raw, modelErr = s.predict(ctx, attrs)
		return nil
	})
	_ = eg.Wait()

	if modelErr != nil {
		s.logger.Warn("model path failed, falling back to comparables",
			"error", modelErr, "comparables", len(comps))
		res, err := ComparablesOnly(comps)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleEstimate, core.ErrorCodeEstimationUnavailable,
				core.ErrEstimationUnavailable.Message, modelErr)
		}
		return &res, nil
	}

	res := Blend(raw, comps)
	s.logger.Debug("estimate produced",
		"estimated_price", res.EstimatedPrice, "confidence", res.Confidence, "comparables", len(comps))
	return &res, nil
}

// predict 获取模型 -> 编码 -> 推理。任何一步失败都返回错误，由调用方降级。
func (s *Service) predict(ctx context.Context, attrs core.PropertyAttributes) (float64, error) {
	if s.models == nil {
		return 0, core.ErrModelUnavailable
	}
	loaded, err := s.models.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("get model: %w", err)
	}
	vec, err := feature.Encode(attrs, loaded.Metadata())
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}
	raw, err := loaded.Predict(vec)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if raw <= 0 {
		return 0, fmt.Errorf("predict: non-positive price %v", raw)
	}
	return raw, nil
}

func (s *Service) findComparables(ctx context.Context, propertyType string, bedrooms int) []core.ComparableListing {
	if s.comparables == nil {
		return nil
	}
	if s.compsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.compsTimeout)
		defer cancel()
	}
	comps, err := s.comparables.Find(ctx, propertyType, bedrooms, s.limit)
	if err != nil {
		s.logger.Warn("comparables query failed, continuing without comparables",
			"error", err, "property_type", propertyType, "bedrooms", bedrooms)
		return nil
	}
	if len(comps) > s.limit {
		comps = comps[:s.limit]
	}
	return comps
}

// 必填字段
var requiredFields = []string{"bedrooms", "property_type"}

// Validate 校验必填字段与取值范围。
func Validate(attrs core.PropertyAttributes) error {
	if attrs.Bedrooms == nil || strings.TrimSpace(attrs.PropertyType) == "" {
		return &core.InvalidRequestError{
			Required: requiredFields,
			Provided: attrs.ProvidedFields(),
		}
	}
	if *attrs.Bedrooms < 0 {
		return &core.InvalidRequestError{
			Required: requiredFields,
			Provided: attrs.ProvidedFields(),
			Reason:   "bedrooms must be >= 0",
		}
	}
	if attrs.Bathrooms != nil && *attrs.Bathrooms < 0 {
		return &core.InvalidRequestError{
			Required: requiredFields,
			Provided: attrs.ProvidedFields(),
			Reason:   "bathrooms must be >= 0",
		}
	}
	return nil
}
