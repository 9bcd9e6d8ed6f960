package estimate

import (
	"math"

	"github.com/rushteam/rentprice/core"
)

// 混合参数
const (
	ModelWeight       = 0.6
	ComparablesWeight = 0.4

	ModelOnlyConfidence   = 0.7
	BaseConfidence        = 0.5
	ConfidencePerComp     = 0.08
	MaxConfidence         = 0.9
	ComparablesConfidence = 0.5

	MaxComparables = 5
)

// Blend 把模型原始输出与可比房源统计合并成最终估价。纯函数，无 I/O。
//
//	无可比房源：final = raw，confidence = 0.7
//	有可比房源：final = 0.6*raw + 0.4*avg，confidence = min(0.9, 0.5 + 0.08*n)
//	区间宽度：  w = (1-confidence)*0.4 + 0.1，min/max = round10(final*(1∓w))
func Blend(raw float64, comps []core.ComparableListing) core.PredictionResult {
	final := raw
	confidence := ModelOnlyConfidence
	if len(comps) > 0 {
		final = raw*ModelWeight + averagePrice(comps)*ComparablesWeight
		confidence = math.Min(MaxConfidence, BaseConfidence+ConfidencePerComp*float64(len(comps)))
	}

	final = RoundToTen(final)
	width := RangeWidth(confidence)
	lo, hi := RoundToTen(final*(1-width)), RoundToTen(final*(1+width))
	if lo > hi {
		// final 为负时两端互换，保持 Min <= final <= Max
		lo, hi = hi, lo
	}
	return core.PredictionResult{
		EstimatedPrice:       final,
		Confidence:           confidence,
		PriceRange:           core.PriceRange{Min: lo, Max: hi},
		ComparableProperties: limitComparables(comps),
		ModelStatus:          core.ModelStatusModel,
	}
}

// ComparablesOnly 在模型不可用时仅根据可比房源估价。
// 区间取观测最低价的 90% 到最高价的 110%。
// comps 为空时返回 ErrEstimationUnavailable。
func ComparablesOnly(comps []core.ComparableListing) (core.PredictionResult, error) {
	if len(comps) == 0 {
		return core.PredictionResult{}, core.ErrEstimationUnavailable
	}
	lo, hi := comps[0].PricePerMonth, comps[0].PricePerMonth
	for _, c := range comps[1:] {
		lo = math.Min(lo, c.PricePerMonth)
		hi = math.Max(hi, c.PricePerMonth)
	}
	return core.PredictionResult{
		EstimatedPrice: RoundToTen(averagePrice(comps)),
		Confidence:     ComparablesConfidence,
		PriceRange: core.PriceRange{
			Min: RoundToTen(lo * 0.9),
			Max: RoundToTen(hi * 1.1),
		},
		ComparableProperties: limitComparables(comps),
		ModelStatus:          core.ModelStatusFallbackToComparables,
	}, nil
}

// RangeWidth 区间宽度比例，置信度越高区间越窄，取值 [0.1, 0.5]
func RangeWidth(confidence float64) float64 {
	return (1-confidence)*0.4 + 0.1
}

// RoundToTen 四舍五入到最近的 10 的倍数。对已是 10 的倍数的值幂等。
func RoundToTen(v float64) float64 {
	return math.Round(v/10) * 10
}

func averagePrice(comps []core.ComparableListing) float64 {
	var sum float64
	for _, c := range comps {
		sum += c.PricePerMonth
	}
	return sum / float64(len(comps))
}

func limitComparables(comps []core.ComparableListing) []core.ComparableListing {
	n := min(len(comps), MaxComparables)
	out := make([]core.ComparableListing, n)
	copy(out, comps[:n])
	return out
}
